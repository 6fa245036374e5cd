package sqlinline

const donationColumns = `id, donor_id, title, quantity, category, labels, image_key, made_at, expires_at,
location_code, zone, status, accepted_by, volunteer_id, recycled_by, possession_token,
freshness, is_urgent, created_at, updated_at`

const QInsertDonation = `--sql f281c70b-22ae-425b-9656-70700d66f3bf
insert into donations(id, donor_id, title, quantity, category, labels, image_key, made_at, expires_at,
                      location_code, zone, status, possession_token, freshness, is_urgent, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::int, $5::text, $6::text[], $7::text, $8::timestamptz, $9::timestamptz,
        $10::text, $11::text, 'available', $12::text, $13::text, $14::boolean, now(), now());
`

const QGetDonation = `--sql e76aa6cb-f848-4da1-bb19-1e831ddd862d
select ` + donationColumns + `
from donations
where id = $1::uuid;
`

const QDeleteAvailableDonation = `--sql 745f924d-3b6b-4ed4-ab5e-7f750980fbc1
delete from donations
where id = $1::uuid
  and donor_id = $2::text
  and status = 'available';
`

const QAcceptDonation = `--sql 0b6121b2-6060-40d9-a1bb-c390ec5e8060
update donations
set status = 'accepted', accepted_by = $2::text, updated_at = now()
where id = $1::uuid
  and status = 'available'
returning ` + donationColumns + `;
`

const QAssignVolunteer = `--sql 0d7cae0d-fc8e-432f-a9a4-2e2870dc446e
update donations
set volunteer_id = $2::text, updated_at = now()
where id = $1::uuid
  and status = 'accepted'
returning ` + donationColumns + `;
`

const QExpireDonation = `--sql d7f5b9c4-3539-48e3-91b8-0ce4c19a4187
update donations
set status = 'expired', updated_at = now()
where id = $1::uuid
  and status = 'available'
returning ` + donationColumns + `;
`

const QConfirmDonation = `--sql 33be4cad-a0b6-479e-9054-cfd88177c354
update donations
set status = case when status = 'expired' then 'recycled' else 'completed' end,
    updated_at = now()
where id = $1::uuid
  and status in ('available', 'accepted', 'picked', 'expired')
returning ` + donationColumns + `;
`

const QRecycleDonation = `--sql bebe9c13-83c2-4edb-bf7f-ca14d282fda3
update donations
set status = 'recycled', recycled_by = $2::text, updated_at = now()
where id = $1::uuid
  and status = 'expired'
returning ` + donationColumns + `;
`

const QListAvailableDonations = `--sql 37192b67-2d01-4d05-8b92-d72f4a421255
select ` + donationColumns + `
from donations
where status = 'available'
  and location_code = $1::text
  and ($2::text = '' or category = $2::text)
order by expires_at asc;
`

const QListRecoveryDonations = `--sql 17111947-d2ad-4215-ad7f-82cc46427104
select ` + donationColumns + `
from donations
where status in ('expired', 'picked', 'recycled', 'completed')
order by updated_at desc;
`

const QListDonationsByDonor = `--sql 3bf037c7-2d9f-4301-94c6-ae61572516b1
select ` + donationColumns + `
from donations
where donor_id = $1::text
order by created_at desc;
`

const QListDonationsByParticipant = `--sql 69c0f3a6-49b2-4180-b7b8-2a9b73390f60
select ` + donationColumns + `
from donations
where accepted_by = $1::text
   or volunteer_id = $1::text
   or recycled_by = $1::text
order by created_at desc;
`
