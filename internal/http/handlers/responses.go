package handlers

import (
	"time"

	"foodshare/internal/domain"
)

type donationResponse struct {
	ID           string    `json:"id"`
	DonorID      string    `json:"donor_id"`
	Title        string    `json:"title"`
	Quantity     int       `json:"quantity"`
	Type         string    `json:"type"`
	Labels       []string  `json:"labels,omitempty"`
	ImageKey     string    `json:"image_key,omitempty"`
	MadeAt       time.Time `json:"made_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	PinCode      string    `json:"pin_code"`
	Zone         string    `json:"zone,omitempty"`
	Status       string    `json:"status"`
	AcceptedBy   *string   `json:"accepted_by,omitempty"`
	VolunteerID  *string   `json:"volunteer_id,omitempty"`
	RecycledBy   *string   `json:"recycled_by,omitempty"`
	Freshness    string    `json:"freshness_score,omitempty"`
	IsUrgent     bool      `json:"is_urgent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	// Token is the possession capability. It is present only in responses
	// addressed to the owning donor; bulk listings never carry it.
	Token string `json:"token,omitempty"`
}

func toDonationResponse(d domain.Donation, includeToken bool) donationResponse {
	resp := donationResponse{
		ID:          d.ID,
		DonorID:     d.DonorID,
		Title:       d.Title,
		Quantity:    d.Quantity,
		Type:        string(d.Category),
		Labels:      d.Labels,
		ImageKey:    d.ImageKey,
		MadeAt:      d.MadeAt,
		ExpiresAt:   d.ExpiresAt,
		PinCode:     d.LocationCode,
		Zone:        d.Zone,
		Status:      string(d.Status),
		AcceptedBy:  d.AcceptedBy,
		VolunteerID: d.VolunteerID,
		RecycledBy:  d.RecycledBy,
		Freshness:   d.Freshness,
		IsUrgent:    d.IsUrgent,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if includeToken {
		resp.Token = d.PossessionToken
	}
	return resp
}

func toDonationList(items []domain.Donation, tokenFor func(domain.Donation) bool) []donationResponse {
	out := make([]donationResponse, 0, len(items))
	for _, d := range items {
		out = append(out, toDonationResponse(d, tokenFor != nil && tokenFor(d)))
	}
	return out
}
