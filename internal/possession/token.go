// Package possession issues and validates the opaque token that proves
// physical possession of a donation at pickup time. A token is minted once,
// at creation, bound to the donor identity, and never rotated; whoever can
// present it may confirm the pickup.
package possession

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Issuer mints donation possession tokens from a server-side secret.
type Issuer struct {
	secret []byte
}

// NewIssuer constructs an Issuer. The secret must be non-empty; a guessable
// token would let any actor close out someone else's donation.
func NewIssuer(secret string) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("possession: token secret is required")
	}
	return &Issuer{secret: []byte(secret)}, nil
}

// Issue returns an opaque token bound to the donor. The uuid nonce makes
// tokens unique per donation even for the same donor.
func (i *Issuer) Issue(donorID string) string {
	nonce := uuid.NewString()
	return nonce + "." + i.sign(donorID, nonce)
}

func (i *Issuer) sign(donorID, nonce string) string {
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(donorID))
	mac.Write([]byte{'.'})
	mac.Write([]byte(nonce))
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate reports whether the presented token matches the stored one.
// Comparison is constant time; no expiry applies to the token itself.
func Validate(presented, stored string) bool {
	if presented == "" || stored == "" {
		return false
	}
	return hmac.Equal([]byte(presented), []byte(stored))
}
