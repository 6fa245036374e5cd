package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"foodshare/internal/domain"
	"foodshare/internal/lifecycle"
	"foodshare/internal/middleware"
)

type createDonationRequest struct {
	Title       string    `json:"title"`
	Quantity    int       `json:"quantity"`
	Type        string    `json:"type"`
	Labels      []string  `json:"labels"`
	MadeAt      time.Time `json:"made_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	PinCode     string    `json:"pin_code"`
	Zone        string    `json:"zone"`
	ImageBase64 string    `json:"image_base64"`
}

func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}
	var req createDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	imageKey, err := a.storeImage(r, req.ImageBase64)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid image payload")
		return
	}

	input := lifecycle.CreateInput{
		Title:        req.Title,
		Quantity:     req.Quantity,
		Category:     domain.FoodCategory(req.Type),
		Labels:       req.Labels,
		ImageKey:     imageKey,
		MadeAt:       req.MadeAt,
		ExpiresAt:    req.ExpiresAt,
		LocationCode: req.PinCode,
		Zone:         req.Zone,
	}
	d, err := a.Lifecycle.Create(r.Context(), actor, input)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, toDonationResponse(*d, true))
}

func (a *App) DonationsDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}
	if err := a.Lifecycle.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "donation deleted"})
}

func (a *App) DonationsAvailable(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}
	filter := domain.AvailableFilter{
		LocationCode: r.URL.Query().Get("pin"),
		Category:     domain.FoodCategory(r.URL.Query().Get("type")),
	}
	items, err := a.Lifecycle.ListAvailable(r.Context(), actor, filter)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": toDonationList(items, nil)})
}

func (a *App) DonationsAccept(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}
	d, err := a.Lifecycle.Accept(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toDonationResponse(*d, false))
}

func (a *App) DonationsVolunteerAccept(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}
	d, err := a.Lifecycle.VolunteerAccept(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toDonationResponse(*d, false))
}

type confirmPickupRequest struct {
	Token string `json:"token"`
}

func (a *App) DonationsConfirm(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}
	var req confirmPickupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	d, err := a.Lifecycle.ConfirmPickup(r.Context(), actor, chi.URLParam(r, "id"), req.Token)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toDonationResponse(*d, false))
}

func (a *App) DonationsMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}
	items, err := a.Lifecycle.ListMine(r.Context(), actor)
	if err != nil {
		a.domainError(w, err)
		return
	}
	// Donors get the possession token for their own records; it is what
	// they hand over (as a QR code) at pickup time.
	owns := func(d domain.Donation) bool { return d.DonorID == actor.ID }
	a.json(w, http.StatusOK, map[string]any{"items": toDonationList(items, owns)})
}

func (a *App) DonationsExpired(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}
	items, err := a.Lifecycle.ListForRecovery(r.Context(), actor)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": toDonationList(items, nil)})
}

func (a *App) DonationsRecycleAccept(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}
	d, err := a.Lifecycle.RecycleAccept(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toDonationResponse(*d, false))
}

// DonationsImage serves the stored attachment for a donation.
func (a *App) DonationsImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.ActorFromContext(r.Context()); !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing actor")
		return
	}
	d, err := a.Lifecycle.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	if d.ImageKey == "" || a.Files == nil {
		a.error(w, http.StatusNotFound, "not_found", "donation has no image")
		return
	}
	data, err := a.Files.Read(r.Context(), d.ImageKey)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "image not available")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// storeImage decodes an optional data-URI image payload and persists it,
// returning the storage key. Enrichment of the record with an image never
// fails the create when no payload was sent.
func (a *App) storeImage(r *http.Request, imageBase64 string) (string, error) {
	if imageBase64 == "" {
		return "", nil
	}
	if !strings.HasPrefix(imageBase64, "data:image") {
		return "", fmt.Errorf("unsupported image payload")
	}
	idx := strings.Index(imageBase64, ",")
	if idx < 0 {
		return "", fmt.Errorf("malformed data uri")
	}
	data, err := base64.StdEncoding.DecodeString(imageBase64[idx+1:])
	if err != nil {
		return "", err
	}
	if a.Files == nil {
		return "", nil
	}
	key := "donations/" + uuid.NewString() + ".jpg"
	return a.Files.Write(r.Context(), key, data)
}
