package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"foodshare/internal/domain"
	"foodshare/internal/providers/enricher"
	"foodshare/internal/timewindow"
)

type chatRequest struct {
	Message string `json:"message"`
}

// AssistChat proxies a free-form question to the text-generation backend.
// A degraded backend still yields the canned food-safety reply, never a 5xx.
func (a *App) AssistChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "message is required")
		return
	}
	reply, err := a.Enricher.Chat(r.Context(), req.Message)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("assist: chat enrichment failed")
		reply, _ = enricher.NewStaticEnricher().Chat(r.Context(), req.Message)
	}
	a.json(w, http.StatusOK, map[string]string{"reply": reply})
}

type freshnessRequest struct {
	Title     string    `json:"title"`
	Quantity  int       `json:"quantity"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AssistFreshness recomputes the freshness tier from the live clock and
// asks the enricher for a human-readable reason.
func (a *App) AssistFreshness(w http.ResponseWriter, r *http.Request) {
	var req freshnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.ExpiresAt.IsZero() {
		a.error(w, http.StatusBadRequest, "bad_request", "expires_at is required")
		return
	}

	cls := timewindow.Classify(a.Now(), req.ExpiresAt)
	res, err := a.Enricher.FreshnessReason(r.Context(), enricher.FreshnessRequest{
		Title:          req.Title,
		Quantity:       req.Quantity,
		HoursRemaining: cls.HoursRemaining,
		Tier:           cls.Tier,
	})
	if err != nil {
		a.Logger.Warn().Err(err).Msg("assist: freshness enrichment failed")
		res, _ = enricher.NewStaticEnricher().FreshnessReason(r.Context(), enricher.FreshnessRequest{
			HoursRemaining: cls.HoursRemaining,
			Tier:           cls.Tier,
		})
	}
	a.json(w, http.StatusOK, res)
}

type suggestionRequest struct {
	Title string `json:"title"`
	Type  string `json:"type"`
}

// AssistSuggestions proposes labels and a description for a donation draft.
func (a *App) AssistSuggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	res, err := a.Enricher.Suggest(r.Context(), enricher.SuggestionRequest{
		Title:    req.Title,
		Category: domain.FoodCategory(req.Type),
	})
	if err != nil {
		a.Logger.Warn().Err(err).Msg("assist: suggestion enrichment failed")
		res, _ = enricher.NewStaticEnricher().Suggest(r.Context(), enricher.SuggestionRequest{
			Category: domain.FoodCategory(req.Type),
		})
	}
	a.json(w, http.StatusOK, res)
}
