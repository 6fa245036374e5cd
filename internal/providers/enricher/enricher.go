// Package enricher provides the advisory text-generation capability used
// for freshness explanations, label suggestions, and the assistant chat.
// Enrichment never gates a lifecycle transition: every implementation must
// resolve failures to a deterministic local result.
package enricher

import (
	"context"

	"foodshare/internal/domain"
	"foodshare/internal/timewindow"
)

type FreshnessRequest struct {
	Title          string
	Quantity       int
	HoursRemaining int
	Tier           timewindow.Tier
}

type FreshnessResult struct {
	Score  string `json:"score"`
	Reason string `json:"reason"`
	// Provider records which backend produced the result ("gemini" or
	// "static"); it is internal and not serialized.
	Provider string `json:"-"`
}

type SuggestionRequest struct {
	Title    string
	Category domain.FoodCategory
}

type SuggestionResult struct {
	Labels      []string `json:"labels"`
	Description string   `json:"description"`
	Provider    string   `json:"-"`
}

// Enricher generates auxiliary human-readable text. Implementations fail
// soft: a degraded dependency yields the fallback result, not an error.
type Enricher interface {
	FreshnessReason(ctx context.Context, req FreshnessRequest) (*FreshnessResult, error)
	Suggest(ctx context.Context, req SuggestionRequest) (*SuggestionResult, error)
	Chat(ctx context.Context, message string) (string, error)
}

const (
	staticProviderName = "static"
	geminiProviderName = "gemini"
)
