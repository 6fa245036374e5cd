package enricher

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const chatFallbackReply = "Based on food safety guidelines, food should be stored properly and donated as soon as possible."

// StaticEnricher is the deterministic fallback implementation. It is also a
// complete Enricher in its own right: the system runs correctly with no
// text-generation backend configured at all.
type StaticEnricher struct{}

func NewStaticEnricher() *StaticEnricher {
	return &StaticEnricher{}
}

func (s *StaticEnricher) FreshnessReason(_ context.Context, req FreshnessRequest) (*FreshnessResult, error) {
	return &FreshnessResult{
		Score:    string(req.Tier),
		Reason:   fmt.Sprintf("Food expires in about %d hours.", req.HoursRemaining),
		Provider: staticProviderName,
	}, nil
}

func (s *StaticEnricher) Suggest(_ context.Context, req SuggestionRequest) (*SuggestionResult, error) {
	c := cases.Title(language.Und)
	labels := []string{"Freshly Cooked", "Safe to Donate"}
	if req.Category != "" {
		labels = append([]string{c.String(string(req.Category))}, labels...)
	}
	return &SuggestionResult{
		Labels:      labels,
		Description: "Fresh surplus food suitable for donation.",
		Provider:    staticProviderName,
	}, nil
}

func (s *StaticEnricher) Chat(_ context.Context, _ string) (string, error) {
	return chatFallbackReply, nil
}

var _ Enricher = (*StaticEnricher)(nil)
