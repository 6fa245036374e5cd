package enricher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"foodshare/internal/domain"
	"foodshare/internal/timewindow"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func newEnricher(t *testing.T, rt roundTripFunc) *GeminiEnricher {
	t.Helper()
	g, err := NewGeminiEnricher(GeminiOptions{
		APIKey:     "dummy",
		HTTPClient: &http.Client{Transport: rt},
		Logger:     zerolog.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("NewGeminiEnricher: %v", err)
	}
	return g
}

func geminiBody(text string) *http.Response {
	body := `{"candidates":[{"content":{"role":"model","parts":[{"text":` + jsonQuote(text) + `}]}}]}`
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func jsonQuote(s string) string {
	q := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s)
	return `"` + q + `"`
}

func TestFreshnessFallsBackOnTransportError(t *testing.T) {
	g := newEnricher(t, func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("boom")
	})

	req := FreshnessRequest{Title: "Dal", Quantity: 5, HoursRemaining: 2, Tier: timewindow.TierConsumeSoon}
	res, err := g.FreshnessReason(context.Background(), req)
	if err != nil {
		t.Fatalf("FreshnessReason returned error: %v", err)
	}
	if res.Provider != staticProviderName {
		t.Fatalf("Provider = %q, want %q", res.Provider, staticProviderName)
	}
	if res.Score != string(timewindow.TierConsumeSoon) {
		t.Fatalf("Score = %q, want tier", res.Score)
	}
	if res.Reason != "Food expires in about 2 hours." {
		t.Fatalf("Reason = %q", res.Reason)
	}
}

func TestFreshnessFallsBackOnUnparseableBody(t *testing.T) {
	g := newEnricher(t, func(r *http.Request) (*http.Response, error) {
		return geminiBody("the model rambled instead of emitting JSON"), nil
	})

	req := FreshnessRequest{Title: "Dal", Quantity: 5, HoursRemaining: 5, Tier: timewindow.TierFresh}
	res, err := g.FreshnessReason(context.Background(), req)
	if err != nil {
		t.Fatalf("FreshnessReason returned error: %v", err)
	}
	if res.Provider != staticProviderName {
		t.Fatalf("Provider = %q, want %q", res.Provider, staticProviderName)
	}
}

func TestFreshnessFallsBackOnServerError(t *testing.T) {
	g := newEnricher(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader(""))}, nil
	})

	req := FreshnessRequest{Title: "Dal", Quantity: 5, HoursRemaining: 1, Tier: timewindow.TierHighRisk}
	res, err := g.FreshnessReason(context.Background(), req)
	if err != nil {
		t.Fatalf("FreshnessReason returned error: %v", err)
	}
	if res.Provider != staticProviderName {
		t.Fatalf("Provider = %q, want %q", res.Provider, staticProviderName)
	}
}

func TestFreshnessParsesModelReason(t *testing.T) {
	g := newEnricher(t, func(r *http.Request) (*http.Response, error) {
		return geminiBody("```json\n{\"score\": \"Fresh\", \"reason\": \"Cooked today and well within its window.\"}\n```"), nil
	})

	req := FreshnessRequest{Title: "Idli", Quantity: 20, HoursRemaining: 8, Tier: timewindow.TierFresh}
	res, err := g.FreshnessReason(context.Background(), req)
	if err != nil {
		t.Fatalf("FreshnessReason returned error: %v", err)
	}
	if res.Provider != geminiProviderName {
		t.Fatalf("Provider = %q, want %q", res.Provider, geminiProviderName)
	}
	if res.Reason != "Cooked today and well within its window." {
		t.Fatalf("Reason = %q", res.Reason)
	}
	if res.Score != string(timewindow.TierFresh) {
		t.Fatalf("Score = %q, want deterministic tier", res.Score)
	}
}

func TestSuggestFallsBackOnEmptyLabels(t *testing.T) {
	g := newEnricher(t, func(r *http.Request) (*http.Response, error) {
		return geminiBody(`{"labels": [], "description": ""}`), nil
	})

	res, err := g.Suggest(context.Background(), SuggestionRequest{Title: "Rolls", Category: domain.CategoryVeg})
	if err != nil {
		t.Fatalf("Suggest returned error: %v", err)
	}
	if res.Provider != staticProviderName {
		t.Fatalf("Provider = %q, want %q", res.Provider, staticProviderName)
	}
	if len(res.Labels) == 0 || res.Labels[0] != "Veg" {
		t.Fatalf("unexpected fallback labels: %v", res.Labels)
	}
}

func TestChatStripsMarkdownAndFallsBack(t *testing.T) {
	g := newEnricher(t, func(r *http.Request) (*http.Response, error) {
		return geminiBody("**Store** the food *properly*."), nil
	})
	reply, err := g.Chat(context.Background(), "how should I store rice?")
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if reply != "Store the food properly." {
		t.Fatalf("reply = %q", reply)
	}

	g = newEnricher(t, func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("unreachable")
	})
	reply, err = g.Chat(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if reply != chatFallbackReply {
		t.Fatalf("reply = %q, want fallback", reply)
	}
}
