package enricher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Enricher
	Logger     zerolog.Logger
}

// GeminiEnricher calls the Gemini generateContent API. Any failure along the
// way (transport, non-2xx, empty candidates, unparseable JSON) resolves to
// the fallback enricher; callers never observe a degraded dependency.
type GeminiEnricher struct {
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
	fallback Enricher
	logger   zerolog.Logger
}

const geminiDefaultTimeout = 15 * time.Second

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func NewGeminiEnricher(opts GeminiOptions) (*GeminiEnricher, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStaticEnricher()
	}
	return &GeminiEnricher{
		apiKey:   opts.APIKey,
		model:    model,
		baseURL:  baseURL,
		client:   client,
		fallback: fallback,
		logger:   opts.Logger,
	}, nil
}

func (g *GeminiEnricher) FreshnessReason(ctx context.Context, req FreshnessRequest) (*FreshnessResult, error) {
	raw, err := g.generate(ctx, g.buildFreshnessPrompt(req), true)
	if err != nil {
		g.warnFallback("freshness", err)
		return g.fallback.FreshnessReason(ctx, req)
	}
	parsed, err := parseModelPayload[FreshnessResult](raw)
	if err != nil || strings.TrimSpace(parsed.Reason) == "" {
		g.warnFallback("freshness", err)
		return g.fallback.FreshnessReason(ctx, req)
	}
	// The tier is authoritative; the model only supplies the reason text.
	parsed.Score = string(req.Tier)
	parsed.Provider = geminiProviderName
	return &parsed, nil
}

func (g *GeminiEnricher) Suggest(ctx context.Context, req SuggestionRequest) (*SuggestionResult, error) {
	raw, err := g.generate(ctx, g.buildSuggestionPrompt(req), true)
	if err != nil {
		g.warnFallback("suggestions", err)
		return g.fallback.Suggest(ctx, req)
	}
	parsed, err := parseModelPayload[SuggestionResult](raw)
	if err != nil || len(parsed.Labels) == 0 {
		g.warnFallback("suggestions", err)
		return g.fallback.Suggest(ctx, req)
	}
	parsed.Provider = geminiProviderName
	return &parsed, nil
}

func (g *GeminiEnricher) Chat(ctx context.Context, message string) (string, error) {
	prompt := "You are a friendly and helpful AI assistant for FoodShare. " +
		"Respond in clear conversational paragraphs without Markdown, lists, stars, or bullets. " +
		"Do not use asterisks, bold text, headings, or symbols. " +
		"Speak naturally like a human.\n\nUser: " + message
	raw, err := g.generate(ctx, prompt, false)
	if err != nil {
		g.warnFallback("chat", err)
		return g.fallback.Chat(ctx, message)
	}
	reply := cleanChatText(raw)
	if reply == "" {
		g.warnFallback("chat", errors.New("empty reply"))
		return g.fallback.Chat(ctx, message)
	}
	return reply, nil
}

func (g *GeminiEnricher) generate(ctx context.Context, prompt string, jsonOutput bool) (string, error) {
	cfg := &geminiGenerationConfig{Temperature: 0.5, CandidateCount: 1}
	if jsonOutput {
		cfg.ResponseMimeType = "application/json"
	}
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: cfg,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), &buf)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini status %d", resp.StatusCode)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	text := extractText(out)
	if text == "" {
		return "", errors.New("empty candidates")
	}
	return text, nil
}

func (g *GeminiEnricher) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func (g *GeminiEnricher) buildFreshnessPrompt(req FreshnessRequest) string {
	sb := &strings.Builder{}
	sb.WriteString("Return ONLY valid JSON. Do not add extra text.\n")
	fmt.Fprintf(sb, "{\"score\": %q, \"reason\": \"short explanation\"}\n\n", string(req.Tier))
	fmt.Fprintf(sb, "Food: %s\nQuantity: %d\nHours left before expiry: %d", req.Title, req.Quantity, req.HoursRemaining)
	return sb.String()
}

func (g *GeminiEnricher) buildSuggestionPrompt(req SuggestionRequest) string {
	sb := &strings.Builder{}
	sb.WriteString("Return ONLY valid JSON. Do not add extra text.\n")
	sb.WriteString(`{"labels": ["label1", "label2", "label3"], "description": "short natural description"}`)
	fmt.Fprintf(sb, "\n\nFood: %s\nFood type: %s\nContext: surplus food donation", req.Title, req.Category)
	return sb.String()
}

func (g *GeminiEnricher) warnFallback(op string, err error) {
	g.logger.Warn().
		Err(err).
		Str("model", g.model).
		Str("op", op).
		Msg("enricher: gemini call degraded; using static fallback")
}

func extractText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

// cleanChatText strips the markdown decorations the model sometimes emits
// despite the prompt instructions.
func cleanChatText(text string) string {
	replacer := strings.NewReplacer("**", "", "*", "", "`", "", "#", "", "_", "", ">", "")
	cleaned := replacer.Replace(text)
	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

var _ Enricher = (*GeminiEnricher)(nil)
