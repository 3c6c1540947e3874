package narrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"neon-tycoon/internal/format"
	"neon-tycoon/internal/market"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	RateLimitPause = time.Minute

	companyPrompt = "Generate a single, short, futuristic, cool tech company name. No explanation, just the name."
	marketPrompt  = `You are the narrator of a cyberpunk tycoon game.
Generate a short, 1-sentence "Market News" headline that explains a sudden economic shift.
It should be satirical or sci-fi themed.
The combined fortune of the players online is $%s.

Also, decide if this is a BULL market (positive) or BEAR market (negative).

Return ONLY a JSON object with this format:
{
  "headline": "string",
  "type": "BULL" | "BEAR"
}`
)

// Gemini generates text with the Gemini API. After a quota error it
// refuses calls with ErrRateLimited for RateLimitPause.
type Gemini struct {
	client    *genai.Client
	modelName string
	now       func() time.Time

	mu           sync.Mutex
	limitedUntil time.Time
}

func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	return &Gemini{client: client, modelName: modelName, now: time.Now}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) CompanyName(ctx context.Context) (string, error) {
	text, err := g.generate(ctx, companyPrompt, "")
	if err != nil {
		return "", err
	}
	name := cleanName(text)
	if name == "" {
		return "", ErrEmptyOutput
	}
	return name, nil
}

func (g *Gemini) MarketEvent(ctx context.Context, money float64) (market.Event, error) {
	text, err := g.generate(ctx, fmt.Sprintf(marketPrompt, format.Number(money)), "application/json")
	if err != nil {
		return market.Event{}, err
	}
	return parseHeadline(text)
}

func (g *Gemini) generate(ctx context.Context, prompt, mimeType string) (string, error) {
	if g.limited() {
		return "", ErrRateLimited
	}
	model := g.client.GenerativeModel(g.modelName)
	if mimeType != "" {
		model.ResponseMIMEType = mimeType
	}
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		if isRateLimit(err) {
			g.pause()
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(resp), nil
}

func (g *Gemini) limited() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now().Before(g.limitedUntil)
}

func (g *Gemini) pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.now().Before(g.limitedUntil) {
		log.Warn().Dur("pause", RateLimitPause).Msg("gemini rate limited, serving offline content")
	}
	g.limitedUntil = g.now().Add(RateLimitPause)
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
	}
	return b.String()
}

func isRateLimit(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(strings.ToLower(msg), "quota") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func cleanName(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.NewReplacer(`"`, "", "'", "").Replace(text)
	return strings.TrimSpace(text)
}

type headline struct {
	Headline string `json:"headline"`
	Type     string `json:"type"`
}

// parseHeadline accepts the JSON object the market prompt asks for, with or
// without a markdown code fence around it.
func parseHeadline(text string) (market.Event, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	var h headline
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &h); err != nil {
		return market.Event{}, fmt.Errorf("decode market headline: %w", err)
	}
	h.Headline = strings.TrimSpace(h.Headline)
	if h.Headline == "" {
		return market.Event{}, ErrEmptyOutput
	}
	mult := 1.0
	switch strings.ToUpper(strings.TrimSpace(h.Type)) {
	case "BULL":
		mult = 2.0
	case "BEAR":
		mult = 0.5
	}
	return market.NewEvent(h.Headline, mult), nil
}
