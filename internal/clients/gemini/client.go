// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/interfaces"
	"github.com/bobmcallan/mini-analyst/internal/models"
)

const (
	DefaultModel   = "gemini-2.0-flash"
	DefaultTimeout = 20 * time.Second
)

// Client implements the GeminiClient interface
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout bounds each generation call
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:  genaiClient,
		model:   DefaultModel,
		timeout: DefaultTimeout,
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateContent generates AI content from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

// SummarizeAnalysis generates a short narrative for a finished analysis
func (c *Client) SummarizeAnalysis(ctx context.Context, analysis *models.Analysis) (string, error) {
	return c.GenerateContent(ctx, BuildAnalysisPrompt(analysis))
}

// BuildAnalysisPrompt creates the commentary prompt. Unavailable values are
// written as "n/a" so the model does not invent them.
func BuildAnalysisPrompt(a *models.Analysis) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are a cautious equity analyst. Summarise the following analysis of %s (%s) in at most four sentences.
State the combined signal, the strongest supporting factor, the main risk, and do not give personalised advice.

Combined signal: %s (score %.2f, confidence %d%%)
`, a.Symbol, a.Company, a.Signal, a.Score, a.Confidence)

	if t := a.Technical.Indicators; t != nil {
		fmt.Fprintf(&sb, `
Technical (%s, score %.0f):
- Price: %s
- SMA50: %s
- SMA200: %s
- RSI(14): %s (weekly %s)
- Volatility: %s%%
- 1Y return: %s%%
`,
			a.Technical.Signal, a.Technical.Score,
			fmtPtr(t.CurrentPrice), fmtPtr(t.SMA50), fmtPtr(t.SMA200),
			fmtPtr(t.RSI), fmtPtr(t.RSIWeekly), fmtPtr(t.Volatility), fmtPtr(t.Return1Y))
	}

	if r := a.Fundamental.Ratios; r != nil {
		fmt.Fprintf(&sb, `
Fundamental (%s, score %.0f):
- P/E: %s
- ROE: %s%%
- Debt/Equity: %s
- Net margin: %s%%
- Revenue growth: %s%%
`,
			a.Fundamental.Signal, a.Fundamental.Score,
			fmtPtr(r.PE), fmtPtr(r.ROEPct), fmtPtr(r.DebtToEquity),
			fmtPtr(r.ProfitMarginPct), fmtPtr(r.RevenueGrowthPct))
	}

	if a.Reasoning != "" {
		fmt.Fprintf(&sb, "\nRule notes: %s\n", a.Reasoning)
	}

	return sb.String()
}

func fmtPtr(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *v)
}

// Ensure Client implements GeminiClient
var _ interfaces.GeminiClient = (*Client)(nil)
