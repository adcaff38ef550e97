package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/agentcy/internal/domain/ai"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"

	temperature     = 0.7
	topK            = 40
	topP            = 0.95
	maxOutputTokens = 2048
)

// Config for the generateContent REST client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout of zero leaves the call unbounded; callers bound it through ctx.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client calls the models/<model>:generateContent endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: hc,
		logger:     logger,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content *content `json:"content"`
	} `json:"candidates"`
}

// newRequestBody joins the instruction and the operator text into a single user part.
func newRequestBody(systemInstruction, userContent string) generateRequest {
	return generateRequest{
		Contents: []content{
			{Parts: []part{{Text: systemInstruction + "\n\n" + userContent}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			TopK:            topK,
			TopP:            topP,
			MaxOutputTokens: maxOutputTokens,
		},
	}
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
}

// Generate performs one attempt against the gateway.
func (c *Client) Generate(ctx context.Context, systemInstruction, userContent string) (string, error) {
	payload, err := json.Marshal(newRequestBody(systemInstruction, userContent))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("gateway request failed", zap.String("model", c.model), zap.Error(redact(err)))
		return "", fmt.Errorf("%w: %v", ai.ErrGatewayUnavailable, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ai.ErrGatewayUnavailable, err)
	}

	c.logger.Debug("gateway responded",
		zap.String("model", c.model),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ai.GatewayError{Status: resp.StatusCode, Body: string(body)}
	}
	return extractText(body, c.logger), nil
}

// extractText returns candidates[0].content.parts[0].text, or the sentinel
// when any step of that path is missing.
func extractText(body []byte, logger *zap.Logger) string {
	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		logger.Warn("gateway returned undecodable body", zap.Error(err))
		return ai.NoResponseText
	}
	if len(out.Candidates) == 0 {
		return ai.NoResponseText
	}
	first := out.Candidates[0].Content
	if first == nil || len(first.Parts) == 0 {
		return ai.NoResponseText
	}
	return first.Parts[0].Text
}

// redact strips the query string (and with it the API key) from url errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if u, perr := url.Parse(uerr.URL); perr == nil {
			u.RawQuery = ""
			return &url.Error{Op: uerr.Op, URL: u.String(), Err: uerr.Err}
		}
	}
	return err
}
