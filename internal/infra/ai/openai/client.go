package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/agentcy/internal/domain/ai"
)

const (
	DefaultModel = "gpt-4o-mini"

	maxTokens   = 2048
	temperature = 0.7
	topP        = 0.95
)

// Client is the alternate gateway backed by the chat completions API.
type Client struct {
	*openai.Client
	Model string
	// Timeout bounds one completion call; zero leaves it to ctx.
	Timeout time.Duration
}

func NewClient(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func isReasoningModel(model string) bool {
	return strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") ||
		strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5")
}

func (c *Client) Generate(ctx context.Context, systemInstruction, userContent string) (string, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	req := openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
	}
	// Reasoning models reject sampling parameters and MaxTokens.
	if isReasoningModel(c.Model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
		req.Temperature = temperature
		req.TopP = topP
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return ai.NoResponseText, nil
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps go-openai errors onto the gateway error kinds.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &ai.GatewayError{Status: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &ai.GatewayError{Status: reqErr.HTTPStatusCode, Body: string(reqErr.Body)}
	}
	return fmt.Errorf("%w: %v", ai.ErrGatewayUnavailable, err)
}
