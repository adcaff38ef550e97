package ai

import "context"

// Client is the single outbound call to a generative model.
type Client interface {
	Generate(ctx context.Context, systemInstruction, userContent string) (string, error)
}
