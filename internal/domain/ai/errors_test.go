package ai

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGatewayErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *GatewayError
		want string
	}{
		{"with body", &GatewayError{Status: 500, Body: `{"error":"boom"}`}, `ai gateway returned status 500: {"error":"boom"}`},
		{"empty body", &GatewayError{Status: 403, Body: "  "}, "ai gateway returned status 403"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestGatewayErrorTruncatesBody(t *testing.T) {
	err := &GatewayError{Status: 502, Body: strings.Repeat("x", 2000)}
	assert.True(t, strings.HasSuffix(err.Error(), "..."))
	assert.Less(t, len(err.Error()), 600)
}

func TestGatewayErrorAs(t *testing.T) {
	wrapped := fmt.Errorf("generate: %w", &GatewayError{Status: 429})
	var gwErr *GatewayError
	assert.True(t, errors.As(wrapped, &gwErr))
	assert.Equal(t, 429, gwErr.Status)
	assert.False(t, errors.Is(wrapped, ErrGatewayUnavailable))
}
