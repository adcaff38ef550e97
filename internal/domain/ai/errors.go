package ai

import (
	"errors"
	"fmt"
	"strings"
)

// NoResponseText is returned in place of model output when the gateway
// answers successfully but carries no extractable candidate text.
const NoResponseText = "No response generated"

// ErrGatewayUnavailable indicates the AI gateway could not be reached (DNS, refused connection, timeout).
var ErrGatewayUnavailable = errors.New("ai gateway unavailable")

const maxErrorBody = 512

// GatewayError is a non-2xx answer from the AI gateway.
type GatewayError struct {
	Status int
	Body   string
}

func (e *GatewayError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	if body == "" {
		return fmt.Sprintf("ai gateway returned status %d", e.Status)
	}
	return fmt.Sprintf("ai gateway returned status %d: %s", e.Status, body)
}
