package brain

import (
	"context"
	"errors"
)

// ErrQuotaExceeded marks a backend refusal due to exhausted quota.
// Callers log it at a lower severity than other failures: it is an
// expected operating condition, not a bug signal.
var ErrQuotaExceeded = errors.New("generation quota exceeded")

// Provider is the interface for text-generation backends
type Provider interface {
	// Name returns the provider name (e.g., "gemini")
	Name() string

	// Available returns true if the provider is configured and ready
	Available() bool

	// Generate sends a prompt and returns the response
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is a prompt request to a provider
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64

	// JSONResponse asks the backend for a JSON-shaped reply
	JSONResponse bool
}

// Response is the provider's response
type Response struct {
	Content     string
	Model       string
	RawResponse string // The raw API response body for logging/debugging
}
