// Package llm defines the model-provider capability the extraction engine
// consumes: send one multimodal message list, receive text plus optional
// usage metadata.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/entityxtract/entityxtract/internal/message"
)

// Usage is the provider-reported token accounting. Nil counts mean the
// provider returned no usage metadata; they are never reported as zero.
type Usage struct {
	InputTokens  *int
	OutputTokens *int
}

// Request is one completion request.
type Request struct {
	Model       string
	Temperature float32
	Messages    []message.Message
	// ForceJSON asks the provider for a strict-JSON-only response.
	ForceJSON bool
}

// Response is the provider's answer.
type Response struct {
	Content string
	Model   string
	Usage   Usage
}

// Provider is the LLM capability.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// ProviderError carries the transport-level outcome of a failed call.
type ProviderError struct {
	Status    int // HTTP status, 0 when the request never completed
	Body      string
	Retryable bool
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("provider request failed: %s", e.Body)
	}
	return fmt.Sprintf("provider status %d: %s", e.Status, e.Body)
}

// Retryable reports whether err is a transient condition worth another
// attempt: timeouts, transport failures, rate limits, server errors.
func Retryable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue)
}
