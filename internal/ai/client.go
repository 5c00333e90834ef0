// Package ai wraps the Gemini API behind a small completion interface
// and builds BoxBee's coaching features on top of it. Every feature
// degrades to a canned fallback when the model is unavailable or
// returns something unparseable.
package ai

import "context"

// Client produces a single text completion. Implementations must be
// safe for concurrent use.
type Client interface {
	// Available reports whether completions can be attempted at all.
	Available() bool

	// Complete sends one prompt under a system instruction and returns
	// the raw model text.
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Disabled is the Client used when no API key is configured.
type Disabled struct{}

func (Disabled) Available() bool { return false }

func (Disabled) Complete(ctx context.Context, system, prompt string) (string, error) {
	return "", ErrUnavailable
}
