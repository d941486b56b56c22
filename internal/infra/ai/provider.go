// Package ai talks to the reasoning backends. Every backend speaks the
// OpenAI chat-completions dialect, so one adapter covers OpenAI, DeepSeek
// and local Ollama-style servers alike; the registry picks per seat and
// falls back when a backend is down.
package ai

import "context"

// Request is one completion call.
type Request struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Response is the raw text a backend returned, before any JSON repair.
type Response struct {
	Text       string
	TokensUsed int
}

// Provider is one reasoning backend.
type Provider interface {
	// Complete performs one call. Implementations honor ctx cancellation;
	// a canceled call returns ctx.Err().
	Complete(ctx context.Context, req Request) (*Response, error)
	// Name identifies the backend in logs and config.
	Name() string
	// Available reports whether the backend is configured and usable.
	Available() bool
}
