package ai

import (
	"context"
	"fmt"

	"github.com/renlu07/wolf-arena/internal/platform/logger"
)

// Registry routes completion calls to named providers and retries a
// failed call once against the fallback. Seats are pinned to a provider
// at setup; the fallback keeps a match alive when that backend degrades
// mid-game.
type Registry struct {
	providers map[string]Provider
	fallback  string
	log       *logger.Logger
}

// NewRegistry builds a registry. fallback names the provider used when a
// pinned provider is missing, unavailable or errors out.
func NewRegistry(fallback string, log *logger.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		fallback:  fallback,
		log:       log,
	}
}

// Register adds a provider under its own name.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the named provider if it is registered and available,
// otherwise the fallback.
func (r *Registry) Get(name string) (Provider, error) {
	if p, ok := r.providers[name]; ok && p.Available() {
		return p, nil
	}
	if p, ok := r.providers[r.fallback]; ok && p.Available() {
		return p, nil
	}
	return nil, fmt.Errorf("no available provider for %q and no fallback", name)
}

// Complete routes one call, falling back once on error. Context errors
// are not retried: a canceled turn is not worth a second backend call.
func (r *Registry) Complete(ctx context.Context, providerName string, req Request) (*Response, error) {
	p, err := r.Get(providerName)
	if err != nil {
		return nil, err
	}

	resp, err := p.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	fb, ok := r.providers[r.fallback]
	if !ok || fb.Name() == p.Name() || !fb.Available() {
		return nil, err
	}
	r.log.Warn("provider failed, falling back", "provider", p.Name(), "fallback", fb.Name(), "error", err)
	return fb.Complete(ctx, req)
}
