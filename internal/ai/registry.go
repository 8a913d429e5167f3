package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ProviderFactory builds a provider configured for one model. Construction is
// cheap (providers are stateless HTTP clients), so conversations get a fresh
// instance per turn rather than a shared one.
type ProviderFactory func(ctx context.Context, model string) (Provider, error)

// Registry routes conversations to a provider by name. Factories are
// registered during startup; there is no ambient default instance.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[normalize(name)] = f
}

// Get builds a provider for the given name and model. Unknown names are an
// error; the caller decides whether that degrades the turn or fails it.
func (r *Registry) Get(ctx context.Context, name, model string) (Provider, error) {
	r.mu.RLock()
	f, ok := r.factories[normalize(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %s", name)
	}
	return f(ctx, model)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
