package provider

import (
	"fmt"

	"github.com/Techtuskers-redefined/shopgenie/internal/auth"
)

// Registry holds all configured federated providers and allows
// lookup by provider name. It performs no auth logic itself.
type Registry struct {
	providers map[string]auth.Verifier
}

// NewRegistry registers the given providers by name.
// Provider names must be unique.
func NewRegistry(list ...auth.Verifier) *Registry {
	m := make(map[string]auth.Verifier)
	for _, p := range list {
		m[p.Name()] = p
	}
	return &Registry{providers: m}
}

// Get returns the provider by name or an error if not registered.
func (r *Registry) Get(name string) (auth.Verifier, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown federated provider: %s", name)
	}
	return p, nil
}
