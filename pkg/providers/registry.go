package providers

import (
	"time"

	"github.com/rotisserie/eris"
)

// Registry is the ordered list of providers an inquiry walks through.
// It is built once at startup and only read afterwards, so it needs no
// locking.
type Registry struct {
	order []Provider
	byKey map[string]Provider
}

// NewRegistry registers ps in the given order.
func NewRegistry(ps ...Provider) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Provider, len(ps))}
	for _, p := range ps {
		if err := r.register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) register(p Provider) error {
	if p == nil {
		return eris.New("providers: register nil provider")
	}
	key := p.Spec().Key
	if key == "" {
		return eris.New("providers: provider key is empty")
	}
	if _, dup := r.byKey[key]; dup {
		return eris.Wrapf(ErrDuplicateKey, "providers: %s", key)
	}
	r.byKey[key] = p
	r.order = append(r.order, p)
	return nil
}

// Get returns a provider by key.
func (r *Registry) Get(key string) (Provider, bool) {
	p, ok := r.byKey[key]
	return p, ok
}

// Providers returns the providers in priority order.
func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.order))
	copy(out, r.order)
	return out
}

// Specs returns the spec of every provider in priority order.
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, p.Spec())
	}
	return out
}

func (r *Registry) Len() int { return len(r.order) }

// Budget is the longest a full walk can take: the sum of every attempt
// timeout.
func (r *Registry) Budget() time.Duration {
	var d time.Duration
	for _, p := range r.order {
		t := p.Spec().Timeout
		if t <= 0 {
			t = DefaultTimeout
		}
		d += t
	}
	return d
}
