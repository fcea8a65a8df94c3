package resilience

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Health is a point-in-time snapshot of a provider's state, surfaced through
// the ops status endpoint.
type Health struct {
	Name          string
	CircuitState  gobreaker.State
	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// Healthy reports whether the provider's breaker is closed.
func (h Health) Healthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// Registry tracks the resilient clients in use and their recent outcomes.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

func (r *Registry) register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &registryEntry{client: client}
}

func (r *Registry) noteSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		now := time.Now()
		e.lastSuccessAt = &now
	}
}

func (r *Registry) noteFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[name]; ok {
		now := time.Now()
		e.lastFailureAt = &now
		e.lastError = err.Error()
	}
}

// Snapshot returns the health of every registered provider.
func (r *Registry) Snapshot() []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, 0, len(r.entries))
	for name, e := range r.entries {
		out = append(out, Health{
			Name:          name,
			CircuitState:  e.client.BreakerState(),
			LastSuccessAt: e.lastSuccessAt,
			LastFailureAt: e.lastFailureAt,
			LastError:     e.lastError,
		})
	}
	return out
}
