package at

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// HandlerFunc processes one parsed Command and returns its Response.
// Returning an error produces ERROR (or "+CME ERROR: <n>" when the error
// is a *CMEError); a Response with an empty Status is completed with OK.
//
// Handlers may block; the Dispatcher waits for the result and defers
// cancellation policy to the context the caller passed in.
type HandlerFunc func(ctx context.Context, cmd Command) (Response, error)

// Handlers is the capability set registered for one command name: one
// optional callable per command type. A nil entry means the type is not
// supported and dispatching it yields ErrCapabilityMismatch.
type Handlers struct {
	Execute HandlerFunc
	Read    HandlerFunc
	Set     HandlerFunc
	Test    HandlerFunc
}

// ForType returns the callable for the given command type, or nil.
func (h Handlers) ForType(t CommandType) HandlerFunc {
	switch t {
	case Read:
		return h.Read
	case Set:
		return h.Set
	case Test:
		return h.Test
	default:
		return h.Execute
	}
}

func (h Handlers) empty() bool {
	return h.Execute == nil && h.Read == nil && h.Set == nil && h.Test == nil
}

// Registry maps command names to handler capability sets. Names are
// matched case-insensitively, as V.250 requires.
//
// Lookups are safe for concurrent use; registration is typically done
// once at startup but may happen at runtime.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Handlers
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Handlers)}
}

// Register associates a command name with a capability set. It fails
// with ErrDuplicateHandler if the name is already registered; replacing
// an existing registration requires an explicit Replace call.
func (r *Registry) Register(name string, h Handlers) error {
	if h.empty() {
		return ErrNoCapabilities
	}
	key := strings.ToUpper(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[key]; exists {
		return ErrDuplicateHandler
	}
	r.entries[key] = h
	return nil
}

// Replace installs a capability set regardless of a previous
// registration for the name.
func (r *Registry) Replace(name string, h Handlers) error {
	if h.empty() {
		return ErrNoCapabilities
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[strings.ToUpper(name)] = h
	return nil
}

// Unregister removes the registration for name. It is idempotent:
// removing an absent name is not an error.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, strings.ToUpper(name))
}

// Lookup returns the capability set registered for name.
func (r *Registry) Lookup(name string) (Handlers, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.entries[strings.ToUpper(name)]
	return h, ok
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
