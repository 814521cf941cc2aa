package wallet

import (
	"strings"
	"sync"
)

// Registry is an explicit collection of wallets owned by the driver. It is
// used for reporting only; wallets remain individually responsible for their
// own state.
type Registry struct {
	mu      sync.RWMutex
	wallets []*Wallet
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add registers a wallet. Duplicate names are allowed but make Get and
// RemoveByName ambiguous, so callers should keep names unique.
func (r *Registry) Add(w *Wallet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets = append(r.wallets, w)
}

// Remove drops the given wallet from the registry.
func (r *Registry) Remove(w *Wallet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, candidate := range r.wallets {
		if candidate == w {
			r.wallets = append(r.wallets[:i], r.wallets[i+1:]...)
			return
		}
	}
}

// RemoveByName drops the first wallet with the given name.
func (r *Registry) RemoveByName(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, candidate := range r.wallets {
		if candidate.Name() == name {
			r.wallets = append(r.wallets[:i], r.wallets[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the first wallet with the given name, or nil.
func (r *Registry) Get(name string) *Wallet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.Name() == name {
			return w
		}
	}
	return nil
}

// Wallets returns a snapshot of the registered wallets.
func (r *Registry) Wallets() []*Wallet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Wallet, len(r.wallets))
	copy(out, r.wallets)
	return out
}

// Names returns the names of the registered wallets in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.wallets))
	for i, w := range r.wallets {
		out[i] = w.Name()
	}
	return out
}

// Len returns the number of registered wallets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wallets)
}

// Report concatenates the status of every registered wallet.
func (r *Registry) Report() string {
	var sb strings.Builder
	for _, w := range r.Wallets() {
		sb.WriteString(w.Status())
	}
	return sb.String()
}
