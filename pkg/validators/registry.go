package validators

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-txform/pkg/field"
)

// Built-in registry names.
const (
	NameText    = "text"
	NameAddress = "address"
	NameBalance = "balance"
)

// Registry stores validators by name so CLI flags and config files can refer
// to them.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]field.Validator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[string]field.Validator),
	}
}

// Defaults configures NewDefaultRegistry.
type Defaults struct {
	Address       AddressConfig
	Denominations Denominations
	Text          TextOptions
}

// NewDefaultRegistry registers the text, address and balance validators.
func NewDefaultRegistry(d Defaults) *Registry {
	r := NewRegistry()
	r.MustRegister(NameText, Text(d.Text))
	r.MustRegister(NameAddress, Address(d.Address))
	r.MustRegister(NameBalance, Balance(d.Denominations))
	return r
}

// Register adds a validator. Duplicate names return an error.
func (r *Registry) Register(name string, v field.Validator) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("validators: validator name is required")
	}
	if v == nil {
		return fmt.Errorf("validators: validator %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.validators[name]; exists {
		return fmt.Errorf("validators: validator %q already registered", name)
	}
	r.validators[name] = v
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(name string, v field.Validator) {
	if err := r.Register(name, v); err != nil {
		panic(err)
	}
}

// Get retrieves a validator by name.
func (r *Registry) Get(name string) (field.Validator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.validators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return v, nil
}

// List returns the registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.validators[name]
	return ok
}
