package lint

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps rule names to constructors. Rules are never registered
// implicitly; callers build the registry they lint with.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]func() Rule
}

// NewRegistry returns a registry holding the given rule constructors.
func NewRegistry(ctors ...func() Rule) (*Registry, error) {
	r := &Registry{ctors: map[string]func() Rule{}}
	for _, ctor := range ctors {
		if err := r.Register(ctor); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a rule constructor. The rule name comes from its Descriptor.
func (r *Registry) Register(ctor func() Rule) error {
	name := ctor().Descriptor().Name
	if name == "" {
		return fmt.Errorf("lint: rule has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ctors[name]; exists {
		return fmt.Errorf("lint: duplicate rule registration: %s", name)
	}
	r.ctors[name] = ctor
	return nil
}

// Get returns a new instance of the named rule.
func (r *Registry) Get(name string) (Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ctor, ok := r.ctors[name]
	if !ok {
		return nil, fmt.Errorf("lint: unknown rule: %s", name)
	}
	return ctor(), nil
}

// Names returns the sorted names of all registered rules.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
