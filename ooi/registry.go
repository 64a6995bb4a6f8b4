package ooi

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Sentinel errors for registry operations.
var (
	// ErrTypeNotRegistered indicates that the requested object type is not in the registry.
	//
	// Example:
	//	desc, err := registry.Lookup("Unknown")
	//	if errors.Is(err, ooi.ErrTypeNotRegistered) {
	//	    log.Printf("unknown object type: %v", err)
	//	}
	ErrTypeNotRegistered = errors.New("object type not registered")

	// ErrInvalidDescriptor indicates that a TypeDescriptor could not be registered,
	// either because its name is invalid or because it is already present.
	ErrInvalidDescriptor = errors.New("invalid type descriptor")
)

// Category groups object types for filtering and display.
type Category string

const (
	// CategoryNetwork covers networks, addresses and ports.
	CategoryNetwork Category = "network"

	// CategoryDNS covers hostnames, zones and records.
	CategoryDNS Category = "dns"

	// CategoryWeb covers websites, URLs and HTTP resources.
	CategoryWeb Category = "web"

	// CategorySoftware covers services and software.
	CategorySoftware Category = "software"

	// CategoryFinding covers findings and finding types.
	CategoryFinding Category = "finding"
)

// TypeDescriptor is the static metadata of one object type variant.
// Relation fields hold references to other objects; every other field is scalar.
type TypeDescriptor struct {
	// Name is the object type tag used in references (e.g., "Hostname").
	Name string

	// Category groups the type for display.
	Category Category

	// NaturalKey lists the fields whose values make up the natural key, in order.
	NaturalKey []string

	// Relations lists the fields that reference other objects.
	Relations []string

	// Label renders a human readable label. Nil falls back to the natural key.
	Label func(*Object) string

	// InformationID returns the key used to join knowledge-base data.
	// Nil falls back to the type name.
	InformationID func(*Object) string
}

// IsRelation reports whether field is a relation field of this type.
func (d TypeDescriptor) IsRelation(field string) bool {
	for _, r := range d.Relations {
		if r == field {
			return true
		}
	}
	return false
}

func (d TypeDescriptor) label(o *Object) string {
	if d.Label != nil {
		if s := d.Label(o); s != "" {
			return s
		}
	}
	return o.Reference().NaturalKey()
}

func (d TypeDescriptor) informationID(o *Object) string {
	if d.InformationID != nil {
		if s := d.InformationID(o); s != "" {
			return s
		}
	}
	return d.Name
}

// TypeRegistry maps object type names to their descriptors.
//
// The registry is closed over the built-in variants but can be extended with
// Register, for example by deployments that ship extra object types.
type TypeRegistry interface {
	// Lookup returns the descriptor for name.
	// Returns ErrTypeNotRegistered if the type is unknown.
	Lookup(name string) (TypeDescriptor, error)

	// IsRegistered checks if a type exists in the registry.
	IsRegistered(name string) bool

	// Register adds a new descriptor. Re-registering a name is an error.
	Register(desc TypeDescriptor) error

	// AllTypes returns a sorted list of all registered type names.
	AllTypes() []string
}

// DefaultTypeRegistry is the default implementation of TypeRegistry.
// It is safe for concurrent use.
type DefaultTypeRegistry struct {
	mu       sync.RWMutex
	registry map[string]TypeDescriptor
}

// NewDefaultTypeRegistry creates a registry pre-populated with the built-in
// object types (see BuiltinTypes).
func NewDefaultTypeRegistry() *DefaultTypeRegistry {
	r := &DefaultTypeRegistry{
		registry: make(map[string]TypeDescriptor),
	}
	for _, desc := range BuiltinTypes() {
		r.registry[desc.Name] = desc
	}
	return r
}

// Lookup returns the descriptor registered under name.
func (r *DefaultTypeRegistry) Lookup(name string) (TypeDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, ok := r.registry[name]
	if !ok {
		return TypeDescriptor{}, fmt.Errorf("%w: %s", ErrTypeNotRegistered, name)
	}
	return desc, nil
}

// IsRegistered checks if a type exists in the registry.
func (r *DefaultTypeRegistry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.registry[name]
	return ok
}

// Register adds desc to the registry.
func (r *DefaultTypeRegistry) Register(desc TypeDescriptor) error {
	if !typePattern.MatchString(desc.Name) {
		return fmt.Errorf("%w: invalid name %q", ErrInvalidDescriptor, desc.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.registry[desc.Name]; exists {
		return fmt.Errorf("%w: %s already registered", ErrInvalidDescriptor, desc.Name)
	}
	r.registry[desc.Name] = desc
	return nil
}

// AllTypes returns a sorted list of all registered type names.
func (r *DefaultTypeRegistry) AllTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.registry))
	for name := range r.registry {
		types = append(types, name)
	}

	sort.Strings(types)
	return types
}

// Global registry instance for package-level access.
var (
	globalRegistry     TypeRegistry
	globalRegistryOnce sync.Once
	globalRegistryMu   sync.RWMutex
)

// Registry returns the global TypeRegistry, lazily initialized with the
// built-in types.
func Registry() TypeRegistry {
	globalRegistryOnce.Do(func() {
		globalRegistryMu.Lock()
		defer globalRegistryMu.Unlock()
		if globalRegistry == nil {
			globalRegistry = NewDefaultTypeRegistry()
		}
	})

	globalRegistryMu.RLock()
	defer globalRegistryMu.RUnlock()
	return globalRegistry
}

// SetRegistry replaces the global TypeRegistry.
// Intended for tests and for deployments with a custom taxonomy.
//
// Example (testing):
//
//	ooi.SetRegistry(custom)
//	defer ooi.SetRegistry(ooi.NewDefaultTypeRegistry())
func SetRegistry(registry TypeRegistry) {
	globalRegistryOnce.Do(func() {})

	globalRegistryMu.Lock()
	defer globalRegistryMu.Unlock()
	globalRegistry = registry
}

// describe returns the descriptor for name from the global registry, or a
// bare descriptor without relations for unknown types.
func describe(name string) TypeDescriptor {
	desc, err := Registry().Lookup(name)
	if err != nil {
		return TypeDescriptor{Name: name}
	}
	return desc
}
