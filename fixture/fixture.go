// Package fixture defines the capability types shared by injection and generation.
//
// A Specification describes what data a fixture should contain. A Fixture is the
// live instance built from a specification. A Supplier resolves "the current fixture"
// on demand; injected proxies read through it on every call.
package fixture

import (
	"github.com/google/uuid"
)

// Specification is the base capability every injectable specification implements.
//
// Domain specifications are interfaces that embed Specification:
//
//	type UserSpec interface {
//		fixture.Specification
//		Names() []string
//	}
type Specification interface {
	// DefaultNumberOfItems is the number of items generated when no count is given.
	DefaultNumberOfItems() int
}

// Fixture is a live fixture built from a Specification.
type Fixture interface {
	Specification() Specification
}

// Supplier resolves the fixture that is current at call time.
type Supplier interface {
	Get() Fixture
}

// SupplierFunc adapts a plain function to Supplier.
type SupplierFunc func() Fixture

// Get implements Supplier.
func (f SupplierFunc) Get() Fixture { return f() }

// Static is a minimal Fixture holding a specification and an identity.
//
// It carries no data sets; storage and generation of data belong to the caller.
type Static struct {
	ID   uuid.UUID
	Name string
	spec Specification
}

// Option configures a Static fixture.
type Option func(*Static)

// WithName sets the fixture name.
func WithName(name string) Option {
	return func(s *Static) { s.Name = name }
}

// WithID sets an explicit fixture id instead of a random one.
func WithID(id uuid.UUID) Option {
	return func(s *Static) { s.ID = id }
}

// New returns a Static fixture for spec with a fresh random ID.
func New(spec Specification, opts ...Option) *Static {
	s := &Static{ID: uuid.New(), spec: spec}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.Name == "" {
		s.Name = s.ID.String()
	}
	return s
}

// Specification implements Fixture.
func (s *Static) Specification() Specification { return s.spec }

// Items is a plain Specification value for tests and simple domains.
type Items int

// DefaultNumberOfItems implements Specification.
func (n Items) DefaultNumberOfItems() int { return int(n) }
