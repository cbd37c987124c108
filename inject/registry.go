package inject

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/sghaida/magenta/fixture"
)

// Factory builds a forwarding proxy that calls resolve on every method invocation.
//
// The returned value must implement the interface the factory is registered for.
type Factory func(resolve func() fixture.Specification) any

// Registry maps capability interface types to proxy factories.
//
// Go cannot synthesize a type implementing an arbitrary interface at run time, so
// each capability interface needs an explicit forwarding type (usually generated by
// cmd/specproxy) registered here.
//
// Registration is expected during setup; lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[reflect.Type]Factory
}

// NewRegistry returns a registry that already knows how to proxy fixture.Specification.
func NewRegistry() *Registry {
	r := &Registry{factories: map[reflect.Type]Factory{}}
	MustProvide(r, func(resolve func() fixture.Specification) fixture.Specification {
		return specificationProxy{resolve: resolve}
	})
	return r
}

// Provide registers a proxy constructor for the capability interface S.
//
// build receives a resolver typed as S. The resolver panics with *ResolveError when
// the current specification does not implement S.
func Provide[S fixture.Specification](r *Registry, build func(resolve func() S) S) error {
	t := reflect.TypeFor[S]()
	if t.Kind() != reflect.Interface {
		return NotInterfaceError{Type: t.String()}
	}
	if build == nil {
		return ErrNilFactory
	}

	factory := func(resolve func() fixture.Specification) any {
		return build(func() S { return narrow[S](t, resolve()) })
	}
	return r.add(t, factory)
}

// MustProvide is Provide that panics on error.
// Useful for package-level registration where a failure is a programming mistake.
func MustProvide[S fixture.Specification](r *Registry, build func(resolve func() S) S) {
	if err := Provide(r, build); err != nil {
		panic(err)
	}
}

func (r *Registry) add(t reflect.Type, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.factories == nil {
		r.factories = map[reflect.Type]Factory{}
	}
	if _, exists := r.factories[t]; exists {
		return DuplicateProxyError{Type: t.String()}
	}
	r.factories[t] = f
	return nil
}

// Has reports whether a proxy factory is registered for t.
func (r *Registry) Has(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[t]
	return ok
}

// Build creates a proxy for the interface t and converts factory panics into errors.
func (r *Registry) Build(t reflect.Type, resolve func() fixture.Specification) (proxy any, err error) {
	if t == nil || t.Kind() != reflect.Interface {
		name := "<nil>"
		if t != nil {
			name = t.String()
		}
		return nil, NotInterfaceError{Type: name}
	}

	r.mu.RLock()
	f, ok := r.factories[t]
	r.mu.RUnlock()
	if !ok {
		return nil, MissingProxyError{Type: t.String()}
	}

	defer func() {
		if rec := recover(); rec != nil {
			proxy = nil
			err = fmt.Errorf("%w: %v", ErrFactoryPanic, rec)
		}
	}()

	proxy = f(resolve)
	if proxy == nil || !reflect.TypeOf(proxy).Implements(t) {
		return nil, fmt.Errorf("inject: factory for %s returned %T", t, proxy)
	}
	return proxy, nil
}

func narrow[S any](t reflect.Type, spec fixture.Specification) S {
	s, ok := spec.(S)
	if !ok {
		panic(&ResolveError{Expected: t.String(), Actual: typeName(spec)})
	}
	return s
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return reflect.TypeOf(v).String()
}

// specificationProxy forwards fixture.Specification to the resolved specification.
type specificationProxy struct {
	resolve func() fixture.Specification
}

func (p specificationProxy) DefaultNumberOfItems() int {
	return p.resolve().DefaultNumberOfItems()
}
