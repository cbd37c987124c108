package inject

import (
	"errors"
	"strconv"
)

var (
	// ErrConfiguration matches every *ConfigurationError via errors.Is.
	ErrConfiguration = errors.New("inject: invalid injection configuration")

	// ErrNilSupplier is returned when Handle or Proxy receive a nil fixture supplier.
	ErrNilSupplier = errors.New("inject: nil fixture supplier")

	// ErrNilFactory is returned when Provide is called with a nil proxy factory.
	ErrNilFactory = errors.New("inject: nil proxy factory")

	// ErrFactoryPanic is returned if a proxy factory panics while building.
	ErrFactoryPanic = errors.New("inject: panic during proxy construction")

	// ErrNoCurrentFixture is panicked by a proxy whose supplier resolved no fixture.
	ErrNoCurrentFixture = errors.New("inject: supplier resolved no current fixture")
)

// Reason classifies a ConfigurationError.
type Reason string

const (
	// ReasonNotSpecification means the tagged field's type does not implement the specification capability.
	ReasonNotSpecification Reason = "type does not implement the specification capability"
	// ReasonNotInterface means the field's type implements the capability but is concrete,
	// so no forwarding proxy can be stored in it.
	ReasonNotInterface Reason = "declared type must be an interface to be proxied"
	// ReasonInvalidTarget means the target is not a non-nil pointer to a struct.
	ReasonInvalidTarget Reason = "target is not a non-nil pointer to a struct"
	// ReasonForeignField means the field does not belong to the target's struct type.
	ReasonForeignField Reason = "field is not declared on the target struct"
	// ReasonNotSettable means the field is unexported or otherwise cannot be assigned.
	ReasonNotSettable Reason = "field cannot be set (unexported)"
	// ReasonNoProxy means no forwarding proxy is registered for the field's interface.
	ReasonNoProxy Reason = "no forwarding proxy registered for this interface"
)

// ConfigurationError reports a tagged field that cannot receive a specification proxy.
//
// It is a programmer error: the field, its owner or the registry must be fixed.
type ConfigurationError struct {
	// Field is the struct field name.
	Field string
	// Owner is the declaring struct type (or the target type when it is invalid).
	Owner string
	// Expected is the capability the field must satisfy.
	Expected string
	// Actual is the field's declared type.
	Actual string
	// Reason classifies the failure.
	Reason Reason
	// Err is an underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	// Example: inject: field "Spec" on suite.UserSuite is tagged magenta:"inject" but its type
	// should implement fixture.Specification instead of int
	head := "inject: field " + strconv.Quote(e.Field) + " on " + e.Owner + " is tagged " + TagKey + ":" + strconv.Quote(TagInject)
	if e.Reason == ReasonNotSpecification {
		return head + " but its type should implement " + e.Expected + " instead of " + e.Actual
	}
	msg := head + " but " + string(e.Reason) + " (expected " + e.Expected + ", got " + e.Actual + ")"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ConfigurationError) Unwrap() error { return e.Err }

// Is makes every ConfigurationError match ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// DuplicateProxyError is returned when a proxy factory is registered twice for one interface.
type DuplicateProxyError struct{ Type string }

// Error implements the error interface.
func (e DuplicateProxyError) Error() string {
	// Example: inject: duplicate proxy for "users.UserSpec"
	return "inject: duplicate proxy for " + strconv.Quote(e.Type)
}

// MissingProxyError is returned when no proxy factory exists for an interface.
type MissingProxyError struct{ Type string }

// Error implements the error interface.
func (e MissingProxyError) Error() string {
	// Example: inject: proxy for "users.UserSpec" missing
	return "inject: proxy for " + strconv.Quote(e.Type) + " missing"
}

// NotInterfaceError is returned when a proxy is registered or requested for a
// type that is not an interface.
type NotInterfaceError struct{ Type string }

// Error implements the error interface.
func (e NotInterfaceError) Error() string {
	return "inject: " + strconv.Quote(e.Type) + " is not an interface type"
}

// ResolveError is panicked by a proxy when the current specification does not
// implement the proxied interface.
type ResolveError struct {
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	return "inject: current specification " + e.Actual + " does not implement " + e.Expected
}
