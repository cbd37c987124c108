package inject

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/sghaida/magenta/fixture"
)

const (
	// TagKey is the struct tag key that marks injection targets.
	TagKey = "magenta"
	// TagInject is the TagKey value requesting a specification proxy.
	TagInject = "inject"
)

var specificationType = reflect.TypeFor[fixture.Specification]()

// Handler writes specification proxies into tagged struct fields.
//
// A field is an injection target when it carries the tag `magenta:"inject"`:
//
//	type UserSuite struct {
//		Spec users.UserSpec `magenta:"inject"`
//	}
//
// The proxy stored in the field resolves supplier.Get().Specification() on every
// call, so it keeps tracking the current fixture after a single injection.
type Handler struct {
	registry *Registry
	logger   *zap.Logger
}

// NewHandler returns a Handler using r for proxy lookup (nil means NewRegistry()).
// A nil logger disables logging.
func NewHandler(r *Registry, logger *zap.Logger) *Handler {
	if r == nil {
		r = NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{registry: r, logger: logger}
}

// Registry returns the proxy registry used by the handler.
func (h *Handler) Registry() *Registry { return h.registry }

// Tagged reports whether field carries the injection tag.
func Tagged(field reflect.StructField) bool {
	v, ok := field.Tag.Lookup(TagKey)
	if !ok {
		return false
	}
	for _, part := range strings.Split(v, ",") {
		if strings.TrimSpace(part) == TagInject {
			return true
		}
	}
	return false
}

// Handle injects a proxy into field of target.
//
// It returns (false, nil) for untagged fields and leaves them untouched. For tagged
// fields it returns (true, nil) once the proxy has been written, or false with a
// *ConfigurationError when the field cannot be injected; the field is unchanged in
// that case. Calling Handle again on the same field overwrites it with a fresh proxy.
func (h *Handler) Handle(field reflect.StructField, target any, supplier fixture.Supplier) (bool, error) {
	if !Tagged(field) {
		return false, nil
	}

	cfgErr := func(owner string, reason Reason, cause error) error {
		return &ConfigurationError{
			Field:    field.Name,
			Owner:    owner,
			Expected: specificationType.String(),
			Actual:   typeString(field.Type),
			Reason:   reason,
			Err:      cause,
		}
	}

	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return false, cfgErr(typeName(target), ReasonInvalidTarget, nil)
	}
	owner := rv.Elem().Type()

	if field.Type == nil || !field.Type.Implements(specificationType) {
		return false, cfgErr(owner.String(), ReasonNotSpecification, nil)
	}
	if field.Type.Kind() != reflect.Interface {
		return false, cfgErr(owner.String(), ReasonNotInterface, nil)
	}

	declared, ok := owner.FieldByName(field.Name)
	if !ok || declared.Type != field.Type || !slices.Equal(declared.Index, field.Index) {
		return false, cfgErr(owner.String(), ReasonForeignField, nil)
	}

	fv, err := rv.Elem().FieldByIndexErr(field.Index)
	if err != nil {
		return false, cfgErr(owner.String(), ReasonNotSettable, err)
	}
	if !fv.CanSet() {
		return false, cfgErr(owner.String(), ReasonNotSettable, nil)
	}

	if supplier == nil {
		return false, ErrNilSupplier
	}

	proxy, err := h.registry.Build(field.Type, resolver(supplier))
	if err != nil {
		var missing MissingProxyError
		if errors.As(err, &missing) {
			return false, cfgErr(owner.String(), ReasonNoProxy, err)
		}
		return false, err
	}

	fv.Set(reflect.ValueOf(proxy))

	h.logger.Debug("injected specification proxy",
		zap.String("field", field.Name),
		zap.String("owner", owner.String()),
		zap.String("type", field.Type.String()),
	)
	return true, nil
}

// InjectFields calls Handle for every field declared directly on target's struct type.
//
// It stops at the first error and returns the number of fields injected so far.
func (h *Handler) InjectFields(target any, supplier fixture.Supplier) (int, error) {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return 0, &ConfigurationError{
			Owner:    typeName(target),
			Expected: specificationType.String(),
			Actual:   typeName(target),
			Reason:   ReasonInvalidTarget,
		}
	}

	t := rv.Elem().Type()
	injected := 0
	for i := 0; i < t.NumField(); i++ {
		handled, err := h.Handle(t.Field(i), target, supplier)
		if err != nil {
			return injected, err
		}
		if handled {
			injected++
		}
	}
	return injected, nil
}

// Proxy returns a forwarding S for explicit constructor or setter injection.
func Proxy[S fixture.Specification](r *Registry, supplier fixture.Supplier) (S, error) {
	var zero S
	if supplier == nil {
		return zero, ErrNilSupplier
	}
	if r == nil {
		r = NewRegistry()
	}
	p, err := r.Build(reflect.TypeFor[S](), resolver(supplier))
	if err != nil {
		return zero, err
	}
	return p.(S), nil
}

// resolver reads the current specification at call time; nothing is cached.
func resolver(supplier fixture.Supplier) func() fixture.Specification {
	return func() fixture.Specification {
		f := supplier.Get()
		if f == nil {
			panic(ErrNoCurrentFixture)
		}
		return f.Specification()
	}
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
