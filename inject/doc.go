// Package inject writes specification proxies into test objects.
//
// A proxy implements a capability interface (an interface embedding
// fixture.Specification) and forwards each call to the specification of the
// fixture that is current at call time. Inject once, then switch fixtures freely:
//
//	r := inject.NewRegistry()
//	users.RegisterUserSpecProxy(r) // generated by cmd/specproxy
//
//	h := inject.NewHandler(r, logger)
//	if _, err := h.InjectFields(suite, ctx); err != nil {
//		// a tagged field cannot be injected; fix the struct or the registry
//	}
//
// Fields opt in with the tag `magenta:"inject"`. The Handler refuses tagged fields
// whose type is not a registered capability interface with a *ConfigurationError.
//
// Proxies are explicit forwarding types, one per interface, registered in a Registry.
// Errors and panics from the real specification pass through the proxy unchanged.
package inject
