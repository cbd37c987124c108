// Package magenta provides injectable test-data specifications and seeded random data.
//
// The module is split into small packages:
//
//   - fixture: Specification, Fixture and Supplier, plus Context which owns the current fixture
//   - inject: the proxy Registry and the field Handler for `magenta:"inject"` fields
//   - random: a seeded Builder of typed, range-constrained generators and seed resolution
//   - config: optional YAML/TOML file plus environment overrides, and logger construction
//   - cmd/specproxy: generates forwarding proxies for capability interfaces
//   - examples/users: end-to-end usage
//
// An injected field never holds fixture data. It holds a proxy that looks up the
// current fixture on every call, so switching fixtures changes what the field returns:
//
//	ctx := fixture.NewContext(fixture.New(&users.Fixed{...}))
//	reg := inject.NewRegistry()
//	_ = users.RegisterUserSpecProxy(reg)
//
//	var tc struct {
//		Users users.UserSpec `magenta:"inject"`
//	}
//	_, _ = inject.NewHandler(reg, logger).InjectFields(&tc, ctx)
//
// Random draws are replayable: the seed is logged at startup and can be pinned with
// MAGENTA_RANDOM_SEED or magenta.random.seed in a config file.
package magenta
