// Package random generates typed random values from one seeded source.
//
// A Builder exposes integer, short, long, double, string and date generators,
// plus generic pickers (Array, Enums, Iterable) and Mix for interleaving sequences:
//
//	b := random.NewDefault(random.NewSeedResolver(cfg.Lookup, logger))
//	age := b.IntegersIn(random.ClosedRange(18, 99)).Any()
//	name := b.Strings().OfLength(8)
//	color := random.Array(b, "red", "blue", "green").Any()
//
// NewDefault reads the seed from the "magenta.random.seed" key (environment variable
// MAGENTA_RANDOM_SEED by default) and logs the seed it settles on. Supplying the
// logged value as the override replays the run.
package random
