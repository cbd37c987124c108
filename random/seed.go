package random

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	// SeedKey is the configuration key holding a fixed seed override.
	SeedKey = "magenta.random.seed"

	// SeedEnv is the environment variable consulted by EnvLookup for SeedKey.
	SeedEnv = "MAGENTA_RANDOM_SEED"
)

// L'Ecuyer, "Tables of Linear Congruential Generators of Different Sizes and
// Good Lattice Structure", 1999.
const (
	uniquifierStart      int64 = 8682522807148012
	uniquifierMultiplier int64 = 181783497276652981
)

// SeedSource tells where a resolved seed came from.
type SeedSource string

const (
	// SeedFromOverride means the seed was read from configuration.
	SeedFromOverride SeedSource = "override"
	// SeedDerived means the seed was computed from the uniquifier and the clock.
	SeedDerived SeedSource = "derived"
)

// Uniquifier is a multiplicative congruential counter that makes derived seeds
// differ even when the clock does not advance between two resolutions.
//
// The zero value starts from the canonical initial state. Safe for concurrent use.
type Uniquifier struct {
	state atomic.Int64
}

// NewUniquifier returns a Uniquifier in its initial state.
func NewUniquifier() *Uniquifier {
	u := &Uniquifier{}
	u.state.Store(uniquifierStart)
	return u
}

// Next advances the counter and returns the new value.
func (u *Uniquifier) Next() int64 {
	for {
		current := u.state.Load()
		if current == 0 {
			u.state.CompareAndSwap(0, uniquifierStart)
			continue
		}
		next := current * uniquifierMultiplier
		if u.state.CompareAndSwap(current, next) {
			return next
		}
	}
}

// processUniquifier is created once at package initialization and lives for the
// whole process; it needs no teardown.
var processUniquifier = NewUniquifier()

// ProcessUniquifier returns the uniquifier shared by every resolver in the process.
func ProcessUniquifier() *Uniquifier { return processUniquifier }

var clockBase = time.Now()

// MonotonicNanos returns a nanosecond reading from the monotonic clock.
func MonotonicNanos() int64 {
	return clockBase.UnixNano() + int64(time.Since(clockBase))
}

// EnvLookup reads SeedKey from the SeedEnv environment variable.
// Other keys map to upper-case, underscore separated variable names.
func EnvLookup(key string) (string, bool) {
	if key == SeedKey {
		return os.LookupEnv(SeedEnv)
	}
	return os.LookupEnv(strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
}

// SeedResolver decides the seed of a default Builder.
//
// A parseable override wins; otherwise the seed is Uniquifier.Next() XOR Clock().
// Either way the seed is logged so a failing run can be replayed by setting it as
// the override.
type SeedResolver struct {
	// Lookup reads configuration keys. Nil means EnvLookup.
	Lookup func(key string) (string, bool)
	// Uniquifier feeds derived seeds. Nil means ProcessUniquifier().
	Uniquifier *Uniquifier
	// Clock returns a high-resolution reading. Nil means MonotonicNanos.
	Clock func() int64
	// Logger receives seed diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// NewSeedResolver returns a resolver with process defaults and the given lookup and logger.
func NewSeedResolver(lookup func(string) (string, bool), logger *zap.Logger) *SeedResolver {
	return &SeedResolver{Lookup: lookup, Logger: logger}
}

// Resolve returns the seed and its source. It never fails: an unparsable override
// is logged and replaced by a derived seed.
func (r *SeedResolver) Resolve() (int64, SeedSource) {
	var (
		lookup = EnvLookup
		uniq   = ProcessUniquifier()
		clock  = MonotonicNanos
		log    = zap.NewNop()
	)
	if r != nil {
		if r.Lookup != nil {
			lookup = r.Lookup
		}
		if r.Uniquifier != nil {
			uniq = r.Uniquifier
		}
		if r.Clock != nil {
			clock = r.Clock
		}
		if r.Logger != nil {
			log = r.Logger
		}
	}

	log.Info("initializing random source")

	if raw, ok := lookup(SeedKey); ok {
		log.Info("seed override found", zap.String("key", SeedKey), zap.String("value", raw))
		seed, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err == nil {
			log.Info("random seed resolved", zap.Int64("seed", seed), zap.String("source", string(SeedFromOverride)))
			return seed, SeedFromOverride
		}
		log.Info("seed override is not a valid 64-bit integer, deriving a new seed",
			zap.String("value", raw), zap.Error(err))
	} else {
		log.Info("no seed override found, deriving a new seed; set it to replay a run",
			zap.String("key", SeedKey), zap.String("env", SeedEnv))
	}

	seed := uniq.Next() ^ clock()
	log.Info("random seed resolved", zap.Int64("seed", seed), zap.String("source", string(SeedDerived)))
	return seed, SeedDerived
}
