package random

import (
	"math/rand/v2"
)

// pcgStream derives the PCG stream from the seed so one int64 fully determines the source.
const pcgStream uint64 = 0xda3e39cb94b95bdb

// NewRand returns the random source used for a seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^pcgStream))
}

// Builder is the facade over typed generators sharing one random source.
//
// Generators returned by the unconstrained accessors are built once and reused.
// Range-constrained accessors build a new generator per call over the same source.
// A Builder is meant for one goroutine; concurrent draws break seed replay.
type Builder struct {
	rnd    *rand.Rand
	seed   int64
	seeded bool

	integers *Int[int]
	shorts   *Int[int16]
	longs    *Int[int64]
	doubles  *Double
	strings  *String
	dates    *Date
}

// New returns a Builder over rnd. It panics if rnd is nil.
func New(rnd *rand.Rand) *Builder {
	if rnd == nil {
		panic("random: nil random source")
	}
	b := &Builder{rnd: rnd}
	b.longs = NewInt(rnd, All[int64](), 1)
	b.integers = NewInt(rnd, All[int](), 1)
	b.shorts = NewInt(rnd, All[int16](), 1)
	b.doubles = NewDouble(rnd, DefaultDoublePlaces, All[float64]())
	b.strings = NewString(DefaultAlphabet, b.integers)
	b.dates = NewDate(b.longs)
	return b
}

// NewSeeded returns a Builder whose draws are fully determined by seed.
func NewSeeded(seed int64) *Builder {
	b := New(NewRand(seed))
	b.seed = seed
	b.seeded = true
	return b
}

// NewDefault resolves a seed with res (nil means process defaults) and returns a seeded Builder.
func NewDefault(res *SeedResolver) *Builder {
	seed, _ := res.Resolve()
	return NewSeeded(seed)
}

// Rand returns the shared random source.
func (b *Builder) Rand() *rand.Rand { return b.rnd }

// Seed returns the seed of the source, if the Builder was created from one.
func (b *Builder) Seed() (int64, bool) { return b.seed, b.seeded }

// Integers draws over the whole int range.
func (b *Builder) Integers() *Int[int] { return b.integers }

// IntegersIn draws ints inside r.
func (b *Builder) IntegersIn(r Range[int]) *Int[int] { return NewInt(b.rnd, r, 1) }

// Longs draws over the whole int64 range.
func (b *Builder) Longs() *Int[int64] { return b.longs }

// LongsIn draws int64 values inside r.
func (b *Builder) LongsIn(r Range[int64]) *Int[int64] { return NewInt(b.rnd, r, 1) }

// Shorts draws over the whole int16 range.
func (b *Builder) Shorts() *Int[int16] { return b.shorts }

// ShortsIn draws int16 values inside r.
func (b *Builder) ShortsIn(r Range[int16]) *Int[int16] { return NewInt(b.rnd, r, 1) }

// Doubles draws uniformly over [-MaxFloat64, MaxFloat64].
//
// Nearly every draw has a magnitude above 1e300, where float64 keeps no fractional
// digits, so DefaultDoublePlaces has no visible effect. Use DoublesIn for values
// with a fixed number of decimals.
func (b *Builder) Doubles() *Double { return b.doubles }

// DoublesWith draws over the whole float64 range; as with Doubles, places only
// affects the rare draws close to zero.
func (b *Builder) DoublesWith(places int) *Double {
	return NewDouble(b.rnd, places, All[float64]())
}

// DoublesIn draws float64 values inside r with the given decimals.
func (b *Builder) DoublesIn(places int, r Range[float64]) *Double {
	return NewDouble(b.rnd, places, r)
}

// Strings draws strings over DefaultAlphabet.
func (b *Builder) Strings() *String { return b.strings }

// StringsOf draws strings over alphabet.
func (b *Builder) StringsOf(alphabet string) *String { return NewString(alphabet, b.integers) }

// Dates draws instants from the long generator.
func (b *Builder) Dates() *Date { return b.dates }
