package random

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// DefaultDoublePlaces is the decimal truncation of Builder.Doubles.
const DefaultDoublePlaces = 8

const maxDoubleAttempts = 64

// maxExactScaled bounds scaled values whose integer part float64 holds exactly.
const maxExactScaled = 1 << 53

// Double draws float64 values inside a range, truncated to a number of decimal places.
//
// When both scaled bounds fit in 53 bits, draws are uniform over the in-range multiples
// of 10^-places. Otherwise values are sampled across the range and truncated where
// their magnitude still has fractional digits; far from zero no truncation applies.
type Double struct {
	rnd    *rand.Rand
	rng    Range[float64]
	places int
	lo, hi float64
	scale  float64

	grid     bool
	kLo, kHi float64 // scaled first and last in-range grid values
}

// NewDouble returns a generator over r truncating to places decimals.
// It panics if rnd is nil, places is negative, r has NaN or reversed bounds, or r
// holds no value with places decimals.
func NewDouble(rnd *rand.Rand, places int, r Range[float64]) *Double {
	if rnd == nil {
		panic("random: nil random source")
	}
	if places < 0 {
		panic(fmt.Sprintf("random: negative decimal places %d", places))
	}
	lo, hi := floatBounds(r)
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		panic(fmt.Errorf("%w: %v", ErrInvalidRange, r))
	}

	g := &Double{rnd: rnd, rng: r, places: places, lo: lo, hi: hi, scale: math.Pow10(places)}
	sLo, sHi := lo*g.scale, hi*g.scale
	if math.Abs(sLo) >= maxExactScaled || math.Abs(sHi) >= maxExactScaled {
		return g
	}

	// Start one step outside the scaled bounds; rounding of lo*scale can hide the edge value.
	kLo, kHi := math.Ceil(sLo)-1, math.Floor(sHi)+1
	for i := 0; i < 4 && !r.Contains(kLo/g.scale); i++ {
		kLo++
	}
	for i := 0; i < 4 && !r.Contains(kHi/g.scale); i++ {
		kHi--
	}
	if kLo > kHi || !r.Contains(kLo/g.scale) || !r.Contains(kHi/g.scale) {
		panic(fmt.Errorf("%w: %v holds no value with %d decimals", ErrInvalidRange, r, places))
	}
	g.grid, g.kLo, g.kHi = true, kLo, kHi
	return g
}

// Any returns one value inside the range.
func (g *Double) Any() float64 {
	if g.grid {
		k := g.kLo + float64(g.rnd.Int64N(int64(g.kHi-g.kLo)+1))
		return k / g.scale
	}
	if g.lo == g.hi {
		return g.lo
	}
	for i := 0; i < maxDoubleAttempts; i++ {
		f := g.rnd.Float64()
		// Weighted sum instead of lo+f*(hi-lo): the span of the full range overflows.
		v := g.truncate(g.lo*(1-f) + g.hi*f)
		if g.rng.Contains(v) {
			return v
		}
	}
	return g.truncate(g.lo/2 + g.hi/2)
}

// truncate drops digits past the configured places. When the truncated value leaves
// the range it tries the neighbouring multiple instead, and keeps v if neither fits.
func (g *Double) truncate(v float64) float64 {
	scaled := v * g.scale
	if math.IsInf(scaled, 0) || math.Abs(scaled) >= maxExactScaled {
		return v
	}
	for _, t := range [...]float64{math.Trunc(scaled), math.Ceil(scaled), math.Floor(scaled)} {
		if c := t / g.scale; g.rng.Contains(c) {
			return c
		}
	}
	return v
}

// Slice returns n values.
func (g *Double) Slice(n int) []float64 {
	if n < 0 {
		panic(fmt.Sprintf("random: negative size %d", n))
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = g.Any()
	}
	return out
}

// Places returns the number of decimal places kept.
func (g *Double) Places() int { return g.places }

// Range returns the range the generator draws from.
func (g *Double) Range() Range[float64] { return g.rng }
