package random

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Int draws integers of kind T, uniformly over lower + k*step inside a range.
//
// Int shares its random source with the Builder that created it; it is not safe
// for concurrent use.
type Int[T Integer] struct {
	rnd   *rand.Rand
	rng   Range[T]
	lo    T
	step  uint64
	count uint64 // number of candidate values; 0 stands for 2^64
}

// NewInt returns a generator over r with the given step.
// It panics if rnd is nil, step is not positive or r contains no integer.
func NewInt[T Integer](rnd *rand.Rand, r Range[T], step T) *Int[T] {
	if rnd == nil {
		panic("random: nil random source")
	}
	if step <= 0 {
		panic(fmt.Sprintf("random: step must be positive, got %v", step))
	}
	lo, hi, ok := integerBounds(r)
	if !ok {
		panic(fmt.Errorf("%w: %v holds no integer", ErrInvalidRange, r))
	}

	// Unsigned arithmetic keeps the span exact for every signed kind.
	span := uint64(hi) - uint64(lo)
	return &Int[T]{
		rnd:   rnd,
		rng:   r,
		lo:    lo,
		step:  uint64(step),
		count: span/uint64(step) + 1,
	}
}

// Any returns one value.
func (g *Int[T]) Any() T {
	var k uint64
	if g.count == 0 {
		k = g.rnd.Uint64()
	} else {
		k = g.rnd.Uint64N(g.count)
	}
	return T(uint64(g.lo) + k*g.step)
}

// Slice returns n values.
func (g *Int[T]) Slice(n int) []T {
	if n < 0 {
		panic(fmt.Sprintf("random: negative size %d", n))
	}
	out := make([]T, n)
	for i := range out {
		out[i] = g.Any()
	}
	return out
}

// Some returns between 0 and limit values inclusive.
// It panics if limit is negative or math.MaxInt.
func (g *Int[T]) Some(limit int) []T {
	if limit < 0 {
		panic(fmt.Sprintf("random: negative size %d", limit))
	}
	if limit == math.MaxInt {
		panic(fmt.Sprintf("random: size limit %d too large", limit))
	}
	return g.Slice(g.rnd.IntN(limit + 1))
}

// Below returns a value in [0, n), ignoring the generator's range.
// It is used to index candidate lists. It panics if n <= 0.
func (g *Int[T]) Below(n T) T {
	if n <= 0 {
		panic(fmt.Sprintf("random: invalid bound %v", n))
	}
	return T(g.rnd.Uint64N(uint64(n)))
}

// Range returns the range the generator draws from.
func (g *Int[T]) Range() Range[T] { return g.rng }
