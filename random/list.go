package random

import (
	"fmt"
	"iter"
	"slices"
)

// List picks elements uniformly from a fixed candidate list, with replacement.
type List[E any] struct {
	values []E
	ints   *Int[int]
}

// NewList returns a picker over a copy of values.
// It panics if values is empty or ints is nil.
func NewList[E any](ints *Int[int], values []E) *List[E] {
	if ints == nil {
		panic("random: nil integer generator")
	}
	if len(values) == 0 {
		panic("random: no values to pick from")
	}
	return &List[E]{values: slices.Clone(values), ints: ints}
}

// Any returns one candidate.
func (l *List[E]) Any() E {
	return l.values[l.ints.Below(len(l.values))]
}

// Slice returns n candidates; repeats are expected.
func (l *List[E]) Slice(n int) []E {
	if n < 0 {
		panic(fmt.Sprintf("random: negative size %d", n))
	}
	out := make([]E, n)
	for i := range out {
		out[i] = l.Any()
	}
	return out
}

// Values returns a copy of the candidates.
func (l *List[E]) Values() []E { return slices.Clone(l.values) }

// Size returns the number of candidates.
func (l *List[E]) Size() int { return len(l.values) }

// Enum is implemented by enumeration types whose zero value lists every constant.
//
//	type Color int
//	func (Color) Values() []Color { return []Color{Red, Green, Blue} }
type Enum[E any] interface {
	Values() []E
}

// Array returns a picker over values.
func Array[E any](b *Builder, values ...E) *List[E] {
	return NewList(b.integers, values)
}

// Enums returns a picker over the constants of E.
func Enums[E Enum[E]](b *Builder) *List[E] {
	var zero E
	return NewList(b.integers, zero.Values())
}

// Iterable materializes seq once and returns a picker over its elements.
func Iterable[E any](b *Builder, seq iter.Seq[E]) *List[E] {
	return NewList(b.integers, slices.Collect(seq))
}

// Mix interleaves several sequences lazily.
//
// Each step picks one live source uniformly and yields its next element. A source
// that runs out is dropped; the sequence ends once every source is exhausted, so
// every element of every source is yielded exactly once, in per-source order.
func Mix[E any](b *Builder, seqs ...iter.Seq[E]) iter.Seq[E] {
	return func(yield func(E) bool) {
		type source struct {
			next func() (E, bool)
			stop func()
		}

		live := make([]source, 0, len(seqs))
		for _, seq := range seqs {
			if seq == nil {
				continue
			}
			next, stop := iter.Pull(seq)
			live = append(live, source{next: next, stop: stop})
		}
		defer func() {
			for _, s := range live {
				s.stop()
			}
		}()

		for len(live) > 0 {
			i := b.integers.Below(len(live))
			v, ok := live[i].next()
			if !ok {
				live[i].stop()
				live = slices.Delete(live, i, i+1)
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}
