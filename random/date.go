package random

import (
	"time"
)

// Date draws instants from epoch-millisecond offsets produced by a long generator.
type Date struct {
	longs *Int[int64]
}

// NewDate returns a date generator driven by longs. It panics if longs is nil.
func NewDate(longs *Int[int64]) *Date {
	if longs == nil {
		panic("random: nil long generator")
	}
	return &Date{longs: longs}
}

// Any returns an instant anywhere in the long generator's range, in UTC.
func (g *Date) Any() time.Time {
	return time.UnixMilli(g.longs.Any()).UTC()
}

// Between returns an instant in [from, to] at millisecond precision, in UTC.
// It panics if to is before from.
func (g *Date) Between(from, to time.Time) time.Time {
	r := ClosedRange(from.UnixMilli(), to.UnixMilli())
	return time.UnixMilli(NewInt(g.longs.rnd, r, 1).Any()).UTC()
}

// Slice returns n instants.
func (g *Date) Slice(n int) []time.Time {
	offsets := g.longs.Slice(n)
	out := make([]time.Time, 0, len(offsets))
	for _, ms := range offsets {
		out = append(out, time.UnixMilli(ms).UTC())
	}
	return out
}
