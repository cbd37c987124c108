package random

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"unsafe"
)

// Integer is the set of integer kinds the integer generators draw.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Number is an Integer or a float64.
type Number interface {
	Integer | ~float64
}

// BoundType tells whether a range endpoint is included, excluded or absent.
type BoundType uint8

const (
	// Unbounded means the range extends to the natural limit of the kind.
	Unbounded BoundType = iota
	// Closed includes the endpoint.
	Closed
	// Open excludes the endpoint.
	Open
)

func (b BoundType) String() string {
	switch b {
	case Closed:
		return "closed"
	case Open:
		return "open"
	default:
		return "unbounded"
	}
}

// ErrInvalidRange is returned by NewRange for bounds that describe no values.
var ErrInvalidRange = errors.New("random: invalid range")

// Range is an interval over a numeric kind. The zero value is the unbounded range.
type Range[T Number] struct {
	Lower     T
	Upper     T
	LowerType BoundType
	UpperType BoundType
}

// NewRange validates and returns a range. Unbounded endpoints ignore their value.
func NewRange[T Number](lower T, lowerType BoundType, upper T, upperType BoundType) (Range[T], error) {
	r := Range[T]{Lower: lower, Upper: upper, LowerType: lowerType, UpperType: upperType}
	if lowerType == Unbounded || upperType == Unbounded {
		return r, nil
	}
	c := cmp.Compare(lower, upper)
	if c > 0 {
		return Range[T]{}, fmt.Errorf("%w: %v > %v", ErrInvalidRange, lower, upper)
	}
	if c == 0 && (lowerType == Open || upperType == Open) {
		return Range[T]{}, fmt.Errorf("%w: empty interval at %v", ErrInvalidRange, lower)
	}
	return r, nil
}

func mustRange[T Number](r Range[T], err error) Range[T] {
	if err != nil {
		panic(err)
	}
	return r
}

// ClosedRange is [lower, upper]. It panics if lower > upper.
func ClosedRange[T Number](lower, upper T) Range[T] {
	return mustRange(NewRange(lower, Closed, upper, Closed))
}

// OpenRange is (lower, upper). It panics if lower >= upper.
func OpenRange[T Number](lower, upper T) Range[T] {
	return mustRange(NewRange(lower, Open, upper, Open))
}

// ClosedOpen is [lower, upper). It panics if lower >= upper.
func ClosedOpen[T Number](lower, upper T) Range[T] {
	return mustRange(NewRange(lower, Closed, upper, Open))
}

// OpenClosed is (lower, upper]. It panics if lower >= upper.
func OpenClosed[T Number](lower, upper T) Range[T] {
	return mustRange(NewRange(lower, Open, upper, Closed))
}

// AtLeast is [lower, +inf).
func AtLeast[T Number](lower T) Range[T] {
	return Range[T]{Lower: lower, LowerType: Closed}
}

// AtMost is (-inf, upper].
func AtMost[T Number](upper T) Range[T] {
	return Range[T]{Upper: upper, UpperType: Closed}
}

// All is the unbounded range.
func All[T Number]() Range[T] { return Range[T]{} }

// Contains reports whether v lies in the range.
func (r Range[T]) Contains(v T) bool {
	switch r.LowerType {
	case Closed:
		if v < r.Lower {
			return false
		}
	case Open:
		if v <= r.Lower {
			return false
		}
	}
	switch r.UpperType {
	case Closed:
		if v > r.Upper {
			return false
		}
	case Open:
		if v >= r.Upper {
			return false
		}
	}
	return true
}

// String formats the range in interval notation, e.g. [1..10).
func (r Range[T]) String() string {
	lo, hi := "(-inf", "+inf)"
	switch r.LowerType {
	case Closed:
		lo = fmt.Sprintf("[%v", r.Lower)
	case Open:
		lo = fmt.Sprintf("(%v", r.Lower)
	}
	switch r.UpperType {
	case Closed:
		hi = fmt.Sprintf("%v]", r.Upper)
	case Open:
		hi = fmt.Sprintf("%v)", r.Upper)
	}
	return lo + ".." + hi
}

// integerBounds returns the inclusive endpoints of r for kind T, or ok=false if
// r contains no integer.
func integerBounds[T Integer](r Range[T]) (lo, hi T, ok bool) {
	lo, hi = minOf[T](), maxOf[T]()
	switch r.LowerType {
	case Closed:
		lo = r.Lower
	case Open:
		if r.Lower == maxOf[T]() {
			return 0, 0, false
		}
		lo = r.Lower + 1
	}
	switch r.UpperType {
	case Closed:
		hi = r.Upper
	case Open:
		if r.Upper == minOf[T]() {
			return 0, 0, false
		}
		hi = r.Upper - 1
	}
	return lo, hi, lo <= hi
}

// floatBounds returns the finite endpoints of r.
func floatBounds(r Range[float64]) (lo, hi float64) {
	lo, hi = -math.MaxFloat64, math.MaxFloat64
	if r.LowerType != Unbounded {
		lo = r.Lower
	}
	if r.UpperType != Unbounded {
		hi = r.Upper
	}
	return lo, hi
}

func maxOf[T Integer]() T {
	var zero T
	bits := 8 * unsafe.Sizeof(zero)
	return T(uint64(1)<<(bits-1) - 1)
}

func minOf[T Integer]() T {
	return -maxOf[T]() - 1
}
