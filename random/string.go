package random

import (
	"fmt"
	"math"
	"strings"
)

// DefaultAlphabet is the alphabet of Builder.Strings.
const DefaultAlphabet = "qwertyuiopasdfghjklzxcvbnm0123456789"

const (
	defaultMinLength = 1
	defaultMaxLength = 16
)

// String draws strings whose characters come from a fixed alphabet.
type String struct {
	alphabet []rune
	ints     *Int[int]
}

// NewString returns a generator over alphabet using ints to pick characters.
// It panics if alphabet is empty or ints is nil.
func NewString(alphabet string, ints *Int[int]) *String {
	if alphabet == "" {
		panic("random: empty alphabet")
	}
	if ints == nil {
		panic("random: nil integer generator")
	}
	return &String{alphabet: []rune(alphabet), ints: ints}
}

// OfLength returns a string of exactly n characters.
func (g *String) OfLength(n int) string {
	if n < 0 {
		panic(fmt.Sprintf("random: negative length %d", n))
	}
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteRune(g.alphabet[g.ints.Below(len(g.alphabet))])
	}
	return sb.String()
}

// Between returns a string whose length is drawn from [minLen, maxLen].
func (g *String) Between(minLen, maxLen int) string {
	if minLen < 0 || maxLen < minLen {
		panic(fmt.Sprintf("random: invalid length bounds [%d, %d]", minLen, maxLen))
	}
	if maxLen-minLen == math.MaxInt {
		panic(fmt.Sprintf("random: length bounds [%d, %d] too wide", minLen, maxLen))
	}
	return g.OfLength(minLen + g.ints.Below(maxLen-minLen+1))
}

// Any returns a string of 1 to 16 characters.
func (g *String) Any() string {
	return g.Between(defaultMinLength, defaultMaxLength)
}

// Slice returns n strings of Any length.
func (g *String) Slice(n int) []string {
	if n < 0 {
		panic(fmt.Sprintf("random: negative size %d", n))
	}
	out := make([]string, n)
	for i := range out {
		out[i] = g.Any()
	}
	return out
}

// Alphabet returns the characters the generator picks from.
func (g *String) Alphabet() string { return string(g.alphabet) }
