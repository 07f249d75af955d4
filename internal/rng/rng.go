// internal/rng/rng.go
//
// Deterministic random source for the daily target rotation.
// Responsibilities:
//   - Park–Miller "minimal standard" LCG (multiplier 16807, modulus 2^31−1).
//   - Fisher–Yates shuffle driven by that generator.
//   - 32-bit string hash used to turn a fixed seed string into a seed.
//
// Every client must derive the same permutation from the same seed, so nothing
// here may depend on math/rand, the clock, or the platform word size.
package rng

import (
	"errors"
	"math"
	"unicode/utf16"
)

const (
	multiplier = 16807
	modulus    = 2147483647 // 2^31 − 1
)

// ErrDegenerateSeed is returned for seeds that would lock the generator at zero.
var ErrDegenerateSeed = errors.New("rng: seed is congruent to zero")

// Lehmer is a Park–Miller linear congruential generator.
type Lehmer struct {
	state int64
}

// NewLehmer seeds a generator. The seed must not be a multiple of 2^31−1.
func NewLehmer(seed int64) (*Lehmer, error) {
	if seed%modulus == 0 {
		return nil, ErrDegenerateSeed
	}
	return &Lehmer{state: seed}, nil
}

// Next advances the state and returns it.
// state < 2^32 and multiplier < 2^15, so the product never overflows int64.
func (l *Lehmer) Next() int64 {
	l.state = (l.state * multiplier) % modulus
	return l.state
}

// Float64 returns the next draw scaled into [0,1).
func (l *Lehmer) Float64() float64 {
	return float64(l.Next()-1) / float64(modulus-1)
}

// Intn returns floor(Float64() * n).
func (l *Lehmer) Intn(n int) int {
	return int(math.Floor(l.Float64() * float64(n)))
}

// Shuffle returns a permutation of items fully determined by seed.
// The input slice is left untouched.
func Shuffle[T any](items []T, seed int64) ([]T, error) {
	g, err := NewLehmer(seed)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := g.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// HashString folds s into a non-negative seed with h = h*31 + c over UTF-16
// code units, wrapping to signed 32 bits at every step. The absolute value is
// taken in 64 bits so math.MinInt32 stays positive.
func HashString(s string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}
