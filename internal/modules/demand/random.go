package demand

import (
	"math"
	"math/rand/v2"
	"time"
)

// Random is the pseudo-random source consumed by the generator.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	IntN(n int) int
	Float64() float64
}

// NewSeededRandom returns a deterministic source for a seed.
func NewSeededRandom(seed int64) Random {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// NewRandom returns a time-seeded source.
func NewRandom() Random {
	return NewSeededRandom(time.Now().UnixNano())
}

// unitOpenZero returns a uniform draw in (0, 1].
func unitOpenZero(r Random) float64 {
	return 1 - r.Float64()
}

// Gaussian returns a standard normal draw using the Box-Muller transform.
func Gaussian(r Random) float64 {
	u := unitOpenZero(r)
	v := unitOpenZero(r)
	return math.Sqrt(-2*math.Log(u)) * math.Cos(2*math.Pi*v)
}

// Chance reports true with probability p.
func Chance(r Random, p float64) bool {
	return r.Float64() < p
}

// Coin is a fair uniform coin flip.
func Coin(r Random) bool {
	return r.IntN(2) == 0
}
