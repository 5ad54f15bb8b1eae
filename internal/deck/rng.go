package deck

// RandSource is the randomness interface the deck consumes. Intn must
// return a value in [0, n).
type RandSource interface {
	Intn(n int) int
}

// LCG constants. With these parameters the generator has full period
// over the 32-bit state space.
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgModulus    = 1 << 32
)

// LCG is a linear congruential generator. Hands are dealt from a fresh
// generator seeded with seed+handNumber so that any hand can be replayed
// exactly from those two numbers.
type LCG struct {
	state uint32
}

// NewLCG creates a generator seeded with the low 32 bits of seed
func NewLCG(seed int64) *LCG {
	return &LCG{state: uint32(seed)}
}

// Next advances the generator and returns a uniform fraction in [0, 1)
func (l *LCG) Next() float64 {
	l.state = uint32((uint64(l.state)*lcgMultiplier + lcgIncrement) % lcgModulus)
	return float64(l.state) / float64(lcgModulus)
}

// Intn returns floor(Next() * n), a value in [0, n). It panics if n <= 0.
func (l *LCG) Intn(n int) int {
	if n <= 0 {
		panic("deck: Intn called with non-positive n")
	}
	return int(l.Next() * float64(n))
}
