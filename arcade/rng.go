package arcade

// Source is the randomness the director draws from. Substitute a fixed
// sequence in tests to make spawns reproducible.
type Source interface {
	Float64() float64
}

// Mulberry32 is a small seeded generator; the same seed replays the same run.
type Mulberry32 struct {
	state uint32
	seed  uint32
}

// NewMulberry32 creates a generator starting at seed.
func NewMulberry32(seed uint32) *Mulberry32 {
	return &Mulberry32{state: seed, seed: seed}
}

// Reset rewinds to the initial seed.
func (r *Mulberry32) Reset() {
	r.state = r.seed
}

// Float64 returns a value in [0, 1).
func (r *Mulberry32) Float64() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

func between(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

func sample(src Source, r Range) float64 {
	return between(src, r.Min, r.Max)
}

// intBetween returns an int in [lo, hi].
func intBetween(src Source, lo, hi int) int {
	n := lo + int(src.Float64()*float64(hi-lo+1))
	if n > hi {
		n = hi
	}
	return n
}
