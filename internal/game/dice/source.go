package dice

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are cryptographically secure and uniformly
// distributed in [0, n) for any n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a cryptographically secure random float in [0, 1) with 53 bits of precision.
func (c *cryptoSource) Float64() float64 {
	return float64(c.Intn(1<<53)) / (1 << 53)
}

// seededSource is a PCG generator guarded by a mutex so independent operations
// may share it.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source: two sources built from the
// same seed produce the same draw sequence.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

// Intn returns a random int in [0, n).
//
// Precondition: n > 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// Float64 returns a random float in [0, 1).
func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Sequence is a replayable Source that returns recorded draws in order.
// Int and float draws are consumed from separate queues. Once a queue is
// exhausted its last value repeats; an empty queue yields 0.
//
// Intn results are reduced modulo n so every value stays in [0, n); Float64
// results are clamped into [0, 1).
type Sequence struct {
	mu     sync.Mutex
	ints   []int
	floats []float64
	ii     int
	fi     int
}

// NewSequence returns a Sequence replaying ints for Intn and floats for Float64.
func NewSequence(ints []int, floats []float64) *Sequence {
	return &Sequence{
		ints:   append([]int(nil), ints...),
		floats: append([]float64(nil), floats...),
	}
}

// Intn returns the next recorded int reduced into [0, n).
//
// Precondition: n > 0.
func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := next(s.ints, &s.ii)
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Float64 returns the next recorded float clamped into [0, 1).
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := next(s.floats, &s.fi)
	switch {
	case v < 0:
		return 0
	case v >= 1:
		return 1 - 1e-12
	}
	return v
}

// IntDraws reports how many Intn calls have been served.
func (s *Sequence) IntDraws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ii
}

// FloatDraws reports how many Float64 calls have been served.
func (s *Sequence) FloatDraws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fi
}

func next[T int | float64](vals []T, idx *int) T {
	var zero T
	if len(vals) == 0 {
		*idx++
		return zero
	}
	i := *idx
	if i >= len(vals) {
		i = len(vals) - 1
	}
	*idx++
	return vals[i]
}
