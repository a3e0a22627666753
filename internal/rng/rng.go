// Package rng holds the randomness helpers threaded through genesis and
// breeding. Every draw goes through a Source so a seed reproduces a run.
package rng

import (
	"math/rand"
	"sync"
)

// Source is the subset of *rand.Rand the engine draws from.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// New returns a deterministic source for seed.
func New(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// IntRange returns an integer in [min, max). It returns min when the range is
// empty.
func IntRange(src Source, min, max int) int {
	if max <= min {
		return min
	}
	return min + src.Intn(max-min)
}

// IntInclusive returns an integer in [min, max].
func IntInclusive(src Source, min, max int) int {
	return IntRange(src, min, max+1)
}

// Float returns a float in [min, max).
func Float(src Source, min, max float64) float64 {
	return src.Float64()*(max-min) + min
}

// Bool reports true with probability rate. A rate of 0 never fires and a rate
// of 1 always does.
func Bool(src Source, rate float64) bool {
	return src.Float64() < rate
}

// Coin is Bool with an even rate.
func Coin(src Source) bool {
	return Bool(src, 0.5)
}

// Choice picks one element of items uniformly. items must not be empty.
func Choice[T any](src Source, items []T) T {
	return items[src.Intn(len(items))]
}

// Locked serializes access to src so it can be shared between goroutines.
func Locked(src Source) Source {
	if l, ok := src.(*lockedSource); ok {
		return l
	}
	return &lockedSource{src: src}
}

type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func (l *lockedSource) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}
