package rng

import (
	"sync"
	"testing"
)

// fixedSource replays scripted draws.
type fixedSource struct {
	ints   []int
	floats []float64
}

func (f *fixedSource) Intn(n int) int {
	v := f.ints[0]
	f.ints = f.ints[1:]
	return v % n
}

func (f *fixedSource) Float64() float64 {
	v := f.floats[0]
	f.floats = f.floats[1:]
	return v
}

func TestIntInclusiveBounds(t *testing.T) {
	src := New(7)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		v := IntInclusive(src, 2, 5)
		if v < 2 || v > 5 {
			t.Fatalf("value out of range: %d", v)
		}
		seen[v] = true
	}
	for v := 2; v <= 5; v++ {
		if !seen[v] {
			t.Fatalf("expected %d to be drawn", v)
		}
	}
}

func TestIntRangeEmpty(t *testing.T) {
	if got := IntRange(New(1), 3, 3); got != 3 {
		t.Fatalf("expected min for empty range, got %d", got)
	}
	if got := IntInclusive(New(1), 4, 4); got != 4 {
		t.Fatalf("expected single value, got %d", got)
	}
}

func TestFloatRange(t *testing.T) {
	src := New(3)
	for i := 0; i < 1000; i++ {
		v := Float(src, -4, 4)
		if v < -4 || v >= 4 {
			t.Fatalf("float out of range: %f", v)
		}
	}
	if got := Float(&fixedSource{floats: []float64{0.5}}, -4, 4); got != 0 {
		t.Fatalf("expected midpoint, got %f", got)
	}
}

func TestBoolExtremes(t *testing.T) {
	src := New(11)
	for i := 0; i < 200; i++ {
		if Bool(src, 0) {
			t.Fatal("rate 0 must never fire")
		}
		if !Bool(src, 1) {
			t.Fatal("rate 1 must always fire")
		}
	}
}

func TestChoiceUsesSource(t *testing.T) {
	src := &fixedSource{ints: []int{2, 0}}
	items := []string{"a", "b", "c"}
	if got := Choice(src, items); got != "c" {
		t.Fatalf("unexpected choice: %s", got)
	}
	if got := Choice(src, items); got != "a" {
		t.Fatalf("unexpected choice: %s", got)
	}
}

func TestSeedReproducible(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 50; i++ {
		if a.Intn(1000) != b.Intn(1000) {
			t.Fatal("same seed must reproduce draws")
		}
	}
}

func TestLockedConcurrentUse(t *testing.T) {
	src := Locked(New(5))
	if Locked(src) != src {
		t.Fatal("expected locked source to be reused")
	}
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = src.Intn(10)
				_ = src.Float64()
			}
		}()
	}
	wg.Wait()
}
