package arcade

import "testing"

func TestMulberry32Deterministic(t *testing.T) {
	a := NewMulberry32(1337)
	b := NewMulberry32(1337)
	for i := 0; i < 1000; i++ {
		x, y := a.Float64(), b.Float64()
		if x != y {
			t.Fatalf("diverged at %d: %v vs %v", i, x, y)
		}
		if x < 0 || x >= 1 {
			t.Fatalf("value %v out of [0,1)", x)
		}
	}
}

func TestMulberry32Reset(t *testing.T) {
	r := NewMulberry32(9)
	first := r.Float64()
	r.Float64()
	r.Reset()
	if got := r.Float64(); got != first {
		t.Errorf("expected %v after reset, got %v", first, got)
	}
}

func TestMulberry32SeedsDiffer(t *testing.T) {
	if NewMulberry32(1).Float64() == NewMulberry32(2).Float64() {
		t.Error("different seeds should produce different sequences")
	}
}

func TestIntBetween(t *testing.T) {
	for _, v := range []float64{0, 0.3, 0.5, 0.999999} {
		n := intBetween(constSource(v), 3, 5)
		if n < 3 || n > 5 {
			t.Errorf("intBetween(%v) = %d, out of [3,5]", v, n)
		}
	}
	if n := intBetween(constSource(0.999999), 3, 5); n != 5 {
		t.Errorf("expected the top of the range reachable, got %d", n)
	}
}
