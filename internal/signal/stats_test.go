package signal

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPercentile(t *testing.T) {
	cases := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 0.5, 0},
		{"single", []float64{42}, 0.99, 42},
		{"median even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"median odd", []float64{1, 2, 3}, 0.5, 2},
		{"interpolated p99", []float64{100000, 100000, 100000, 100000, 100000, 100000, 100000, 100000, 100000, 10000000}, 0.99, 100000 + 0.91*9900000},
		{"max", []float64{1, 2, 3}, 1.0, 3},
		{"min", []float64{1, 2, 3}, 0.0, 1},
	}
	for _, c := range cases {
		if got := percentile(c.sorted, c.p); !almostEqual(got, c.want) {
			t.Errorf("%s: percentile(%v, %v) = %v, want %v", c.name, c.sorted, c.p, got, c.want)
		}
	}
}

func TestRollingAverages(t *testing.T) {
	got := rollingAverages([]float64{100, 100, 100, 400}, 3)
	want := []float64{100, 100, 100, 200}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Fatalf("rollingAverages = %v, want %v", got, want)
		}
	}

	got = rollingAverages([]float64{3, 6}, 3)
	if !almostEqual(got[0], 3) || !almostEqual(got[1], 4.5) {
		t.Errorf("partial-window averages = %v", got)
	}

	if out := rollingAverages(nil, 3); len(out) != 0 {
		t.Errorf("expected empty output, got %v", out)
	}
}
