package signal

import "math"

// percentile computes the p-quantile (0 ≤ p ≤ 1) of ascending-sorted
// values using linear interpolation between order statistics, matching
// PERCENTILE_CONT semantics. Results are reproducible across runs and
// platforms; no external engine's percentile definition is relied on.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// rollingAverages returns the trailing rolling average of values with
// the given window. Early points average over the shorter prefix.
func rollingAverages(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		n := window
		if i+1 < window {
			n = i + 1
		} else if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(n)
	}
	return out
}
