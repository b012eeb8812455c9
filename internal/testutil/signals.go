// Package testutil provides deterministic excitation signals and tolerance
// helpers shared by the identification tests.
package testutil

import (
	"math"
	"math/rand/v2"
)

// Noise returns reproducible white noise in [-1, 1).
func Noise(seed uint64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

// Multitone returns a sum of unit sines at the given normalized angular
// frequencies (radians per sample). Multitone excitations keep higher-order
// regressors well conditioned.
func Multitone(freqs []float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		for _, w := range freqs {
			out[i] += math.Sin(w * float64(i))
		}
	}
	return out
}

// Constant returns a signal with every sample set to v.
func Constant(v float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = v
	}
	return out
}
