// Package separate recovers the individual homogeneous-order output
// components of a nonlinear system from measurements under controlled input
// transformations.
//
// Scaling the input of a Volterra system by a factor a scales the order-n
// output contribution by a^n; rotating the phase of a complex input by θ
// rotates the order-n contribution by n·θ. Measuring the system under a
// family of known scale or phase factors therefore yields a linear system
// in the unknown order components, which this package inverts.
//
// Two variants are provided:
//
//   - Amplitude: K >= N distinct real scale factors, generalized-Vandermonde
//     solve (exact inversion for K = N, least squares for K > N). Accuracy
//     degrades with the conditioning of the scale-factor matrix, which is
//     checked against a threshold.
//   - Phase: exactly K = 2N+1 uniformly spaced unit-phase factors. The
//     separation matrix is a scaled DFT, so the solve is an inverse DFT and
//     is exactly orthogonal, making this variant preferable for large N.
//
// Both variants expose their factors so an external signal generator can
// produce the transformed input variants, and both report the achieved
// condition number of the separation matrix in their Result.
package separate

import "errors"

// Errors returned by separation methods.
var (
	ErrInvalidOrder        = errors.New("separate: order must be >= 1")
	ErrInvalidGain         = errors.New("separate: gain must be positive and different from 1")
	ErrInsufficientSignals = errors.New("separate: too few or degenerate test-signal variants for the requested order count")
	ErrIllConditioned      = errors.New("separate: separation matrix condition number exceeds threshold")
	ErrDimensionMismatch   = errors.New("separate: measured outputs have mismatched lengths")
)

// Default parameter values applied by the separation methods.
const (
	// DefaultGain is the base amplitude ratio between scale factors.
	DefaultGain = 0.64

	// DefaultCondThreshold is the largest acceptable condition number of
	// the amplitude separation matrix.
	DefaultCondThreshold = 1e12
)

// Result holds separated order components and solve diagnostics.
type Result struct {
	// Orders[i] is the recovered output of homogeneous order i+1, with the
	// same length and alignment as the measured outputs.
	Orders [][]float64

	// Cond is the condition number of the separation matrix actually used.
	// The residual error of the recovered orders is bounded by it. The
	// phase method's matrix is a scaled unitary DFT, so its Cond is 1.
	Cond float64
}
