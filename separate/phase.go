package separate

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Phase separates order components from measurements of the system response
// to phase-rotated copies of one input signal.
//
// With unit-phase factors w_k = e^(jθ_k), the order-n contribution of the
// rotated input picks up the harmonic factor w_k^n:
//
//	y(w_k) = sum over n of w_k^n * y_n
//
// Choosing exactly K = 2N+1 uniformly spaced phases makes the separation
// matrix a scaled DFT, so the solve is an inverse DFT over the phase axis —
// exactly orthogonal, with condition number 1. Real-valued order components
// are reconstructed by combining each harmonic bin with its conjugate image
// (bins n and K-n), which is valid because the underlying system and base
// input are real-valued.
type Phase struct {
	// Order is the truncation order N.
	Order int
}

// Validate checks the separator parameters.
func (p *Phase) Validate() error {
	if p.Order < 1 {
		return ErrInvalidOrder
	}

	return nil
}

// NumFactors returns the required number of phase variants, 2N+1.
func (p *Phase) NumFactors() int {
	return 2*p.Order + 1
}

// PhaseFactors returns the unit-phase factors w_k = e^(2πjk/K) for
// k = 0..K-1, K = 2N+1, in measurement order.
func (p *Phase) PhaseFactors() ([]complex128, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	k := p.NumFactors()
	out := make([]complex128, k)

	for i := range out {
		out[i] = cmplx.Exp(complex(0, 2*math.Pi*float64(i)/float64(k)))
	}

	return out, nil
}

// Separate recovers the order components from the measured outputs.
// outputs[k] must be the (complex) system response to the input rotated by
// the k-th phase factor; exactly 2N+1 outputs of equal length are required.
// The returned orders are real-valued signals of the same length.
func (p *Phase) Separate(outputs [][]complex128) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	k := p.NumFactors()
	if len(outputs) != k {
		return nil, fmt.Errorf("%w: got %d phase variants, need exactly %d for order %d",
			ErrInsufficientSignals, len(outputs), k, p.Order)
	}

	length, err := commonLengthC(outputs)
	if err != nil {
		return nil, err
	}

	orders := make([][]float64, p.Order)
	for n := 1; n <= p.Order; n++ {
		orders[n-1] = p.harmonic(outputs, n, length)
	}

	// The DFT matrix is unitary up to a scale factor.
	return &Result{Orders: orders, Cond: 1}, nil
}

// harmonic extracts the order-n component by inverse DFT over the phase
// axis, adding the harmonic bin and the conjugate of its mirror bin.
func (p *Phase) harmonic(outputs [][]complex128, n, length int) []float64 {
	k := len(outputs)

	// Twiddles for bins n and k-n: e^(-2πj·i·n/k) and e^(-2πj·i·(k-n)/k).
	wn := make([]complex128, k)
	wm := make([]complex128, k)

	for i := range wn {
		wn[i] = cmplx.Exp(complex(0, -2*math.Pi*float64(i*n)/float64(k)))
		wm[i] = cmplx.Exp(complex(0, -2*math.Pi*float64(i*(k-n))/float64(k)))
	}

	out := make([]float64, length)
	scale := 1 / float64(k)

	for t := range out {
		var pos, neg complex128
		for i, y := range outputs {
			pos += wn[i] * y[t]
			neg += wm[i] * y[t]
		}

		pos *= complex(scale, 0)
		neg *= complex(scale, 0)

		// pos holds y_n. neg is the conjugate image: it carries the other
		// half of y_n when the measurements are real-valued, and is zero
		// when they are complex (n+m = K never occurs for n, m <= N < K-N).
		out[t] = real(pos + cmplx.Conj(neg))
	}

	return out
}

// commonLengthC verifies all complex outputs share one length.
func commonLengthC(outputs [][]complex128) (int, error) {
	length := len(outputs[0])
	for i, out := range outputs {
		if len(out) != length {
			return 0, fmt.Errorf("%w: output %d has %d samples, output 0 has %d",
				ErrDimensionMismatch, i, len(out), length)
		}
	}

	if length == 0 {
		return 0, fmt.Errorf("%w: empty outputs", ErrDimensionMismatch)
	}

	return length, nil
}
