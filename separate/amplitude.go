package separate

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Amplitude separates order components from measurements of the system
// response to scaled copies of one input signal.
//
// Each measured output is modeled as a polynomial in its scale factor,
//
//	y(a_k) = sum over n of a_k^n * y_n
//
// which stacks into a generalized Vandermonde system V·Y = M with
// V[k][n-1] = a_k^n. With exactly N factors the system is inverted exactly;
// with more it is solved in the least-squares sense.
type Amplitude struct {
	// Order is the truncation order N, the number of homogeneous orders
	// to recover.
	Order int

	// Factors are the scale factors applied to the input, one per measured
	// variant. When nil, NumFactors factors are derived from Gain.
	Factors []float64

	// NumFactors is the number of derived factors K. Zero means K = Order;
	// a nonzero value below Order fails validation with
	// ErrInsufficientSignals.
	NumFactors int

	// Gain is the base amplitude ratio for derived factors. Zero means
	// DefaultGain. Derived factors alternate sign and decay geometrically
	// (1, -1, g, -g, g², ...) unless PositiveOnly is set, in which case
	// they are 1, g, g², ...
	Gain float64

	// PositiveOnly restricts derived factors to positive values.
	PositiveOnly bool

	// CondThreshold is the largest acceptable condition number of the
	// separation matrix. Zero means DefaultCondThreshold.
	CondThreshold float64
}

// Validate checks the separator parameters.
func (a *Amplitude) Validate() error {
	if a.Order < 1 {
		return ErrInvalidOrder
	}

	if a.Factors != nil {
		if len(a.Factors) < a.Order {
			return fmt.Errorf("%w: %d factors for order %d", ErrInsufficientSignals, len(a.Factors), a.Order)
		}

		return nil
	}

	gain := a.gain()
	if gain <= 0 || gain == 1 {
		return ErrInvalidGain
	}

	if a.NumFactors != 0 && a.NumFactors < a.Order {
		return fmt.Errorf("%w: %d requested variants for order %d", ErrInsufficientSignals, a.NumFactors, a.Order)
	}

	return nil
}

// ScaleFactors returns the scale factors the separator expects the input
// variants to have been generated with, in measurement order.
func (a *Amplitude) ScaleFactors() ([]float64, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	out := a.factors()
	if err := checkDistinct(out); err != nil {
		return nil, err
	}

	return out, nil
}

// Separate recovers the order components from the measured outputs.
// outputs[k] must be the system response to the input scaled by the k-th
// factor; all outputs must have equal length. The returned Result holds one
// signal per order 1..Order, each of the same length as the measurements.
func (a *Amplitude) Separate(outputs [][]float64) (*Result, error) {
	factors, err := a.ScaleFactors()
	if err != nil {
		return nil, err
	}

	k := len(factors)
	if len(outputs) != k {
		return nil, fmt.Errorf("%w: %d outputs for %d scale factors", ErrDimensionMismatch, len(outputs), k)
	}

	length, err := commonLength(outputs)
	if err != nil {
		return nil, err
	}

	// V[k][n-1] = a_k^n
	v := mat.NewDense(k, a.Order, nil)
	for i, f := range factors {
		p := 1.0
		for n := 0; n < a.Order; n++ {
			p *= f
			v.Set(i, n, p)
		}
	}

	cond := mat.Cond(v, 2)

	threshold := a.CondThreshold
	if threshold == 0 {
		threshold = DefaultCondThreshold
	}

	if cond > threshold || math.IsInf(cond, 1) || math.IsNaN(cond) {
		return nil, fmt.Errorf("%w: cond = %.3g, threshold = %.3g", ErrIllConditioned, cond, threshold)
	}

	m := mat.NewDense(k, length, nil)
	for i, out := range outputs {
		m.SetRow(i, out)
	}

	// Exact inversion for k == Order, least squares otherwise.
	var x mat.Dense
	if err := x.Solve(v, m); err != nil {
		return nil, fmt.Errorf("separate: amplitude solve failed: %w", err)
	}

	orders := make([][]float64, a.Order)
	for n := range orders {
		orders[n] = mat.Row(nil, n, &x)
	}

	return &Result{Orders: orders, Cond: cond}, nil
}

// gain returns the configured base gain with the default applied.
func (a *Amplitude) gain() float64 {
	if a.Gain == 0 {
		return DefaultGain
	}

	return a.Gain
}

// factors returns the explicit factors, or derives them from the gain.
func (a *Amplitude) factors() []float64 {
	if a.Factors != nil {
		return a.Factors
	}

	k := a.NumFactors
	if k == 0 {
		k = a.Order
	}

	gain := a.gain()
	out := make([]float64, k)

	for i := range out {
		if a.PositiveOnly {
			out[i] = math.Pow(gain, float64(i))
			continue
		}

		out[i] = math.Pow(gain, float64(i/2))
		if i%2 == 1 {
			out[i] = -out[i]
		}
	}

	return out
}

// checkDistinct rejects zero or duplicate scale factors, which make the
// separation matrix singular regardless of conditioning.
func checkDistinct(factors []float64) error {
	for i, f := range factors {
		if f == 0 {
			return fmt.Errorf("%w: scale factor %d is zero", ErrInsufficientSignals, i)
		}

		for j := i + 1; j < len(factors); j++ {
			if f == factors[j] {
				return fmt.Errorf("%w: scale factors %d and %d are equal", ErrInsufficientSignals, i, j)
			}
		}
	}

	return nil
}

// commonLength verifies all outputs share one length and returns it.
func commonLength(outputs [][]float64) (int, error) {
	if len(outputs) == 0 {
		return 0, ErrInsufficientSignals
	}

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
