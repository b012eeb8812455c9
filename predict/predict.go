// Package predict synthesizes the response of an identified Volterra model.
//
// Given kernels estimated by the identify package (or constructed by hand),
// it computes the per-order output contributions for an input signal, and
// their sum, the full model output. Initial conditions are zero: history
// samples before the start of the input are treated as silence.
//
// The first-order contribution is a plain linear convolution with the
// order-1 kernel and is computed with an FFT. Higher orders contract the
// compact symmetric tensor against each history window directly.
package predict

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-volterra/kernel"
)

// Errors returned by prediction functions.
var (
	ErrEmptyInput   = errors.New("predict: input signal is empty")
	ErrNoKernels    = errors.New("predict: no kernels given")
	ErrMissingOrder = errors.New("predict: kernel orders are not contiguous from 1")
)

// Order computes the output contribution of a single kernel for the input
// signal. The result has the same length as the input; samples before the
// first full history window use zero padding.
func Order(k *kernel.Tensor, input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}

	if k.Order() == 1 {
		return firstOrder(k, input)
	}

	memory := k.Memory()
	out := make([]float64, len(input))
	window := make([]float64, memory)

	for t := range out {
		for i := range window {
			if t-i >= 0 {
				window[i] = input[t-i]
			} else {
				window[i] = 0
			}
		}

		out[t] = k.Evaluate(window)
	}

	return out, nil
}

// Outputs computes one contribution per order for a contiguous kernel set
// (orders 1..N). The result is ordered: element i is the order-(i+1)
// contribution, each with the length of the input.
func Outputs(kernels map[int]*kernel.Tensor, input []float64) ([][]float64, error) {
	if len(kernels) == 0 {
		return nil, ErrNoKernels
	}

	out := make([][]float64, len(kernels))

	for n := 1; n <= len(kernels); n++ {
		k, ok := kernels[n]
		if !ok {
			return nil, fmt.Errorf("%w: order %d missing", ErrMissingOrder, n)
		}

		y, err := Order(k, input)
		if err != nil {
			return nil, err
		}

		out[n-1] = y
	}

	return out, nil
}

// Sum computes the total model output, the sum of all order contributions.
func Sum(kernels map[int]*kernel.Tensor, input []float64) ([]float64, error) {
	orders, err := Outputs(kernels, input)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(input))
	for _, y := range orders {
		for t, v := range y {
			out[t] += v
		}
	}

	return out, nil
}

// firstOrder convolves the input with the order-1 kernel taps via FFT and
// trims the result to the input length.
func firstOrder(k *kernel.Tensor, input []float64) ([]float64, error) {
	taps := k.Coeffs()

	n := len(input) + len(taps) - 1
	fftSize := nextPowerOf2(n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("predict: failed to create FFT plan: %w", err)
	}

	inPadded := make([]complex128, fftSize)
	for i, v := range input {
		inPadded[i] = complex(v, 0)
	}

	inFreq := make([]complex128, fftSize)
	if err := plan.Forward(inFreq, inPadded); err != nil {
		return nil, fmt.Errorf("predict: forward FFT failed: %w", err)
	}

	tapsPadded := make([]complex128, fftSize)
	for i, v := range taps {
		tapsPadded[i] = complex(v, 0)
	}

	tapsFreq := make([]complex128, fftSize)
	if err := plan.Forward(tapsFreq, tapsPadded); err != nil {
		return nil, fmt.Errorf("predict: forward FFT failed: %w", err)
	}

	for i := range inFreq {
		inFreq[i] *= tapsFreq[i]
	}

	resultTime := make([]complex128, fftSize)
	if err := plan.Inverse(resultTime, inFreq); err != nil {
		return nil, fmt.Errorf("predict: inverse FFT failed: %w", err)
	}

	out := make([]float64, len(input))
	for i := range out {
		out[i] = real(resultTime[i])
	}

	return out, nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p *= 2
	}

	return p
}
