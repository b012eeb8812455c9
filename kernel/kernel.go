// Package kernel provides a compact symmetric representation of one
// homogeneous-order Volterra kernel.
//
// A kernel of order n and memory length m is a symmetric array over n delay
// dimensions, each in [0, m). Only the C(m+n-1, n) coefficients addressed by
// non-decreasing index tuples are stored; every permutation of a stored
// tuple shares one coefficient. The storage order is the fixed lexicographic
// tuple enumeration, the same order the basis package uses for its
// regression-matrix columns.
package kernel

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-volterra/internal/tuples"
)

// Errors returned by kernel functions.
var (
	ErrInvalidOrder  = errors.New("kernel: order must be >= 1")
	ErrInvalidMemory = errors.New("kernel: memory length must be >= 1")
	ErrCoeffLength   = errors.New("kernel: coefficient vector has wrong length")
)

// Tensor is the symmetric kernel of one homogeneous order. It stores one
// coefficient per unique (non-decreasing) delay tuple, along with the
// permutation multiplicity of each tuple.
//
// A Tensor is intended to be written once (via SetAt or FromCoeffs) and
// treated as read-only afterwards; identification results share this
// convention.
type Tensor struct {
	order  int
	memory int
	coeffs []float64
	mults  []int
}

// New returns a zero-valued kernel tensor of the given order and memory
// length.
func New(order, memory int) (*Tensor, error) {
	if order < 1 {
		return nil, ErrInvalidOrder
	}

	if memory < 1 {
		return nil, ErrInvalidMemory
	}

	n := tuples.Count(memory, order)

	t := &Tensor{
		order:  order,
		memory: memory,
		coeffs: make([]float64, n),
		mults:  make([]int, n),
	}

	// The multiplicity table is fixed by (order, memory); computing it once
	// here keeps Evaluate free of combinatorics.
	gen := tuples.NewGenerator(memory, order)
	idx := make([]int, order)

	for i := 0; gen.Next(); i++ {
		t.mults[i] = tuples.Multiplicity(gen.Current(idx))
	}

	return t, nil
}

// FromCoeffs returns a kernel tensor of the given order and memory length
// whose unique coefficients are taken from coeffs, in enumeration order.
// The vector must have exactly C(memory+order-1, order) entries; it is
// copied, not retained.
func FromCoeffs(order, memory int, coeffs []float64) (*Tensor, error) {
	t, err := New(order, memory)
	if err != nil {
		return nil, err
	}

	if len(coeffs) != len(t.coeffs) {
		return nil, fmt.Errorf("%w: got %d, want %d for order %d memory %d",
			ErrCoeffLength, len(coeffs), len(t.coeffs), order, memory)
	}

	copy(t.coeffs, coeffs)

	return t, nil
}

// FromTriangular returns a kernel tensor from triangular-form coefficients,
// where each entry is the symmetric coefficient times the permutation
// multiplicity of its tuple. This is the form a least-squares fit produces
// when regressing on one column per unique delay tuple, since each column
// absorbs all permutations of its tuple. The entries are divided by their
// multiplicities on the way in, so At and Evaluate see the symmetric form.
func FromTriangular(order, memory int, coeffs []float64) (*Tensor, error) {
	t, err := New(order, memory)
	if err != nil {
		return nil, err
	}

	if len(coeffs) != len(t.coeffs) {
		return nil, fmt.Errorf("%w: got %d, want %d for order %d memory %d",
			ErrCoeffLength, len(coeffs), len(t.coeffs), order, memory)
	}

	for i, c := range coeffs {
		t.coeffs[i] = c / float64(t.mults[i])
	}

	return t, nil
}

// Order returns the homogeneous order of the kernel.
func (t *Tensor) Order() int { return t.order }

// Memory returns the memory length of the kernel in samples.
func (t *Tensor) Memory() int { return t.memory }

// NumCoeffs returns the number of unique coefficients, C(memory+order-1, order).
func (t *Tensor) NumCoeffs() int { return len(t.coeffs) }

// Coeffs returns a copy of the unique coefficients in enumeration order.
func (t *Tensor) Coeffs() []float64 {
	out := make([]float64, len(t.coeffs))
	copy(out, t.coeffs)

	return out
}

// At returns the coefficient addressed by idx. The lookup is permutation
// invariant: any ordering of the same delay values yields the same
// coefficient. At panics if idx has the wrong length or an index is out of
// [0, memory).
func (t *Tensor) At(idx ...int) float64 {
	return t.coeffs[t.position(idx)]
}

// SetAt sets the coefficient addressed by idx, for any permutation of the
// delay values. It is meant for constructing reference kernels; tensors
// produced by identification are not mutated afterwards. SetAt panics under
// the same conditions as At.
func (t *Tensor) SetAt(v float64, idx ...int) {
	t.coeffs[t.position(idx)] = v
}

// position canonicalizes idx and returns its storage offset.
func (t *Tensor) position(idx []int) int {
	if len(idx) != t.order {
		panic(fmt.Sprintf("kernel: got %d indices, want %d", len(idx), t.order))
	}

	for _, v := range idx {
		if v < 0 || v >= t.memory {
			panic(fmt.Sprintf("kernel: index %d out of range [0, %d)", v, t.memory))
		}
	}

	return tuples.Rank(t.memory, tuples.Canonical(idx))
}

// Expand materializes the full symmetric memory^order tensor in row-major
// layout: element (i_1, ..., i_n) lives at offset
// i_1*m^(n-1) + i_2*m^(n-2) + ... + i_n. All permutations of a tuple carry
// the shared coefficient. Intended for inspection and plotting, not for
// regression.
func (t *Tensor) Expand() []float64 {
	size := 1
	for i := 0; i < t.order; i++ {
		size *= t.memory
	}

	out := make([]float64, size)
	idx := make([]int, t.order)

	for off := range out {
		out[off] = t.coeffs[tuples.Rank(t.memory, tuples.Canonical(idx))]

		// Row-major odometer increment.
		for k := t.order - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < t.memory {
				break
			}

			idx[k] = 0
		}
	}

	return out
}

// Evaluate returns the kernel's contribution for one history window.
// window[i] must hold the input sample delayed by i, i.e. x[t-i], and the
// window must have exactly memory entries. The result is
//
//	sum over unique tuples of coeff * multiplicity * prod window[i_k]
//
// which equals the full symmetric-tensor contraction without materializing
// the memory^order array.
func (t *Tensor) Evaluate(window []float64) float64 {
	if len(window) != t.memory {
		panic(fmt.Sprintf("kernel: window length %d, want %d", len(window), t.memory))
	}

	gen := tuples.NewGenerator(t.memory, t.order)
	idx := make([]int, t.order)
	sum := 0.0

	for i := 0; gen.Next(); i++ {
		gen.Current(idx)

		p := t.coeffs[i] * float64(t.mults[i])
		for _, d := range idx {
			p *= window[d]
		}

		sum += p
	}

	return sum
}
