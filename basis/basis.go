// Package basis constructs the combinatorial regressor matrix of delayed
// input products for one homogeneous Volterra order.
//
// For an order n and memory length m, the regressors are all distinct
// n-fold products of delayed input samples. Index-permutation symmetry of
// the kernel means only non-decreasing delay tuples are needed, so the
// matrix has C(m+n-1, n) columns instead of m^n. The column order is the
// fixed lexicographic tuple enumeration shared with the kernel package;
// it ties each column to the kernel coefficient it multiplies.
package basis

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-volterra/internal/tuples"
)

// Errors returned by basis functions.
var (
	ErrInvalidOrder   = errors.New("basis: order must be >= 1")
	ErrInvalidMemory  = errors.New("basis: memory length must be >= 1")
	ErrSignalTooShort = errors.New("basis: input shorter than memory length")
)

// Columns returns the number of regressor columns for the given order and
// memory length, C(memory+order-1, order).
func Columns(order, memory int) int {
	return tuples.Count(memory, order)
}

// Build returns the order-n regression matrix for the input signal.
//
// Row r corresponds to time index t = memory-1+r, the first index with a
// full history window. The column for the non-decreasing delay tuple
// (i_1, ..., i_n) holds
//
//	input[t-i_1] * input[t-i_2] * ... * input[t-i_n]
//
// so the matrix has len(input)-memory+1 rows and C(memory+order-1, order)
// columns. Tuples are generated incrementally; no m^order intermediate is
// ever materialized.
func Build(order, memory int, input []float64) (*mat.Dense, error) {
	if order < 1 {
		return nil, ErrInvalidOrder
	}

	if memory < 1 {
		return nil, ErrInvalidMemory
	}

	rows := len(input) - memory + 1
	if rows < 1 {
		return nil, fmt.Errorf("%w: %d samples, memory %d", ErrSignalTooShort, len(input), memory)
	}

	cols := tuples.Count(memory, order)
	out := mat.NewDense(rows, cols, nil)

	gen := tuples.NewGenerator(memory, order)
	idx := make([]int, order)
	col := make([]float64, rows)

	for j := 0; gen.Next(); j++ {
		gen.Current(idx)

		copy(col, delayed(input, memory, idx[0]))
		for _, d := range idx[1:] {
			vecmath.MulBlockInPlace(col, delayed(input, memory, d))
		}

		out.SetCol(j, col)
	}

	return out, nil
}

// delayed returns the input view whose r-th entry is input[memory-1+r-d],
// i.e. the signal delayed by d samples over the valid time range.
func delayed(input []float64, memory, d int) []float64 {
	return input[memory-1-d : len(input)-d]
}
