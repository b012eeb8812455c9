// Package identify estimates the Volterra kernels of a nonlinear system by
// least-squares regression of measured outputs on combinatorial bases of
// delayed input products.
//
// Two modes are provided. By-order mode solves one independent regression
// per homogeneous order against that order's (separated) output component;
// the per-order problems share no state and are solved concurrently.
// Direct mode concatenates the bases of all orders and regresses a single
// unseparated measurement jointly, trading accuracy for measurement
// simplicity since cross-order leakage is not isolated first.
//
// Regressions are solved through a singular value decomposition rather than
// the normal equations. With no regularization, a rank-deficient matrix is
// reported as ErrRankDeficient instead of silently returning a minimum-norm
// solution. With ridge regularization λ > 0 the damped normal equations
// (AᵀA + λI)c = Aᵀy are solved by Cholesky factorization and always yield
// a finite result.
package identify

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-volterra/basis"
	"github.com/cwbudde/algo-volterra/internal/tuples"
	"github.com/cwbudde/algo-volterra/kernel"
)

// Errors returned by the estimator.
var (
	ErrInvalidOrder      = errors.New("identify: order must be >= 1")
	ErrInvalidMemory     = errors.New("identify: memory length must be >= 1")
	ErrInvalidLambda     = errors.New("identify: regularization parameter must be >= 0")
	ErrDimensionMismatch = errors.New("identify: signal dimensions do not match")
	ErrRankDeficient     = errors.New("identify: regression matrix is rank deficient; use more data or enable regularization")
)

// Result maps each homogeneous order to its estimated kernel. The key set
// is always the contiguous range 1..N of the estimation call that produced
// it, and the tensors are not mutated afterwards.
type Result map[int]*kernel.Tensor

// Estimator holds the identification parameters shared by both modes.
// Estimation calls are pure: the estimator keeps no cache and no state
// between calls, so one Estimator may be used from multiple goroutines.
type Estimator struct {
	// Order is the truncation order N.
	Order int

	// Memory is the kernel memory length M in samples.
	Memory int

	// Lambda is the ridge regularization parameter. Zero requests the
	// unregularized least-squares solution with an explicit rank check.
	Lambda float64
}

// Validate checks the estimator parameters.
func (e *Estimator) Validate() error {
	if e.Order < 1 {
		return ErrInvalidOrder
	}

	if e.Memory < 1 {
		return ErrInvalidMemory
	}

	if e.Lambda < 0 || math.IsNaN(e.Lambda) {
		return ErrInvalidLambda
	}

	return nil
}

// rows returns the number of valid regression rows for the input length.
func (e *Estimator) rows(inputLen int) int {
	return inputLen - e.Memory + 1
}

// ByOrder estimates one kernel per order from separated order outputs.
// orders[n-1] must hold the order-n output component over the valid time
// range, i.e. len(input)-(Memory-1) samples aligned to t = Memory-1.
// The per-order regressions are independent and run concurrently; results
// are combined by order index, so the outcome is deterministic.
func (e *Estimator) ByOrder(input []float64, orders [][]float64) (Result, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if len(orders) != e.Order {
		return nil, fmt.Errorf("%w: got %d order signals, want %d", ErrDimensionMismatch, len(orders), e.Order)
	}

	rows := e.rows(len(input))
	if rows < 1 {
		return nil, fmt.Errorf("%w: input has %d samples, memory is %d", ErrDimensionMismatch, len(input), e.Memory)
	}

	for n, y := range orders {
		if len(y) != rows {
			return nil, fmt.Errorf("%w: order %d output has %d samples, want %d (input length minus memory-1)",
				ErrDimensionMismatch, n+1, len(y), rows)
		}
	}

	kernels := make([]*kernel.Tensor, e.Order)
	errs := make([]error, e.Order)

	var wg sync.WaitGroup
	wg.Add(e.Order)

	for n := 1; n <= e.Order; n++ {
		go func(n int) {
			defer wg.Done()
			kernels[n-1], errs[n-1] = e.estimateOrder(n, input, orders[n-1])
		}(n)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	res := make(Result, e.Order)
	for n, k := range kernels {
		res[n+1] = k
	}

	return res, nil
}

// Direct estimates all kernels jointly from one unseparated measurement.
// output must hold len(input)-(Memory-1) samples aligned to t = Memory-1.
func (e *Estimator) Direct(input, output []float64) (Result, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	rows := e.rows(len(input))
	if rows < 1 {
		return nil, fmt.Errorf("%w: input has %d samples, memory is %d", ErrDimensionMismatch, len(input), e.Memory)
	}

	if len(output) != rows {
		return nil, fmt.Errorf("%w: output has %d samples, want %d (input length minus memory-1)",
			ErrDimensionMismatch, len(output), rows)
	}

	// Horizontally concatenate the per-order bases.
	total := tuples.SeriesCount(e.Memory, e.Order)
	a := mat.NewDense(rows, total, nil)

	off := 0
	for n := 1; n <= e.Order; n++ {
		an, err := basis.Build(n, e.Memory, input)
		if err != nil {
			return nil, fmt.Errorf("identify: order %d basis: %w", n, err)
		}

		_, cols := an.Dims()
		a.Slice(0, rows, off, off+cols).(*mat.Dense).Copy(an)
		off += cols
	}

	coeffs, err := e.solve(a, output)
	if err != nil {
		return nil, err
	}

	// Split the joint coefficient vector back into per-order kernels. The
	// solved coefficients are in triangular form: each basis column covers
	// every permutation of its delay tuple.
	res := make(Result, e.Order)

	off = 0
	for n := 1; n <= e.Order; n++ {
		cols := basis.Columns(n, e.Memory)

		k, err := kernel.FromTriangular(n, e.Memory, coeffs[off:off+cols])
		if err != nil {
			return nil, fmt.Errorf("identify: order %d kernel: %w", n, err)
		}

		res[n] = k
		off += cols
	}

	return res, nil
}

// estimateOrder solves the regression for a single order.
func (e *Estimator) estimateOrder(n int, input, output []float64) (*kernel.Tensor, error) {
	a, err := basis.Build(n, e.Memory, input)
	if err != nil {
		return nil, fmt.Errorf("identify: order %d basis: %w", n, err)
	}

	coeffs, err := e.solve(a, output)
	if err != nil {
		return nil, fmt.Errorf("identify: order %d: %w", n, err)
	}

	// Triangular form: each basis column covers every permutation of its
	// delay tuple, so the solved entries carry the multiplicity factor.
	k, err := kernel.FromTriangular(n, e.Memory, coeffs)
	if err != nil {
		return nil, fmt.Errorf("identify: order %d kernel: %w", n, err)
	}

	return k, nil
}

// solve computes the least-squares coefficients for A·c ≈ y.
func (e *Estimator) solve(a *mat.Dense, y []float64) ([]float64, error) {
	rows, cols := a.Dims()
	yVec := mat.NewVecDense(rows, y)

	if e.Lambda > 0 {
		return solveRidge(a, yVec, e.Lambda)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, errors.New("identify: SVD failed to converge")
	}

	// LAPACK-conventional rank tolerance relative to the largest singular
	// value.
	values := svd.Values(nil)
	eps := math.Nextafter(1, 2) - 1
	tol := float64(max(rows, cols)) * eps * values[0]

	rank := 0
	for _, s := range values {
		if s > tol {
			rank++
		}
	}

	if rank < cols {
		return nil, fmt.Errorf("%w: rank %d of %d columns", ErrRankDeficient, rank, cols)
	}

	var c mat.VecDense
	svd.SolveVecTo(&c, yVec, rank)

	return vecData(&c, cols), nil
}

// solveRidge solves the damped normal equations (AᵀA + λI)c = Aᵀy.
// The system is symmetric positive definite for λ > 0, so the Cholesky
// factorization cannot fail on finite inputs.
func solveRidge(a *mat.Dense, y *mat.VecDense, lambda float64) ([]float64, error) {
	_, cols := a.Dims()

	var gram mat.Dense
	gram.Mul(a.T(), a)

	sym := mat.NewSymDense(cols, nil)
	for i := 0; i < cols; i++ {
		sym.SetSym(i, i, gram.At(i, i)+lambda)
		for j := i + 1; j < cols; j++ {
			sym.SetSym(i, j, gram.At(i, j))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, errors.New("identify: regularized normal equations are not positive definite")
	}

	var rhs mat.VecDense
	rhs.MulVec(a.T(), y)

	var c mat.VecDense
	if err := chol.SolveVecTo(&c, &rhs); err != nil {
		return nil, fmt.Errorf("identify: ridge solve failed: %w", err)
	}

	return vecData(&c, cols), nil
}

// vecData copies the first n entries of a vector into a fresh slice.
func vecData(v *mat.VecDense, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v.AtVec(i)
	}

	return out
}
