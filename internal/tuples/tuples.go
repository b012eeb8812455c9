// Package tuples enumerates the non-decreasing index tuples that address
// the unique coefficients of a symmetric Volterra kernel.
//
// A kernel of order n with memory length m is permutation-invariant in its
// n delay indices, so only tuples (i_1 <= i_2 <= ... <= i_n) with
// i_k in [0, m) need to be stored. There are exactly C(m+n-1, n) such
// tuples. The enumeration order is lexicographic and fixed: it defines the
// column layout of regression matrices and the coefficient layout of kernel
// tensors, so generation must be deterministic and restartable.
package tuples

import (
	"sort"

	"gonum.org/v1/gonum/stat/combin"
)

// Count returns the number of non-decreasing index tuples of length order
// over [0, memory), i.e. C(memory+order-1, order).
func Count(memory, order int) int {
	if memory < 1 || order < 1 {
		panic("tuples: memory and order must be positive")
	}

	return combin.Binomial(memory+order-1, order)
}

// SeriesCount returns the total number of unique coefficients in a Volterra
// series truncated to the given order with a shared memory length, i.e. the
// sum of Count(memory, n) for n = 1..order, which closes to
// C(memory+order, order) - 1.
func SeriesCount(memory, order int) int {
	if memory < 1 || order < 1 {
		panic("tuples: memory and order must be positive")
	}

	return combin.Binomial(memory+order, order) - 1
}

// Generator iterates over the non-decreasing index tuples of a fixed order
// and memory length in lexicographic order. The zero tuple (0, ..., 0) is
// produced first and (m-1, ..., m-1) last.
//
// The iteration pattern follows gonum's combin.CombinationGenerator:
//
//	gen := tuples.NewGenerator(memory, order)
//	for gen.Next() {
//	    idx := gen.Current(nil)
//	    ...
//	}
type Generator struct {
	memory  int
	order   int
	idx     []int
	started bool
}

// NewGenerator returns a generator over the non-decreasing tuples of the
// given order with indices in [0, memory).
func NewGenerator(memory, order int) *Generator {
	if memory < 1 || order < 1 {
		panic("tuples: memory and order must be positive")
	}

	return &Generator{
		memory: memory,
		order:  order,
		idx:    make([]int, order),
	}
}

// Next advances the generator to the next tuple. It returns false when the
// enumeration is exhausted.
func (g *Generator) Next() bool {
	if !g.started {
		g.started = true
		return true
	}

	// Find the rightmost position that can still be incremented, then
	// reset everything to its right to the same value (keeps the tuple
	// non-decreasing).
	k := g.order - 1
	for k >= 0 && g.idx[k] == g.memory-1 {
		k--
	}

	if k < 0 {
		return false
	}

	v := g.idx[k] + 1
	for i := k; i < g.order; i++ {
		g.idx[i] = v
	}

	return true
}

// Current copies the current tuple into dst and returns it. If dst is nil,
// a new slice is allocated. Next must have been called and returned true.
func (g *Generator) Current(dst []int) []int {
	if !g.started {
		panic("tuples: Current called before Next")
	}

	if dst == nil {
		dst = make([]int, g.order)
	}

	copy(dst, g.idx)

	return dst
}

// Reset restarts the generator from the first tuple.
func (g *Generator) Reset() {
	g.started = false
	for i := range g.idx {
		g.idx[i] = 0
	}
}

// Rank returns the position of a non-decreasing tuple in the lexicographic
// enumeration over [0, memory). It is the inverse of the generator sequence:
// the tuple produced by the i-th successful Next call has rank i.
func Rank(memory int, idx []int) int {
	n := len(idx)

	// Map the non-decreasing tuple to a strictly increasing combination
	// c_k = idx_k + k over a universe of size memory+n-1, then rank that
	// combination by counting its lexicographic predecessors.
	universe := memory + n - 1
	rank := 0
	prev := 0

	for k, v := range idx {
		c := v + k
		for j := prev; j < c; j++ {
			rank += combin.Binomial(universe-1-j, n-1-k)
		}

		prev = c + 1
	}

	return rank
}

// Multiplicity returns the number of distinct permutations of a
// non-decreasing tuple: n! divided by the factorials of the repetition
// counts. It is 1 for a fully repeated index and n! when all indices are
// distinct.
func Multiplicity(idx []int) int {
	mult := 1
	total := 0
	run := 0

	for i, v := range idx {
		run++
		total++

		if i == len(idx)-1 || idx[i+1] != v {
			mult *= combin.Binomial(total, run)
			run = 0
		}
	}

	return mult
}

// Canonical returns a sorted copy of idx, the canonical representative of
// its permutation class.
func Canonical(idx []int) []int {
	out := make([]int, len(idx))
	copy(out, idx)
	sort.Ints(out)

	return out
}
