package tuples

import (
	"reflect"
	"testing"
)

func TestCount(t *testing.T) {
	tests := []struct {
		memory, order int
		want          int
	}{
		{1, 1, 1},
		{2, 1, 2},
		{2, 2, 3},
		{3, 2, 6},
		{3, 3, 10},
		{5, 2, 15},
		{5, 4, 70},
		{10, 3, 220},
	}

	for _, tt := range tests {
		got := Count(tt.memory, tt.order)
		if got != tt.want {
			t.Errorf("Count(%d, %d) = %d, want %d", tt.memory, tt.order, got, tt.want)
		}
	}
}

func TestSeriesCount(t *testing.T) {
	// Closed form must equal the per-order sum.
	for memory := 1; memory <= 6; memory++ {
		for order := 1; order <= 5; order++ {
			sum := 0
			for n := 1; n <= order; n++ {
				sum += Count(memory, n)
			}

			got := SeriesCount(memory, order)
			if got != sum {
				t.Errorf("SeriesCount(%d, %d) = %d, want %d", memory, order, got, sum)
			}
		}
	}
}

func TestGeneratorSequence(t *testing.T) {
	gen := NewGenerator(3, 2)

	want := [][]int{
		{0, 0}, {0, 1}, {0, 2},
		{1, 1}, {1, 2},
		{2, 2},
	}

	var got [][]int
	for gen.Next() {
		got = append(got, gen.Current(nil))
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("sequence = %v, want %v", got, want)
	}
}

func TestGeneratorCountAndOrdering(t *testing.T) {
	for memory := 1; memory <= 5; memory++ {
		for order := 1; order <= 4; order++ {
			gen := NewGenerator(memory, order)

			count := 0
			prev := []int(nil)

			for gen.Next() {
				cur := gen.Current(nil)

				// Tuples must be non-decreasing internally.
				for k := 1; k < order; k++ {
					if cur[k] < cur[k-1] {
						t.Fatalf("tuple %v is not non-decreasing", cur)
					}
				}

				// The sequence must be strictly lexicographically increasing.
				if prev != nil && !lexLess(prev, cur) {
					t.Fatalf("tuple %v does not follow %v", cur, prev)
				}

				prev = cur
				count++
			}

			if want := Count(memory, order); count != want {
				t.Errorf("memory=%d order=%d: generated %d tuples, want %d",
					memory, order, count, want)
			}
		}
	}
}

func TestGeneratorReset(t *testing.T) {
	gen := NewGenerator(4, 3)

	var first [][]int
	for gen.Next() {
		first = append(first, gen.Current(nil))
	}

	gen.Reset()

	var second [][]int
	for gen.Next() {
		second = append(second, gen.Current(nil))
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("regenerated sequence differs from the first run")
	}
}

func TestRankMatchesGenerator(t *testing.T) {
	for memory := 1; memory <= 5; memory++ {
		for order := 1; order <= 4; order++ {
			gen := NewGenerator(memory, order)

			i := 0
			for gen.Next() {
				idx := gen.Current(nil)
				if got := Rank(memory, idx); got != i {
					t.Errorf("Rank(%d, %v) = %d, want %d", memory, idx, got, i)
				}
				i++
			}
		}
	}
}

func TestMultiplicity(t *testing.T) {
	tests := []struct {
		idx  []int
		want int
	}{
		{[]int{0}, 1},
		{[]int{0, 0}, 1},
		{[]int{0, 1}, 2},
		{[]int{0, 0, 0}, 1},
		{[]int{0, 0, 1}, 3},
		{[]int{0, 1, 2}, 6},
		{[]int{0, 0, 1, 1}, 6},
		{[]int{0, 1, 2, 3}, 24},
		{[]int{1, 1, 1, 2}, 4},
	}

	for _, tt := range tests {
		if got := Multiplicity(tt.idx); got != tt.want {
			t.Errorf("Multiplicity(%v) = %d, want %d", tt.idx, got, tt.want)
		}
	}
}

func TestMultiplicitySumsToFullTensor(t *testing.T) {
	// The multiplicities over all unique tuples must account for every
	// cell of the full memory^order tensor.
	for memory := 1; memory <= 5; memory++ {
		for order := 1; order <= 4; order++ {
			gen := NewGenerator(memory, order)

			sum := 0
			for gen.Next() {
				sum += Multiplicity(gen.Current(nil))
			}

			want := 1
			for i := 0; i < order; i++ {
				want *= memory
			}

			if sum != want {
				t.Errorf("memory=%d order=%d: multiplicities sum to %d, want %d",
					memory, order, sum, want)
			}
		}
	}
}

func TestCanonical(t *testing.T) {
	in := []int{3, 0, 2, 0}
	got := Canonical(in)

	if !reflect.DeepEqual(got, []int{0, 0, 2, 3}) {
		t.Errorf("Canonical(%v) = %v", in, got)
	}

	if !reflect.DeepEqual(in, []int{3, 0, 2, 0}) {
		t.Error("Canonical mutated its input")
	}
}

func lexLess(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}

	return false
}
