package identify

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/cwbudde/algo-volterra/internal/testutil"
	"github.com/cwbudde/algo-volterra/kernel"
	"github.com/cwbudde/algo-volterra/predict"
)

func randomKernel(t *testing.T, order, memory int, rng *rand.Rand) *kernel.Tensor {
	t.Helper()

	k, err := kernel.New(order, memory)
	if err != nil {
		t.Fatalf("kernel.New(%d, %d) failed: %v", order, memory, err)
	}

	coeffs := k.Coeffs()
	for i := range coeffs {
		coeffs[i] = rng.Float64()*2 - 1
	}

	k2, err := kernel.FromCoeffs(order, memory, coeffs)
	if err != nil {
		t.Fatalf("kernel.FromCoeffs failed: %v", err)
	}

	return k2
}

func assertCoeffsClose(t *testing.T, got, want *kernel.Tensor, tol float64) {
	t.Helper()

	gc, wc := got.Coeffs(), want.Coeffs()
	if len(gc) != len(wc) {
		t.Fatalf("coefficient count = %d, want %d", len(gc), len(wc))
	}

	for i := range gc {
		if math.Abs(gc[i]-wc[i]) > tol {
			t.Fatalf("coefficient %d: got %v, want %v (tol %v)", i, gc[i], wc[i], tol)
		}
	}
}

func TestEstimator_Validate(t *testing.T) {
	tests := []struct {
		name string
		est  Estimator
		want error
	}{
		{"valid", Estimator{Order: 3, Memory: 4}, nil},
		{"valid ridge", Estimator{Order: 2, Memory: 2, Lambda: 1e-6}, nil},
		{"zero order", Estimator{Order: 0, Memory: 4}, ErrInvalidOrder},
		{"negative order", Estimator{Order: -1, Memory: 4}, ErrInvalidOrder},
		{"zero memory", Estimator{Order: 2, Memory: 0}, ErrInvalidMemory},
		{"negative lambda", Estimator{Order: 2, Memory: 2, Lambda: -1}, ErrInvalidLambda},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.est.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestByOrder_RoundTrip(t *testing.T) {
	const (
		order  = 3
		memory = 3
		length = 200
	)

	rng := rand.New(rand.NewPCG(7, 11))
	input := testutil.Noise(7, length)

	want := map[int]*kernel.Tensor{}
	for n := 1; n <= order; n++ {
		want[n] = randomKernel(t, n, memory, rng)
	}

	outputs, err := predict.Outputs(want, input)
	if err != nil {
		t.Fatalf("predict.Outputs failed: %v", err)
	}

	// keep only the samples with a full history window
	orders := make([][]float64, order)
	for i, y := range outputs {
		orders[i] = y[memory-1:]
	}

	est := &Estimator{Order: order, Memory: memory}

	res, err := est.ByOrder(input, orders)
	if err != nil {
		t.Fatalf("ByOrder failed: %v", err)
	}

	if len(res) != order {
		t.Fatalf("got %d kernels, want %d", len(res), order)
	}

	for n := 1; n <= order; n++ {
		assertCoeffsClose(t, res[n], want[n], 1e-7)
	}
}

func TestDirect_RoundTrip(t *testing.T) {
	const (
		order  = 3
		memory = 3
		length = 200
	)

	rng := rand.New(rand.NewPCG(13, 17))
	input := testutil.Noise(13, length)

	want := map[int]*kernel.Tensor{}
	for n := 1; n <= order; n++ {
		want[n] = randomKernel(t, n, memory, rng)
	}

	total, err := predict.Sum(want, input)
	if err != nil {
		t.Fatalf("predict.Sum failed: %v", err)
	}

	est := &Estimator{Order: order, Memory: memory}

	res, err := est.Direct(input, total[memory-1:])
	if err != nil {
		t.Fatalf("Direct failed: %v", err)
	}

	for n := 1; n <= order; n++ {
		assertCoeffsClose(t, res[n], want[n], 1e-7)
	}
}

func TestByOrder_RankDeficient(t *testing.T) {
	const (
		memory = 3
		length = 50
	)

	// A constant input makes all delayed columns identical.
	input := testutil.Constant(1, length)
	output := testutil.Constant(3, length-memory+1)

	est := &Estimator{Order: 1, Memory: memory}

	if _, err := est.ByOrder(input, [][]float64{output}); !errors.Is(err, ErrRankDeficient) {
		t.Fatalf("ByOrder on constant input error = %v, want ErrRankDeficient", err)
	}

	// Ridge regularization makes the system solvable again.
	est.Lambda = 1e-3

	res, err := est.ByOrder(input, [][]float64{output})
	if err != nil {
		t.Fatalf("ridge ByOrder failed: %v", err)
	}

	testutil.RequireFinite(t, res[1].Coeffs())
}

func TestDirect_Ridge(t *testing.T) {
	const (
		order  = 2
		memory = 3
		length = 200
	)

	rng := rand.New(rand.NewPCG(19, 23))
	input := testutil.Noise(19, length)

	want := map[int]*kernel.Tensor{}
	for n := 1; n <= order; n++ {
		want[n] = randomKernel(t, n, memory, rng)
	}

	total, err := predict.Sum(want, input)
	if err != nil {
		t.Fatalf("predict.Sum failed: %v", err)
	}

	// A tiny ridge penalty barely perturbs a well-conditioned problem.
	est := &Estimator{Order: order, Memory: memory, Lambda: 1e-10}

	res, err := est.Direct(input, total[memory-1:])
	if err != nil {
		t.Fatalf("Direct failed: %v", err)
	}

	for n := 1; n <= order; n++ {
		assertCoeffsClose(t, res[n], want[n], 1e-4)
	}
}

func TestByOrder_DimensionMismatch(t *testing.T) {
	input := make([]float64, 40)
	good := make([]float64, 38) // 40 - (3-1)
	bad := make([]float64, 40)

	est := &Estimator{Order: 2, Memory: 3}

	if _, err := est.ByOrder(input, [][]float64{good}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("wrong signal count error = %v, want ErrDimensionMismatch", err)
	}

	if _, err := est.ByOrder(input, [][]float64{good, bad}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("full-length signal error = %v, want ErrDimensionMismatch", err)
	}

	short := []float64{1, 2}
	if _, err := est.ByOrder(short, [][]float64{good, good}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("short input error = %v, want ErrDimensionMismatch", err)
	}
}

func TestDirect_DimensionMismatch(t *testing.T) {
	input := make([]float64, 40)
	bad := make([]float64, 40)

	est := &Estimator{Order: 2, Memory: 3}

	if _, err := est.Direct(input, bad); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("full-length output error = %v, want ErrDimensionMismatch", err)
	}
}
