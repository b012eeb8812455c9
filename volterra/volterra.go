package volterra

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-volterra/identify"
	"github.com/cwbudde/algo-volterra/separate"
)

// Errors returned by the identification pipeline.
var (
	ErrInvalidConfig      = errors.New("volterra: invalid configuration")
	ErrMissingMeasurement = errors.New("volterra: measurement does not match the configured separation method")
)

// SeparationMethod selects how order components are recovered before
// kernel estimation.
type SeparationMethod int

const (
	// SeparationNone skips separation; the measurement is used as-is.
	SeparationNone SeparationMethod = iota

	// SeparationAmplitude separates orders from amplitude-scaled input
	// variants.
	SeparationAmplitude

	// SeparationPhase separates orders from phase-rotated input variants.
	SeparationPhase
)

// Mode selects the regression strategy of the kernel estimator.
type Mode int

const (
	// ModeByOrder regresses each order independently against its
	// separated output component.
	ModeByOrder Mode = iota

	// ModeDirect regresses all orders jointly against one unseparated
	// measurement. It requires SeparationNone.
	ModeDirect
)

// Config collects the options of one identification run.
type Config struct {
	// Order is the truncation order N.
	Order int

	// Memory is the kernel memory length M in samples.
	Memory int

	// Separation selects the order-separation method.
	Separation SeparationMethod

	// Mode selects the regression mode.
	Mode Mode

	// Lambda is the ridge regularization parameter (>= 0).
	Lambda float64

	// CondThreshold bounds the amplitude separation matrix condition
	// number. Zero means separate.DefaultCondThreshold.
	CondThreshold float64

	// Gain is the base ratio for derived amplitude scale factors. Zero
	// means separate.DefaultGain.
	Gain float64

	// NumFactors is the number of amplitude variants K (>= Order). Zero
	// means K = Order.
	NumFactors int
}

// Measurement carries the signals of one identification run. Input is the
// base input signal. Outputs holds real-valued measured responses: the
// amplitude-scaled variants (SeparationAmplitude), the already-separated
// order components (SeparationNone with ModeByOrder), or a single combined
// response (SeparationNone with ModeDirect). PhaseOutputs holds the
// complex responses to the phase-rotated variants (SeparationPhase).
// All measured responses must have the same length as Input.
type Measurement struct {
	Input        []float64
	Outputs      [][]float64
	PhaseOutputs [][]complex128
}

// Identify runs the configured pipeline: order separation (if any) followed
// by kernel estimation. It returns one kernel per order 1..Order, or the
// first error encountered; no partial results are produced.
func Identify(m Measurement, cfg Config) (identify.Result, error) {
	if cfg.Mode == ModeDirect && cfg.Separation != SeparationNone {
		return nil, fmt.Errorf("%w: direct mode requires SeparationNone", ErrInvalidConfig)
	}

	est := &identify.Estimator{
		Order:  cfg.Order,
		Memory: cfg.Memory,
		Lambda: cfg.Lambda,
	}

	if err := est.Validate(); err != nil {
		return nil, err
	}

	if cfg.Mode == ModeDirect {
		if len(m.Outputs) != 1 {
			return nil, fmt.Errorf("%w: direct mode needs exactly one measured output, got %d",
				ErrMissingMeasurement, len(m.Outputs))
		}

		output, err := validRegion(m.Outputs[0], cfg.Memory)
		if err != nil {
			return nil, err
		}

		return est.Direct(m.Input, output)
	}

	orders, err := orderComponents(m, cfg)
	if err != nil {
		return nil, err
	}

	trimmed := make([][]float64, len(orders))
	for i, y := range orders {
		trimmed[i], err = validRegion(y, cfg.Memory)
		if err != nil {
			return nil, err
		}
	}

	return est.ByOrder(m.Input, trimmed)
}

// orderComponents produces the per-order output signals according to the
// configured separation method.
func orderComponents(m Measurement, cfg Config) ([][]float64, error) {
	switch cfg.Separation {
	case SeparationNone:
		if len(m.Outputs) != cfg.Order {
			return nil, fmt.Errorf("%w: got %d order signals, want %d",
				ErrMissingMeasurement, len(m.Outputs), cfg.Order)
		}

		return m.Outputs, nil

	case SeparationAmplitude:
		sep := &separate.Amplitude{
			Order:         cfg.Order,
			Gain:          cfg.Gain,
			NumFactors:    cfg.NumFactors,
			CondThreshold: cfg.CondThreshold,
		}

		res, err := sep.Separate(m.Outputs)
		if err != nil {
			return nil, err
		}

		return res.Orders, nil

	case SeparationPhase:
		sep := &separate.Phase{Order: cfg.Order}

		res, err := sep.Separate(m.PhaseOutputs)
		if err != nil {
			return nil, err
		}

		return res.Orders, nil
	}

	return nil, fmt.Errorf("%w: unknown separation method %d", ErrInvalidConfig, cfg.Separation)
}

// validRegion drops the first Memory-1 samples, aligning a full-length
// signal to the regression rows that have a complete history window.
func validRegion(sig []float64, memory int) ([]float64, error) {
	if len(sig) < memory {
		return nil, fmt.Errorf("%w: signal has %d samples, memory is %d",
			identify.ErrDimensionMismatch, len(sig), memory)
	}

	return sig[memory-1:], nil
}
