// Package volterra ties order separation and kernel estimation into a
// single identification pipeline for truncated Volterra models.
//
// A Volterra model expresses a nonlinear system with memory as a sum of
// homogeneous orders, each governed by a symmetric kernel. Identification
// proceeds in two stages: separate the measured response into its order
// components (by exciting the system with amplitude-scaled or
// phase-rotated input variants), then regress each component against the
// combinatorial basis of delayed input products.
//
// # Usage
//
// Measure the system response to amplitude-scaled inputs and identify the
// kernels up to order 3:
//
//	cfg := volterra.Config{
//	    Order:      3,
//	    Memory:     16,
//	    Separation: volterra.SeparationAmplitude,
//	}
//	kernels, err := volterra.Identify(volterra.Measurement{
//	    Input:   input,
//	    Outputs: responses, // one per scale factor
//	}, cfg)
//
// With a single unseparated measurement, use direct mode, typically with
// ridge regularization:
//
//	cfg := volterra.Config{
//	    Order:  3,
//	    Memory: 16,
//	    Mode:   volterra.ModeDirect,
//	    Lambda: 1e-6,
//	}
//	kernels, err := volterra.Identify(volterra.Measurement{
//	    Input:   input,
//	    Outputs: [][]float64{response},
//	}, cfg)
//
// The lower-level building blocks are available directly in the separate,
// basis, identify, kernel, and predict packages.
package volterra
