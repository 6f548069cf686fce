// Package search locates local maxima of an expensive, sampled quality
// function of one real variable and refines them to a requested width.
//
// The package knows nothing about what is being searched: a sample carries
// an opaque payload next to its domain value and quality, so the same code
// finds perigees, apogees and lunar phases.
package search

import (
	"errors"
	"fmt"
)

var (
	// ErrTooFewSamples is returned when bracket detection gets fewer than
	// MinSamples samples.
	ErrTooFewSamples = errors.New("too few samples for bracket detection")

	// ErrNoPeakFound is returned when subdividing a bracket reveals no
	// local maximum. The quality function is not unimodal inside the
	// bracket, or it is not smooth at the sampling scale.
	ErrNoPeakFound = errors.New("no peak found while refining bracket")

	// ErrInvalidPrecision is returned for non-positive target widths.
	ErrInvalidPrecision = errors.New("precision must be positive")

	// ErrUnordered is returned when samples are not strictly increasing
	// in their domain value.
	ErrUnordered = errors.New("samples must be in increasing domain order")
)

// MinSamples is the fewest samples FindBrackets accepts.
const MinSamples = 4

// Sample is one evaluated point of the searched function.
type Sample[T any] struct {
	Value   T       // payload the caller materialized at Domain
	Domain  float64 // position on the searched axis
	Quality float64 // higher is better
}

// Range brackets a local maximum: Peak is at least as good as both bounds.
type Range[T any] struct {
	Lower Sample[T]
	Peak  Sample[T]
	Upper Sample[T]
}

// Width returns the domain distance between the bounds.
func (r Range[T]) Width() float64 {
	return r.Upper.Domain - r.Lower.Domain
}

// Peak is a refined maximum together with the coarse sample it grew from.
type Peak[T any] struct {
	Peak          Sample[T]
	ClosestSource Sample[T]

	// Depth is the number of subdivision levels the refinement went through.
	Depth int

	// Evaluations counts the samples materialized during refinement.
	Evaluations int
}

// Quality returns the quality of the refined peak.
func (p Peak[T]) Quality() float64 {
	return p.Peak.Quality
}

// Sampler turns a domain value into a sample. Represent builds the payload
// (the expensive part, e.g. an ephemeris evaluation); Quality scores it.
//
// Both functions may be called from several goroutines at once by
// Search.Peaks, so they must not share mutable state.
type Sampler[T any] struct {
	Represent func(x float64) (T, error)
	Quality   func(v T) float64
}

// Sample materializes the sample at x.
func (s Sampler[T]) Sample(x float64) (Sample[T], error) {
	v, err := s.Represent(x)
	if err != nil {
		return Sample[T]{}, fmt.Errorf("sample at %v: %w", x, err)
	}
	return Sample[T]{Value: v, Domain: x, Quality: s.Quality(v)}, nil
}

// SampleAll materializes a sample for each x, in order.
func (s Sampler[T]) SampleAll(xs []float64) ([]Sample[T], error) {
	out := make([]Sample[T], len(xs))
	for i, x := range xs {
		smp, err := s.Sample(x)
		if err != nil {
			return nil, err
		}
		out[i] = smp
	}
	return out, nil
}

// Steps returns the domain values from start to end inclusive spaced by
// step. The last value is end itself when the span is not a whole number
// of steps.
func Steps(start, end, step float64) []float64 {
	if !(step > 0) || end < start {
		return nil
	}
	n := int((end - start) / step)
	xs := make([]float64, 0, n+2)
	for i := 0; i <= n; i++ {
		xs = append(xs, start+float64(i)*step)
	}
	if last := xs[len(xs)-1]; last < end {
		xs = append(xs, end)
	}
	return xs
}
