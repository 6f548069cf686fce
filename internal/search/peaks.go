package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds how many brackets Peaks refines at once.
const DefaultWorkers = 4

// Search finds every local maximum over a sampled axis.
type Search[T any] struct {
	Sampler   Sampler[T]
	Precision float64 // target bracket width, in domain units
	Workers   int     // concurrent refinements; DefaultWorkers when <= 0
}

// Brackets samples xs and returns the brackets around local maxima.
func (s Search[T]) Brackets(xs []float64) ([]Range[T], error) {
	if len(xs) < MinSamples {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrTooFewSamples, len(xs), MinSamples)
	}
	samples, err := s.Sampler.SampleAll(xs)
	if err != nil {
		return nil, err
	}
	return FindBrackets(samples)
}

// CoarsePeaks returns the best sample of each bracket without refining it.
func (s Search[T]) CoarsePeaks(xs []float64) ([]Peak[T], error) {
	ranges, err := s.Brackets(xs)
	if err != nil {
		return nil, err
	}
	peaks := make([]Peak[T], len(ranges))
	for i, r := range ranges {
		peaks[i] = Peak[T]{Peak: r.Peak, ClosestSource: r.Peak}
	}
	return peaks, nil
}

// Peaks samples xs, brackets the local maxima and refines each bracket to
// s.Precision. Brackets are independent, so they are refined concurrently.
// Results are in increasing domain order of the coarse peaks.
func (s Search[T]) Peaks(ctx context.Context, xs []float64) ([]Peak[T], error) {
	if !(s.Precision > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrecision, s.Precision)
	}
	ranges, err := s.Brackets(xs)
	if err != nil {
		return nil, err
	}

	workers := s.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	peaks := make([]Peak[T], len(ranges))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, r := range ranges {
		i, r := i, r
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := Refine(s.Sampler, r, s.Precision)
			if err != nil {
				return fmt.Errorf("refine bracket at %v: %w", r.Peak.Domain, err)
			}
			peaks[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return peaks, nil
}
