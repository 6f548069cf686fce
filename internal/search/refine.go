package search

import "fmt"

// subdivisions is the number of new samples taken inside a bracket per level.
const subdivisions = 3

// Refine narrows r until its width is below precision and returns the best
// peak it converged to.
//
// Each level samples r at 1/4, 2/4 and 3/4 of its width and re-runs bracket
// detection over the five points. Every sub-bracket found is refined in
// turn; when several appear the one with the highest final quality wins.
// A level that finds no sub-bracket fails with ErrNoPeakFound.
//
// Sub-brackets are half the width of their parent, so the depth is bounded
// by ceil(log2(r.Width()/precision)).
func Refine[T any](s Sampler[T], r Range[T], precision float64) (Peak[T], error) {
	if !(precision > 0) {
		return Peak[T]{}, fmt.Errorf("%w: %v", ErrInvalidPrecision, precision)
	}

	type pending struct {
		r     Range[T]
		depth int
	}

	result := Peak[T]{ClosestSource: r.Peak}
	found := false
	work := []pending{{r: r}}

	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]

		if p.r.Width() < precision {
			if !found || p.r.Peak.Quality > result.Peak.Quality {
				result.Peak = p.r.Peak
				result.Depth = p.depth
				found = true
			}
			continue
		}

		points, err := subdivide(s, p.r)
		if err != nil {
			return Peak[T]{}, err
		}
		result.Evaluations += subdivisions

		subs, err := FindBrackets(points)
		if err != nil {
			return Peak[T]{}, err
		}
		if len(subs) == 0 {
			return Peak[T]{}, fmt.Errorf("%w: [%v, %v] at depth %d",
				ErrNoPeakFound, p.r.Lower.Domain, p.r.Upper.Domain, p.depth)
		}

		// Push in reverse so the lowest sub-bracket is refined first.
		for i := len(subs) - 1; i >= 0; i-- {
			work = append(work, pending{r: subs[i], depth: p.depth + 1})
		}
	}

	return result, nil
}

// subdivide returns the bracket bounds with evenly spaced samples between them.
func subdivide[T any](s Sampler[T], r Range[T]) ([]Sample[T], error) {
	lo := r.Lower.Domain
	w := r.Width()

	points := make([]Sample[T], 0, subdivisions+2)
	points = append(points, r.Lower)
	for i := 1; i <= subdivisions; i++ {
		x := lo + w*float64(i)/float64(subdivisions+1)
		smp, err := s.Sample(x)
		if err != nil {
			return nil, err
		}
		points = append(points, smp)
	}
	points = append(points, r.Upper)
	return points, nil
}
