package search

import "fmt"

// FindBrackets slides a three-sample window over samples and returns a
// Range wherever the middle sample is at least as good as both neighbors.
// An empty result means samples are monotone; it is not an error.
func FindBrackets[T any](samples []Sample[T]) ([]Range[T], error) {
	if len(samples) < MinSamples {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrTooFewSamples, len(samples), MinSamples)
	}
	for i := 1; i < len(samples); i++ {
		if !(samples[i].Domain > samples[i-1].Domain) {
			return nil, fmt.Errorf("%w: %v follows %v", ErrUnordered, samples[i].Domain, samples[i-1].Domain)
		}
	}

	var ranges []Range[T]
	for i := 1; i+1 < len(samples); i++ {
		lo, mid, hi := samples[i-1], samples[i], samples[i+1]
		if mid.Quality >= lo.Quality && mid.Quality >= hi.Quality {
			ranges = append(ranges, Range[T]{Lower: lo, Peak: mid, Upper: hi})
		}
	}
	return ranges, nil
}
