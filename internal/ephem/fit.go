package ephem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Fit returns n Chebyshev coefficients interpolating f on [-1, 1] at the
// n Chebyshev nodes. Polynomials of degree below n are reproduced exactly.
func Fit(f func(x float64) float64, n int) []float64 {
	c := make([]float64, n)
	fx := make([]float64, n)
	for k := range fx {
		fx[k] = f(math.Cos(math.Pi * (float64(k) + 0.5) / float64(n)))
	}
	for j := range c {
		sum := 0.0
		for k, v := range fx {
			sum += v * math.Cos(float64(j)*math.Pi*(float64(k)+0.5)/float64(n))
		}
		c[j] = 2 * sum / float64(n)
	}
	c[0] /= 2
	return c
}

// FitSeries fills every interval of s in buf by interpolating pos, a
// position in km as a function of Julian Date.
func FitSeries(buf []byte, s SeriesMetadata, startJD float64, pos func(jd float64) r3.Vec) error {
	if s.PropertyCount != vectorProperties {
		return fmt.Errorf("%w: fit needs %d properties, have %d", ErrInvalidMetadata, vectorProperties, s.PropertyCount)
	}
	for i := 0; i < s.IntervalCount(); i++ {
		intervalStart := startJD + float64(i)*s.IntervalDays
		at := func(x float64) r3.Vec {
			return pos(intervalStart + (x+1)*s.IntervalDays/2)
		}
		coeffs := [][]float64{
			Fit(func(x float64) float64 { return at(x).X }, s.CoeffCount),
			Fit(func(x float64) float64 { return at(x).Y }, s.CoeffCount),
			Fit(func(x float64) float64 { return at(x).Z }, s.CoeffCount),
		}
		if err := PutInterval(buf, s, i, coeffs); err != nil {
			return err
		}
	}
	return nil
}
