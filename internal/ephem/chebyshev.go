package ephem

// maxStackTerms covers every series in the shipped dataset.
const maxStackTerms = 32

// Evaluate sums the Chebyshev series described by coeffs at the normalized
// time x. The returned velocity is the derivative with respect to x; scale
// it with SeriesMetadata.VelocityScale to get a rate per day.
//
// coeffs must hold at least two terms. Store validates this at load time.
func Evaluate(coeffs []float64, x float64) (position, velocity float64) {
	n := len(coeffs)

	var tbuf, vbuf [maxStackTerms]float64
	t, v := tbuf[:], vbuf[:]
	if n > maxStackTerms {
		t, v = make([]float64, n), make([]float64, n)
	}

	t[0], t[1] = 1, x
	v[0], v[1] = 0, 1
	for i := 2; i < n; i++ {
		t[i] = 2*x*t[i-1] - t[i-2]
		v[i] = 2*x*v[i-1] + 2*t[i-1] - v[i-2]
	}

	// Highest degree first keeps the small terms from being swamped.
	for i := n - 1; i >= 0; i-- {
		position += coeffs[i] * t[i]
		velocity += coeffs[i] * v[i]
	}
	return position, velocity
}
