// Package ephem decodes the reduced binary ephemeris and evaluates its
// Chebyshev series for position and velocity.
package ephem

import "math"

// SeriesKind identifies one decoded physical quantity in the ephemeris file.
type SeriesKind string

const (
	// SeriesEarthMoonBarycenter is the offset from the solar-system
	// barycenter to the Earth-Moon barycenter.
	SeriesEarthMoonBarycenter SeriesKind = "emb"

	// SeriesMoonOffset is the offset from the Earth to the Moon.
	SeriesMoonOffset SeriesKind = "moon"

	// SeriesSun is the offset from the solar-system barycenter to the Sun.
	SeriesSun SeriesKind = "sun"
)

// Kinds returns the series kinds in file order.
func Kinds() []SeriesKind {
	return []SeriesKind{SeriesEarthMoonBarycenter, SeriesMoonOffset, SeriesSun}
}

// String returns the series name.
func (k SeriesKind) String() string {
	return string(k)
}

// bytesPerCoefficient is the width of one little-endian float64.
const bytesPerCoefficient = 8

// SeriesMetadata describes where a series lives in the buffer and how its
// intervals are shaped.
type SeriesMetadata struct {
	ByteOffset    int     `yaml:"offset" json:"offset"`
	ByteSize      int     `yaml:"size" json:"size"`
	IntervalDays  float64 `yaml:"interval_days" json:"interval_days"`
	PropertyCount int     `yaml:"properties" json:"properties"`
	CoeffCount    int     `yaml:"coefficients" json:"coefficients"`
}

// IntervalByteSize returns the number of bytes one interval occupies.
func (m SeriesMetadata) IntervalByteSize() int {
	return bytesPerCoefficient * m.CoeffCount * m.PropertyCount
}

// IntervalCount returns how many complete intervals the series holds.
func (m SeriesMetadata) IntervalCount() int {
	size := m.IntervalByteSize()
	if size <= 0 {
		return 0
	}
	return m.ByteSize / size
}

// VelocityScale converts a derivative with respect to the normalized
// variable into a derivative with respect to days.
func (m SeriesMetadata) VelocityScale() float64 {
	return 2 / m.IntervalDays
}

// Location pins a Julian Date to one interval of a series.
type Location struct {
	Index         int     // Interval index from the data start
	IntervalStart float64 // Julian Date at which the interval begins
	ByteOffset    int     // Absolute offset of the interval in the buffer
	X             float64 // Normalized time in [-1, 1)
}

// Locate maps jd onto the interval that covers it. It does not check
// coverage; callers that need bounds use Store, which does.
func Locate(m SeriesMetadata, startJD, jd float64) Location {
	index := int(math.Floor((jd - startJD) / m.IntervalDays))
	return locateIndex(m, startJD, index, jd)
}

func locateIndex(m SeriesMetadata, startJD float64, index int, jd float64) Location {
	intervalStart := startJD + float64(index)*m.IntervalDays
	return Location{
		Index:         index,
		IntervalStart: intervalStart,
		ByteOffset:    m.ByteOffset + index*m.IntervalByteSize(),
		X:             2*(jd-intervalStart)/m.IntervalDays - 1,
	}
}
