package ephem

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrUnknownSeries is returned when a series is queried that the
	// metadata does not describe.
	ErrUnknownSeries = errors.New("unknown ephemeris series")

	// ErrOutOfRange is returned for Julian Dates outside a series' coverage.
	ErrOutOfRange = errors.New("julian date outside ephemeris coverage")
)

// Properties is the state of one series at an instant.
type Properties struct {
	Position r3.Vec // km
	Velocity r3.Vec // km/day
}

// Store answers position and velocity queries from an immutable ephemeris
// buffer. It never writes to the buffer, so one Store may be shared between
// goroutines; callers must not modify the buffer after handing it over.
type Store struct {
	buf  []byte
	meta Metadata
}

// NewStore validates meta against buf and returns a store over both.
func NewStore(buf []byte, meta Metadata) (*Store, error) {
	if err := meta.Validate(len(buf)); err != nil {
		return nil, err
	}
	series := make(map[SeriesKind]SeriesMetadata, len(meta.Series))
	for k, s := range meta.Series {
		series[k] = s
	}
	return &Store{
		buf:  buf,
		meta: Metadata{StartJD: meta.StartJD, Series: series},
	}, nil
}

// Open reads the ephemeris buffer and its metadata from disk.
func Open(dataPath, metadataPath string) (*Store, error) {
	meta, err := LoadMetadataFile(metadataPath)
	if err != nil {
		return nil, err
	}
	buf, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, fmt.Errorf("read ephemeris: %w", err)
	}
	return NewStore(buf, meta)
}

// StartJD returns the Julian Date of the first interval of every series.
func (s *Store) StartJD() float64 {
	return s.meta.StartJD
}

// Metadata returns the description of kind.
func (s *Store) Metadata(kind SeriesKind) (SeriesMetadata, error) {
	m, ok := s.meta.Series[kind]
	if !ok {
		return SeriesMetadata{}, fmt.Errorf("%w: %q", ErrUnknownSeries, kind)
	}
	return m, nil
}

// Kinds returns the series held by the store.
func (s *Store) Kinds() []SeriesKind {
	return s.meta.Kinds()
}

// Coverage returns the half-open range [start, end) of Julian Dates that
// kind can answer for.
func (s *Store) Coverage(kind SeriesKind) (start, end float64, err error) {
	m, err := s.Metadata(kind)
	if err != nil {
		return 0, 0, err
	}
	start, end = s.coverage(m)
	return start, end, nil
}

// Span returns the range covered by every series at once.
func (s *Store) Span() (start, end float64) {
	start, end = math.Inf(-1), math.Inf(1)
	for _, m := range s.meta.Series {
		a, b := s.coverage(m)
		start = math.Max(start, a)
		end = math.Min(end, b)
	}
	return start, end
}

func (s *Store) coverage(m SeriesMetadata) (start, end float64) {
	start = s.meta.StartJD
	return start, start + float64(m.IntervalCount())*m.IntervalDays
}

// PositionAndVelocity evaluates kind at jd.
func (s *Store) PositionAndVelocity(kind SeriesKind, jd float64) (Properties, error) {
	m, err := s.Metadata(kind)
	if err != nil {
		return Properties{}, err
	}
	start, end := s.coverage(m)
	if !(jd >= start && jd < end) {
		return Properties{}, fmt.Errorf("%w: %s at JD %.6f, covered %.1f to %.1f",
			ErrOutOfRange, kind, jd, start, end)
	}

	loc := Locate(m, s.meta.StartJD, jd)
	if last := m.IntervalCount() - 1; loc.Index > last {
		// Rounding can push a date just short of the end into the next interval.
		loc = locateIndex(m, s.meta.StartJD, last, jd)
	}

	var cbuf [maxStackTerms]float64
	coeffs := cbuf[:]
	if m.CoeffCount > maxStackTerms {
		coeffs = make([]float64, m.CoeffCount)
	}
	coeffs = coeffs[:m.CoeffCount]

	var pos, vel [vectorProperties]float64
	off := loc.ByteOffset
	for p := 0; p < vectorProperties; p++ {
		off = s.readCoefficients(off, coeffs)
		pos[p], vel[p] = Evaluate(coeffs, loc.X)
	}

	scale := m.VelocityScale()
	return Properties{
		Position: r3.Vec{X: pos[0], Y: pos[1], Z: pos[2]},
		Velocity: r3.Vec{X: vel[0] * scale, Y: vel[1] * scale, Z: vel[2] * scale},
	}, nil
}

// readCoefficients fills dst from the buffer at off and returns the offset
// just past the last value read.
func (s *Store) readCoefficients(off int, dst []float64) int {
	for i := range dst {
		dst[i] = math.Float64frombits(binary.LittleEndian.Uint64(s.buf[off:]))
		off += bytesPerCoefficient
	}
	return off
}
