package ephem

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrInvalidMetadata reports a series description that cannot be used with
// the buffer it was supplied for.
var ErrInvalidMetadata = errors.New("invalid ephemeris metadata")

// vectorProperties is the number of properties in every supported series (x, y, z).
const vectorProperties = 3

// Metadata is the external description of the flat ephemeris buffer: where
// each series starts and the Julian Date of its first interval.
type Metadata struct {
	StartJD float64                       `yaml:"start_jd" json:"start_jd"`
	Series  map[SeriesKind]SeriesMetadata `yaml:"series" json:"series"`
}

// LoadMetadata decodes metadata from YAML or JSON.
func LoadMetadata(r io.Reader) (Metadata, error) {
	var m Metadata
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

// LoadMetadataFile reads metadata from path.
func LoadMetadataFile(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()
	return LoadMetadata(f)
}

// Kinds returns the series present in m, in a stable order.
func (m Metadata) Kinds() []SeriesKind {
	kinds := make([]SeriesKind, 0, len(m.Series))
	for k := range m.Series {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool {
		return m.Series[kinds[i]].ByteOffset < m.Series[kinds[j]].ByteOffset
	})
	return kinds
}

// Size returns the smallest buffer length that holds every series.
func (m Metadata) Size() int {
	size := 0
	for _, s := range m.Series {
		if end := s.ByteOffset + s.ByteSize; end > size {
			size = end
		}
	}
	return size
}

// Validate checks every series against a buffer of bufLen bytes and
// rejects series whose regions overlap.
func (m Metadata) Validate(bufLen int) error {
	if math.IsNaN(m.StartJD) || math.IsInf(m.StartJD, 0) {
		return fmt.Errorf("%w: start date %v", ErrInvalidMetadata, m.StartJD)
	}
	if len(m.Series) == 0 {
		return fmt.Errorf("%w: no series", ErrInvalidMetadata)
	}
	kinds := m.Kinds()
	for _, kind := range kinds {
		if err := m.Series[kind].validate(bufLen); err != nil {
			return fmt.Errorf("%w: series %s: %v", ErrInvalidMetadata, kind, err)
		}
	}
	// Kinds is ordered by offset, so only neighbours can overlap.
	for i := 1; i < len(kinds); i++ {
		prev, cur := m.Series[kinds[i-1]], m.Series[kinds[i]]
		if prev.ByteOffset+prev.ByteSize > cur.ByteOffset {
			return fmt.Errorf("%w: series %s overlaps %s at byte %d",
				ErrInvalidMetadata, kinds[i], kinds[i-1], cur.ByteOffset)
		}
	}
	return nil
}

func (s SeriesMetadata) validate(bufLen int) error {
	switch {
	case s.CoeffCount < 2:
		return fmt.Errorf("need at least 2 coefficients, have %d", s.CoeffCount)
	case s.CoeffCount > 1<<10:
		return fmt.Errorf("%d coefficients is implausible", s.CoeffCount)
	case s.PropertyCount != vectorProperties:
		return fmt.Errorf("need %d properties, have %d", vectorProperties, s.PropertyCount)
	case !(s.IntervalDays > 0) || math.IsInf(s.IntervalDays, 0):
		return fmt.Errorf("interval duration %v days", s.IntervalDays)
	case s.ByteOffset < 0 || s.ByteSize <= 0:
		return fmt.Errorf("region at %d size %d", s.ByteOffset, s.ByteSize)
	case s.ByteSize%s.IntervalByteSize() != 0:
		return fmt.Errorf("size %d is not a multiple of the %d-byte interval", s.ByteSize, s.IntervalByteSize())
	case s.ByteOffset+s.ByteSize > bufLen:
		return fmt.Errorf("region ends at %d past buffer length %d", s.ByteOffset+s.ByteSize, bufLen)
	}
	return nil
}

// SeriesSpec shapes one series for Layout.
type SeriesSpec struct {
	Kind         SeriesKind
	IntervalDays float64
	CoeffCount   int
	Intervals    int
}

// ShippedSeries returns the interval shapes of the shipped dataset, each
// holding the given number of intervals.
func ShippedSeries(emb, moon, sun int) []SeriesSpec {
	return []SeriesSpec{
		{Kind: SeriesEarthMoonBarycenter, IntervalDays: 16, CoeffCount: 13, Intervals: emb},
		{Kind: SeriesMoonOffset, IntervalDays: 4, CoeffCount: 13, Intervals: moon},
		{Kind: SeriesSun, IntervalDays: 16, CoeffCount: 4, Intervals: sun},
	}
}

// Layout places the given series back to back, in argument order.
func Layout(startJD float64, specs ...SeriesSpec) Metadata {
	m := Metadata{StartJD: startJD, Series: make(map[SeriesKind]SeriesMetadata, len(specs))}
	offset := 0
	for _, spec := range specs {
		s := SeriesMetadata{
			ByteOffset:    offset,
			IntervalDays:  spec.IntervalDays,
			PropertyCount: vectorProperties,
			CoeffCount:    spec.CoeffCount,
		}
		s.ByteSize = spec.Intervals * s.IntervalByteSize()
		offset += s.ByteSize
		m.Series[spec.Kind] = s
	}
	return m
}

// PutInterval writes one interval of coefficients, property-major, into buf.
func PutInterval(buf []byte, s SeriesMetadata, index int, coeffs [][]float64) error {
	if index < 0 || index >= s.IntervalCount() {
		return fmt.Errorf("interval %d outside 0..%d", index, s.IntervalCount()-1)
	}
	if len(coeffs) != s.PropertyCount {
		return fmt.Errorf("have %d properties, want %d", len(coeffs), s.PropertyCount)
	}
	off := s.ByteOffset + index*s.IntervalByteSize()
	for p, cs := range coeffs {
		if len(cs) != s.CoeffCount {
			return fmt.Errorf("property %d has %d coefficients, want %d", p, len(cs), s.CoeffCount)
		}
		for _, c := range cs {
			binary.LittleEndian.PutUint64(buf[off:], math.Float64bits(c))
			off += bytesPerCoefficient
		}
	}
	return nil
}
