package ephem

import (
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

const testStartJD = 2458416.5

// circle is a test trajectory: a circular orbit in the xy-plane with a
// constant z offset.
type circle struct {
	radius, periodDays, z float64
}

func (c circle) position(jd float64) [3]float64 {
	w := 2 * math.Pi / c.periodDays
	a := w * (jd - testStartJD)
	return [3]float64{c.radius * math.Cos(a), c.radius * math.Sin(a), c.z}
}

func (c circle) velocity(jd float64) [3]float64 {
	w := 2 * math.Pi / c.periodDays
	a := w * (jd - testStartJD)
	return [3]float64{-c.radius * w * math.Sin(a), c.radius * w * math.Cos(a), 0}
}

// buildStore fits orbit into every interval of every series in meta.
func buildStore(t *testing.T, meta Metadata, orbits map[SeriesKind]circle) *Store {
	t.Helper()
	buf := make([]byte, meta.Size())
	for kind, s := range meta.Series {
		orbit := orbits[kind]
		for i := 0; i < s.IntervalCount(); i++ {
			intervalStart := meta.StartJD + float64(i)*s.IntervalDays
			props := make([][]float64, s.PropertyCount)
			for p := range props {
				p := p
				props[p] = Fit(func(x float64) float64 {
					jd := intervalStart + (x+1)*s.IntervalDays/2
					return orbit.position(jd)[p]
				}, s.CoeffCount)
			}
			if err := PutInterval(buf, s, i, props); err != nil {
				t.Fatalf("PutInterval(%s, %d): %v", kind, i, err)
			}
		}
	}
	store, err := NewStore(buf, meta)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func testOrbits() map[SeriesKind]circle {
	return map[SeriesKind]circle{
		SeriesEarthMoonBarycenter: {radius: 1.496e8, periodDays: 365.25, z: -2.5e4},
		SeriesMoonOffset:          {radius: 384400, periodDays: 27.321661, z: 1200},
		SeriesSun:                 {radius: 1.1e6, periodDays: 4332.6, z: 30},
	}
}

func TestStore_PositionAndVelocity(t *testing.T) {
	meta := Layout(testStartJD, ShippedSeries(8, 32, 8)...)
	orbits := testOrbits()
	store := buildStore(t, meta, orbits)

	for _, kind := range Kinds() {
		orbit := orbits[kind]
		for _, offset := range []float64{0, 0.5, 3.99, 4, 17.25, 60.125, 127.9} {
			jd := testStartJD + offset
			got, err := store.PositionAndVelocity(kind, jd)
			if err != nil {
				t.Fatalf("%s at %v: %v", kind, jd, err)
			}

			wantPos := orbit.position(jd)
			wantVel := orbit.velocity(jd)
			gotPos := [3]float64{got.Position.X, got.Position.Y, got.Position.Z}
			gotVel := [3]float64{got.Velocity.X, got.Velocity.Y, got.Velocity.Z}
			for i := 0; i < 3; i++ {
				if !scalar.EqualWithinAbsOrRel(gotPos[i], wantPos[i], 1e-3, 1e-9) {
					t.Errorf("%s at +%v: position[%d] = %v, want %v", kind, offset, i, gotPos[i], wantPos[i])
				}
				if !scalar.EqualWithinAbsOrRel(gotVel[i], wantVel[i], 1e-2, 1e-7) {
					t.Errorf("%s at +%v: velocity[%d] = %v, want %v", kind, offset, i, gotVel[i], wantVel[i])
				}
			}
		}
	}
}

func TestStore_VelocityScaling(t *testing.T) {
	meta := Layout(testStartJD, SeriesSpec{Kind: SeriesSun, IntervalDays: 16, CoeffCount: 4, Intervals: 2})
	s := meta.Series[SeriesSun]
	buf := make([]byte, meta.Size())

	// Raw derivative with respect to x is 3, 5 and -7 everywhere.
	props := [][]float64{{10, 3, 0, 0}, {20, 5, 0, 0}, {30, -7, 0, 0}}
	for i := 0; i < 2; i++ {
		if err := PutInterval(buf, s, i, props); err != nil {
			t.Fatal(err)
		}
	}
	store, err := NewStore(buf, meta)
	if err != nil {
		t.Fatal(err)
	}

	got, err := store.PositionAndVelocity(SeriesSun, testStartJD+20)
	if err != nil {
		t.Fatal(err)
	}
	if got.Velocity.X != 3.0/8 || got.Velocity.Y != 5.0/8 || got.Velocity.Z != -7.0/8 {
		t.Errorf("velocity = %+v, want (3/8, 5/8, -7/8)", got.Velocity)
	}
	// x = -0.5 at 4 days into the second interval.
	if got.Position.X != 10-1.5 {
		t.Errorf("position.X = %v, want 8.5", got.Position.X)
	}
}

func TestStore_IntervalBoundary(t *testing.T) {
	meta := Layout(testStartJD, SeriesSpec{Kind: SeriesMoonOffset, IntervalDays: 4, CoeffCount: 13, Intervals: 3})
	s := meta.Series[SeriesMoonOffset]
	buf := make([]byte, meta.Size())

	// Each interval is the line c0 + x with c0 = its index, so the value at
	// a boundary reveals both the interval picked and the x used.
	for i := 0; i < 3; i++ {
		line := make([]float64, 13)
		line[0], line[1] = float64(i*10), 1
		if err := PutInterval(buf, s, i, [][]float64{line, line, line}); err != nil {
			t.Fatal(err)
		}
	}
	store, err := NewStore(buf, meta)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		jd   float64
		want float64
	}{
		{testStartJD, -1},
		{testStartJD + 4, 9},
		{testStartJD + 8, 19},
		{testStartJD + 2, 0},
	}
	for _, tt := range tests {
		got, err := store.PositionAndVelocity(SeriesMoonOffset, tt.jd)
		if err != nil {
			t.Fatalf("JD %v: %v", tt.jd, err)
		}
		if got.Position.X != tt.want {
			t.Errorf("JD %v: position = %v, want %v", tt.jd, got.Position.X, tt.want)
		}
	}
}

func TestStore_Errors(t *testing.T) {
	meta := Layout(testStartJD, SeriesSpec{Kind: SeriesSun, IntervalDays: 16, CoeffCount: 4, Intervals: 2})
	store, err := NewStore(make([]byte, meta.Size()), meta)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		kind    SeriesKind
		jd      float64
		wantErr error
	}{
		{"unknown series", SeriesMoonOffset, testStartJD + 1, ErrUnknownSeries},
		{"before start", SeriesSun, testStartJD - 0.001, ErrOutOfRange},
		{"at end", SeriesSun, testStartJD + 32, ErrOutOfRange},
		{"far after", SeriesSun, testStartJD + 1e6, ErrOutOfRange},
		{"not a number", SeriesSun, math.NaN(), ErrOutOfRange},
		{"last instant", SeriesSun, testStartJD + 31.999, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.PositionAndVelocity(tt.kind, tt.jd)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStore_Coverage(t *testing.T) {
	meta := Layout(testStartJD, ShippedSeries(4, 10, 3)...)
	store, err := NewStore(make([]byte, meta.Size()), meta)
	if err != nil {
		t.Fatal(err)
	}

	start, end, err := store.Coverage(SeriesEarthMoonBarycenter)
	if err != nil {
		t.Fatal(err)
	}
	if start != testStartJD || end != testStartJD+64 {
		t.Errorf("emb coverage = [%v, %v), want [%v, %v)", start, end, testStartJD, testStartJD+64)
	}

	start, end = store.Span()
	if start != testStartJD || end != testStartJD+40 {
		t.Errorf("span = [%v, %v), want [%v, %v)", start, end, testStartJD, testStartJD+40)
	}

	if _, _, err := store.Coverage("mars"); !errors.Is(err, ErrUnknownSeries) {
		t.Errorf("Coverage(mars) err = %v, want ErrUnknownSeries", err)
	}
}

func TestNewStore_Validation(t *testing.T) {
	good := SeriesMetadata{ByteOffset: 0, ByteSize: 96, IntervalDays: 16, PropertyCount: 3, CoeffCount: 4}

	tests := []struct {
		name   string
		mutate func(*SeriesMetadata)
		bufLen int
	}{
		{"one coefficient", func(s *SeriesMetadata) { s.CoeffCount = 1; s.ByteSize = 24 }, 96},
		{"two properties", func(s *SeriesMetadata) { s.PropertyCount = 2; s.ByteSize = 64 }, 96},
		{"zero duration", func(s *SeriesMetadata) { s.IntervalDays = 0 }, 96},
		{"partial interval", func(s *SeriesMetadata) { s.ByteSize = 100 }, 200},
		{"past buffer end", func(s *SeriesMetadata) { s.ByteOffset = 8 }, 96},
		{"negative offset", func(s *SeriesMetadata) { s.ByteOffset = -96 }, 96},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := good
			tt.mutate(&s)
			meta := Metadata{StartJD: testStartJD, Series: map[SeriesKind]SeriesMetadata{SeriesSun: s}}
			_, err := NewStore(make([]byte, tt.bufLen), meta)
			if !errors.Is(err, ErrInvalidMetadata) {
				t.Errorf("err = %v, want ErrInvalidMetadata", err)
			}
		})
	}

	meta := Metadata{StartJD: testStartJD, Series: map[SeriesKind]SeriesMetadata{SeriesSun: good}}
	if _, err := NewStore(make([]byte, 96), meta); err != nil {
		t.Errorf("valid metadata rejected: %v", err)
	}
	if _, err := NewStore(nil, Metadata{StartJD: testStartJD}); !errors.Is(err, ErrInvalidMetadata) {
		t.Errorf("empty metadata err = %v, want ErrInvalidMetadata", err)
	}
}

func TestNewStore_OverlappingSeries(t *testing.T) {
	sun := SeriesMetadata{ByteOffset: 0, ByteSize: 192, IntervalDays: 16, PropertyCount: 3, CoeffCount: 4}
	emb := SeriesMetadata{ByteOffset: 96, ByteSize: 96, IntervalDays: 16, PropertyCount: 3, CoeffCount: 4}

	meta := Metadata{StartJD: testStartJD, Series: map[SeriesKind]SeriesMetadata{
		SeriesSun:                 sun,
		SeriesEarthMoonBarycenter: emb,
	}}
	_, err := NewStore(make([]byte, 192), meta)
	if !errors.Is(err, ErrInvalidMetadata) || !strings.Contains(err.Error(), "overlaps") {
		t.Errorf("err = %v, want overlap ErrInvalidMetadata", err)
	}

	// Back to back regions are fine.
	emb.ByteOffset = 192
	meta.Series[SeriesEarthMoonBarycenter] = emb
	if _, err := NewStore(make([]byte, 288), meta); err != nil {
		t.Errorf("adjacent series rejected: %v", err)
	}
}

func TestLoadMetadata(t *testing.T) {
	inputs := map[string]string{
		"yaml": `
start_jd: 2458416.5
series:
  emb: {offset: 0, size: 312, interval_days: 16, properties: 3, coefficients: 13}
  moon: {offset: 312, size: 624, interval_days: 4, properties: 3, coefficients: 13}
  sun: {offset: 936, size: 96, interval_days: 16, properties: 3, coefficients: 4}
`,
		"json": `{"start_jd": 2458416.5, "series": {
  "emb": {"offset": 0, "size": 312, "interval_days": 16, "properties": 3, "coefficients": 13},
  "moon": {"offset": 312, "size": 624, "interval_days": 4, "properties": 3, "coefficients": 13},
  "sun": {"offset": 936, "size": 96, "interval_days": 16, "properties": 3, "coefficients": 4}}}`,
	}

	want := Layout(testStartJD, ShippedSeries(1, 2, 1)...)
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := LoadMetadata(strings.NewReader(input))
			if err != nil {
				t.Fatalf("LoadMetadata: %v", err)
			}
			if got.StartJD != want.StartJD {
				t.Errorf("StartJD = %v, want %v", got.StartJD, want.StartJD)
			}
			for _, kind := range Kinds() {
				if got.Series[kind] != want.Series[kind] {
					t.Errorf("%s = %+v, want %+v", kind, got.Series[kind], want.Series[kind])
				}
			}
			if err := got.Validate(want.Size()); err != nil {
				t.Errorf("Validate: %v", err)
			}
		})
	}

	if _, err := LoadMetadata(strings.NewReader("start_jd: 1\nbogus: 2\n")); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestPutInterval_Errors(t *testing.T) {
	meta := Layout(testStartJD, SeriesSpec{Kind: SeriesSun, IntervalDays: 16, CoeffCount: 4, Intervals: 1})
	s := meta.Series[SeriesSun]
	buf := make([]byte, meta.Size())
	row := []float64{1, 2, 3, 4}

	if err := PutInterval(buf, s, 1, [][]float64{row, row, row}); err == nil {
		t.Error("expected error for interval past the end")
	}
	if err := PutInterval(buf, s, 0, [][]float64{row, row}); err == nil {
		t.Error("expected error for missing property")
	}
	if err := PutInterval(buf, s, 0, [][]float64{row, row, row[:3]}); err == nil {
		t.Error("expected error for short coefficient row")
	}
}
