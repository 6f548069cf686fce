package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/peterbom/moon-proximity-sub000/internal/astro"
	"github.com/peterbom/moon-proximity-sub000/internal/config"
	"github.com/peterbom/moon-proximity-sub000/internal/ephem"
	"github.com/peterbom/moon-proximity-sub000/internal/events"
)

const (
	testStartJD = 2460000.5
	sunKm       = 149597870.7
)

// toyMoon is a planar geocentric Moon with independent phase and distance
// periods. New Moon falls 3 days and perigee 5 days after testStartJD.
func toyMoon(jd float64) r3.Vec {
	theta := 2 * math.Pi * (jd - testStartJD - 3) / 29.5
	return r3.Scale(toyDistance(jd), r3.Vec{X: math.Cos(theta), Y: math.Sin(theta)})
}

func toyDistance(jd float64) float64 {
	return 384400 * (1 - 0.055*math.Cos(2*math.Pi*(jd-testStartJD-5)/27.55))
}

// writeEphemeris fits 64 days of toy series and writes the binary and
// metadata files.
func writeEphemeris(t *testing.T) (dataPath, metaPath string) {
	t.Helper()
	meta := ephem.Layout(testStartJD, ephem.ShippedSeries(4, 16, 4)...)
	buf := make([]byte, meta.Size())

	series := map[ephem.SeriesKind]func(float64) r3.Vec{
		ephem.SeriesEarthMoonBarycenter: func(float64) r3.Vec { return r3.Vec{} },
		ephem.SeriesMoonOffset:          toyMoon,
		ephem.SeriesSun:                 func(float64) r3.Vec { return r3.Vec{X: sunKm} },
	}
	for kind, pos := range series {
		if err := ephem.FitSeries(buf, meta.Series[kind], meta.StartJD, pos); err != nil {
			t.Fatalf("fit %s: %v", kind, err)
		}
	}

	dir := t.TempDir()
	dataPath = filepath.Join(dir, "moon.bin")
	metaPath = filepath.Join(dir, "moon.yaml")
	if err := os.WriteFile(dataPath, buf, 0644); err != nil {
		t.Fatal(err)
	}
	y, err := yaml.Marshal(meta)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(metaPath, y, 0644); err != nil {
		t.Fatal(err)
	}
	return dataPath, metaPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(append(args, "--log-level", "error"))
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func jdArg(days float64) string {
	return fmt.Sprintf("%.4f", testStartJD+days)
}

func TestParseInstant(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"now", astro.TimeToJD(now), false},
		{"", astro.TimeToJD(now), false},
		{"2451545.0", astro.J2000, false},
		{"2000-01-01T12:00:00Z", astro.J2000, false},
		{"2000-01-01T12:00", astro.J2000, false},
		{"2000-01-01 12:00", astro.J2000, false},
		{"2000-01-01", astro.J2000 - 0.5, false},
		{"yesterday", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseInstant(tt.in, now)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseInstant(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(got-tt.want) > 1e-8 {
				t.Errorf("parseInstant(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	start, end, err := parseWindow("2451545", "", 30, now)
	if err != nil || start != astro.J2000 || end != astro.J2000+30 {
		t.Errorf("parseWindow = %v, %v, %v", start, end, err)
	}
	if _, _, err := parseWindow("2451545", "2451540", 30, now); err == nil {
		t.Error("reversed window: want error")
	}
	if _, _, err := parseWindow("soon", "", 30, now); err == nil || !strings.Contains(err.Error(), "--from") {
		t.Errorf("bad --from err = %v", err)
	}
}

func TestEventsCommand_JSON(t *testing.T) {
	data, meta := writeEphemeris(t)
	out, err := run(t, "events", "--data", data, "--metadata", meta,
		"--from", jdArg(0), "--to", jdArg(60), "--json")
	if err != nil {
		t.Fatalf("events: %v\n%s", err, out)
	}

	var report events.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	want := map[events.Kind][]float64{
		events.KindNewMoon:      {3, 32.5},
		events.KindFirstQuarter: {10.375, 39.875},
		events.KindFullMoon:     {17.75, 47.25},
		events.KindLastQuarter:  {25.125, 54.625},
		events.KindPerigee:      {5, 32.55},
		events.KindApogee:       {18.775, 46.325},
	}
	got := make(map[events.Kind][]events.Event)
	for _, e := range report.Events {
		got[e.Kind] = append(got[e.Kind], e)
	}
	for kind, days := range want {
		if len(got[kind]) != len(days) {
			t.Errorf("%s: got %d events, want %d", kind, len(got[kind]), len(days))
			continue
		}
		for i, e := range got[kind] {
			if d := math.Abs(e.JD - (testStartJD + days[i])); d > 1e-3 {
				t.Errorf("%s %d: JD %.6f is %.2f min from the expected instant", kind, i, e.JD, d*astro.MinutesPerDay)
			}
		}
	}
	for _, e := range got[events.KindPerigee] {
		if math.Abs(e.DistanceKm-384400*(1-0.055)) > 0.5 {
			t.Errorf("perigee distance = %v", e.DistanceKm)
		}
	}
}

func TestEventsCommand_Table(t *testing.T) {
	data, meta := writeEphemeris(t)
	out, err := run(t, "events", "--data", data, "--metadata", meta,
		"--from", jdArg(0), "--days", "20", "--kind", "full-moon,perigee", "--workers", "1")
	if err != nil {
		t.Fatalf("events: %v\n%s", err, out)
	}
	for _, want := range []string{"Full Moon", "Perigee", "Total: 2 events"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Apogee") {
		t.Errorf("table lists a kind that was not requested:\n%s", out)
	}
}

func TestEventsCommand_Errors(t *testing.T) {
	data, meta := writeEphemeris(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no ephemeris", []string{"events"}, "no ephemeris configured"},
		{"bad kind", []string{"events", "--data", data, "--metadata", meta, "--kind", "eclipse"}, "unknown event kind"},
		{"outside coverage", []string{"events", "--data", data, "--metadata", meta, "--from", jdArg(40), "--days", "40"}, "outside"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestRunEvents_TUINeedsTerminal(t *testing.T) {
	a := &app{cfg: config.Default()}
	err := a.runEvents(context.Background(), &bytes.Buffer{}, eventsOptions{tui: true}, time.Now(), false)
	if err == nil || !strings.Contains(err.Error(), "terminal") {
		t.Errorf("err = %v, want a terminal error", err)
	}

	err = a.runEvents(context.Background(), &bytes.Buffer{}, eventsOptions{tui: true, jsonOut: true}, time.Now(), true)
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("err = %v, want mutually exclusive", err)
	}
}

func TestDetectorConfigOverrides(t *testing.T) {
	a := &app{cfg: config.Default()}
	cfg := a.detectorConfig(eventsOptions{})
	if cfg.StepDays != 0.5 || cfg.Workers != 4 || cfg.PrecisionDays != 0.5/astro.MinutesPerDay {
		t.Errorf("defaults = %+v", cfg)
	}
	cfg = a.detectorConfig(eventsOptions{step: 0.25, precision: 2, workers: 1})
	if cfg.StepDays != 0.25 || cfg.Workers != 1 || cfg.PrecisionDays != 2.0/astro.MinutesPerDay {
		t.Errorf("overrides = %+v", cfg)
	}
}

func TestPositionCommand(t *testing.T) {
	data, meta := writeEphemeris(t)
	out, err := run(t, "position", "--data", data, "--metadata", meta,
		"--date", jdArg(3), "--lat", "51.48", "--lon", "0", "--json")
	if err != nil {
		t.Fatalf("position: %v\n%s", err, out)
	}

	var got positionJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if want := toyDistance(testStartJD + 3); math.Abs(got.DistanceKm-want) > 1e-3 {
		t.Errorf("distance = %v, want %v", got.DistanceKm, want)
	}
	if got.ElongationDeg > 1e-3 || got.Illumination > 1e-6 {
		t.Errorf("new moon: elongation %v°, illumination %v", got.ElongationDeg, got.Illumination)
	}
	if got.MoonAzimuthDeg == nil || got.MoonElevationDeg == nil {
		t.Error("observer flags given but no azimuth/elevation")
	}
	if math.Abs(got.SunDistanceAU-1) > 1e-4 {
		t.Errorf("sun distance = %v AU", got.SunDistanceAU)
	}
	// The toy Moon sits on the equinox direction at new moon.
	if math.Abs(math.Remainder(got.MoonEclLonDeg, 360)) > 1e-3 || math.Abs(got.MoonEclLatDeg) > 1e-3 {
		t.Errorf("ecliptic lon/lat = %v / %v, want 0 / 0", got.MoonEclLonDeg, got.MoonEclLatDeg)
	}

	text, err := run(t, "position", "--data", data, "--metadata", meta, "--date", jdArg(10))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "waxing") || !strings.Contains(text, "Moon ecl.") || strings.Contains(text, "Az/El") {
		t.Errorf("text output:\n%s", text)
	}
}

func TestCoverageCommand(t *testing.T) {
	data, meta := writeEphemeris(t)
	out, err := run(t, "coverage", "--data", data, "--metadata", meta)
	if err != nil {
		t.Fatalf("coverage: %v\n%s", err, out)
	}
	for _, want := range []string{"emb", "moon", "sun", "(64 days)"} {
		if !strings.Contains(out, want) {
			t.Errorf("coverage missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	out, err := run(t, "config", "init", "--path", path, "--data", "moon.bin")
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ephemeris.DataFile != "moon.bin" {
		t.Errorf("DataFile = %q, want moon.bin", cfg.Ephemeris.DataFile)
	}

	if _, err := run(t, "config", "init", "--path", path); !errors.Is(err, config.ErrExists) {
		t.Errorf("second init err = %v, want ErrExists", err)
	}
	// A forced init keeps the existing paths unless new ones are given.
	if _, err := run(t, "config", "init", "--path", path, "--force"); err != nil {
		t.Errorf("forced init err = %v", err)
	}
	shown, err := run(t, "config", "show", "--config", path)
	if err != nil || !strings.Contains(shown, "data_file: moon.bin") {
		t.Errorf("config show = %q, %v", shown, err)
	}

	if _, err := run(t, "config", "init", "--path", path, "--force", "--data", "other.bin"); err != nil {
		t.Errorf("forced init with --data err = %v", err)
	}
	shown, err = run(t, "config", "show", "--config", path)
	if err != nil || !strings.Contains(shown, "data_file: other.bin") {
		t.Errorf("config show after override = %q, %v", shown, err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "moon-proximity v") {
		t.Errorf("version output = %q", out)
	}
}

func TestVisibilityCommand(t *testing.T) {
	data, meta := writeEphemeris(t)
	out, err := run(t, "visibility", "--data", data, "--metadata", meta,
		"--date", jdArg(10), "--hours", "30", "--lat", "51.48", "--lon", "0", "--json")
	if err != nil {
		t.Fatalf("visibility: %v\n%s", err, out)
	}

	var got visibilityJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	// The toy Moon stays on the celestial equator.
	if want := 90 - 51.48; math.Abs(got.MaxElevationDeg-want) > 0.05 {
		t.Errorf("max elevation = %.3f°, want %.3f°", got.MaxElevationDeg, want)
	}
	if got.Rise == nil || got.Transit == nil {
		t.Errorf("30 hours should hold a rise and a culmination: %s", out)
	}
	if got.AlwaysVisible || got.NeverVisible {
		t.Errorf("always=%v never=%v", got.AlwaysVisible, got.NeverVisible)
	}

	text, err := run(t, "visibility", "--data", data, "--metadata", meta,
		"--date", jdArg(10), "--hours", "30", "--lat", "51.48")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Rise", "Transit", "Highest   +38.5° (medium)"} {
		if !strings.Contains(text, want) {
			t.Errorf("text output missing %q:\n%s", want, text)
		}
	}

	if _, err := run(t, "visibility", "--data", data, "--metadata", meta, "--hours", "0"); err == nil {
		t.Error("expected an error for --hours 0")
	}
}
