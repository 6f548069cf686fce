package astro

import (
	"errors"
	"fmt"
	"math"

	"github.com/peterbom/moon-proximity-sub000/internal/search"
)

// EarthRadiusKm is the equatorial radius used for lunar parallax.
const EarthRadiusKm = 6378.14

// VisibilityStepDays is the elevation sampling interval, ten minutes.
const VisibilityStepDays = 10.0 / 1440

// transitPrecisionDays is how tightly a culmination is refined, one second.
const transitPrecisionDays = 1.0 / 86400

// Errors for visibility calculations.
var (
	ErrInsufficientSamples = errors.New("insufficient samples for visibility calculation")
	ErrInvalidSpan         = errors.New("visibility span must end after it starts")
)

// ElevationSample is the Moon's elevation above the horizon at one instant.
type ElevationSample struct {
	JD    float64
	ElDeg float64
}

// VisibilityWindow describes the Moon's rise-transit-set cycle within a span.
// Event Julian Dates are zero when the event falls outside the span.
type VisibilityWindow struct {
	Rise          float64
	Transit       float64
	Set           float64
	MaxElevation  float64 // degrees, at Transit
	HorizonDeg    float64 // altitude of the center at rise and set
	AlwaysVisible bool    // above the horizon for the whole span
	NeverVisible  bool    // below the horizon for the whole span
}

// HasRise reports whether a rise was found.
func (w VisibilityWindow) HasRise() bool { return w.Rise != 0 }

// HasSet reports whether a set was found.
func (w VisibilityWindow) HasSet() bool { return w.Set != 0 }

// HasTransit reports whether a culmination was found.
func (w VisibilityWindow) HasTransit() bool { return w.Transit != 0 }

// MoonHorizonDeg returns the geocentric altitude of the Moon's center at
// rise and set for a Moon distance in km. It combines refraction and the
// semidiameter with the horizontal parallax, h0 = 0.7275π - 0°34'.
func MoonHorizonDeg(distanceKm float64) float64 {
	parallax := radToDeg(math.Asin(EarthRadiusKm / distanceKm))
	return 0.7275*parallax - 34.0/60
}

// RiseSet scans chronological elevation samples for the first rise and the
// following set across horizonDeg. When the Moon is already up at the first
// sample, Set is the first downward crossing. Crossings are interpolated
// linearly between samples. Transit and MaxElevation hold the highest sample;
// callers wanting a refined culmination use Resolver.MoonVisibility.
func RiseSet(samples []ElevationSample, horizonDeg float64) (VisibilityWindow, error) {
	if len(samples) < 3 {
		return VisibilityWindow{}, ErrInsufficientSamples
	}

	win := VisibilityWindow{HorizonDeg: horizonDeg, MaxElevation: -90}
	above, below := 0, 0
	for _, s := range samples {
		if s.ElDeg > win.MaxElevation {
			win.MaxElevation = s.ElDeg
			win.Transit = s.JD
		}
		if s.ElDeg > horizonDeg {
			above++
		} else {
			below++
		}
	}
	switch {
	case below == 0:
		win.AlwaysVisible = true
		return win, nil
	case above == 0:
		win.NeverVisible = true
		return win, nil
	}

	setFrom := 1
	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		if prev.ElDeg <= horizonDeg && cur.ElDeg > horizonDeg {
			win.Rise = interpolateCrossing(prev, cur, horizonDeg)
			setFrom = i + 1
			break
		}
	}
	for i := setFrom; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i]
		if prev.ElDeg > horizonDeg && cur.ElDeg <= horizonDeg {
			win.Set = interpolateCrossing(prev, cur, horizonDeg)
			break
		}
	}
	return win, nil
}

// interpolateCrossing finds the Julian Date where elevation crosses the
// threshold between two samples.
func interpolateCrossing(a, b ElevationSample, threshold float64) float64 {
	if a.ElDeg == b.ElDeg {
		return a.JD
	}
	frac := (threshold - a.ElDeg) / (b.ElDeg - a.ElDeg)
	return a.JD + frac*(b.JD-a.JD)
}

// MoonHorizontal returns the Moon's geocentric direction in horizontal
// coordinates for obs at jd.
// RangeKm is the geocentric distance.
func (r *Resolver) MoonHorizontal(obs Observer, jd float64) (SkyCoord, error) {
	earth, moon, err := r.EarthAndMoon(jd)
	if err != nil {
		return SkyCoord{}, err
	}
	b := Bodies{JD: jd, Earth: earth, Moon: moon}
	return EquatorialToHorizontal(EquatorialFromVector(b.GeocentricMoon()), obs, jd), nil
}

// MoonVisibility computes the Moon's rise, culmination and set for obs
// between startJD and endJD. Elevations are sampled every
// VisibilityStepDays and the highest culmination is refined to about a
// second. The horizon altitude uses the Moon's distance at mid-span.
func (r *Resolver) MoonVisibility(obs Observer, startJD, endJD float64) (VisibilityWindow, error) {
	if !(endJD > startJD) {
		return VisibilityWindow{}, ErrInvalidSpan
	}
	sampler := search.Sampler[SkyCoord]{
		Represent: func(jd float64) (SkyCoord, error) {
			return r.MoonHorizontal(obs, jd)
		},
		Quality: func(c SkyCoord) float64 { return c.ElDeg },
	}

	xs := search.Steps(startJD, endJD, VisibilityStepDays)
	smp, err := sampler.SampleAll(xs)
	if err != nil {
		return VisibilityWindow{}, fmt.Errorf("sample elevation: %w", err)
	}
	if len(smp) < 3 {
		return VisibilityWindow{}, ErrInsufficientSamples
	}

	elev := make([]ElevationSample, len(smp))
	for i, s := range smp {
		elev[i] = ElevationSample{JD: s.Domain, ElDeg: s.Quality}
	}
	mid := smp[len(smp)/2].Value.RangeKm
	win, err := RiseSet(elev, MoonHorizonDeg(mid))
	if err != nil {
		return VisibilityWindow{}, err
	}

	if len(smp) < 4 {
		return win, nil
	}
	brackets, err := search.FindBrackets(smp)
	if err != nil {
		return VisibilityWindow{}, fmt.Errorf("bracket culminations: %w", err)
	}
	var best *search.Peak[SkyCoord]
	for _, br := range brackets {
		pk, err := search.Refine(sampler, br, transitPrecisionDays)
		if err != nil {
			return VisibilityWindow{}, fmt.Errorf("refine culmination: %w", err)
		}
		if best == nil || pk.Quality() > best.Quality() {
			best = &pk
		}
	}
	// Without an interior maximum the highest point sits at a span edge,
	// which RiseSet already recorded.
	if best != nil && best.Quality() >= win.MaxElevation {
		win.Transit = best.Peak.Domain
		win.MaxElevation = best.Quality()
	}
	return win, nil
}

// ElevationTier categorizes elevation for display.
type ElevationTier int

const (
	ElevationBelowHorizon ElevationTier = iota // < 0°
	ElevationLow                               // 0-20°
	ElevationMedium                            // 20-45°
	ElevationHigh                              // > 45°
)

func (t ElevationTier) String() string {
	switch t {
	case ElevationLow:
		return "low"
	case ElevationMedium:
		return "medium"
	case ElevationHigh:
		return "high"
	default:
		return "below horizon"
	}
}

// GetElevationTier returns the tier for a given elevation.
func GetElevationTier(elDeg float64) ElevationTier {
	switch {
	case elDeg < 0:
		return ElevationBelowHorizon
	case elDeg < 20:
		return ElevationLow
	case elDeg < 45:
		return ElevationMedium
	default:
		return ElevationHigh
	}
}
