package astro

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// GeocentricMoon returns the Moon's position relative to the Earth in km.
func (b Bodies) GeocentricMoon() r3.Vec {
	return r3.Sub(b.Moon.Position, b.Earth.Position)
}

// GeocentricSun returns the Sun's position relative to the Earth in km.
func (b Bodies) GeocentricSun() r3.Vec {
	return r3.Sub(b.Sun.Position, b.Earth.Position)
}

// EarthMoonDistance returns the center-to-center distance in km.
func (b Bodies) EarthMoonDistance() float64 {
	return r3.Norm(b.GeocentricMoon())
}

// EarthMoonRangeRate returns the rate of change of the Earth-Moon distance
// in km/day. It is negative while the Moon approaches.
func (b Bodies) EarthMoonRangeRate() float64 {
	rel := b.GeocentricMoon()
	vel := r3.Sub(b.Moon.Velocity, b.Earth.Velocity)
	d := r3.Norm(rel)
	if d == 0 {
		return 0
	}
	return r3.Dot(rel, vel) / d
}

// Elongation returns the Sun-Earth-Moon angle in radians, in [0, π].
// It is 0 at new Moon and π at full Moon.
func (b Bodies) Elongation() float64 {
	return angleBetween(b.GeocentricSun(), b.GeocentricMoon())
}

// PhaseAngle returns the Sun-Moon-Earth angle in radians.
func (b Bodies) PhaseAngle() float64 {
	toSun := r3.Sub(b.Sun.Position, b.Moon.Position)
	toEarth := r3.Sub(b.Earth.Position, b.Moon.Position)
	return angleBetween(toSun, toEarth)
}

// Illumination returns the illuminated fraction of the lunar disk in [0, 1].
func (b Bodies) Illumination() float64 {
	return (1 + math.Cos(b.PhaseAngle())) / 2
}

// Waxing reports whether the Moon is east of the Sun in ecliptic longitude,
// seen from the Earth.
func (b Bodies) Waxing() bool {
	sun := EquatorialToEcliptic(b.GeocentricSun())
	moon := EquatorialToEcliptic(b.GeocentricMoon())
	return r3.Cross(sun, moon).Z > 0
}

func angleBetween(p, q r3.Vec) float64 {
	c := r3.Cos(p, q)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}
