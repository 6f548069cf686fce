package astro

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/peterbom/moon-proximity-sub000/internal/ephem"
)

// Constants are the physical values the resolver depends on.
type Constants struct {
	// EarthMoonMassRatio is the Earth mass divided by the Moon mass.
	EarthMoonMassRatio float64

	// AUKm is the astronomical unit in kilometers.
	AUKm float64
}

// DefaultConstants returns the DE430 values.
func DefaultConstants() Constants {
	return Constants{
		EarthMoonMassRatio: 81.30056907419062,
		AUKm:               149597870.7,
	}
}

// Source provides the raw series that Resolver combines. *ephem.Store
// implements it.
type Source interface {
	PositionAndVelocity(kind ephem.SeriesKind, jd float64) (ephem.Properties, error)
}

// Bodies holds barycentric Earth, Moon and Sun states at one instant.
type Bodies struct {
	JD    float64
	Earth ephem.Properties
	Moon  ephem.Properties
	Sun   ephem.Properties
}

// Resolver derives Earth, Moon and Sun states from the barycentric series.
type Resolver struct {
	src    Source
	consts Constants
}

// NewResolver creates a resolver over src.
func NewResolver(src Source, consts Constants) *Resolver {
	return &Resolver{src: src, consts: consts}
}

// Constants returns the constants the resolver was built with.
func (r *Resolver) Constants() Constants {
	return r.consts
}

// EarthAndMoon splits the Earth-Moon barycenter state into Earth and Moon
// states using the Earth/Moon mass ratio:
//
//	earth = emb - offset/(1+ratio)
//	moon  = earth + offset
func EarthAndMoon(emb, offset ephem.Properties, massRatio float64) (earth, moon ephem.Properties) {
	k := 1 / (1 + massRatio)
	earth = ephem.Properties{
		Position: r3.Sub(emb.Position, r3.Scale(k, offset.Position)),
		Velocity: r3.Sub(emb.Velocity, r3.Scale(k, offset.Velocity)),
	}
	moon = ephem.Properties{
		Position: r3.Add(earth.Position, offset.Position),
		Velocity: r3.Add(earth.Velocity, offset.Velocity),
	}
	return earth, moon
}

// EarthAndMoon returns the barycentric Earth and Moon states at jd.
func (r *Resolver) EarthAndMoon(jd float64) (earth, moon ephem.Properties, err error) {
	emb, err := r.src.PositionAndVelocity(ephem.SeriesEarthMoonBarycenter, jd)
	if err != nil {
		return earth, moon, fmt.Errorf("earth-moon barycenter: %w", err)
	}
	offset, err := r.src.PositionAndVelocity(ephem.SeriesMoonOffset, jd)
	if err != nil {
		return earth, moon, fmt.Errorf("moon offset: %w", err)
	}
	earth, moon = EarthAndMoon(emb, offset, r.consts.EarthMoonMassRatio)
	return earth, moon, nil
}

// Sun returns the barycentric Sun state at jd.
func (r *Resolver) Sun(jd float64) (ephem.Properties, error) {
	sun, err := r.src.PositionAndVelocity(ephem.SeriesSun, jd)
	if err != nil {
		return ephem.Properties{}, fmt.Errorf("sun: %w", err)
	}
	return sun, nil
}

// At returns all three bodies at jd.
func (r *Resolver) At(jd float64) (Bodies, error) {
	earth, moon, err := r.EarthAndMoon(jd)
	if err != nil {
		return Bodies{}, err
	}
	sun, err := r.Sun(jd)
	if err != nil {
		return Bodies{}, err
	}
	return Bodies{JD: jd, Earth: earth, Moon: moon, Sun: sun}, nil
}
