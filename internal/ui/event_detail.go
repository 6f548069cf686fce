package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/peterbom/moon-proximity-sub000/internal/astro"
	"github.com/peterbom/moon-proximity-sub000/internal/events"
)

// DetailModel shows one event and, with a provider, the Moon's sky position.
type DetailModel struct {
	provider events.Provider
	observer *astro.Observer

	event   events.Event
	has     bool
	bodies  astro.Bodies
	sky     astro.SkyCoord
	horizon *astro.SkyCoord
	err     error
}

// NewDetailModel creates a detail view. Both arguments may be nil.
func NewDetailModel(p events.Provider, obs *astro.Observer) DetailModel {
	return DetailModel{provider: p, observer: obs}
}

// SetEvent selects the event and resolves the bodies at its instant.
func (m DetailModel) SetEvent(e events.Event) DetailModel {
	m.event = e
	m.has = true
	m.err = nil
	m.horizon = nil
	if m.provider == nil {
		return m
	}

	b, err := m.provider.At(e.JD)
	if err != nil {
		m.err = err
		return m
	}
	m.bodies = b
	m.sky = astro.EquatorialFromVector(b.GeocentricMoon())
	if m.observer != nil {
		hz := astro.EquatorialToHorizontal(m.sky, *m.observer, e.JD)
		m.horizon = &hz
	}
	return m
}

// View renders the detail panel.
func (m DetailModel) View() string {
	if !m.has {
		return dimStyle.Render("  No event selected")
	}
	e := m.event

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("  %s %s", e.Kind.Symbol(), e.Kind.Label())))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(label))
		b.WriteString(rowStyle.Render(value))
		b.WriteString("\n")
	}

	row("Time (UTC)", e.Time.UTC().Format("2006-01-02 15:04:05"))
	row("Julian Date", fmt.Sprintf("%.6f", e.JD))
	row("Bracketed at", fmt.Sprintf("%.3f (%+.1f min)", e.CoarseJD, (e.JD-e.CoarseJD)*astro.MinutesPerDay))
	row("Distance", events.FormatDistance(e.DistanceKm))
	row("Illumination", fmt.Sprintf("%.1f%%", e.Illumination*100))

	if m.err != nil {
		b.WriteString("\n  ")
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		return b.String()
	}
	if m.provider == nil {
		return strings.TrimRight(b.String(), "\n")
	}

	row("Elongation", fmt.Sprintf("%.2f°", m.bodies.Elongation()*180/math.Pi))
	row("Range rate", fmt.Sprintf("%+.4f km/s", m.bodies.EarthMoonRangeRate()/86400))
	row("RA / Dec", fmt.Sprintf("%.3f° / %+.3f°", m.sky.RAdeg, m.sky.DecDeg))

	if m.horizon != nil {
		name := m.observer.Name
		if name == "" {
			name = fmt.Sprintf("%.2f, %.2f", m.observer.LatDeg, m.observer.LonDeg)
		}
		row("Observer", name)
		row("Az / El", fmt.Sprintf("%.1f° / %+.1f° (%s)", m.horizon.AzDeg, m.horizon.ElDeg,
			astro.GetElevationTier(m.horizon.ElDeg)))
	}
	return strings.TrimRight(b.String(), "\n")
}
