// Package events finds lunar events (perigee, apogee and the principal
// phases) over a Julian Date window by maximizing a quality function of
// the Earth, Moon and Sun states.
package events

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/soniakeys/unit"

	"github.com/peterbom/moon-proximity-sub000/internal/astro"
)

// ErrUnknownKind is returned by ParseKind for unrecognized names.
var ErrUnknownKind = errors.New("unknown event kind")

// Kind identifies a lunar event.
type Kind string

const (
	KindPerigee      Kind = "perigee"
	KindApogee       Kind = "apogee"
	KindNewMoon      Kind = "new-moon"
	KindFirstQuarter Kind = "first-quarter"
	KindFullMoon     Kind = "full-moon"
	KindLastQuarter  Kind = "last-quarter"
)

// AllKinds returns every kind in display order.
func AllKinds() []Kind {
	return []Kind{
		KindPerigee, KindApogee,
		KindNewMoon, KindFirstQuarter, KindFullMoon, KindLastQuarter,
	}
}

// ParseKind accepts the kind names with either dashes, underscores or
// spaces, in any case.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	for _, k := range AllKinds() {
		if string(k) == norm {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// ParseKinds parses a comma separated list. An empty list means all kinds.
func ParseKinds(s string) ([]Kind, error) {
	if strings.TrimSpace(s) == "" {
		return AllKinds(), nil
	}
	var kinds []Kind
	seen := make(map[Kind]bool)
	for _, part := range strings.Split(s, ",") {
		k, err := ParseKind(part)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	return kinds, nil
}

// Label returns a human readable name.
func (k Kind) Label() string {
	switch k {
	case KindPerigee:
		return "Perigee"
	case KindApogee:
		return "Apogee"
	case KindNewMoon:
		return "New Moon"
	case KindFirstQuarter:
		return "First Quarter"
	case KindFullMoon:
		return "Full Moon"
	case KindLastQuarter:
		return "Last Quarter"
	default:
		return string(k)
	}
}

// Symbol returns a short marker for tables and the TUI.
func (k Kind) Symbol() string {
	switch k {
	case KindPerigee:
		return "▼"
	case KindApogee:
		return "▲"
	case KindNewMoon:
		return "●"
	case KindFirstQuarter:
		return "◐"
	case KindFullMoon:
		return "○"
	case KindLastQuarter:
		return "◑"
	default:
		return "?"
	}
}

// Target elongations of the phases.
var (
	elongationNew     = unit.AngleFromDeg(0)
	elongationQuarter = unit.AngleFromDeg(90)
	elongationFull    = unit.AngleFromDeg(180)
)

// quality returns the function whose local maxima are events of kind k,
// and a filter that drops maxima belonging to a sibling kind.
func (k Kind) quality() (q func(astro.Bodies) float64, keep func(astro.Bodies) bool, err error) {
	all := func(astro.Bodies) bool { return true }
	switch k {
	case KindPerigee:
		return func(b astro.Bodies) float64 { return -b.EarthMoonDistance() }, all, nil
	case KindApogee:
		return func(b astro.Bodies) float64 { return b.EarthMoonDistance() }, all, nil
	case KindNewMoon:
		return phaseQuality(elongationNew), all, nil
	case KindFullMoon:
		return phaseQuality(elongationFull), all, nil
	case KindFirstQuarter:
		return phaseQuality(elongationQuarter), astro.Bodies.Waxing, nil
	case KindLastQuarter:
		return phaseQuality(elongationQuarter), func(b astro.Bodies) bool { return !b.Waxing() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// phaseQuality peaks when the Sun-Earth-Moon angle equals target. The
// elongation stays in [0, π], so a 90° target peaks at both quarters.
func phaseQuality(target unit.Angle) func(astro.Bodies) float64 {
	return func(b astro.Bodies) float64 {
		return (unit.Angle(b.Elongation()) - target).Cos()
	}
}

// roundTo rounds v to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
