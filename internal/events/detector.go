package events

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/peterbom/moon-proximity-sub000/internal/astro"
	"github.com/peterbom/moon-proximity-sub000/internal/logging"
	"github.com/peterbom/moon-proximity-sub000/internal/search"
)

// ErrInvalidWindow is returned when the search window is empty or the
// sampling step is not positive.
var ErrInvalidWindow = errors.New("invalid search window")

// Provider resolves Earth, Moon and Sun states. *astro.Resolver implements it.
type Provider interface {
	At(jd float64) (astro.Bodies, error)
}

// Event is one refined lunar event.
type Event struct {
	Kind         Kind      `json:"kind"`
	JD           float64   `json:"jd"`
	Time         time.Time `json:"time"`
	DistanceKm   float64   `json:"distance_km"`
	Illumination float64   `json:"illumination"`

	// CoarseJD is the sampling-grid date the event was bracketed at.
	CoarseJD float64 `json:"coarse_jd"`
}

// Config controls sampling and refinement.
type Config struct {
	StepDays      float64 // coarse sampling interval
	PrecisionDays float64 // refined bracket width
	Workers       int     // concurrent bracket refinements
}

// DefaultConfig samples every half day and refines to half a minute.
func DefaultConfig() Config {
	return Config{
		StepDays:      0.5,
		PrecisionDays: 0.5 / astro.MinutesPerDay,
		Workers:       search.DefaultWorkers,
	}
}

// Detector finds events of each kind in a window.
type Detector struct {
	provider Provider
	cfg      Config
	log      *logging.Logger
}

// NewDetector creates a detector. A nil logger discards output.
func NewDetector(p Provider, cfg Config, log *logging.Logger) *Detector {
	if log == nil {
		log = logging.Discard()
	}
	return &Detector{provider: p, cfg: cfg, log: log.With("component", "events")}
}

// Config returns the detector configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Find returns the events of kind in [startJD, endJD), sorted by date.
//
// Events within one sampling step of either end of the window may be
// missed: a maximum is only detected once samples exist on both sides.
func (d *Detector) Find(ctx context.Context, kind Kind, startJD, endJD float64) ([]Event, error) {
	quality, keep, err := kind.quality()
	if err != nil {
		return nil, err
	}
	xs, err := d.grid(startJD, endJD)
	if err != nil {
		return nil, err
	}

	s := search.Search[astro.Bodies]{
		Sampler: search.Sampler[astro.Bodies]{
			Represent: d.provider.At,
			Quality:   quality,
		},
		Precision: d.cfg.PrecisionDays,
		Workers:   d.cfg.Workers,
	}

	started := time.Now()
	peaks, err := s.Peaks(ctx, xs)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}

	evaluations := len(xs)
	for _, p := range peaks {
		evaluations += p.Evaluations
	}
	merged := mergeClose(peaks, d.cfg.StepDays)

	events := make([]Event, 0, len(merged))
	for _, p := range merged {
		if !keep(p.Peak.Value) {
			continue
		}
		events = append(events, newEvent(kind, p))
	}

	d.log.Debug("refined",
		"kind", kind,
		"brackets", len(peaks),
		"merged", len(peaks)-len(merged),
		"events", len(events),
		"evaluations", evaluations,
		logging.Since(started))
	return events, nil
}

// FindAll runs Find for each kind and merges the results by date.
func (d *Detector) FindAll(ctx context.Context, kinds []Kind, startJD, endJD float64) ([]Event, error) {
	var all []Event
	for _, k := range kinds {
		evs, err := d.Find(ctx, k, startJD, endJD)
		if err != nil {
			return nil, err
		}
		all = append(all, evs...)
	}
	SortByDate(all)
	return all, nil
}

// SortByDate orders events by JD, breaking ties by kind.
func SortByDate(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].JD != events[j].JD {
			return events[i].JD < events[j].JD
		}
		return events[i].Kind < events[j].Kind
	})
}

func (d *Detector) grid(startJD, endJD float64) ([]float64, error) {
	if !(endJD > startJD) {
		return nil, fmt.Errorf("%w: end %v is not after start %v", ErrInvalidWindow, endJD, startJD)
	}
	if !(d.cfg.StepDays > 0) {
		return nil, fmt.Errorf("%w: step %v days", ErrInvalidWindow, d.cfg.StepDays)
	}
	xs := search.Steps(startJD, endJD, d.cfg.StepDays)
	// Ephemeris coverage is half-open, so the window end is never sampled.
	if last := len(xs) - 1; xs[last] >= endJD {
		below := math.Nextafter(endJD, math.Inf(-1))
		if last > 0 && xs[last-1] >= below {
			xs = xs[:last]
		} else {
			xs[last] = below
		}
	}
	if len(xs) < search.MinSamples {
		return nil, fmt.Errorf("%w: %d samples, need %d", ErrInvalidWindow, len(xs), search.MinSamples)
	}
	return xs, nil
}

// mergeClose collapses peaks closer than minGap, keeping the better one.
// A maximum lying exactly midway between two grid samples produces two
// overlapping brackets that refine to the same instant.
func mergeClose[T any](peaks []search.Peak[T], minGap float64) []search.Peak[T] {
	var out []search.Peak[T]
	for _, p := range peaks {
		if n := len(out); n > 0 && p.Peak.Domain-out[n-1].Peak.Domain < minGap {
			if p.Quality() > out[n-1].Quality() {
				out[n-1] = p
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

func newEvent(kind Kind, p search.Peak[astro.Bodies]) Event {
	b := p.Peak.Value
	return Event{
		Kind:         kind,
		JD:           p.Peak.Domain,
		Time:         astro.JDToTime(p.Peak.Domain),
		DistanceKm:   b.EarthMoonDistance(),
		Illumination: b.Illumination(),
		CoarseJD:     p.ClosestSource.Domain,
	}
}
