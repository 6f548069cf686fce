package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/peterbom/moon-proximity-sub000/internal/astro"
)

type visibilityOptions struct {
	date    string
	hours   float64
	lat     float64
	lon     float64
	jsonOut bool
}

func newVisibilityCmd(a *app) *cobra.Command {
	var opts visibilityOptions
	cmd := &cobra.Command{
		Use:   "visibility",
		Short: "Print Moon rise, transit and set for an observer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVisibility(cmd.OutOrStdout(), opts, time.Now())
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.date, "date", "now", "start of the span, UTC date/time or Julian Date")
	f.Float64Var(&opts.hours, "hours", 24, "length of the span in hours")
	f.Float64Var(&opts.lat, "lat", 0, "observer latitude in degrees, north positive")
	f.Float64Var(&opts.lon, "lon", 0, "observer longitude in degrees, east positive")
	f.BoolVar(&opts.jsonOut, "json", false, "write JSON instead of text")
	return cmd
}

type visibilityJSON struct {
	From            time.Time  `json:"from"`
	To              time.Time  `json:"to"`
	LatDeg          float64    `json:"lat_deg"`
	LonDeg          float64    `json:"lon_deg"`
	Rise            *time.Time `json:"rise,omitempty"`
	Transit         *time.Time `json:"transit,omitempty"`
	Set             *time.Time `json:"set,omitempty"`
	MaxElevationDeg float64    `json:"max_elevation_deg"`
	HorizonDeg      float64    `json:"horizon_deg"`
	AlwaysVisible   bool       `json:"always_visible"`
	NeverVisible    bool       `json:"never_visible"`
}

func jdPtr(ok bool, jd float64) *time.Time {
	if !ok {
		return nil
	}
	t := astro.JDToTime(jd)
	return &t
}

func (a *app) runVisibility(w io.Writer, opts visibilityOptions, now time.Time) error {
	if !(opts.hours > 0) {
		return fmt.Errorf("--hours must be positive, got %v", opts.hours)
	}
	start, err := parseInstant(opts.date, now)
	if err != nil {
		return err
	}
	end := start + opts.hours/24

	resolver, err := a.openResolver()
	if err != nil {
		return err
	}
	obs := astro.Observer{LatDeg: opts.lat, LonDeg: opts.lon}
	win, err := resolver.MoonVisibility(obs, start, end)
	if err != nil {
		return err
	}

	out := visibilityJSON{
		From:            astro.JDToTime(start),
		To:              astro.JDToTime(end),
		LatDeg:          opts.lat,
		LonDeg:          opts.lon,
		Rise:            jdPtr(win.HasRise(), win.Rise),
		Transit:         jdPtr(win.HasTransit(), win.Transit),
		Set:             jdPtr(win.HasSet(), win.Set),
		MaxElevationDeg: win.MaxElevation,
		HorizonDeg:      win.HorizonDeg,
		AlwaysVisible:   win.AlwaysVisible,
		NeverVisible:    win.NeverVisible,
	}
	if opts.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "Moon from %.2f, %.2f  %s to %s\n", opts.lat, opts.lon,
		out.From.Format("2006-01-02 15:04"), out.To.Format("2006-01-02 15:04"))
	switch {
	case win.AlwaysVisible:
		fmt.Fprintln(w, "Above the horizon for the whole span")
	case win.NeverVisible:
		fmt.Fprintln(w, "Below the horizon for the whole span")
	}
	for _, row := range []struct {
		name string
		t    *time.Time
	}{{"Rise", out.Rise}, {"Transit", out.Transit}, {"Set", out.Set}} {
		v := "-"
		if row.t != nil {
			v = row.t.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%-9s %s\n", row.name, v)
	}
	fmt.Fprintf(w, "Highest   %+.1f° (%s)\n", win.MaxElevation, astro.GetElevationTier(win.MaxElevation))
	return nil
}
