package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/peterbom/moon-proximity-sub000/internal/astro"
	"github.com/peterbom/moon-proximity-sub000/internal/events"
	"github.com/peterbom/moon-proximity-sub000/internal/logging"
	"github.com/peterbom/moon-proximity-sub000/internal/ui"
)

type eventsOptions struct {
	from      string
	to        string
	days      float64
	kinds     string
	jsonOut   bool
	tui       bool
	step      float64
	precision float64
	workers   int
	lat       float64
	lon       float64
	hasObs    bool
}

func newEventsCmd(a *app) *cobra.Command {
	var opts eventsOptions
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Find perigees, apogees and lunar phases in a date window",
		Example: `  moon-proximity events --from 2025-01-01 --days 90 --kind perigee,full-moon
  moon-proximity events --from 2460676.5 --to 2460767.5 --json
  moon-proximity events --tui --lat 51.48 --lon 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.hasObs = cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")
			isTTY := term.IsTerminal(int(os.Stdout.Fd()))
			return a.runEvents(cmd.Context(), cmd.OutOrStdout(), opts, time.Now(), isTTY)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.from, "from", "now", "window start: UTC date/time or Julian Date")
	f.StringVar(&opts.to, "to", "", "window end (default is --from plus --days)")
	f.Float64Var(&opts.days, "days", 30, "window length in days when --to is not given")
	f.StringVar(&opts.kinds, "kind", "", "comma separated kinds (perigee, apogee, new-moon, first-quarter, full-moon, last-quarter)")
	f.BoolVar(&opts.jsonOut, "json", false, "write JSON instead of a table")
	f.BoolVar(&opts.tui, "tui", false, "browse the events in a terminal UI")
	f.Float64Var(&opts.step, "step", 0, "coarse sampling step in days (overrides search.step_days)")
	f.Float64Var(&opts.precision, "precision", 0, "refinement precision in minutes (overrides search.precision_minutes)")
	f.IntVar(&opts.workers, "workers", 0, "concurrent refinements (overrides search.workers)")
	f.Float64Var(&opts.lat, "lat", 0, "observer latitude for the TUI detail view")
	f.Float64Var(&opts.lon, "lon", 0, "observer longitude for the TUI detail view")
	return cmd
}

// detectorConfig merges command line overrides into the loaded settings.
func (a *app) detectorConfig(opts eventsOptions) events.Config {
	cfg := events.Config{
		StepDays:      a.cfg.Search.StepDays,
		PrecisionDays: a.cfg.Search.PrecisionDays(),
		Workers:       a.cfg.Search.Workers,
	}
	if opts.step > 0 {
		cfg.StepDays = opts.step
	}
	if opts.precision > 0 {
		cfg.PrecisionDays = opts.precision / astro.MinutesPerDay
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	return cfg
}

func (a *app) runEvents(ctx context.Context, w io.Writer, opts eventsOptions, now time.Time, isTTY bool) error {
	if opts.tui && !isTTY {
		return errors.New("--tui needs a terminal on stdout")
	}
	if opts.tui && opts.jsonOut {
		return errors.New("--tui and --json are mutually exclusive")
	}

	startJD, endJD, err := parseWindow(opts.from, opts.to, opts.days, now)
	if err != nil {
		return err
	}
	kinds, err := events.ParseKinds(opts.kinds)
	if err != nil {
		return err
	}
	resolver, err := a.openResolver()
	if err != nil {
		return err
	}

	cfg := a.detectorConfig(opts)
	started := time.Now()
	found, err := events.NewDetector(resolver, cfg, a.log).FindAll(ctx, kinds, startJD, endJD)
	if err != nil {
		return err
	}
	a.log.Info("events found",
		"count", len(found),
		"kinds", len(kinds),
		"days", endJD-startJD,
		logging.Since(started))

	from, to := astro.JDToTime(startJD), astro.JDToTime(endJD)
	if opts.tui {
		uiOpts := ui.Options{Events: found, From: from, To: to, Provider: resolver}
		if opts.hasObs {
			uiOpts.Observer = &astro.Observer{LatDeg: opts.lat, LonDeg: opts.lon}
		}
		p := tea.NewProgram(ui.New(uiOpts), tea.WithAltScreen(), tea.WithContext(ctx))
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}

	report := events.NewReport(from, to, found)
	if opts.jsonOut {
		return report.WriteJSON(w)
	}
	report.WriteTable(w)
	return nil
}
