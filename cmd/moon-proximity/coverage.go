package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peterbom/moon-proximity-sub000/internal/astro"
)

func newCoverageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "coverage",
		Short: "Show the date range each ephemeris series covers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCoverage(cmd.OutOrStdout())
		},
	}
}

func (a *app) runCoverage(w io.Writer) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%-6s %-10s %-6s %-9s %-22s %-22s\n",
		"Series", "Intervals", "Days", "Coeffs", "Start", "End")
	fmt.Fprintln(w, strings.Repeat("─", 80))
	for _, kind := range store.Kinds() {
		m, err := store.Metadata(kind)
		if err != nil {
			return err
		}
		start, end, err := store.Coverage(kind)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-6s %-10d %-6g %-9d %-22s %-22s\n",
			kind, m.IntervalCount(), m.IntervalDays, m.CoeffCount,
			formatJD(start), formatJD(end))
	}

	start, end := store.Span()
	fmt.Fprintln(w, strings.Repeat("─", 80))
	fmt.Fprintf(w, "Usable span: %s to %s (%.0f days)\n", formatJD(start), formatJD(end), end-start)
	return nil
}

func formatJD(jd float64) string {
	return fmt.Sprintf("%s (%.1f)", astro.JDToTime(jd).Format("2006-01-02"), jd)
}
