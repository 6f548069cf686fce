package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/peterbom/moon-proximity-sub000/internal/astro"
)

var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseInstant reads "now", a Julian Date, or a UTC date/time and returns
// the Julian Date.
func parseInstant(s string, now time.Time) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "now") {
		return astro.TimeToJD(now), nil
	}
	if jd, err := strconv.ParseFloat(s, 64); err == nil {
		return jd, nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return astro.TimeToJD(t), nil
		}
	}
	return 0, fmt.Errorf("cannot parse %q as a date, time or Julian Date", s)
}

// parseWindow resolves the --from/--to pair. An empty to means from plus
// days.
func parseWindow(from, to string, days float64, now time.Time) (startJD, endJD float64, err error) {
	startJD, err = parseInstant(from, now)
	if err != nil {
		return 0, 0, fmt.Errorf("--from: %w", err)
	}
	if strings.TrimSpace(to) == "" {
		return startJD, startJD + days, nil
	}
	endJD, err = parseInstant(to, now)
	if err != nil {
		return 0, 0, fmt.Errorf("--to: %w", err)
	}
	if endJD <= startJD {
		return 0, 0, fmt.Errorf("--to must be after --from")
	}
	return startJD, endJD, nil
}
