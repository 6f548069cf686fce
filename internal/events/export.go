package events

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Report is the exportable result of one detector run.
type Report struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Events []Event   `json:"events"`
}

// NewReport builds a report with JSON-friendly rounding applied.
func NewReport(from, to time.Time, events []Event) *Report {
	out := make([]Event, len(events))
	for i, e := range events {
		e.JD = roundTo(e.JD, 6)
		e.CoarseJD = roundTo(e.CoarseJD, 6)
		e.DistanceKm = roundTo(e.DistanceKm, 1)
		e.Illumination = roundTo(e.Illumination, 4)
		out[i] = e
	}
	return &Report{From: from.UTC(), To: to.UTC(), Events: out}
}

// WriteJSON writes the report as JSON to the given writer.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteTable writes a text table to the given writer.
func (r *Report) WriteTable(w io.Writer) {
	fmt.Fprintf(w, "Lunar events %s to %s\n",
		r.From.Format(time.RFC3339), r.To.Format(time.RFC3339))
	fmt.Fprintln(w, strings.Repeat("─", 72))

	if len(r.Events) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}

	fmt.Fprintf(w, "%-16s %-20s %-15s %-13s %-6s\n",
		"Event", "Time (UTC)", "JD", "Distance", "Illum")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	for _, e := range r.Events {
		fmt.Fprintf(w, "%s %-14s %-20s %-15.6f %-13s %5.1f%%\n",
			e.Kind.Symbol(),
			e.Kind.Label(),
			e.Time.Format("2006-01-02 15:04:05"),
			e.JD,
			FormatDistance(e.DistanceKm),
			e.Illumination*100,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d events\n", len(r.Events))
}

// FormatDistance formats kilometers with thousands separators.
func FormatDistance(km float64) string {
	n := int64(km + 0.5)
	if km < 0 {
		n = int64(km - 0.5)
	}
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(" km")
	return b.String()
}
