package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the Julian Date of the J2000.0 epoch.
const J2000 = 2451545.0

// MinutesPerDay converts search precisions given in minutes to days.
const MinutesPerDay = 24 * 60

// TimeToJD converts t to a Julian Date on the UTC scale.
func TimeToJD(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// JDToTime converts a Julian Date to a UTC time, rounded to the millisecond.
func JDToTime(jd float64) time.Time {
	return julian.JDToTime(jd).UTC().Round(time.Millisecond)
}

// DaysToDuration converts a span in days to a time.Duration.
func DaysToDuration(days float64) time.Duration {
	return time.Duration(math.Round(days * float64(24*time.Hour)))
}
