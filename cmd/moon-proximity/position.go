package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/peterbom/moon-proximity-sub000/internal/astro"
	"github.com/peterbom/moon-proximity-sub000/internal/ephem"
)

type positionOptions struct {
	date    string
	lat     float64
	lon     float64
	hasObs  bool
	jsonOut bool
}

func newPositionCmd(a *app) *cobra.Command {
	var opts positionOptions
	cmd := &cobra.Command{
		Use:   "position",
		Short: "Print Earth, Moon and Sun states at one instant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.hasObs = cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon")
			return a.runPosition(cmd.OutOrStdout(), opts, time.Now())
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.date, "date", "now", "UTC date/time or Julian Date")
	f.Float64Var(&opts.lat, "lat", 0, "observer latitude in degrees, north positive")
	f.Float64Var(&opts.lon, "lon", 0, "observer longitude in degrees, east positive")
	f.BoolVar(&opts.jsonOut, "json", false, "write JSON instead of text")
	return cmd
}

type stateJSON struct {
	PositionKm  [3]float64 `json:"position_km"`
	VelocityKmS [3]float64 `json:"velocity_km_s"`
}

type positionJSON struct {
	JD               float64   `json:"jd"`
	Time             time.Time `json:"time"`
	Earth            stateJSON `json:"earth"`
	Moon             stateJSON `json:"moon"`
	Sun              stateJSON `json:"sun"`
	DistanceKm       float64   `json:"distance_km"`
	RangeRateKmS     float64   `json:"range_rate_km_s"`
	ElongationDeg    float64   `json:"elongation_deg"`
	Illumination     float64   `json:"illumination"`
	Waxing           bool      `json:"waxing"`
	SunDistanceAU    float64   `json:"sun_distance_au"`
	MoonRADeg        float64   `json:"moon_ra_deg"`
	MoonDecDeg       float64   `json:"moon_dec_deg"`
	MoonEclLonDeg    float64   `json:"moon_ecliptic_lon_deg"`
	MoonEclLatDeg    float64   `json:"moon_ecliptic_lat_deg"`
	MoonAzimuthDeg   *float64  `json:"moon_azimuth_deg,omitempty"`
	MoonElevationDeg *float64  `json:"moon_elevation_deg,omitempty"`
}

const secondsPerDay = 86400

func toState(p ephem.Properties) stateJSON {
	v := r3.Scale(1.0/secondsPerDay, p.Velocity)
	return stateJSON{
		PositionKm:  [3]float64{p.Position.X, p.Position.Y, p.Position.Z},
		VelocityKmS: [3]float64{v.X, v.Y, v.Z},
	}
}

func (a *app) runPosition(w io.Writer, opts positionOptions, now time.Time) error {
	jd, err := parseInstant(opts.date, now)
	if err != nil {
		return err
	}
	resolver, err := a.openResolver()
	if err != nil {
		return err
	}
	b, err := resolver.At(jd)
	if err != nil {
		return err
	}

	sky := astro.EquatorialFromVector(b.GeocentricMoon())
	ecl := astro.EquatorialToEcliptic(b.GeocentricMoon())
	out := positionJSON{
		JD:            jd,
		Time:          astro.JDToTime(jd),
		Earth:         toState(b.Earth),
		Moon:          toState(b.Moon),
		Sun:           toState(b.Sun),
		DistanceKm:    b.EarthMoonDistance(),
		RangeRateKmS:  b.EarthMoonRangeRate() / secondsPerDay,
		ElongationDeg: b.Elongation() * 180 / math.Pi,
		Illumination:  b.Illumination(),
		Waxing:        b.Waxing(),
		SunDistanceAU: resolver.Constants().KmToAU(r3.Norm(b.GeocentricSun())),
		MoonRADeg:     sky.RAdeg,
		MoonDecDeg:    sky.DecDeg,
		MoonEclLonDeg: astro.EclipticLongitude(ecl),
		MoonEclLatDeg: astro.EclipticLatitude(ecl),
	}
	if opts.hasObs {
		hz := astro.EquatorialToHorizontal(sky, astro.Observer{LatDeg: opts.lat, LonDeg: opts.lon}, jd)
		out.MoonAzimuthDeg = &hz.AzDeg
		out.MoonElevationDeg = &hz.ElDeg
	}

	if opts.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "Time         %s (JD %.6f)\n", out.Time.Format(time.RFC3339), out.JD)
	for _, body := range []struct {
		name string
		s    stateJSON
	}{{"Earth", out.Earth}, {"Moon", out.Moon}, {"Sun", out.Sun}} {
		fmt.Fprintf(w, "%-12s [%16.3f %16.3f %16.3f] km  [%10.6f %10.6f %10.6f] km/s\n",
			body.name,
			body.s.PositionKm[0], body.s.PositionKm[1], body.s.PositionKm[2],
			body.s.VelocityKmS[0], body.s.VelocityKmS[1], body.s.VelocityKmS[2])
	}
	phase := "waning"
	if out.Waxing {
		phase = "waxing"
	}
	fmt.Fprintf(w, "Distance     %.1f km (%+.4f km/s)\n", out.DistanceKm, out.RangeRateKmS)
	fmt.Fprintf(w, "Elongation   %.2f° (%s, %.1f%% lit)\n", out.ElongationDeg, phase, out.Illumination*100)
	fmt.Fprintf(w, "Sun          %.6f AU\n", out.SunDistanceAU)
	fmt.Fprintf(w, "Moon RA/Dec  %.3f° / %+.3f°\n", out.MoonRADeg, out.MoonDecDeg)
	fmt.Fprintf(w, "Moon ecl.    %.3f° / %+.3f°\n", out.MoonEclLonDeg, out.MoonEclLatDeg)
	if out.MoonAzimuthDeg != nil {
		fmt.Fprintf(w, "Moon Az/El   %.1f° / %+.1f° from %.2f, %.2f\n",
			*out.MoonAzimuthDeg, *out.MoonElevationDeg, opts.lat, opts.lon)
	}
	return nil
}
