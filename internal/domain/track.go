package domain

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// DayLayout is the calendar-day format used throughout the quicklook.
const DayLayout = "2006-01-02"

// FlightTrack is the time-indexed navigation dataset. All slices run
// parallel to Time; HourOfDay is derived once at load.
type FlightTrack struct {
	Time           []time.Time
	Altitude       []float64
	Pitch          []float64
	Roll           []float64
	BrightnessTemp []float64
	Latitude       []float64
	Longitude      []float64
	HourOfDay      []float64
}

// Len returns the number of samples.
func (t FlightTrack) Len() int {
	return len(t.Time)
}

// Days returns the sorted unique calendar days present in the track.
func (t FlightTrack) Days() []string {
	seen := make(map[string]struct{})
	for _, ts := range t.Time {
		seen[ts.UTC().Format(DayLayout)] = struct{}{}
	}
	days := make([]string, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// ParseDay parses a YYYY-MM-DD day string as midnight UTC.
func ParseDay(day string) (time.Time, error) {
	d, err := time.ParseInLocation(DayLayout, day, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", day, err)
	}
	return d, nil
}

// DaySlice returns the samples whose timestamp falls on the given
// calendar day (UTC). An unknown day yields an empty track.
func (t FlightTrack) DaySlice(day string) (FlightTrack, error) {
	start, err := ParseDay(day)
	if err != nil {
		return FlightTrack{}, err
	}
	end := start.Add(24*time.Hour - time.Nanosecond)
	return t.FilterRange(start, end), nil
}

// FilterRange returns the samples with t0 <= t <= t1. A zero bound
// means "no bound on that side". Filtering twice with the same bounds
// returns the same samples.
func (t FlightTrack) FilterRange(t0, t1 time.Time) FlightTrack {
	idx := make([]int, 0, t.Len())
	for i, ts := range t.Time {
		if !t0.IsZero() && ts.Before(t0) {
			continue
		}
		if !t1.IsZero() && ts.After(t1) {
			continue
		}
		idx = append(idx, i)
	}
	return t.pick(idx)
}

// Bounds returns the earliest and latest timestamps. ok is false for an
// empty track.
func (t FlightTrack) Bounds() (min, max time.Time, ok bool) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = t.Time[0], t.Time[0]
	for _, ts := range t.Time[1:] {
		if ts.Before(min) {
			min = ts
		}
		if ts.After(max) {
			max = ts
		}
	}
	return min, max, true
}

// Coarsen block-averages k consecutive samples into one, trimming the
// ragged remainder. k <= 1 returns the track unchanged. Within a block,
// NaN values are skipped; a block with no valid values averages to NaN.
// The block timestamp is the mean of the block's timestamps.
func (t FlightTrack) Coarsen(k int) FlightTrack {
	if k <= 1 || t.Len() == 0 {
		return t
	}
	n := t.Len() / k
	out := FlightTrack{
		Time:           make([]time.Time, n),
		Altitude:       make([]float64, n),
		Pitch:          make([]float64, n),
		Roll:           make([]float64, n),
		BrightnessTemp: make([]float64, n),
		Latitude:       make([]float64, n),
		Longitude:      make([]float64, n),
		HourOfDay:      make([]float64, n),
	}
	for b := 0; b < n; b++ {
		lo, hi := b*k, (b+1)*k
		out.Time[b] = meanTime(t.Time[lo:hi])
		out.Altitude[b] = nanMean(t.Altitude[lo:hi])
		out.Pitch[b] = nanMean(t.Pitch[lo:hi])
		out.Roll[b] = nanMean(t.Roll[lo:hi])
		out.BrightnessTemp[b] = nanMean(t.BrightnessTemp[lo:hi])
		out.Latitude[b] = nanMean(t.Latitude[lo:hi])
		out.Longitude[b] = nanMean(t.Longitude[lo:hi])
		out.HourOfDay[b] = nanMean(t.HourOfDay[lo:hi])
	}
	return out
}

// pick assembles a new track from the given sample indices.
func (t FlightTrack) pick(idx []int) FlightTrack {
	out := FlightTrack{
		Time:           make([]time.Time, len(idx)),
		Altitude:       make([]float64, len(idx)),
		Pitch:          make([]float64, len(idx)),
		Roll:           make([]float64, len(idx)),
		BrightnessTemp: make([]float64, len(idx)),
		Latitude:       make([]float64, len(idx)),
		Longitude:      make([]float64, len(idx)),
		HourOfDay:      make([]float64, len(idx)),
	}
	for j, i := range idx {
		out.Time[j] = t.Time[i]
		out.Altitude[j] = t.Altitude[i]
		out.Pitch[j] = t.Pitch[i]
		out.Roll[j] = t.Roll[i]
		out.BrightnessTemp[j] = t.BrightnessTemp[i]
		out.Latitude[j] = t.Latitude[i]
		out.Longitude[j] = t.Longitude[i]
		out.HourOfDay[j] = t.HourOfDay[i]
	}
	return out
}

// DeriveHourOfDay computes the fractional UTC hour for each timestamp.
func DeriveHourOfDay(times []time.Time) []float64 {
	out := make([]float64, len(times))
	for i, ts := range times {
		u := ts.UTC()
		out[i] = float64(u.Hour()) + float64(u.Minute())/60 + float64(u.Second())/3600
	}
	return out
}

// nanMean averages the non-NaN values; NaN when there are none.
func nanMean(vals []float64) float64 {
	var sum float64
	var n int
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func meanTime(times []time.Time) time.Time {
	if len(times) == 0 {
		return time.Time{}
	}
	base := times[0]
	var sum time.Duration
	for _, ts := range times {
		sum += ts.Sub(base)
	}
	return base.Add(sum / time.Duration(len(times)))
}
