package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTrack builds a track with n samples starting at start, one per step.
func testTrack(start time.Time, n int, step time.Duration) FlightTrack {
	t := FlightTrack{
		Time:           make([]time.Time, n),
		Altitude:       make([]float64, n),
		Pitch:          make([]float64, n),
		Roll:           make([]float64, n),
		BrightnessTemp: make([]float64, n),
		Latitude:       make([]float64, n),
		Longitude:      make([]float64, n),
	}
	for i := 0; i < n; i++ {
		t.Time[i] = start.Add(time.Duration(i) * step)
		t.Altitude[i] = 300 + float64(i)
		t.Pitch[i] = float64(i % 5)
		t.Roll[i] = -float64(i % 3)
		t.BrightnessTemp[i] = 250 + float64(i)/10
		t.Latitude[i] = 81 + float64(i)*0.001
		t.Longitude[i] = 10 + float64(i)*0.002
	}
	t.HourOfDay = DeriveHourOfDay(t.Time)
	return t
}

func TestDays(t *testing.T) {
	start := time.Date(2017, 4, 2, 23, 0, 0, 0, time.UTC)
	track := testTrack(start, 180, time.Minute) // crosses midnight into April 3

	days := track.Days()
	assert.Equal(t, []string{"2017-04-02", "2017-04-03"}, days)
}

func TestDaySlice(t *testing.T) {
	start := time.Date(2017, 4, 2, 23, 0, 0, 0, time.UTC)
	track := testTrack(start, 180, time.Minute)

	t.Run("bounds match the day's min and max timestamps", func(t *testing.T) {
		for _, day := range track.Days() {
			sel, err := track.DaySlice(day)
			require.NoError(t, err)
			require.NotZero(t, sel.Len(), "day %s", day)

			min, max, ok := sel.Bounds()
			require.True(t, ok)
			assert.Equal(t, day, min.Format(DayLayout))
			assert.Equal(t, day, max.Format(DayLayout))
			assert.False(t, max.Before(min))
		}
	})

	t.Run("split covers every sample exactly once", func(t *testing.T) {
		total := 0
		for _, day := range track.Days() {
			sel, err := track.DaySlice(day)
			require.NoError(t, err)
			total += sel.Len()
		}
		assert.Equal(t, track.Len(), total)
	})

	t.Run("absent day is empty", func(t *testing.T) {
		sel, err := track.DaySlice("2019-01-01")
		require.NoError(t, err)
		assert.Zero(t, sel.Len())
	})

	t.Run("malformed day errors", func(t *testing.T) {
		_, err := track.DaySlice("April 2nd")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse day")
	})
}

func TestCoarsen(t *testing.T) {
	start := time.Date(2017, 4, 2, 10, 0, 0, 0, time.UTC)

	t.Run("factor 1 is a no-op", func(t *testing.T) {
		track := testTrack(start, 100, time.Second)
		assert.Equal(t, track, track.Coarsen(1))
		assert.Equal(t, track, track.Coarsen(0))
	})

	t.Run("factor k trims to n/k blocks", func(t *testing.T) {
		track := testTrack(start, 103, time.Second)
		out := track.Coarsen(20)
		assert.Equal(t, 5, out.Len(), "ragged remainder is trimmed")
	})

	t.Run("blocks average values and timestamps", func(t *testing.T) {
		track := testTrack(start, 4, time.Second)
		out := track.Coarsen(2)
		require.Equal(t, 2, out.Len())

		// Altitude is 300,301,302,303 → blocks 300.5 and 302.5.
		assert.InDelta(t, 300.5, out.Altitude[0], 1e-9)
		assert.InDelta(t, 302.5, out.Altitude[1], 1e-9)
		assert.Equal(t, start.Add(500*time.Millisecond), out.Time[0])
	})

	t.Run("NaN values are skipped within a block", func(t *testing.T) {
		track := testTrack(start, 4, time.Second)
		track.Pitch[0] = math.NaN()
		out := track.Coarsen(2)
		require.Equal(t, 2, out.Len())
		assert.InDelta(t, track.Pitch[1], out.Pitch[0], 1e-9)
	})

	t.Run("all-NaN block averages to NaN", func(t *testing.T) {
		track := testTrack(start, 2, time.Second)
		track.Roll[0] = math.NaN()
		track.Roll[1] = math.NaN()
		out := track.Coarsen(2)
		require.Equal(t, 1, out.Len())
		assert.True(t, math.IsNaN(out.Roll[0]))
	})
}

func TestFilterRange(t *testing.T) {
	start := time.Date(2017, 4, 2, 10, 0, 0, 0, time.UTC)
	track := testTrack(start, 60, time.Minute)

	t.Run("bounds are inclusive", func(t *testing.T) {
		t0 := start.Add(10 * time.Minute)
		t1 := start.Add(20 * time.Minute)
		out := track.FilterRange(t0, t1)
		require.Equal(t, 11, out.Len())
		assert.Equal(t, t0, out.Time[0])
		assert.Equal(t, t1, out.Time[out.Len()-1])
	})

	t.Run("filtering is idempotent", func(t *testing.T) {
		t0 := start.Add(5 * time.Minute)
		t1 := start.Add(45 * time.Minute)
		once := track.FilterRange(t0, t1)
		twice := once.FilterRange(t0, t1)
		assert.Equal(t, once.Len(), twice.Len())
		assert.Equal(t, once, twice)
	})

	t.Run("zero bounds mean unbounded", func(t *testing.T) {
		out := track.FilterRange(time.Time{}, time.Time{})
		assert.Equal(t, track.Len(), out.Len())

		tail := track.FilterRange(start.Add(30*time.Minute), time.Time{})
		assert.Equal(t, 30, tail.Len())
	})
}

func TestDeriveHourOfDay(t *testing.T) {
	times := []time.Time{
		time.Date(2017, 4, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2017, 4, 2, 12, 30, 0, 0, time.UTC),
		time.Date(2017, 4, 2, 23, 59, 59, 0, time.UTC),
	}
	hod := DeriveHourOfDay(times)
	require.Len(t, hod, 3)
	assert.Equal(t, 0.0, hod[0])
	assert.InDelta(t, 12.5, hod[1], 1e-9)
	assert.InDelta(t, 23.9997, hod[2], 1e-3)
}
