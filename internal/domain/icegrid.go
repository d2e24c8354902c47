package domain

import (
	"math"
	"time"
)

// IceGrid is the gridded sea-ice concentration dataset: one ny×nx
// concentration field per time step, with cell-center coordinates.
// Out-of-range values (< 0 or > 100) are NaN-masked at load.
type IceGrid struct {
	Time []time.Time
	Lat  [][]float64   // ny×nx cell-center latitudes
	Lon  [][]float64   // ny×nx cell-center longitudes
	Conc [][][]float64 // nt×ny×nx concentration, percent
}

// IceLayer is a single ny×nx concentration field with its coordinates,
// as consumed by the geographic view.
type IceLayer struct {
	Lat  [][]float64
	Lon  [][]float64
	Conc [][]float64
}

// Steps returns the number of time steps.
func (g IceGrid) Steps() int {
	return len(g.Time)
}

// DaySlice returns the grid restricted to time steps on the given
// calendar day. Coordinates are shared, not copied.
func (g IceGrid) DaySlice(day string) (IceGrid, error) {
	start, err := ParseDay(day)
	if err != nil {
		return IceGrid{}, err
	}
	end := start.Add(24*time.Hour - time.Nanosecond)

	out := IceGrid{Lat: g.Lat, Lon: g.Lon}
	for i, ts := range g.Time {
		if ts.Before(start) || ts.After(end) {
			continue
		}
		out.Time = append(out.Time, ts)
		out.Conc = append(out.Conc, g.Conc[i])
	}
	return out, nil
}

// TimeMean collapses the grid to a single layer by averaging each cell
// over the time steps, skipping NaN. ok is false when the grid has no
// time steps.
func (g IceGrid) TimeMean() (IceLayer, bool) {
	if g.Steps() == 0 {
		return IceLayer{}, false
	}
	ny := len(g.Lat)
	nx := 0
	if ny > 0 {
		nx = len(g.Lat[0])
	}
	mean := make([][]float64, ny)
	for y := 0; y < ny; y++ {
		mean[y] = make([]float64, nx)
		for x := 0; x < nx; x++ {
			var sum float64
			var n int
			for t := range g.Conc {
				v := g.Conc[t][y][x]
				if math.IsNaN(v) {
					continue
				}
				sum += v
				n++
			}
			if n == 0 {
				mean[y][x] = math.NaN()
			} else {
				mean[y][x] = sum / float64(n)
			}
		}
	}
	return IceLayer{Lat: g.Lat, Lon: g.Lon, Conc: mean}, true
}

// MaskConcentration returns v unchanged when it lies in the valid 0–100
// range and NaN otherwise.
func MaskConcentration(v float64) float64 {
	if v < 0 || v > 100 {
		return math.NaN()
	}
	return v
}
