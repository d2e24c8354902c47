// Command gennc generates synthetic navigation and sea-ice NetCDF
// fixtures for local development and manual testing. The flight track
// follows a smooth synthetic pattern over two consecutive days so the
// day selector, coarsening, and range filtering all have something to
// chew on.
//
// Usage:
//
//	go run ./cmd/gennc \
//	  -nav-out data/observations/processed/bbr_BACSAM2_p6_processed.nc \
//	  -sic-out data/sat/sic_BACSAM2.nc
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/arctictools/nav-quicklook/internal/adapter/netcdf"
	"github.com/arctictools/nav-quicklook/internal/domain"
)

var baseDate = time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	navOut := flag.String("nav-out", "", "output path for the navigation NetCDF fixture")
	sicOut := flag.String("sic-out", "", "output path for the sea-ice concentration NetCDF fixture")
	samples := flag.Int("samples", 7200, "samples per flight day (one per second)")
	flag.Parse()

	if *navOut == "" || *sicOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -nav-out, -sic-out")
	}

	for _, out := range []string{*navOut, *sicOut} {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	track := syntheticTrack(*samples)
	if err := netcdf.WriteTrack(*navOut, track); err != nil {
		return fmt.Errorf("write navigation fixture: %w", err)
	}
	log.Printf("wrote %s (%d samples, %d days)", *navOut, track.Len(), len(track.Days()))

	grid := syntheticIceGrid()
	if err := netcdf.WriteIceGrid(*sicOut, grid); err != nil {
		return fmt.Errorf("write sea-ice fixture: %w", err)
	}
	log.Printf("wrote %s (%d time steps)", *sicOut, grid.Steps())

	return nil
}

// syntheticTrack builds two flight days of smoothly varying navigation
// data. A handful of samples carry NaN to mirror real sensor dropouts.
func syntheticTrack(perDay int) domain.FlightTrack {
	track := domain.FlightTrack{}
	for day := 0; day < 2; day++ {
		start := baseDate.AddDate(0, 0, day)
		for i := 0; i < perDay; i++ {
			f := float64(i) / float64(perDay)
			track.Time = append(track.Time, start.Add(time.Duration(i)*time.Second))
			track.Altitude = append(track.Altitude, 2800+700*math.Sin(f*2*math.Pi))
			track.Pitch = append(track.Pitch, 2*math.Sin(f*40*math.Pi))
			track.Roll = append(track.Roll, 5*math.Sin(f*12*math.Pi))
			track.BrightnessTemp = append(track.BrightnessTemp, 245+15*math.Cos(f*6*math.Pi))
			track.Latitude = append(track.Latitude, 79.5+1.5*f+0.1*math.Sin(f*8*math.Pi))
			track.Longitude = append(track.Longitude, 8+6*f)
		}
	}

	// Sensor dropouts.
	for i := 100; i < track.Len(); i += 997 {
		track.BrightnessTemp[i] = math.NaN()
	}

	track.HourOfDay = domain.DeriveHourOfDay(track.Time)
	return track
}

// syntheticIceGrid builds a small curvilinear concentration field with
// a marginal ice zone running diagonally through it.
func syntheticIceGrid() domain.IceGrid {
	const rows, cols = 40, 50
	lat := make([][]float64, rows)
	lon := make([][]float64, rows)
	for r := 0; r < rows; r++ {
		lat[r] = make([]float64, cols)
		lon[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			lat[r][c] = 79 + 2.5*float64(r)/float64(rows-1)
			lon[r][c] = 7 + 8*float64(c)/float64(cols-1)
		}
	}

	steps := []time.Time{baseDate, baseDate.AddDate(0, 0, 1)}
	conc := make([][][]float64, len(steps))
	for t := range steps {
		conc[t] = make([][]float64, rows)
		for r := 0; r < rows; r++ {
			conc[t][r] = make([]float64, cols)
			for c := 0; c < cols; c++ {
				// Ice edge retreats slightly between the two days.
				edge := float64(rows)*0.4 + float64(c)*0.3 - float64(t)*2
				v := 50 + 50*math.Tanh((float64(r)-edge)/4)
				conc[t][r][c] = math.Round(v)
			}
		}
	}

	return domain.IceGrid{Time: steps, Lat: lat, Lon: lon, Conc: conc}
}
