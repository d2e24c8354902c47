package netcdf

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/arctictools/nav-quicklook/internal/domain"
)

// epochUnits is the CF units string written for the time coordinates.
const epochUnits = "seconds since 1970-01-01 00:00:00"

// WriteTrack writes a navigation dataset in classic NetCDF format.
// Intended for fixtures and local development, not production data.
func WriteTrack(path string, track domain.FlightTrack) error {
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	secs := make([]float64, track.Len())
	for i, ts := range track.Time {
		secs[i] = float64(ts.Unix()) + float64(ts.Nanosecond())/1e9
	}

	timeAttrs, err := util.NewOrderedMap([]string{"units"}, map[string]any{"units": epochUnits})
	if err != nil {
		cw.Close()
		return fmt.Errorf("time attributes: %w", err)
	}

	vars := []struct {
		name  string
		vals  any
		attrs api.AttributeMap
	}{
		{varTime, secs, timeAttrs},
		{varAltitude, track.Altitude, nil},
		{varPitch, track.Pitch, nil},
		{varRoll, track.Roll, nil},
		{varKT19, track.BrightnessTemp, nil},
		{varLatitude, track.Latitude, nil},
		{varLongitude, track.Longitude, nil},
	}
	for _, v := range vars {
		err := cw.AddVar(v.name, api.Variable{
			Values:     v.vals,
			Dimensions: []string{varTime},
			Attributes: v.attrs,
		})
		if err != nil {
			cw.Close()
			return fmt.Errorf("write variable %q: %w", v.name, err)
		}
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// WriteIceGrid writes a sea-ice dataset in classic NetCDF format with
// 2-D cell-center coordinates.
func WriteIceGrid(path string, grid domain.IceGrid) error {
	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	secs := make([]float64, grid.Steps())
	for i, ts := range grid.Time {
		secs[i] = float64(ts.Unix()) + float64(ts.Nanosecond())/1e9
	}

	timeAttrs, err := util.NewOrderedMap([]string{"units"}, map[string]any{"units": epochUnits})
	if err != nil {
		cw.Close()
		return fmt.Errorf("time attributes: %w", err)
	}

	vars := []struct {
		name  string
		vals  any
		dims  []string
		attrs api.AttributeMap
	}{
		{varTime, secs, []string{varTime}, timeAttrs},
		{varGridLa, grid.Lat, []string{"y", "x"}, nil},
		{varGridLo, grid.Lon, []string{"y", "x"}, nil},
		{varSIC, grid.Conc, []string{varTime, "y", "x"}, nil},
	}
	for _, v := range vars {
		err := cw.AddVar(v.name, api.Variable{
			Values:     v.vals,
			Dimensions: v.dims,
			Attributes: v.attrs,
		})
		if err != nil {
			cw.Close()
			return fmt.Errorf("write variable %q: %w", v.name, err)
		}
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
