// Package netcdf loads the navigation and sea-ice NetCDF datasets into
// their immutable domain representations.
package netcdf

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/arctictools/nav-quicklook/internal/domain"
)

// Navigation dataset variable names.
const (
	varTime      = "time"
	varAltitude  = "altitude"
	varPitch     = "pitch"
	varRoll      = "roll"
	varKT19      = "t_kt19"
	varLatitude  = "latitude"
	varLongitude = "longitude"
)

// Sea-ice dataset variable names.
const (
	varSIC    = "sic"
	varGridLa = "lat"
	varGridLo = "lon"
)

// LoadTrack reads the navigation dataset and derives hour-of-day.
func LoadTrack(path string) (domain.FlightTrack, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return domain.FlightTrack{}, fmt.Errorf("open navigation dataset %s: %w", path, err)
	}
	defer nc.Close()

	times, err := timeValues(nc, varTime)
	if err != nil {
		return domain.FlightTrack{}, fmt.Errorf("navigation dataset %s: %w", path, err)
	}

	track := domain.FlightTrack{Time: times}
	for _, v := range []struct {
		name string
		dst  *[]float64
	}{
		{varAltitude, &track.Altitude},
		{varPitch, &track.Pitch},
		{varRoll, &track.Roll},
		{varKT19, &track.BrightnessTemp},
		{varLatitude, &track.Latitude},
		{varLongitude, &track.Longitude},
	} {
		vals, err := floatValues(nc, v.name)
		if err != nil {
			return domain.FlightTrack{}, fmt.Errorf("navigation dataset %s: %w", path, err)
		}
		if len(vals) != len(times) {
			return domain.FlightTrack{}, fmt.Errorf("navigation dataset %s: variable %q has %d values for %d time steps",
				path, v.name, len(vals), len(times))
		}
		*v.dst = vals
	}

	track.HourOfDay = domain.DeriveHourOfDay(track.Time)
	return track, nil
}

// LoadIceGrid reads the sea-ice dataset, meshing 1-D coordinates when
// needed and NaN-masking concentrations outside the 0–100 range.
func LoadIceGrid(path string) (domain.IceGrid, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return domain.IceGrid{}, fmt.Errorf("open sea-ice dataset %s: %w", path, err)
	}
	defer nc.Close()

	times, err := timeValues(nc, varTime)
	if err != nil {
		return domain.IceGrid{}, fmt.Errorf("sea-ice dataset %s: %w", path, err)
	}

	conc, err := gridSeries(nc, varSIC, len(times))
	if err != nil {
		return domain.IceGrid{}, fmt.Errorf("sea-ice dataset %s: %w", path, err)
	}
	for _, field := range conc {
		for _, row := range field {
			for x, v := range row {
				row[x] = domain.MaskConcentration(v)
			}
		}
	}

	ny, nx := 0, 0
	if len(conc) > 0 {
		ny = len(conc[0])
		if ny > 0 {
			nx = len(conc[0][0])
		}
	}
	lat, err := coordGrid(nc, varGridLa, ny, nx, false)
	if err != nil {
		return domain.IceGrid{}, fmt.Errorf("sea-ice dataset %s: %w", path, err)
	}
	lon, err := coordGrid(nc, varGridLo, ny, nx, true)
	if err != nil {
		return domain.IceGrid{}, fmt.Errorf("sea-ice dataset %s: %w", path, err)
	}

	return domain.IceGrid{Time: times, Lat: lat, Lon: lon, Conc: conc}, nil
}

// timeUnitsRe matches CF-style time units, e.g. "seconds since 1970-01-01"
// or "days since 2017-04-01 00:00:00".
var timeUnitsRe = regexp.MustCompile(`^(seconds|minutes|hours|days) since (\d{4}-\d{2}-\d{2})(?:[T ](\d{2}):(\d{2})(?::(\d{2}))?)?`)

// timeValues reads a time coordinate and converts it to UTC timestamps
// using the variable's CF units attribute. Without a units attribute the
// values are taken as seconds since the Unix epoch.
func timeValues(nc api.Group, name string) ([]time.Time, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}

	unit := time.Second
	epoch := time.Unix(0, 0).UTC()
	if attrs := vg.Attributes(); attrs != nil {
		if raw, has := attrs.Get("units"); has {
			if s, ok := raw.(string); ok {
				unit, epoch, err = parseTimeUnits(s)
				if err != nil {
					return nil, fmt.Errorf("variable %q: %w", name, err)
				}
			}
		}
	}

	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	offsets, err := floats1(v)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}

	times := make([]time.Time, len(offsets))
	for i, off := range offsets {
		// Split whole and fractional units so whole-unit offsets stay
		// exact in integer arithmetic.
		whole, frac := math.Modf(off)
		times[i] = epoch.Add(time.Duration(whole)*unit + time.Duration(frac*float64(unit)))
	}
	return times, nil
}

func parseTimeUnits(units string) (time.Duration, time.Time, error) {
	m := timeUnitsRe.FindStringSubmatch(units)
	if m == nil {
		return 0, time.Time{}, fmt.Errorf("unsupported time units %q", units)
	}
	var unit time.Duration
	switch m[1] {
	case "seconds":
		unit = time.Second
	case "minutes":
		unit = time.Minute
	case "hours":
		unit = time.Hour
	case "days":
		unit = 24 * time.Hour
	}
	epoch, err := time.ParseInLocation(domain.DayLayout, m[2], time.UTC)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("time units %q: %w", units, err)
	}
	if m[3] != "" {
		h, _ := strconv.Atoi(m[3])
		mi, _ := strconv.Atoi(m[4])
		var s int
		if m[5] != "" {
			s, _ = strconv.Atoi(m[5])
		}
		epoch = epoch.Add(time.Duration(h)*time.Hour + time.Duration(mi)*time.Minute + time.Duration(s)*time.Second)
	}
	return unit, epoch, nil
}

// floatValues reads a 1-D variable as float64.
func floatValues(nc api.Group, name string) ([]float64, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	vals, err := floats1(v)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	return vals, nil
}

// gridSeries reads a (time, y, x) variable. A single (y, x) field is
// accepted when the dataset has exactly one time step.
func gridSeries(nc api.Group, name string, steps int) ([][][]float64, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}

	if series, err := floats3(v); err == nil {
		if len(series) != steps {
			return nil, fmt.Errorf("variable %q has %d time steps, time coordinate has %d", name, len(series), steps)
		}
		return series, nil
	}
	field, err := floats2(v)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	if steps != 1 {
		return nil, fmt.Errorf("variable %q is a single field but the time coordinate has %d steps", name, steps)
	}
	return [][][]float64{field}, nil
}

// coordGrid reads a coordinate variable that may be stored either as a
// 2-D cell-center grid or as a 1-D axis to be meshed. alongX selects the
// axis orientation for the 1-D case.
func coordGrid(nc api.Group, name string, ny, nx int, alongX bool) ([][]float64, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}

	if grid, err := floats2(v); err == nil {
		if len(grid) != ny || (ny > 0 && len(grid[0]) != nx) {
			return nil, fmt.Errorf("variable %q does not match the %dx%d concentration grid", name, ny, nx)
		}
		return grid, nil
	}

	axis, err := floats1(v)
	if err != nil {
		return nil, fmt.Errorf("variable %q: %w", name, err)
	}
	want := ny
	if alongX {
		want = nx
	}
	if len(axis) != want {
		return nil, fmt.Errorf("variable %q has %d values, expected %d", name, len(axis), want)
	}
	grid := make([][]float64, ny)
	for y := 0; y < ny; y++ {
		grid[y] = make([]float64, nx)
		for x := 0; x < nx; x++ {
			if alongX {
				grid[y][x] = axis[x]
			} else {
				grid[y][x] = axis[y]
			}
		}
	}
	return grid, nil
}

// floats1 coerces the typed slices go-native-netcdf returns into float64.
func floats1(v any) ([]float64, error) {
	switch vv := v.(type) {
	case []float64:
		return vv, nil
	case []float32:
		out := make([]float64, len(vv))
		for i, x := range vv {
			out[i] = float64(x)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(vv))
		for i, x := range vv {
			out[i] = float64(x)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(vv))
		for i, x := range vv {
			out[i] = float64(x)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(vv))
		for i, x := range vv {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func floats2(v any) ([][]float64, error) {
	switch vv := v.(type) {
	case [][]float64:
		return vv, nil
	case [][]float32:
		out := make([][]float64, len(vv))
		for i, row := range vv {
			out[i] = make([]float64, len(row))
			for j, x := range row {
				out[i][j] = float64(x)
			}
		}
		return out, nil
	case [][]int16:
		out := make([][]float64, len(vv))
		for i, row := range vv {
			out[i] = make([]float64, len(row))
			for j, x := range row {
				out[i][j] = float64(x)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func floats3(v any) ([][][]float64, error) {
	switch vv := v.(type) {
	case [][][]float64:
		return vv, nil
	case [][][]float32:
		out := make([][][]float64, len(vv))
		for i, field := range vv {
			f, err := floats2(field)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	case [][][]int16:
		out := make([][][]float64, len(vv))
		for i, field := range vv {
			f, err := floats2(field)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
