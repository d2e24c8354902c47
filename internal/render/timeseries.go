// Package render builds the quicklook plots. Builders are pure: they
// read an already-sliced view and produce a fresh PNG on every call.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/arctictools/nav-quicklook/internal/domain"
)

// TimeseriesOptions control the stacked scatter panels.
type TimeseriesOptions struct {
	Width       int
	PanelHeight int
	MarkerSize  int
	Alpha       float64
}

// DefaultTimeseriesOptions mirror the dashboard's initial control values.
func DefaultTimeseriesOptions() TimeseriesOptions {
	return TimeseriesOptions{Width: 1400, PanelHeight: 200, MarkerSize: 5, Alpha: 0.9}
}

// panel describes one variable's scatter panel.
type panel struct {
	label  string
	values func(domain.FlightTrack) []float64
}

// panels are rendered top to bottom in this order.
var panels = []panel{
	{"Altitude (m)", func(t domain.FlightTrack) []float64 { return t.Altitude }},
	{"Pitch (deg)", func(t domain.FlightTrack) []float64 { return t.Pitch }},
	{"Roll (deg)", func(t domain.FlightTrack) []float64 { return t.Roll }},
	{"KT19 (K)", func(t domain.FlightTrack) []float64 { return t.BrightnessTemp }},
	{"Latitude (°)", func(t domain.FlightTrack) []float64 { return t.Latitude }},
	{"Longitude (°)", func(t domain.FlightTrack) []float64 { return t.Longitude }},
}

const colorbarHeight = 36

// Timeseries renders the vertically stacked scatter panels, one per
// navigation variable, colored by hour-of-day, topped by the shared
// hour colorbar. All panels share the view's time extent.
func Timeseries(track domain.FlightTrack, opts TimeseriesOptions) ([]byte, error) {
	if opts.Width <= 0 || opts.PanelHeight <= 0 {
		return nil, fmt.Errorf("invalid panel size %dx%d", opts.Width, opts.PanelHeight)
	}

	out := image.NewRGBA(image.Rect(0, 0, opts.Width, colorbarHeight+len(panels)*opts.PanelHeight))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	drawHourColorbar(out, image.Rect(0, 0, opts.Width, colorbarHeight))

	for i, p := range panels {
		top := colorbarHeight + i*opts.PanelHeight
		rect := image.Rect(0, top, opts.Width, top+opts.PanelHeight)
		img, err := renderPanel(track, p, opts)
		if err != nil {
			return nil, fmt.Errorf("render panel %q: %w", p.label, err)
		}
		draw.Draw(out, rect, img, image.Point{}, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode timeseries: %w", err)
	}
	return buf.Bytes(), nil
}

// renderPanel renders a single scatter panel to an image.
func renderPanel(track domain.FlightTrack, p panel, opts TimeseriesOptions) (image.Image, error) {
	times, values, hours := validPoints(track.Time, p.values(track), track.HourOfDay)
	if len(times) == 0 {
		return blankPanel(opts.Width, opts.PanelHeight, p.label+": no data"), nil
	}
	if len(times) == 1 {
		// go-chart cannot range a single sample; duplicate it.
		times = append(times, times[0].Add(time.Second))
		values = append(values, values[0])
		hours = append(hours, hours[0])
	}

	style := chart.Style{
		StrokeWidth: 0,
		DotWidth:    float64(opts.MarkerSize),
		DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
			c := hourColormap.scaled(hours[index], 0, 24, opts.Alpha)
			return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
		},
	}

	yMin, yMax := floatExtent(values)
	if yMin == yMax {
		yMin -= 0.5
		yMax += 0.5
	}

	ch := chart.Chart{
		Width:      opts.Width,
		Height:     opts.PanelHeight,
		Background: chart.Style{Padding: chart.Box{Top: 8, Left: 16, Right: 18, Bottom: 4}},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("15:04"),
		},
		YAxis: chart.YAxis{
			Name:  p.label,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: []chart.Series{
			chart.TimeSeries{Name: p.label, XValues: times, YValues: values, Style: style},
		},
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// validPoints drops samples whose value or hour is NaN.
func validPoints(times []time.Time, values, hours []float64) ([]time.Time, []float64, []float64) {
	outT := make([]time.Time, 0, len(times))
	outV := make([]float64, 0, len(values))
	outH := make([]float64, 0, len(hours))
	for i := range times {
		if math.IsNaN(values[i]) || math.IsNaN(hours[i]) {
			continue
		}
		outT = append(outT, times[i])
		outV = append(outV, values[i])
		outH = append(outH, hours[i])
	}
	return outT, outV, outH
}

func floatExtent(vals []float64) (min, max float64) {
	min, max = vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// blankPanel fills a panel with a light background and a centered label.
func blankPanel(width, height int, label string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	drawLabel(img, width/2-len(label)*basicfontWidth/2, height/2, label, labelColor)
	return img
}

// drawHourColorbar draws the shared 0–24 hour gradient with tick labels.
func drawHourColorbar(dst *image.RGBA, rect image.Rectangle) {
	barTop := rect.Min.Y + 6
	barBottom := rect.Max.Y - 14
	for x := rect.Min.X + 40; x < rect.Max.X-40; x++ {
		t := float64(x-rect.Min.X-40) / float64(rect.Dx()-80)
		col := hourColormap.at(t)
		for y := barTop; y < barBottom; y++ {
			dst.Set(x, y, col)
		}
	}
	for h := 0; h <= 24; h += 3 {
		x := rect.Min.X + 40 + (rect.Dx()-80)*h/24
		drawLabel(dst, x-14, rect.Max.Y-2, fmt.Sprintf("%02d:00", h), labelColor)
	}
}
