package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/arctictools/nav-quicklook/internal/domain"
)

// MapOptions control the geographic composite.
type MapOptions struct {
	Width      int
	Height     int
	MarkerSize int
	Alpha      float64
	ShowIce    bool
}

// DefaultMapOptions mirror the dashboard's initial control values. The
// track markers on the map run one size larger than the panels.
func DefaultMapOptions() MapOptions {
	return MapOptions{Width: 700, Height: 520, MarkerSize: 6, Alpha: 0.9, ShowIce: true}
}

// Extent is the geographic frame of the map view in degrees.
type Extent struct {
	MinLon, MinLat, MaxLon, MaxLat float64
}

// iceAlpha is the fixed opacity of the concentration raster; the track
// keeps the user-selected alpha on top of it.
const iceAlpha = 0.6

// Map frame margins.
const (
	mapMarginLeft   = 56
	mapMarginBottom = 28
	mapMarginTop    = 10
	mapMarginRight  = 96
)

// TrackExtent computes the view frame around the track's valid
// positions, padded by 5% per side. ok is false when the track has no
// valid position.
func TrackExtent(track domain.FlightTrack) (Extent, bool) {
	var e Extent
	found := false
	for i := range track.Longitude {
		lon, lat := track.Longitude[i], track.Latitude[i]
		if math.IsNaN(lon) || math.IsNaN(lat) {
			continue
		}
		if !found {
			e = Extent{MinLon: lon, MinLat: lat, MaxLon: lon, MaxLat: lat}
			found = true
			continue
		}
		e.MinLon = math.Min(e.MinLon, lon)
		e.MaxLon = math.Max(e.MaxLon, lon)
		e.MinLat = math.Min(e.MinLat, lat)
		e.MaxLat = math.Max(e.MaxLat, lat)
	}
	if !found {
		return Extent{}, false
	}

	padLon := (e.MaxLon - e.MinLon) * 0.05
	padLat := (e.MaxLat - e.MinLat) * 0.05
	if padLon == 0 {
		padLon = 0.05
	}
	if padLat == 0 {
		padLat = 0.02
	}
	e.MinLon -= padLon
	e.MaxLon += padLon
	e.MinLat -= padLat
	e.MaxLat += padLat
	return e, true
}

// GeoMap renders the geographic composite: optional basemap, optional
// concentration raster, and the hour-colored track on a lon/lat frame.
// A nil ice layer or ShowIce=false renders the identical view without
// the raster; the track is unaffected.
func GeoMap(track domain.FlightTrack, ice *domain.IceLayer, base image.Image, opts MapOptions) ([]byte, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid map size %dx%d", opts.Width, opts.Height)
	}

	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)

	extent, ok := TrackExtent(track)
	if !ok {
		label := "no position data"
		drawLabel(out, opts.Width/2-len(label)*basicfontWidth/2, opts.Height/2, label, labelColor)
		return encodePNG(out)
	}

	plot := image.Rect(mapMarginLeft, mapMarginTop, opts.Width-mapMarginRight, opts.Height-mapMarginBottom)
	proj := newProjection(extent, plot)

	if base != nil {
		xdraw.ApproxBiLinear.Scale(out, plot, base, base.Bounds(), xdraw.Over, nil)
	}

	showIce := opts.ShowIce && ice != nil
	if showIce {
		drawIceLayer(out, plot, *ice, proj)
	}

	drawTrackPoints(out, plot, track, proj, opts)
	drawMapFrame(out, plot, extent)

	hourBarX := plot.Max.X + 12
	drawVerticalColorbar(out, hourBarX, plot.Min.Y, plot.Max.Y, hourColormap, []barTick{
		{0, "00"}, {0.25, "06"}, {0.5, "12"}, {0.75, "18"}, {1, "24"},
	})
	if showIce {
		drawVerticalColorbar(out, hourBarX+40, plot.Min.Y, plot.Max.Y, iceColormap, []barTick{
			{0, "0"}, {0.5, "50"}, {1, "100"},
		})
	}

	return encodePNG(out)
}

// projection maps lon/lat to plot pixels linearly.
type projection struct {
	extent Extent
	plot   image.Rectangle
}

func newProjection(e Extent, plot image.Rectangle) projection {
	return projection{extent: e, plot: plot}
}

func (p projection) toPixel(lon, lat float64) (int, int, bool) {
	e := p.extent
	if lon < e.MinLon || lon > e.MaxLon || lat < e.MinLat || lat > e.MaxLat {
		return 0, 0, false
	}
	fx := (lon - e.MinLon) / (e.MaxLon - e.MinLon)
	fy := (lat - e.MinLat) / (e.MaxLat - e.MinLat)
	x := p.plot.Min.X + int(fx*float64(p.plot.Dx()-1))
	y := p.plot.Max.Y - 1 - int(fy*float64(p.plot.Dy()-1))
	return x, y, true
}

// drawIceLayer paints each valid grid cell on the ice colormap with a
// fixed 0–100 scale. Cell pixel size is estimated from neighboring
// cell centers so sparse grids still fill the frame.
func drawIceLayer(dst *image.RGBA, plot image.Rectangle, ice domain.IceLayer, proj projection) {
	ny := len(ice.Conc)
	for y := 0; y < ny; y++ {
		nx := len(ice.Conc[y])
		for x := 0; x < nx; x++ {
			v := ice.Conc[y][x]
			if math.IsNaN(v) {
				continue
			}
			px, py, ok := proj.toPixel(ice.Lon[y][x], ice.Lat[y][x])
			if !ok {
				continue
			}
			halfW, halfH := cellHalfSize(ice, proj, y, x)
			col := iceColormap.scaled(v, 0, 100, iceAlpha)
			fillRectOver(dst, image.Rect(px-halfW, py-halfH, px+halfW+1, py+halfH+1).Intersect(plot), col)
		}
	}
}

// cellHalfSize estimates half the pixel footprint of a grid cell from
// the distance to the next cell center.
func cellHalfSize(ice domain.IceLayer, proj projection, y, x int) (int, int) {
	e := proj.extent
	dLon := 0.0
	if x+1 < len(ice.Lon[y]) {
		dLon = math.Abs(ice.Lon[y][x+1] - ice.Lon[y][x])
	} else if x > 0 {
		dLon = math.Abs(ice.Lon[y][x] - ice.Lon[y][x-1])
	}
	dLat := 0.0
	if y+1 < len(ice.Lat) {
		dLat = math.Abs(ice.Lat[y+1][x] - ice.Lat[y][x])
	} else if y > 0 {
		dLat = math.Abs(ice.Lat[y][x] - ice.Lat[y-1][x])
	}

	halfW := int(math.Ceil(dLon / (e.MaxLon - e.MinLon) * float64(proj.plot.Dx()) / 2))
	halfH := int(math.Ceil(dLat / (e.MaxLat - e.MinLat) * float64(proj.plot.Dy()) / 2))
	if halfW < 1 {
		halfW = 1
	}
	if halfH < 1 {
		halfH = 1
	}
	return halfW, halfH
}

func drawTrackPoints(dst *image.RGBA, plot image.Rectangle, track domain.FlightTrack, proj projection, opts MapOptions) {
	radius := opts.MarkerSize / 2
	if radius < 1 {
		radius = 1
	}
	for i := range track.Longitude {
		lon, lat := track.Longitude[i], track.Latitude[i]
		if math.IsNaN(lon) || math.IsNaN(lat) {
			continue
		}
		px, py, ok := proj.toPixel(lon, lat)
		if !ok {
			continue
		}
		col := hourColormap.scaled(track.HourOfDay[i], 0, 24, opts.Alpha)
		fillDiscOver(dst, plot, px, py, radius, col)
	}
}

// drawMapFrame draws the border and lon/lat tick labels.
func drawMapFrame(dst *image.RGBA, plot image.Rectangle, e Extent) {
	border := color.NRGBA{R: 120, G: 120, B: 120, A: 255}
	for x := plot.Min.X; x < plot.Max.X; x++ {
		dst.Set(x, plot.Min.Y, border)
		dst.Set(x, plot.Max.Y-1, border)
	}
	for y := plot.Min.Y; y < plot.Max.Y; y++ {
		dst.Set(plot.Min.X, y, border)
		dst.Set(plot.Max.X-1, y, border)
	}

	const ticks = 4
	for i := 0; i <= ticks; i++ {
		f := float64(i) / ticks
		lon := e.MinLon + f*(e.MaxLon-e.MinLon)
		x := plot.Min.X + int(f*float64(plot.Dx()-1))
		drawLabel(dst, x-18, plot.Max.Y+14, fmt.Sprintf("%.2f", lon), labelColor)

		lat := e.MinLat + f*(e.MaxLat-e.MinLat)
		y := plot.Max.Y - 1 - int(f*float64(plot.Dy()-1))
		drawLabel(dst, 4, y+4, fmt.Sprintf("%.2f", lat), labelColor)
	}
}

type barTick struct {
	pos   float64 // 0 bottom, 1 top
	label string
}

func drawVerticalColorbar(dst *image.RGBA, x, top, bottom int, cm colormap, ticks []barTick) {
	const barWidth = 14
	for y := top; y < bottom; y++ {
		t := float64(bottom-1-y) / float64(bottom-top-1)
		col := cm.at(t)
		for dx := 0; dx < barWidth; dx++ {
			dst.Set(x+dx, y, col)
		}
	}
	for _, tick := range ticks {
		y := bottom - 1 - int(tick.pos*float64(bottom-top-1))
		drawLabel(dst, x+barWidth+3, y+4, tick.label, labelColor)
	}
}

// fillRectOver source-over blends a solid color into a rectangle.
func fillRectOver(dst *image.RGBA, rect image.Rectangle, col color.NRGBA) {
	src := image.NewUniform(col)
	draw.Draw(dst, rect, src, image.Point{}, draw.Over)
}

// fillDiscOver source-over blends a filled disc clipped to the plot.
func fillDiscOver(dst *image.RGBA, clip image.Rectangle, cx, cy, radius int, col color.NRGBA) {
	src := image.NewUniform(col)
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			p := image.Pt(cx+dx, cy+dy)
			if !p.In(clip) {
				continue
			}
			draw.Draw(dst, image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))}, src, image.Point{}, draw.Over)
		}
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode map: %w", err)
	}
	return buf.Bytes(), nil
}
