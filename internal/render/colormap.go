package render

import (
	"image/color"
	"math"
)

// colormap is a piecewise-linear gradient over [0, 1].
type colormap []color.NRGBA

// hourColormap colors the 0–24 hour-of-day scale (viridis anchors).
var hourColormap = colormap{
	{R: 68, G: 1, B: 84, A: 255},
	{R: 59, G: 82, B: 139, A: 255},
	{R: 33, G: 145, B: 140, A: 255},
	{R: 94, G: 201, B: 98, A: 255},
	{R: 253, G: 231, B: 37, A: 255},
}

// iceColormap colors the 0–100 concentration scale: open water dark,
// consolidated ice bright (reversed blues).
var iceColormap = colormap{
	{R: 8, G: 48, B: 107, A: 255},
	{R: 33, G: 113, B: 181, A: 255},
	{R: 107, G: 174, B: 214, A: 255},
	{R: 198, G: 219, B: 239, A: 255},
	{R: 247, G: 251, B: 255, A: 255},
}

// at maps t in [0, 1] onto the gradient, clamping outside values.
func (c colormap) at(t float64) color.NRGBA {
	if math.IsNaN(t) {
		return color.NRGBA{}
	}
	if t <= 0 {
		return c[0]
	}
	if t >= 1 {
		return c[len(c)-1]
	}
	pos := t * float64(len(c)-1)
	i := int(pos)
	frac := pos - float64(i)
	lo, hi := c[i], c[i+1]
	return color.NRGBA{
		R: lerpByte(lo.R, hi.R, frac),
		G: lerpByte(lo.G, hi.G, frac),
		B: lerpByte(lo.B, hi.B, frac),
		A: 255,
	}
}

// scaled maps v in [min, max] onto the gradient with an alpha override.
func (c colormap) scaled(v, min, max, alpha float64) color.NRGBA {
	col := c.at((v - min) / (max - min))
	col.A = alphaByte(alpha)
	return col
}

func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

func alphaByte(alpha float64) uint8 {
	if alpha <= 0 {
		return 0
	}
	if alpha >= 1 {
		return 255
	}
	return uint8(math.Round(alpha * 255))
}
