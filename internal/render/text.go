package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// basicfontWidth is the advance of basicfont.Face7x13 glyphs.
const basicfontWidth = 7

var labelColor = color.NRGBA{R: 60, G: 60, B: 60, A: 255}

// drawLabel draws small axis/legend text at the given baseline position.
func drawLabel(dst *image.RGBA, x, y int, text string, col color.NRGBA) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
