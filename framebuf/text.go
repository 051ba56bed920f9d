package framebuf

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// DrawText draws s with its top-left corner at (x, y).
func (b *Buffer) DrawText(x, y int, s string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  b.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

func TextWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

func TextHeight() int {
	return face.Metrics().Height.Ceil()
}
