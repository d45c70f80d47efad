package main

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

/* drawText renders s with its baseline at pt. */
func drawText(dst draw.Image, col color.Color, pt image.Point, s string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{col},
		Face: face,
		Dot:  fixed.P(pt.X, pt.Y),
	}
	d.DrawString(s)
}

/* drawTextCentered renders s centered horizontally on cx with its
 * baseline at y. */
func drawTextCentered(dst draw.Image, col color.Color, cx, y int, s string) {
	drawText(dst, col, image.Pt(cx-textWidth(s)/2, y), s)
}

func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

func textHeight() int {
	return face.Metrics().Height.Ceil()
}
