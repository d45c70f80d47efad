package main

import (
	"image"
	"image/color"
	"image/draw"
)

type DragFn func(pos image.Point, finished, moved bool) bool

type Widget interface {
	Rect() image.Rectangle
}

type Hoverable interface {
	MouseMoved(image.Point) Cursor
}

type LeftDraggable interface {
	LeftButtonDown(image.Point) DragFn
}

type LeftClickable interface {
	LeftClick(image.Point)
}

type RightClickable interface {
	RightClick(image.Point)
}

type Drawable interface {
	Rect() image.Rectangle
	Draw(draw.Image, image.Rectangle)
}

type WidgetCore struct {
	r       image.Rectangle
	refresh chan Widget
}

func (w *WidgetCore) Rect() image.Rectangle {
	return w.r
}

func (w *WidgetCore) publish(ev interface{}) {
	if w.refresh != nil {
		w.refresh <- nil
	}
}

/* ZoomSlider is the status-strip zoom control; its track spans the
 * logarithmic slider range. */
type ZoomSlider struct {
	WidgetCore
	ww *WaveWidget
}

func NewZoomSlider(ww *WaveWidget, refresh chan Widget) *ZoomSlider {
	return &ZoomSlider{WidgetCore{refresh: refresh}, ww}
}

func (zs *ZoomSlider) Draw(dst draw.Image, r image.Rectangle) {
	zs.r = r
	drawHorzSlider(dst, r, sliderCol, ZoomToSlider(zs.ww.Viewport().Zoom())/sliderMax)
}

func (zs *ZoomSlider) set(x int) {
	w := zs.r.Dx()
	if w <= 0 {
		return
	}
	frac := float64(x-zs.r.Min.X) / float64(w)
	zs.ww.SetZoomSlider(frac * sliderMax)
	zs.publish(x)
}

func (zs *ZoomSlider) LeftButtonDown(pos image.Point) DragFn {
	return func(pos image.Point, finished, moved bool) bool {
		zs.set(pos.X)
		return true
	}
}

func (zs *ZoomSlider) LeftClick(pos image.Point) {
	zs.set(pos.X)
}

func (zs *ZoomSlider) MouseMoved(pos image.Point) Cursor {
	return IBeamCursor
}

func drawHorzSlider(dst draw.Image, r image.Rectangle, fg color.Color, posn float64) {
	mid := r.Min.Y + r.Dy()/2
	draw.Draw(dst, image.Rect(r.Min.X, mid, r.Max.X, mid+1), &image.Uniform{fg}, image.ZP, draw.Over)
	x := int(float64(r.Min.X) + posn*float64(r.Dx()) + 0.5)
	draw.Draw(dst, image.Rect(x-1, r.Min.Y+1, x+2, r.Max.Y-2), &image.Uniform{fg}, image.ZP, draw.Over)
}

func drawBorders(dst draw.Image, r image.Rectangle, border color.Color, fill color.Color) {
	top := image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1)
	bot := image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y)
	left := image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y)
	right := image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y)
	draw.Draw(dst, r, &image.Uniform{fill}, image.ZP, draw.Over)
	for _, line := range []image.Rectangle{top, bot, left, right} {
		draw.Draw(dst, line, &image.Uniform{border}, image.ZP, draw.Over)
	}
}

func padRect(r image.Rectangle, h, v int) image.Rectangle {
	return image.Rect(r.Min.X-h, r.Min.Y-v, r.Max.X+h, r.Max.Y+v)
}

func vrect(r image.Rectangle, x int) image.Rectangle {
	return image.Rect(x, r.Min.Y, x+1, r.Max.Y)
}
