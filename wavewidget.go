package main

import (
	"fmt"
	"image"
	"math"

	"github.com/biglinux/big-audio-converter-sub000/marker"
	"github.com/biglinux/big-audio-converter-sub000/wave"
)

type changeMask int

const (
	WAV changeMask = 1 << iota
	MARKERS
	CURSOR
	HOVER
	VIEWPOS
	MODE
	LAYOUT
	MAXBIT
	EVERYTHING changeMask = MAXBIT - 1
)

const (
	/* vertical fraction of the widget handling seek clicks; below it
	 * lies the segment-editing zone */
	seekZoneFrac = 0.6

	rulerHeight     = 25 // pixels
	scrollbarHeight = 6  // pixels

	edgeGrabPx      = 5 // marker edge hit tolerance
	bodyDragPx      = 3 // movement before a body press becomes a drag
	deleteGlyphSize = 12

	buttonW   = 80
	buttonH   = 30
	buttonPad = 10 // hit-test padding around dialog buttons
)

type WaveLayout struct {
	r         image.Rectangle /* whole widget */
	wave      image.Rectangle /* waveform area above the ruler */
	ruler     image.Rectangle /* bottom rulerHeight pixels */
	scrollbar image.Rectangle /* above the ruler, when zoom > 1 */
}

func (wl *WaveLayout) layout(r image.Rectangle, scrollbar bool) {
	wl.r = r
	wl.ruler = image.Rect(r.Min.X, r.Max.Y-rulerHeight, r.Max.X, r.Max.Y)
	wl.wave = image.Rect(r.Min.X, r.Min.Y, r.Max.X, wl.ruler.Min.Y)
	if scrollbar {
		wl.scrollbar = image.Rect(r.Min.X, wl.ruler.Min.Y-scrollbarHeight, r.Max.X, wl.ruler.Min.Y)
	} else {
		wl.scrollbar = image.Rectangle{}
	}
}

/* seekZone is the upper portion of the widget; clicks there reposition
 * playback. */
func (wl *WaveLayout) seekZone() image.Rectangle {
	return image.Rect(wl.r.Min.X, wl.r.Min.Y, wl.r.Max.X,
		wl.r.Min.Y+int(seekZoneFrac*float64(wl.r.Dy())))
}

type renderKey struct {
	s0, sN float64
	w, h   int
	level  int
}

type dialogButton struct {
	r      image.Rectangle
	label  string
	action func(*WaveWidget)
}

type WaveWidget struct {
	WidgetCore

	/* data related state */
	wav            *wave.Waveform
	vp             *Viewport
	editor         *marker.Editor
	markersEnabled bool
	generating     bool

	/* playback state */
	pos     float64
	playing bool

	/* mouse state */
	hoverX   int /* -1 when the pointer is outside */
	hoverSeg int /* slice index of hovered segment, -1 otherwise */

	/* injected by the app layer; re-seeks go through the throttle */
	onSeek func(t float64)

	renderstate struct {
		img        *image.RGBA
		key        renderKey
		haveKey    bool
		changed    changeMask
		recomputes int
	}
	rect WaveLayout
}

func NewWaveWidget(refresh chan Widget) *WaveWidget {
	var ww WaveWidget
	ww.vp = NewViewport()
	ww.editor = marker.NewEditor()
	ww.markersEnabled = true
	ww.hoverX = -1
	ww.hoverSeg = -1
	ww.onSeek = func(float64) {}
	ww.renderstate.changed = EVERYTHING
	ww.refresh = refresh
	return &ww
}

func (ww *WaveWidget) changed(mask changeMask, ev interface{}) {
	ww.renderstate.changed |= mask
	ww.publish(ev)
}

func (ww *WaveWidget) Viewport() *Viewport {
	return ww.vp
}

func (ww *WaveWidget) Editor() *marker.Editor {
	return ww.editor
}

func (ww *WaveWidget) OnSeek(fn func(t float64)) {
	ww.onSeek = fn
}

/* SetWaveform swaps in newly generated data, releasing the previous
 * buffers and cached raster and resetting view and position. */
func (ww *WaveWidget) SetWaveform(wav *wave.Waveform) {
	old := ww.wav
	ww.wav = wav
	ww.renderstate.img = nil
	ww.renderstate.haveKey = false
	if old != nil {
		old.Release()
	}
	ww.vp.Reset()
	ww.pos = 0
	if wav != nil {
		ww.vp.SetDuration(wav.Duration)
		ww.editor.SetDuration(wav.Duration)
	} else {
		/* cleared widget accepts no seeks or placements */
		ww.vp.SetDuration(0)
		ww.editor.SetDuration(0)
	}
	ww.generating = false
	ww.changed(EVERYTHING, wav)
}

func (ww *WaveWidget) ClearWaveform() {
	ww.SetWaveform(nil)
}

/* SetDuration allows duration-only editing when generation failed but
 * the probe succeeded. */
func (ww *WaveWidget) SetDuration(d float64) {
	ww.vp.SetDuration(d)
	ww.editor.SetDuration(d)
	ww.changed(WAV|LAYOUT, d)
}

func (ww *WaveWidget) SetGenerating(on bool) {
	ww.generating = on
	ww.changed(WAV, on)
}

func (ww *WaveWidget) SetMarkersEnabled(on bool) {
	ww.markersEnabled = on
	ww.changed(MARKERS|MODE, on)
}

func (ww *WaveWidget) MarkersEnabled() bool {
	return ww.markersEnabled
}

/* SetPlaybackPosition runs viewport auto-follow before anything else
 * reacts to the new position. */
func (ww *WaveWidget) SetPlaybackPosition(pos float64, playing bool) {
	ww.pos = pos
	ww.playing = playing
	mask := CURSOR
	if ww.vp.AutoFollow(pos, playing, float64(ww.rect.wave.Dx())) {
		mask |= VIEWPOS
	}
	ww.changed(mask, pos)
}

func (ww *WaveWidget) PlaybackPosition() float64 {
	return ww.pos
}

/* ZoomAtPixel scales the zoom by factor keeping the time under pixel
 * x fixed on screen. */
func (ww *WaveWidget) ZoomAtPixel(factor float64, x int) {
	w := ww.rect.wave.Dx()
	anchor := 0.5
	if w > 0 {
		anchor = float64(x-ww.rect.wave.Min.X) / float64(w)
	}
	ww.vp.SetZoom(ww.vp.Zoom()*factor, anchor)
	ww.changed(VIEWPOS, factor)
}

/* Zoom scales around the playback position when visible, else the
 * center. */
func (ww *WaveWidget) Zoom(factor float64) {
	ww.vp.SetZoom(ww.vp.Zoom()*factor, ww.zoomAnchor())
	ww.changed(VIEWPOS, factor)
}

func (ww *WaveWidget) zoomAnchor() float64 {
	t0, t1 := ww.vp.VisibleRange()
	if t1 > t0 && ww.pos >= t0 && ww.pos <= t1 {
		return (ww.pos - t0) / (t1 - t0)
	}
	return 0.5
}

func (ww *WaveWidget) ResetZoom() {
	ww.vp.SetZoom(MinZoom, 0.5)
	ww.changed(VIEWPOS, nil)
}

func (ww *WaveWidget) SetZoomSlider(v float64) {
	ww.vp.SetZoom(SliderToZoom(v), ww.zoomAnchor())
	ww.changed(VIEWPOS, v)
}

/* Scroll pans by a fraction of the visible duration. */
func (ww *WaveWidget) Scroll(frac float64) {
	ww.vp.Pan(frac)
	ww.changed(VIEWPOS, frac)
}

func (ww *WaveWidget) ScrollPixels(dx int) {
	w := ww.rect.wave.Dx()
	if w > 0 {
		ww.Scroll(float64(dx) / float64(w))
	}
}

func (ww *WaveWidget) TimeAtPixel(x int) float64 {
	return ww.vp.TimeAtPixel(float64(x-ww.rect.wave.Min.X), float64(ww.rect.wave.Dx()))
}

func (ww *WaveWidget) PixelAtTime(t float64) int {
	return ww.rect.wave.Min.X + int(math.Round(ww.vp.PixelAtTime(t, float64(ww.rect.wave.Dx()))))
}

/* Status describes the current editing mode for the status line. */
func (ww *WaveWidget) Status() string {
	return fmt.Sprintf("%s  %s", ww.modeHint(), ww.zoomReadout())
}

func (ww *WaveWidget) zoomReadout() string {
	return fmt.Sprintf("%.1fx", ww.vp.Zoom())
}

func (ww *WaveWidget) modeHint() string {
	if !ww.markersEnabled {
		return ""
	}
	switch ww.editor.Mode() {
	case marker.ModeStart:
		return "click below to place start marker"
	case marker.ModeStop:
		return "click below to place stop marker"
	case marker.ModeConfirm:
		return "confirm segment?"
	case marker.ModeDeletePrompt:
		return "delete segment?"
	case marker.ModeDeleteAllConfirm:
		return "delete ALL segments?"
	}
	return ""
}

/* dialogButtons lays out the active prompt's buttons. With a single
 * segment the delete prompt has no Delete All option. */
func (ww *WaveWidget) dialogButtons() []dialogButton {
	w := ww.rect.r.Dx()
	y := ww.rect.r.Min.Y + int(0.2*float64(ww.rect.r.Dy()))
	at := func(cx float64, label string, action func(*WaveWidget)) dialogButton {
		x := ww.rect.r.Min.X + int(cx*float64(w))
		r := image.Rect(x-buttonW/2, y, x+buttonW/2, y+buttonH)
		return dialogButton{r: r, label: label, action: action}
	}
	switch ww.editor.Mode() {
	case marker.ModeDeletePrompt:
		if ww.editor.NumPairs() > 1 {
			return []dialogButton{
				at(0.25, "Delete", func(w *WaveWidget) { w.editor.DeleteTarget() }),
				at(0.5, "Delete All", func(w *WaveWidget) { w.editor.RequestDeleteAll() }),
				at(0.75, "Cancel", func(w *WaveWidget) { w.editor.CancelPrompt() }),
			}
		}
		return []dialogButton{
			at(0.3, "Delete", func(w *WaveWidget) { w.editor.DeleteTarget() }),
			at(0.7, "Cancel", func(w *WaveWidget) { w.editor.CancelPrompt() }),
		}
	case marker.ModeDeleteAllConfirm:
		return []dialogButton{
			at(0.3, "Confirm", func(w *WaveWidget) { w.editor.ConfirmDeleteAll() }),
			at(0.7, "Cancel", func(w *WaveWidget) { w.editor.CancelPrompt() }),
		}
	case marker.ModeConfirm:
		return []dialogButton{
			at(0.3, "Confirm", func(w *WaveWidget) { w.editor.Confirm() }),
			at(0.7, "Cancel", func(w *WaveWidget) { w.editor.CancelPending() }),
		}
	}
	return nil
}

/* HoveredSegment returns the slice index under the pointer, or -1. */
func (ww *WaveWidget) HoveredSegment() int {
	return ww.hoverSeg
}

/* DeleteHovered opens the delete prompt for the hovered segment
 * (Delete/Backspace keys). */
func (ww *WaveWidget) DeleteHovered() {
	if ww.hoverSeg >= 0 {
		ww.editor.OpenDeletePrompt(ww.hoverSeg)
		ww.changed(MODE|MARKERS, ww.hoverSeg)
	}
}

/* deleteGlyphRect is the small close box at the segment's top-right
 * corner within the edit zone. */
func (ww *WaveWidget) deleteGlyphRect(p marker.Pair) image.Rectangle {
	x1 := ww.PixelAtTime(p.Stop)
	y := ww.rect.seekZone().Max.Y + 2
	return image.Rect(x1-deleteGlyphSize-2, y, x1-2, y+deleteGlyphSize)
}

/* scrollThumb computes the synthetic scrollbar thumb; its width is
 * proportional to 1/zoom. */
func (ww *WaveWidget) scrollThumb() image.Rectangle {
	sb := ww.rect.scrollbar
	if sb.Empty() {
		return sb
	}
	w := float64(sb.Dx())
	tw := int(w / ww.vp.Zoom())
	if tw < 8 {
		tw = 8
	}
	maxOff := 1.0 - 1.0/ww.vp.Zoom()
	x := sb.Min.X
	if maxOff > 0 {
		x += int(ww.vp.Offset() / maxOff * (w - float64(tw)))
	}
	return image.Rect(x, sb.Min.Y, x+tw, sb.Max.Y)
}
