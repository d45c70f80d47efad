package main

import (
	"image"

	"github.com/skelterjohn/go.wde"
)

func (ww *WaveWidget) MouseMoved(pos image.Point) Cursor {
	if pos.X != ww.hoverX {
		ww.hoverX = pos.X
		ww.changed(HOVER, pos)
	}
	seg := -1
	if ww.markersEnabled && ww.vp.Duration() > 0 && ww.inEditZone(pos) {
		seg, _ = ww.editor.BodyAt(ww.TimeAtPixel(pos.X))
	}
	if seg != ww.hoverSeg {
		ww.hoverSeg = seg
		ww.changed(MARKERS, seg)
	}
	return ww.cursorAt(pos)
}

func (ww *WaveWidget) MouseLeft() {
	if ww.hoverX != -1 || ww.hoverSeg != -1 {
		ww.hoverX = -1
		ww.hoverSeg = -1
		ww.changed(HOVER|MARKERS, nil)
	}
}

func (ww *WaveWidget) cursorAt(pos image.Point) Cursor {
	if ww.dialogButtons() != nil {
		return NormalCursor
	}
	if ww.markersEnabled && ww.vp.Duration() > 0 && ww.inEditZone(pos) {
		t := ww.TimeAtPixel(pos.X)
		if _, _, ok := ww.editor.EdgeAt(t, ww.timeTolerance(edgeGrabPx)); ok {
			return ResizeEWCursor
		}
		if _, ok := ww.editor.BodyAt(t); ok {
			return GrabCursor
		}
	}
	if pos.In(ww.rect.seekZone()) {
		return IBeamCursor
	}
	return NormalCursor
}

/* inEditZone covers the bottom editing band, ruler included while
 * markers are enabled. */
func (ww *WaveWidget) inEditZone(pos image.Point) bool {
	return pos.Y > ww.rect.seekZone().Max.Y && pos.In(ww.rect.r)
}

/* timeTolerance converts a pixel band to seconds at the current zoom. */
func (ww *WaveWidget) timeTolerance(px int) float64 {
	w := ww.rect.wave.Dx()
	if w <= 0 {
		return 0
	}
	t0, t1 := ww.vp.VisibleRange()
	return float64(px) * (t1 - t0) / float64(w)
}

func (ww *WaveWidget) ButtonDown(e wde.MouseDownEvent) DragFn {
	switch e.Which {
	case wde.WheelUpButton:
		if G.kb.shift {
			ww.Scroll(-0.1)
		} else {
			ww.ZoomAtPixel(1.2, e.Where.X)
		}
		return nil
	case wde.WheelDownButton:
		if G.kb.shift {
			ww.Scroll(0.1)
		} else {
			ww.ZoomAtPixel(1/1.2, e.Where.X)
		}
		return nil
	case wde.WheelLeftButton:
		ww.Scroll(-0.1)
		return nil
	case wde.WheelRightButton:
		ww.Scroll(0.1)
		return nil
	case wde.MiddleButton:
		return ww.panDrag(e.Where)
	case wde.LeftButton:
		return ww.leftDrag(e.Where)
	}
	return nil
}

func (ww *WaveWidget) leftDrag(pos image.Point) DragFn {
	if ww.dialogButtons() != nil {
		return nil /* dialog clicks resolve in LeftClick */
	}
	if !ww.rect.scrollbar.Empty() && pos.In(padRect(ww.rect.scrollbar, 0, 2)) {
		return ww.thumbDrag(pos)
	}
	if ww.vp.Duration() <= 0 {
		return nil
	}
	if ww.inEditZone(pos) {
		if !ww.markersEnabled {
			if pos.In(ww.rect.ruler) {
				return ww.scrubDrag()
			}
			return nil
		}
		t := ww.TimeAtPixel(pos.X)
		if i, stopEdge, ok := ww.editor.EdgeAt(t, ww.timeTolerance(edgeGrabPx)); ok {
			return ww.edgeDrag(i, stopEdge)
		}
		if i, ok := ww.editor.BodyAt(t); ok {
			return ww.bodyDrag(i, pos)
		}
	}
	return nil
}

/* edgeDrag resizes one boundary, re-seeking playback to it on every
 * movement so the cut point can be located by ear. Editor drag state
 * only begins once the pointer actually moves. */
func (ww *WaveWidget) edgeDrag(i int, stopEdge bool) DragFn {
	begun := false
	return func(pos image.Point, finished, moved bool) bool {
		if moved {
			if !begun {
				ww.editor.BeginEdgeDrag(i, stopEdge)
				begun = true
			}
			boundary := ww.editor.DragEdgeTo(ww.TimeAtPixel(pos.X))
			ww.onSeek(boundary)
			ww.changed(MARKERS, boundary)
		}
		if finished && begun {
			ww.editor.EndDrag()
			ww.changed(MARKERS, i)
		}
		return true
	}
}

/* bodyDrag moves the whole segment once the pointer travels past the
 * activation threshold; releasing without crossing it is a click and
 * opens the delete prompt. */
func (ww *WaveWidget) bodyDrag(i int, press image.Point) DragFn {
	begun := false
	return func(pos image.Point, finished, moved bool) bool {
		dx := pos.X - press.X
		if dx < 0 {
			dx = -dx
		}
		if !begun && moved && dx > bodyDragPx {
			ww.editor.BeginBodyDrag(i, ww.TimeAtPixel(press.X))
			begun = true
		}
		if begun && moved {
			ww.editor.DragBodyTo(ww.TimeAtPixel(pos.X))
			ww.changed(MARKERS, i)
		}
		if finished {
			if begun {
				ww.editor.EndDrag()
				ww.changed(MARKERS, i)
			} else {
				ww.editor.OpenDeletePrompt(i)
				ww.changed(MODE, i)
			}
		}
		return true
	}
}

func (ww *WaveWidget) panDrag(mouse image.Point) DragFn {
	prevX := mouse.X
	return func(pos image.Point, finished, moved bool) bool {
		if moved {
			ww.ScrollPixels(prevX - pos.X)
			prevX = pos.X
		}
		return true
	}
}

/* scrubDrag seeks continuously along the ruler. */
func (ww *WaveWidget) scrubDrag() DragFn {
	return func(pos image.Point, finished, moved bool) bool {
		ww.onSeek(ww.TimeAtPixel(pos.X))
		return true
	}
}

/* thumbDrag maps the scrollbar thumb position linearly onto the
 * offset range. */
func (ww *WaveWidget) thumbDrag(press image.Point) DragFn {
	thumb := ww.scrollThumb()
	grabX := press.X - thumb.Min.X
	if !press.In(thumb) {
		grabX = thumb.Dx() / 2
	}
	return func(pos image.Point, finished, moved bool) bool {
		sb := ww.rect.scrollbar
		span := sb.Dx() - thumb.Dx()
		if span <= 0 {
			return true
		}
		maxOff := 1.0 - 1.0/ww.vp.Zoom()
		frac := float64(pos.X-grabX-sb.Min.X) / float64(span)
		ww.vp.SetOffset(frac * maxOff)
		ww.changed(VIEWPOS, frac)
		return true
	}
}

func (ww *WaveWidget) LeftClick(pos image.Point) {
	if buttons := ww.dialogButtons(); buttons != nil {
		for _, b := range buttons {
			if pos.In(padRect(b.r, buttonPad, buttonPad)) {
				b.action(ww)
				ww.changed(MODE|MARKERS, b.label)
				return
			}
		}
		ww.editor.DismissElsewhere()
		ww.changed(MODE, nil)
		return
	}
	if !ww.rect.scrollbar.Empty() && pos.In(padRect(ww.rect.scrollbar, 0, 2)) {
		return /* press without drag; leave the view alone */
	}
	if ww.vp.Duration() <= 0 {
		return
	}
	if ww.markersEnabled && ww.inEditZone(pos) {
		t := ww.TimeAtPixel(pos.X)
		if i, ok := ww.editor.BodyAt(t); ok && i == ww.hoverSeg && pos.In(ww.deleteGlyphRect(ww.editor.Pairs()[i])) {
			ww.editor.OpenDeletePrompt(i)
			ww.changed(MODE, i)
			return
		}
		if _, _, ok := ww.editor.EdgeAt(t, ww.timeTolerance(edgeGrabPx)); ok {
			return /* grab without movement */
		}
		if i, ok := ww.editor.BodyAt(t); ok {
			ww.editor.OpenDeletePrompt(i)
			ww.changed(MODE, i)
			return
		}
		ww.editor.Click(t)
		ww.changed(MARKERS|MODE, t)
		return
	}
	/* seek zone, or edit zone with markers disabled */
	ww.onSeek(ww.TimeAtPixel(pos.X))
	ww.changed(CURSOR, pos)
}

/* RightClick opens the delete prompt for the segment under the
 * pointer. */
func (ww *WaveWidget) RightClick(pos image.Point) {
	if !ww.markersEnabled || ww.vp.Duration() <= 0 {
		return
	}
	if i, ok := ww.editor.BodyAt(ww.TimeAtPixel(pos.X)); ok {
		ww.editor.OpenDeletePrompt(i)
		ww.changed(MODE, i)
	}
}
