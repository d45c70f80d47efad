package main

import (
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"
	"time"

	"github.com/skelterjohn/go.wde"
	_ "github.com/skelterjohn/go.wde/init"

	"github.com/biglinux/big-audio-converter-sub000/log"
)

var cursorCtl CursorCtl

func widgetAt(pos image.Point) Widget {
	for _, w := range G.widgets {
		if pos.In(w.Rect()) {
			return w
		}
	}
	return nil
}

func event(events <-chan interface{}, dispatch chan func(), refresh chan Widget, done chan bool, wg *sync.WaitGroup) {
	defer func() {
		done <- true
		wg.Done()
	}()
	var drag DragFn = nil
	var dragged bool = false
	var refreshTimer *time.Timer
	for {
		select {
		case fn := <-dispatch:
			fn()
			continue
		case ei, ok := <-events:
			if !ok {
				return
			}
			switch e := ei.(type) {
			case wde.MouseDownEvent:
				dragged = false
				drag = nil
				if e.Where.In(G.ww.Rect()) {
					/* wheel and middle-button handling stays concrete */
					drag = G.ww.ButtonDown(e)
				} else if e.Which == wde.LeftButton {
					if ld, ok := widgetAt(e.Where).(LeftDraggable); ok {
						drag = ld.LeftButtonDown(e.Where)
					}
				}
			case wde.MouseUpEvent:
				switch e.Which {
				case wde.LeftButton:
					if !dragged || drag == nil {
						if lc, ok := widgetAt(e.Where).(LeftClickable); ok {
							lc.LeftClick(e.Where)
						}
					} else {
						drag(e.Where, true, true)
					}
				case wde.RightButton:
					if rc, ok := widgetAt(e.Where).(RightClickable); ok {
						rc.RightClick(e.Where)
					}
				}
				/* any release invalidates the drag */
				drag = nil
			case wde.MouseDraggedEvent:
				dragged = true
				if e.Which == wde.LeftButton || e.Which == wde.MiddleButton {
					if drag != nil {
						drag(e.Where, false, true)
					}
				}
			case wde.MouseMovedEvent:
				if h, ok := widgetAt(e.Where).(Hoverable); ok {
					cursorCtl.Set(h.MouseMoved(e.Where))
				} else {
					cursorCtl.Set(NormalCursor)
				}
			case wde.MouseExitedEvent:
				G.ww.MouseLeft()
			case wde.KeyDownEvent:
				setModifier(e.Key, true)
			case wde.KeyUpEvent:
				setModifier(e.Key, false)
			case wde.KeyTypedEvent:
				keyTyped(e)
			case wde.ResizeEvent:
				if refreshTimer != nil {
					refreshTimer.Stop()
				}
				refreshTimer = time.AfterFunc(50*time.Millisecond, func() { refresh <- nil })
			case wde.CloseEvent:
				return
			}
		}
	}
}

func setModifier(key string, down bool) {
	if strings.Contains(key, "shift") {
		G.kb.shift = down
	}
	if strings.Contains(key, "control") || strings.Contains(key, "ctrl") {
		G.kb.ctrl = down
	}
}

func keyTyped(e wde.KeyTypedEvent) {
	switch e.Key {
	case wde.KeyLeftArrow:
		G.ww.Scroll(-0.25)
		return
	case wde.KeyRightArrow:
		G.ww.Scroll(0.25)
		return
	case wde.KeySpace:
		playToggle()
		return
	case wde.KeyDelete, wde.KeyBackspace:
		G.ww.DeleteHovered()
		return
	}
	if G.kb.ctrl {
		switch e.Glyph {
		case "+", "=":
			G.ww.Zoom(1.2)
		case "-":
			G.ww.Zoom(1 / 1.2)
		case "0":
			G.ww.ResetZoom()
		}
		return
	}
	switch e.Glyph {
	case "s":
		toggleSelectionOnly()
	case "o":
		G.orderByNumber = !G.orderByNumber
		G.bridge.SetOrderByNumber(G.orderByNumber)
		log.UI.Printf("segment ordering: by number = %v", G.orderByNumber)
	case "m":
		G.ww.SetMarkersEnabled(!G.ww.MarkersEnabled())
	case "e":
		exportSegments()
	}
}

func drawstatus(dst draw.Image, r image.Rectangle) {
	bg := color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
	draw.Draw(dst, r, &image.Uniform{bg}, image.ZP, draw.Src)
	drawText(dst, color.Black, image.Pt(r.Min.X+4, r.Max.Y-6), G.ww.Status())
}

func drawstuff(w wde.Window, refresh chan Widget, done chan bool) {
	rate := time.Millisecond * 33 /* maximum refresh rate */
	lastframe := time.Now().Add(-rate)
	var merge func()
	merged := 0
	for {
		select {
		case <-refresh:
			now := time.Now()
			nextframe := lastframe.Add(rate)
			if merge != nil || now.Before(nextframe) {
				merged++
				if merge == nil {
					merge = func() {
						refresh <- nil
						merge = nil
					}
					time.AfterFunc(nextframe.Sub(now), merge)
				}
			} else {
				lastframe = now
				width, height := w.Size()
				r := image.Rect(0, 0, width, height)
				img := image.NewRGBA(r)
				wvR := image.Rect(0, 0, width, height-20)
				statusR := image.Rect(0, wvR.Max.Y, width, height)
				drawstatus(img, statusR)
				for _, v := range []struct {
					d Drawable
					r image.Rectangle
				}{
					{G.ww, wvR},
					{G.zoom, image.Rect(width-160, statusR.Min.Y+3, width-8, statusR.Max.Y-3)},
				} {
					v.d.Draw(img, v.r)
				}
				w.Screen().CopyRGBA(img, r)
				w.FlushImage()
				merged = 0
				lastframe = time.Now()
			}
		case <-done:
			return
		}
	}
}

func InitWde(refresh chan Widget) *sync.WaitGroup {
	dw, err := wde.NewWindow(800, 320)
	if err != nil {
		log.UI.Println(err)
		panic(err)
	}
	dw.SetTitle("wavecut")
	dw.SetSize(800, 320)
	dw.Show()

	wg := sync.WaitGroup{}
	wg.Add(1)

	cursorCtl = NewCursorCtl(dw)
	done := make(chan bool)

	go drawstuff(dw, refresh, done)
	go event(dw.EventChan(), G.dispatch, refresh, done, &wg)

	return &wg
}
