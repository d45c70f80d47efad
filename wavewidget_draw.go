package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/biglinux/big-audio-converter-sub000/marker"
)

var (
	bgCol        = color.RGBA{0x10, 0x10, 0x14, 0xff}
	waveCol      = color.RGBA{0x46, 0x8b, 0xd2, 0xff}
	waveMirror   = color.RGBA{0x18, 0x22, 0x31, 0xff} /* ~15% of waveCol over bg */
	centerCol    = color.RGBA{0x2a, 0x2a, 0x30, 0xff}
	zoneCol      = color.RGBA{0x30, 0x30, 0x38, 0xff}
	posCol       = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	hoverCol     = color.RGBA{0x80, 0x80, 0x88, 0xff}
	startCol     = color.RGBA{0x22, 0xc0, 0x55, 0xff}
	stopCol      = color.RGBA{0xd8, 0x44, 0x44, 0xff}
	segFill      = color.NRGBA{0xe0, 0x90, 0x20, 0x30}
	segHoverFill = color.NRGBA{0xe0, 0x90, 0x20, 0x50}
	textCol      = color.RGBA{0xd0, 0xd0, 0xd0, 0xff}
	rulerCol     = color.RGBA{0x1a, 0x1a, 0x20, 0xff}
	tickCol      = color.RGBA{0x55, 0x55, 0x60, 0xff}
	dimOverlay   = color.NRGBA{0x00, 0x00, 0x00, 0x90}
	buttonFill   = color.RGBA{0x26, 0x26, 0x2e, 0xff}
	buttonEdge   = color.RGBA{0x70, 0x70, 0x80, 0xff}
	thumbCol     = color.RGBA{0x50, 0x50, 0x5c, 0xff}
	sliderCol    = color.RGBA{0x46, 0x62, 0x80, 0xff}
)

func (ww *WaveWidget) Draw(dst draw.Image, r image.Rectangle) {
	ww.r = r
	ww.rect.layout(r, ww.vp.Zoom() > MinZoom)
	ww.renderstate.changed = 0

	draw.Draw(dst, r, &image.Uniform{bgCol}, image.ZP, draw.Src)

	haveWave := ww.wav != nil && len(ww.wav.Levels) > 0
	if haveWave {
		raster := ww.ensureRaster()
		if raster != nil {
			draw.Draw(dst, ww.rect.wave, raster, image.ZP, draw.Src)
		}
	} else {
		msg := "No audio loaded"
		if ww.generating {
			msg = "Generating waveform..."
		}
		c := centerPt(ww.rect.wave)
		drawTextCentered(dst, textCol, c.X, c.Y+textHeight()/2, msg)
	}

	ww.drawRuler(dst)
	ww.drawZoneSeparator(dst)

	if ww.vp.Duration() > 0 {
		if ww.markersEnabled {
			ww.drawSegments(dst)
		}
		ww.drawPositionLine(dst)
		ww.drawHoverLine(dst)
	}
	ww.drawScrollbar(dst)
	ww.drawStatus(dst)
	ww.drawDialog(dst)
}

/* ensureRaster returns the waveform bitmap for the current view,
 * recomputing only when the (s0, sN, w, h, level) key changes. Redraws
 * arrive on every position tick so the blit path must stay cheap. */
func (ww *WaveWidget) ensureRaster() *image.RGBA {
	w, h := ww.rect.wave.Dx(), ww.rect.wave.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	level := ww.wav.SelectLevel(ww.vp.Zoom())
	t0, t1 := ww.vp.VisibleRange()
	key := renderKey{
		s0:    ww.wav.SampleAtTime(level, t0),
		sN:    ww.wav.SampleAtTime(level, t1),
		w:     w,
		h:     h,
		level: level,
	}
	if ww.renderstate.haveKey && key == ww.renderstate.key && ww.renderstate.img != nil {
		return ww.renderstate.img
	}
	ww.renderstate.recomputes++
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{bgCol}, image.ZP, draw.Src)

	center := float64(h) / 2
	scale := center - 1
	draw.Draw(img, image.Rect(0, int(center), w, int(center)+1), &image.Uniform{centerCol}, image.ZP, draw.Src)

	peaks := ww.wav.Peaks(level, key.s0, key.sN, w)
	for x, mm := range peaks {
		min, max := float64(mm.Min), float64(mm.Max)
		/* bottom mirror first so the top pass wins any overlap */
		fillColumn(img, x, center+min*scale, center+max*scale, waveMirror)
		fillColumn(img, x, center-max*scale, center-min*scale, waveCol)
	}

	ww.renderstate.img = img
	ww.renderstate.key = key
	ww.renderstate.haveKey = true
	return img
}

/* fillColumn paints rows [y0, y1) of column x, skipping spans shorter
 * than half a pixel. */
func fillColumn(img *image.RGBA, x int, y0, y1 float64, c color.RGBA) {
	if y1-y0 < 0.5 {
		return
	}
	h := img.Bounds().Dy()
	lo, hi := int(math.Round(y0)), int(math.Round(y1))
	if lo < 0 {
		lo = 0
	}
	if hi > h {
		hi = h
	}
	if hi == lo && lo < h {
		hi = lo + 1
	}
	for y := lo; y < hi; y++ {
		img.SetRGBA(x, y, c)
	}
}

func centerPt(r image.Rectangle) image.Point {
	return image.Pt(r.Min.X+r.Dx()/2, r.Min.Y+r.Dy()/2)
}

var tickSteps = []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 15, 30, 60, 120, 300, 600, 1800, 3600}

func (ww *WaveWidget) drawRuler(dst draw.Image) {
	r := ww.rect.ruler
	draw.Draw(dst, r, &image.Uniform{rulerCol}, image.ZP, draw.Src)
	dur := ww.vp.Duration()
	if dur <= 0 || r.Dx() <= 0 {
		return
	}
	t0, t1 := ww.vp.VisibleRange()
	pps := float64(r.Dx()) / (t1 - t0)
	step := tickSteps[len(tickSteps)-1]
	for _, s := range tickSteps {
		if s*pps >= 60 {
			step = s
			break
		}
	}
	for t := math.Ceil(t0/step) * step; t <= t1; t += step {
		x := ww.PixelAtTime(t)
		draw.Draw(dst, image.Rect(x, r.Min.Y, x+1, r.Min.Y+5), &image.Uniform{tickCol}, image.ZP, draw.Over)
		drawTextCentered(dst, textCol, x, r.Min.Y+18, shortTime(t))
	}
}

func (ww *WaveWidget) drawZoneSeparator(dst draw.Image) {
	y := ww.rect.seekZone().Max.Y
	draw.Draw(dst, image.Rect(ww.rect.r.Min.X, y, ww.rect.r.Max.X, y+1), &image.Uniform{zoneCol}, image.ZP, draw.Over)
}

func (ww *WaveWidget) drawSegments(dst draw.Image) {
	editTop := ww.rect.seekZone().Max.Y
	for i, p := range ww.editor.Pairs() {
		x0, x1 := ww.PixelAtTime(p.Start), ww.PixelAtTime(p.Stop)
		fill := segFill
		if i == ww.hoverSeg {
			fill = segHoverFill
		}
		region := image.Rect(x0, ww.rect.wave.Min.Y, x1, ww.rect.wave.Max.Y)
		draw.Draw(dst, region, &image.Uniform{fill}, image.ZP, draw.Over)
		draw.Draw(dst, vrect(ww.rect.wave, x0), &image.Uniform{startCol}, image.ZP, draw.Over)
		draw.Draw(dst, vrect(ww.rect.wave, x1), &image.Uniform{stopCol}, image.ZP, draw.Over)
		drawText(dst, textCol, image.Pt(x0+4, editTop+14), fmt.Sprintf("#%d", p.Index))
		if i == ww.hoverSeg {
			g := ww.deleteGlyphRect(p)
			drawBorders(dst, g, buttonEdge, buttonFill)
			drawTextCentered(dst, textCol, g.Min.X+g.Dx()/2, g.Max.Y-3, "x")
		}
	}
	if start, ok := ww.editor.PendingStart(); ok {
		x := ww.PixelAtTime(start)
		draw.Draw(dst, vrect(ww.rect.wave, x), &image.Uniform{startCol}, image.ZP, draw.Over)
		drawText(dst, startCol, image.Pt(x+3, editTop+14), marker.FormatTime(start))
	}
	if cand, ok := ww.editor.Candidate(); ok {
		x0, x1 := ww.PixelAtTime(cand.Start), ww.PixelAtTime(cand.Stop)
		region := image.Rect(x0, ww.rect.wave.Min.Y, x1, ww.rect.wave.Max.Y)
		draw.Draw(dst, region, &image.Uniform{segFill}, image.ZP, draw.Over)
	}
}

func (ww *WaveWidget) drawPositionLine(dst draw.Image) {
	x := ww.PixelAtTime(ww.pos)
	if x < ww.rect.wave.Min.X || x > ww.rect.wave.Max.X {
		return
	}
	draw.Draw(dst, vrect(ww.rect.wave, x), &image.Uniform{posCol}, image.ZP, draw.Over)
	drawText(dst, posCol, image.Pt(x+3, ww.rect.wave.Min.Y+12), shortTime(ww.pos))
}

func (ww *WaveWidget) drawHoverLine(dst draw.Image) {
	if ww.hoverX < 0 || ww.playing {
		return
	}
	x := ww.hoverX
	if x < ww.rect.wave.Min.X || x > ww.rect.wave.Max.X {
		return
	}
	draw.Draw(dst, vrect(ww.rect.wave, x), &image.Uniform{hoverCol}, image.ZP, draw.Over)
	drawText(dst, hoverCol, image.Pt(x+3, ww.rect.wave.Min.Y+26), shortTime(ww.TimeAtPixel(x)))
}

func (ww *WaveWidget) drawScrollbar(dst draw.Image) {
	sb := ww.rect.scrollbar
	if sb.Empty() {
		return
	}
	draw.Draw(dst, sb, &image.Uniform{rulerCol}, image.ZP, draw.Src)
	draw.Draw(dst, ww.scrollThumb(), &image.Uniform{thumbCol}, image.ZP, draw.Src)
}

func (ww *WaveWidget) drawStatus(dst draw.Image) {
	hint := ww.modeHint()
	if hint != "" {
		drawText(dst, textCol, image.Pt(ww.rect.r.Min.X+6, ww.rect.ruler.Min.Y-6), hint)
	}
	zr := ww.zoomReadout()
	drawText(dst, textCol, image.Pt(ww.rect.r.Max.X-textWidth(zr)-6, ww.rect.r.Min.Y+14), zr)
}

func (ww *WaveWidget) drawDialog(dst draw.Image) {
	buttons := ww.dialogButtons()
	if buttons == nil {
		return
	}
	draw.Draw(dst, ww.rect.r, &image.Uniform{dimOverlay}, image.ZP, draw.Over)
	title := ww.modeHint()
	if i := ww.editor.Target(); i >= 0 {
		pairs := ww.editor.Pairs()
		if i < len(pairs) && ww.editor.Mode() == marker.ModeDeletePrompt {
			title = fmt.Sprintf("delete segment #%d?", pairs[i].Index)
		}
	}
	drawTextCentered(dst, textCol, centerPt(ww.rect.r).X, buttons[0].r.Min.Y-12, title)
	for _, b := range buttons {
		drawBorders(dst, b.r, buttonEdge, buttonFill)
		drawTextCentered(dst, textCol, b.r.Min.X+b.r.Dx()/2, b.r.Min.Y+b.r.Dy()/2+4, b.label)
	}
}

/* shortTime is the compact ruler/readout format: M:SS.cc below an
 * hour, H:MM:SS.cc above. */
func shortTime(t float64) string {
	if t < 0 {
		t = 0
	}
	cs := int(math.Round(t * 100))
	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
	}
	return fmt.Sprintf("%d:%02d.%02d", m, s, cs)
}
