package main

import (
	"math"
)

const (
	MinZoom = 1.0
	MaxZoom = 1000.0

	/* auto-follow: shift when the position marker comes within this
	 * many pixels of either edge */
	followMargin = 50

	/* fraction of the visible duration shifted per auto-follow step */
	followShift = 0.6
)

/* Viewport tracks the visible time window over the waveform: a zoom
 * factor and the fraction of the total duration at the left edge.
 * Invariant: 0 ≤ offset ≤ 1 − 1/zoom. */
type Viewport struct {
	zoom     float64
	offset   float64
	duration float64
}

func NewViewport() *Viewport {
	return &Viewport{zoom: MinZoom}
}

func (v *Viewport) Zoom() float64 {
	return v.zoom
}

func (v *Viewport) Offset() float64 {
	return v.offset
}

func (v *Viewport) Duration() float64 {
	return v.duration
}

func (v *Viewport) SetDuration(d float64) {
	v.duration = d
}

/* Reset returns to the whole-file view. Called whenever a new
 * waveform is set. */
func (v *Viewport) Reset() {
	v.zoom = MinZoom
	v.offset = 0
}

/* VisibleRange returns the time window [t0, t1] on screen. */
func (v *Viewport) VisibleRange() (t0, t1 float64) {
	t0 = v.offset * v.duration
	return t0, t0 + v.duration/v.zoom
}

/* TimeAtPixel maps pixel x of a width-wide canvas to seconds. */
func (v *Viewport) TimeAtPixel(x, width float64) float64 {
	if width <= 0 {
		return 0
	}
	t0, t1 := v.VisibleRange()
	return t0 + (x/width)*(t1-t0)
}

/* PixelAtTime maps seconds to a pixel offset in a width-wide canvas. */
func (v *Viewport) PixelAtTime(t, width float64) float64 {
	t0, t1 := v.VisibleRange()
	if t1 <= t0 {
		return 0
	}
	return (t - t0) / (t1 - t0) * width
}

/* SetZoom clamps to [MinZoom, MaxZoom] and recomputes the offset so
 * the time at anchorFrac (fraction of the viewport width) stays put. */
func (v *Viewport) SetZoom(zoom, anchorFrac float64) {
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	if anchorFrac < 0 {
		anchorFrac = 0
	}
	if anchorFrac > 1 {
		anchorFrac = 1
	}
	anchorTime := (v.offset + anchorFrac/v.zoom) * v.duration
	v.zoom = zoom
	if v.duration > 0 {
		v.offset = anchorTime/v.duration - anchorFrac/zoom
	}
	v.clampOffset()
}

/* Pan shifts the view by a fraction of the visible duration. */
func (v *Viewport) Pan(deltaFrac float64) {
	v.offset += deltaFrac / v.zoom
	v.clampOffset()
}

/* SetOffset positions the left edge directly (scrollbar drags). */
func (v *Viewport) SetOffset(offset float64) {
	v.offset = offset
	v.clampOffset()
}

func (v *Viewport) clampOffset() {
	max := 1.0 - 1.0/v.zoom
	if v.offset > max {
		v.offset = max
	}
	if v.offset < 0 {
		v.offset = 0
	}
}

/* AutoFollow keeps the playback position visible. While playing the
 * view shifts by followShift of the visible duration when the marker
 * nears an edge; a paused position landing off screen recenters
 * immediately. Reports whether the view moved. */
func (v *Viewport) AutoFollow(pos float64, playing bool, width float64) bool {
	if v.zoom <= MinZoom || v.duration <= 0 || width <= 0 {
		return false
	}
	if playing {
		x := v.PixelAtTime(pos, width)
		if x > width-followMargin {
			v.Pan(followShift)
			return true
		}
		if x < followMargin && v.offset > 0 {
			v.Pan(-followShift)
			return true
		}
		return false
	}
	t0, t1 := v.VisibleRange()
	if pos < t0 || pos > t1 {
		v.offset = pos/v.duration - 0.5/v.zoom
		v.clampOffset()
		return true
	}
	return false
}

/* slider position for MaxZoom; 50·log10(1000) */
const sliderMax = 150.0

/* The zoom slider is logarithmic so the 1×–1000× range has even
 * perceptual steps: v = 50·log10(zoom) over [0, 150]. */
func ZoomToSlider(zoom float64) float64 {
	if zoom < MinZoom {
		zoom = MinZoom
	}
	return 50 * math.Log10(zoom)
}

func SliderToZoom(v float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > sliderMax {
		v = sliderMax
	}
	return math.Pow(10, v/50)
}
