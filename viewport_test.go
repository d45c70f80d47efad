package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewport(duration, zoom, offset float64) *Viewport {
	v := NewViewport()
	v.SetDuration(duration)
	v.SetZoom(zoom, 0)
	v.SetOffset(offset)
	return v
}

func TestTimePixelRoundTrip(t *testing.T) {
	const w = 1000.0
	for _, zoom := range []float64{1, 2.5, 10, 333, 1000} {
		for _, offset := range []float64{0, 0.1, 0.5} {
			v := viewport(100, zoom, offset)
			for _, x := range []float64{0, 1, 250, 999, 1000} {
				tm := v.TimeAtPixel(x, w)
				assert.InDelta(t, x, v.PixelAtTime(tm, w), 1e-6,
					"zoom=%g offset=%g x=%g", zoom, offset, x)
			}
		}
	}
}

func TestVisibleWindow(t *testing.T) {
	/* zoom=10, offset=0.45 over 100s shows [45, 55] */
	v := viewport(100, 10, 0.45)
	t0, t1 := v.VisibleRange()
	assert.InDelta(t, 45.0, t0, 1e-9)
	assert.InDelta(t, 55.0, t1, 1e-9)
	assert.InDelta(t, 45.0, v.TimeAtPixel(0, 1000), 1e-9)
	assert.InDelta(t, 55.0, v.TimeAtPixel(1000, 1000), 1e-9)
}

func TestZoomClamp(t *testing.T) {
	v := viewport(100, 1, 0)
	v.SetZoom(0.2, 0.5)
	assert.Equal(t, MinZoom, v.Zoom())
	v.SetZoom(5000, 0.5)
	assert.Equal(t, MaxZoom, v.Zoom())
}

func TestBoundsInvariant(t *testing.T) {
	v := viewport(100, 1, 0)
	ops := []func(){
		func() { v.SetZoom(v.Zoom()*1.2, 0.9) },
		func() { v.Pan(0.7) },
		func() { v.SetZoom(v.Zoom()*4, 0.0) },
		func() { v.Pan(-3) },
		func() { v.SetOffset(2) },
		func() { v.SetZoom(v.Zoom()/7, 1.0) },
		func() { v.SetOffset(-1) },
		func() { v.Pan(100) },
		func() { v.SetZoom(1.0, 0.5) },
	}
	for i := 0; i < 50; i++ {
		ops[i%len(ops)]()
		max := 1.0 - 1.0/v.Zoom()
		assert.GreaterOrEqual(t, v.Offset(), 0.0, "op %d", i)
		assert.LessOrEqual(t, v.Offset(), max+1e-12, "op %d", i)
	}
}

func TestZoomAnchorKeepsTimeFixed(t *testing.T) {
	const w = 1000.0
	v := viewport(100, 2, 0.25) /* visible [25, 75] */
	anchorX := 600.0
	before := v.TimeAtPixel(anchorX, w)
	v.SetZoom(v.Zoom()*2, anchorX/w)
	after := v.TimeAtPixel(anchorX, w)
	assert.InDelta(t, before, after, 1e-9)
}

func TestZoomOutRecentersWithinBounds(t *testing.T) {
	v := viewport(100, 1000, 0.999)
	v.SetZoom(1, 0.5)
	assert.Equal(t, 0.0, v.Offset())
}

func TestAutoFollowWhilePlaying(t *testing.T) {
	const w = 1000.0
	v := viewport(100, 10, 0.45) /* visible [45, 55] */

	/* comfortably inside: no movement */
	require.False(t, v.AutoFollow(50, true, w))
	assert.Equal(t, 0.45, v.Offset())

	/* within 50px of the right edge: shift forward by 0.6 of visible */
	require.True(t, v.AutoFollow(54.8, true, w))
	assert.InDelta(t, 0.45+0.6/10, v.Offset(), 1e-9)
}

func TestAutoFollowPausedRecenters(t *testing.T) {
	const w = 1000.0
	v := viewport(100, 10, 0.45)
	require.True(t, v.AutoFollow(80, false, w))
	t0, t1 := v.VisibleRange()
	assert.InDelta(t, 80.0, (t0+t1)/2, 1e-9)

	/* in view: nothing happens */
	require.False(t, v.AutoFollow(80, false, w))
}

func TestAutoFollowInactiveAtFullView(t *testing.T) {
	v := viewport(100, 1, 0)
	assert.False(t, v.AutoFollow(99, true, 1000))
	assert.Equal(t, 0.0, v.Offset())
}

func TestSliderMapping(t *testing.T) {
	assert.InDelta(t, 0.0, ZoomToSlider(1.0), 1e-9)
	assert.InDelta(t, 50.0, ZoomToSlider(10.0), 1e-9)
	assert.InDelta(t, 100.0, ZoomToSlider(100.0), 1e-9)
	assert.InDelta(t, 150.0, ZoomToSlider(1000.0), 1e-9)
	for _, z := range []float64{1, 10, 100, 1000} {
		assert.InDelta(t, z, SliderToZoom(ZoomToSlider(z)), z*1e-9)
	}
	assert.InDelta(t, 1.0, SliderToZoom(-5), 1e-9)
	assert.InDelta(t, 1000.0, SliderToZoom(200), 1e-9)
}

func TestResetOnNewWaveform(t *testing.T) {
	v := viewport(100, 40, 0.7)
	v.Reset()
	assert.Equal(t, MinZoom, v.Zoom())
	assert.Equal(t, 0.0, v.Offset())
	assert.False(t, math.IsNaN(v.TimeAtPixel(10, 100)))
}
