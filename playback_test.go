package main

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglinux/big-audio-converter-sub000/plumb"
)

type fakePlayer struct {
	mu      sync.Mutex
	seeks   []float64
	pauses  int
	seekErr bool
	playing bool
	events  *plumb.Port
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{events: plumb.MkPort()}
}

func (f *fakePlayer) Load(path string) bool { return true }
func (f *fakePlayer) Play()                 { f.playing = true }

func (f *fakePlayer) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	f.playing = false
}

func (f *fakePlayer) Stop() { f.playing = false }

func (f *fakePlayer) Seek(pos float64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, pos)
	return !f.seekErr
}

func (f *fakePlayer) SetVolume(v float64) {}
func (f *fakePlayer) SetSpeed(s float64)  {}
func (f *fakePlayer) IsPlaying() bool     { return f.playing }
func (f *fakePlayer) Position() float64   { return 0 }
func (f *fakePlayer) Duration() float64   { return 100 }
func (f *fakePlayer) Events() *plumb.Port { return f.events }

func (f *fakePlayer) seekLog() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.seeks...)
}

func (f *fakePlayer) pauseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pauses
}

func testBridge(throttle time.Duration) (*PlaybackBridge, *fakePlayer, *WaveWidget) {
	fp := newFakePlayer()
	ww := NewWaveWidget(nil)
	ww.SetDuration(100)
	b := NewPlaybackBridge(fp, ww, throttle)
	return b, fp, ww
}

func TestSeekThrottleCoalesces(t *testing.T) {
	b, fp, _ := testBridge(50 * time.Millisecond)

	b.RequestSeek(10)
	time.Sleep(20 * time.Millisecond)
	b.RequestSeek(30)
	time.Sleep(150 * time.Millisecond)

	assert.Equal(t, []float64{30}, fp.seekLog(),
		"one applied seek, targeting the latest request")
}

func TestSeekThrottleSeparateWindows(t *testing.T) {
	b, fp, _ := testBridge(20 * time.Millisecond)

	b.RequestSeek(10)
	time.Sleep(60 * time.Millisecond)
	b.RequestSeek(30)
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, []float64{10, 30}, fp.seekLog())
}

func TestSelectionSequencing(t *testing.T) {
	b, fp, ww := testBridge(time.Millisecond)
	ww.Editor().Click(5)
	ww.Editor().Click(10)
	ww.Editor().Click(20)
	ww.Editor().Click(25)

	b.OnStateChanged(true)
	b.OnPosition(6)
	require.True(t, b.SetSelectionOnly(true))
	assert.Equal(t, 0, b.ActiveSegment(), "position inside the first segment")
	assert.Empty(t, fp.seekLog(), "no seek needed when already inside")

	/* just short of the stop boundary, within tolerance: advance */
	b.OnPosition(9.99)
	assert.Equal(t, []float64{20}, fp.seekLog())
	assert.Equal(t, 1, b.ActiveSegment())

	/* the player is still reporting old positions while the seek is in
	 * flight; those must not trigger another transition */
	b.OnPosition(9.995)
	b.OnPosition(10.0)
	assert.Equal(t, []float64{20}, fp.seekLog())

	/* landing inside the active segment releases the transition */
	b.OnPosition(20.01)
	b.OnPosition(21)

	/* past the final boundary: pause and drop out of selection mode */
	b.OnPosition(24.99)
	assert.Equal(t, 1, fp.pauseCount())
	assert.False(t, b.SelectionOnly())
	assert.Equal(t, []float64{20}, fp.seekLog(), "pause, not a rewind seek")
}

func TestSelectionEnableSeeksWhenOutside(t *testing.T) {
	b, fp, ww := testBridge(time.Millisecond)
	ww.Editor().Click(5)
	ww.Editor().Click(10)

	b.OnStateChanged(true)
	b.OnPosition(50) /* past the only segment's interior */
	require.True(t, b.SetSelectionOnly(true))
	assert.Equal(t, []float64{5}, fp.seekLog())
}

func TestSelectionEnableWithoutSegments(t *testing.T) {
	b, fp, _ := testBridge(time.Millisecond)
	assert.False(t, b.SetSelectionOnly(true))
	assert.False(t, b.SelectionOnly())
	assert.Empty(t, fp.seekLog())
}

func TestSelectionSeekFailureAbandons(t *testing.T) {
	b, fp, ww := testBridge(time.Millisecond)
	ww.Editor().Click(5)
	ww.Editor().Click(10)
	fp.seekErr = true

	b.OnStateChanged(true)
	b.OnPosition(50)
	start := time.Now()
	b.SetSelectionOnly(true)
	elapsed := time.Since(start)

	assert.Equal(t, 3, len(fp.seekLog()), "initial attempt plus two retries")
	assert.GreaterOrEqual(t, elapsed, 2*seekRetryDelay, "retries back off")
	assert.False(t, b.SelectionOnly())
}

func TestSelectionOrderByNumber(t *testing.T) {
	b, fp, ww := testBridge(time.Millisecond)
	ww.Editor().Click(40)
	ww.Editor().Click(50) /* #1 */
	ww.Editor().Click(5)
	ww.Editor().Click(10) /* #2 */

	b.SetOrderByNumber(true)
	b.OnStateChanged(true)
	b.OnPosition(45)
	require.True(t, b.SetSelectionOnly(true))
	assert.Equal(t, 0, b.ActiveSegment())

	b.OnPosition(49.99)
	assert.Equal(t, []float64{5}, fp.seekLog(), "creation order jumps backwards")
}

func TestBoundariesIgnoredMidDrag(t *testing.T) {
	b, fp, ww := testBridge(time.Millisecond)
	ww.Editor().Click(5)
	ww.Editor().Click(10)
	ww.Editor().Click(20)
	ww.Editor().Click(25)

	b.OnStateChanged(true)
	b.OnPosition(6)
	b.SetSelectionOnly(true)

	ww.Editor().BeginEdgeDrag(0, true)
	b.OnPosition(9.99)
	assert.Empty(t, fp.seekLog(), "no auto-advance while an edge is held")

	ww.Editor().EndDrag()
	b.OnPosition(9.99)
	assert.Equal(t, []float64{20}, fp.seekLog())
}

func TestManualSeekClearsTransition(t *testing.T) {
	b, fp, ww := testBridge(time.Millisecond)
	ww.Editor().Click(5)
	ww.Editor().Click(10)
	ww.Editor().Click(20)
	ww.Editor().Click(25)

	b.OnStateChanged(true)
	b.OnPosition(6)
	b.SetSelectionOnly(true)
	b.OnPosition(9.99) /* transition to the second segment begins */

	b.RequestSeek(7)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, []float64{20, 7}, fp.seekLog())
}

func TestEndOfStreamDisablesSelection(t *testing.T) {
	b, _, ww := testBridge(time.Millisecond)
	ww.Editor().Click(5)
	ww.Editor().Click(10)
	b.OnPosition(6)
	b.SetSelectionOnly(true)

	b.OnEndOfStream()
	assert.False(t, b.SelectionOnly())
}

func TestPositionDrivesWidget(t *testing.T) {
	b, _, ww := testBridge(time.Millisecond)
	b.OnStateChanged(true)
	b.OnPosition(42)
	assert.Equal(t, 42.0, ww.PlaybackPosition())
}
