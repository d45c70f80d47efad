package main

import (
	"sync"
	"time"

	"github.com/biglinux/big-audio-converter-sub000/audio"
	"github.com/biglinux/big-audio-converter-sub000/log"
	"github.com/biglinux/big-audio-converter-sub000/marker"
)

const (
	/* tolerance around segment boundaries when sequencing
	 * selection-only playback */
	boundaryTolerance = 0.020

	seekRetries    = 2
	seekRetryDelay = 10 * time.Millisecond

	defaultSeekThrottle = 50 * time.Millisecond
)

/* PlaybackBridge connects the player's position stream to the widget
 * (auto-follow) and drives selection-only playback: auto-seeking
 * between marker pairs and pausing after the last one. */
type PlaybackBridge struct {
	player   audio.Player
	ww       *WaveWidget
	deb      *Debouncer
	throttle time.Duration

	playing bool

	selectionOnly bool
	byNumber      bool
	segs          []marker.Segment
	active        int
	transitioning bool /* automated seek in flight; cleared when the
	 * position lands in the active segment or on any manual seek */

	mu          sync.Mutex /* guards pendingSeek against the timer goroutine */
	pendingSeek float64
}

func NewPlaybackBridge(player audio.Player, ww *WaveWidget, throttle time.Duration) *PlaybackBridge {
	if throttle <= 0 {
		throttle = defaultSeekThrottle
	}
	b := &PlaybackBridge{
		player:   player,
		ww:       ww,
		deb:      NewDebouncer(),
		throttle: throttle,
	}
	ww.OnSeek(b.RequestSeek)
	return b
}

/* RequestSeek coalesces rapid seek requests: at most one player seek
 * per throttle window, always targeting the latest position. Manual
 * seeks also release the selection-transition lock so they can't be
 * fought by the sequencer. */
func (b *PlaybackBridge) RequestSeek(pos float64) {
	b.transitioning = false
	b.mu.Lock()
	b.pendingSeek = pos
	b.mu.Unlock()
	b.deb.Schedule(b.throttle, "seek", func() {
		b.mu.Lock()
		p := b.pendingSeek
		b.mu.Unlock()
		b.player.Seek(p)
	})
}

/* OnPosition handles a position notification on the UI loop. Viewport
 * auto-follow runs before the boundary checks. */
func (b *PlaybackBridge) OnPosition(pos float64) {
	b.ww.SetPlaybackPosition(pos, b.playing)
	if !b.selectionOnly {
		return
	}
	if b.ww.Editor().Dragging() {
		return /* boundary enforcement is suspended mid-drag */
	}
	if b.transitioning {
		seg := b.segs[b.active]
		if pos >= seg.Start-boundaryTolerance && pos < seg.Stop-boundaryTolerance {
			b.transitioning = false
		}
		return
	}
	seg := b.segs[b.active]
	if pos >= seg.Stop-boundaryTolerance {
		b.advance()
	} else if pos < seg.Start-boundaryTolerance {
		b.seekToActive()
	}
}

func (b *PlaybackBridge) OnStateChanged(playing bool) {
	b.playing = playing
	b.ww.SetPlaybackPosition(b.ww.PlaybackPosition(), playing)
}

func (b *PlaybackBridge) OnEndOfStream() {
	if b.selectionOnly {
		b.selectionOnly = false
		log.AU.Println("selection playback: stream ended")
	}
}

func (b *PlaybackBridge) advance() {
	b.active++
	if b.active >= len(b.segs) {
		/* pause, don't stop: position stays put */
		b.player.Pause()
		b.selectionOnly = false
		log.AU.Println("selection playback: finished last segment")
		return
	}
	b.seekToActive()
}

/* seekToActive issues the automated segment seek, retrying a couple of
 * times before abandoning selection mode. */
func (b *PlaybackBridge) seekToActive() {
	seg := b.segs[b.active]
	b.transitioning = true
	for attempt := 0; attempt <= seekRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(seekRetryDelay)
		}
		if b.player.Seek(seg.Start) {
			return
		}
	}
	b.transitioning = false
	b.selectionOnly = false
	log.AU.Printf("selection playback: seek to %s failed, giving up", seg.StartStr)
}

/* SetSelectionOnly toggles segment-sequenced playback. Enabling
 * recomputes the ordered segment list; if playback is outside any
 * segment the player is positioned at the upcoming segment's start. */
func (b *PlaybackBridge) SetSelectionOnly(enable bool) bool {
	if !enable {
		b.selectionOnly = false
		b.transitioning = false
		return false
	}
	b.segs = b.ww.Editor().Ordered(b.byNumber)
	if len(b.segs) == 0 {
		b.selectionOnly = false
		return false
	}
	pos := b.ww.PlaybackPosition()
	b.active = 0
	inside := false
	for i, seg := range b.segs {
		if pos >= seg.Start-boundaryTolerance && pos < seg.Stop-boundaryTolerance {
			b.active = i
			inside = true
			break
		}
		if seg.Start >= pos {
			b.active = i
			break
		}
	}
	b.selectionOnly = true
	b.transitioning = false
	if !inside && b.playing {
		b.seekToActive()
	}
	return true
}

func (b *PlaybackBridge) SelectionOnly() bool {
	return b.selectionOnly
}

/* SetOrderByNumber selects creation-order sequencing instead of
 * chronological. Takes effect the next time selection mode is
 * enabled. */
func (b *PlaybackBridge) SetOrderByNumber(byNumber bool) {
	b.byNumber = byNumber
}

func (b *PlaybackBridge) ActiveSegment() int {
	if !b.selectionOnly {
		return -1
	}
	return b.active
}
