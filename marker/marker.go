/* Package marker owns the cut-segment list and the interaction state
 * machine that creates, edits and deletes marker pairs. All times are
 * seconds rounded to millisecond precision. */
package marker

import (
	"fmt"
	"math"
	"sort"

	"github.com/biglinux/big-audio-converter-sub000/plumb"
)

type Mode int

const (
	/* ModeStart is the resting state: the next edit-zone click places
	 * a start marker. */
	ModeStart Mode = iota
	ModeStop
	ModeConfirm
	ModeDeletePrompt
	ModeDeleteAllConfirm
)

func (m Mode) String() string {
	switch m {
	case ModeStart:
		return "start"
	case ModeStop:
		return "stop"
	case ModeConfirm:
		return "confirm"
	case ModeDeletePrompt:
		return "delete-prompt"
	case ModeDeleteAllConfirm:
		return "delete-all-confirm"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

/* MinSegmentLen is the smallest exportable segment, and the separation
 * enforced between boundaries during edge drags. */
const MinSegmentLen = 0.1

type Pair struct {
	Start, Stop float64
	Index       int /* 1-based creation order */
}

func (p Pair) Valid() bool {
	return p.Stop-p.Start >= MinSegmentLen
}

/* Segment is the export form of a valid pair. The string fields carry
 * the canonical boundary representation handed to the transcoder. */
type Segment struct {
	Start    float64
	Stop     float64
	StartStr string
	StopStr  string
	Index    int
}

/* MarkersChanged is published on the editor's port whenever the pair
 * list changes (placement, delete, drag end, restore, clear). */
type MarkersChanged struct {
	Segments []Segment
}

type dragKind int

const (
	dragNone dragKind = iota
	dragEdge
	dragBody
)

type dragState struct {
	kind                 dragKind
	pair                 int /* slice index */
	stopEdge             bool
	origStart, origStop  float64
	anchor               float64 /* press time, body drag */
}

type Editor struct {
	duration    float64
	pairs       []Pair
	mode        Mode
	pending     float64 /* start time while in ModeStop */
	candidate   Pair    /* held pair while in ModeConfirm */
	autoConfirm bool
	nextIndex   int
	target      int /* slice index under the delete prompt */
	drag        dragState
	events      *plumb.Port
}

func NewEditor() *Editor {
	return &Editor{
		mode:        ModeStart,
		autoConfirm: true,
		nextIndex:   1,
		target:      -1,
		events:      plumb.MkPort(),
	}
}

func (e *Editor) Events() *plumb.Port {
	return e.events
}

/* SetAutoConfirm selects between immediate confirmation on stop
 * placement (default) and the explicit confirm/cancel step. */
func (e *Editor) SetAutoConfirm(auto bool) {
	e.autoConfirm = auto
}

func (e *Editor) SetDuration(d float64) {
	e.duration = d
}

func (e *Editor) Duration() float64 {
	return e.duration
}

func (e *Editor) Mode() Mode {
	return e.mode
}

/* PendingStart returns the placed start marker while awaiting its
 * stop click. */
func (e *Editor) PendingStart() (float64, bool) {
	if e.mode == ModeStop {
		return e.pending, true
	}
	return 0, false
}

/* Candidate returns the pair awaiting explicit confirmation. */
func (e *Editor) Candidate() (Pair, bool) {
	if e.mode == ModeConfirm {
		return e.candidate, true
	}
	return Pair{}, false
}

func (e *Editor) Pairs() []Pair {
	out := make([]Pair, len(e.pairs))
	copy(out, e.pairs)
	return out
}

func (e *Editor) NumPairs() int {
	return len(e.pairs)
}

/* Target returns the slice index of the pair under the delete prompt,
 * or -1. */
func (e *Editor) Target() int {
	if e.mode == ModeDeletePrompt || e.mode == ModeDeleteAllConfirm {
		return e.target
	}
	return -1
}

/* Click handles an edit-zone click at time t for the placement states.
 * Dialog states are driven by the explicit transition methods since
 * their hit-testing is pixel business. */
func (e *Editor) Click(t float64) {
	switch e.mode {
	case ModeStart:
		e.pending = Round(e.clamp(t))
		e.mode = ModeStop
	case ModeStop:
		e.placeStop(t)
	}
}

func (e *Editor) placeStop(t float64) {
	start, stop := e.pending, Round(e.clamp(t))
	if stop < start {
		start, stop = stop, start
	}
	p := Pair{Start: start, Stop: stop, Index: e.nextIndex}
	if e.autoConfirm {
		e.nextIndex++
		e.pairs = append(e.pairs, p)
		e.mode = ModeStart
		e.notify()
	} else {
		e.candidate = p
		e.mode = ModeConfirm
	}
}

/* Confirm finalises the held candidate pair. */
func (e *Editor) Confirm() {
	if e.mode != ModeConfirm {
		return
	}
	e.candidate.Index = e.nextIndex
	e.nextIndex++
	e.pairs = append(e.pairs, e.candidate)
	e.mode = ModeStart
	e.notify()
}

/* CancelPending discards the unconfirmed pair (or lone start marker). */
func (e *Editor) CancelPending() {
	if e.mode == ModeStop || e.mode == ModeConfirm {
		e.mode = ModeStart
	}
}

/* OpenDeletePrompt enters the delete flow for the pair at slice
 * index i. */
func (e *Editor) OpenDeletePrompt(i int) {
	if i < 0 || i >= len(e.pairs) {
		return
	}
	e.target = i
	e.mode = ModeDeletePrompt
}

/* DeleteTarget removes the prompted pair and renumbers the rest. */
func (e *Editor) DeleteTarget() {
	if e.mode != ModeDeletePrompt || e.target < 0 || e.target >= len(e.pairs) {
		return
	}
	e.pairs = append(e.pairs[:e.target], e.pairs[e.target+1:]...)
	e.reindex()
	e.target = -1
	e.mode = ModeStart
	e.notify()
}

/* RequestDeleteAll escalates the prompt to the delete-all
 * confirmation. */
func (e *Editor) RequestDeleteAll() {
	if e.mode == ModeDeletePrompt {
		e.mode = ModeDeleteAllConfirm
	}
}

/* ConfirmDeleteAll clears every pair. */
func (e *Editor) ConfirmDeleteAll() {
	if e.mode != ModeDeleteAllConfirm {
		return
	}
	e.pairs = e.pairs[:0]
	e.nextIndex = 1
	e.target = -1
	e.mode = ModeStart
	e.notify()
}

/* CancelPrompt backs out one dialog level: the delete prompt dismisses
 * entirely, the delete-all confirmation returns to the prompt. */
func (e *Editor) CancelPrompt() {
	switch e.mode {
	case ModeDeletePrompt:
		e.target = -1
		e.mode = ModeStart
	case ModeDeleteAllConfirm:
		e.mode = ModeDeletePrompt
	}
}

/* DismissElsewhere handles a click outside any dialog button. */
func (e *Editor) DismissElsewhere() {
	e.CancelPrompt()
}

func (e *Editor) reindex() {
	for i := range e.pairs {
		e.pairs[i].Index = i + 1
	}
	e.nextIndex = len(e.pairs) + 1
}

/* EdgeAt finds a marker boundary within tol seconds of t, preferring
 * the nearest. Returns the pair's slice index and which edge. */
func (e *Editor) EdgeAt(t, tol float64) (i int, stop bool, ok bool) {
	best := tol
	i = -1
	for j := len(e.pairs) - 1; j >= 0; j-- {
		if d := math.Abs(e.pairs[j].Start - t); d <= best {
			best, i, stop, ok = d, j, false, true
		}
		if d := math.Abs(e.pairs[j].Stop - t); d <= best {
			best, i, stop, ok = d, j, true, true
		}
	}
	return
}

/* BodyAt finds the pair whose span contains t, most recently created
 * first (matching draw order). */
func (e *Editor) BodyAt(t float64) (int, bool) {
	for j := len(e.pairs) - 1; j >= 0; j-- {
		if t >= e.pairs[j].Start && t <= e.pairs[j].Stop {
			return j, true
		}
	}
	return -1, false
}

func (e *Editor) BeginEdgeDrag(i int, stopEdge bool) {
	if i < 0 || i >= len(e.pairs) {
		return
	}
	e.drag = dragState{kind: dragEdge, pair: i, stopEdge: stopEdge,
		origStart: e.pairs[i].Start, origStop: e.pairs[i].Stop}
}

/* DragEdgeTo moves the grabbed boundary to t, clamped to the file and
 * held MinSegmentLen away from the opposite boundary. Returns the
 * applied time so the caller can re-seek playback to it. */
func (e *Editor) DragEdgeTo(t float64) float64 {
	if e.drag.kind != dragEdge {
		return 0
	}
	p := &e.pairs[e.drag.pair]
	t = e.clamp(t)
	if e.drag.stopEdge {
		if t < p.Start+MinSegmentLen {
			t = p.Start + MinSegmentLen
		}
		p.Stop = Round(t)
		return p.Stop
	}
	if t > p.Stop-MinSegmentLen {
		t = p.Stop - MinSegmentLen
	}
	if t < 0 {
		t = 0
	}
	p.Start = Round(t)
	return p.Start
}

func (e *Editor) BeginBodyDrag(i int, t float64) {
	if i < 0 || i >= len(e.pairs) {
		return
	}
	e.drag = dragState{kind: dragBody, pair: i, anchor: t,
		origStart: e.pairs[i].Start, origStop: e.pairs[i].Stop}
}

/* DragBodyTo shifts both boundaries by the delta between t and the
 * press position, clamping to [0, duration] with the segment length
 * preserved. */
func (e *Editor) DragBodyTo(t float64) {
	if e.drag.kind != dragBody {
		return
	}
	delta := t - e.drag.anchor
	start := e.drag.origStart + delta
	stop := e.drag.origStop + delta
	if start < 0 {
		stop -= start
		start = 0
	}
	if e.duration > 0 && stop > e.duration {
		start -= stop - e.duration
		stop = e.duration
		if start < 0 {
			start = 0
		}
	}
	p := &e.pairs[e.drag.pair]
	p.Start = Round(start)
	p.Stop = Round(stop)
}

func (e *Editor) Dragging() bool {
	return e.drag.kind != dragNone
}

/* DragPair returns the slice index being dragged, or -1. */
func (e *Editor) DragPair() int {
	if e.drag.kind == dragNone {
		return -1
	}
	return e.drag.pair
}

/* EndDrag finishes the gesture and notifies listeners. */
func (e *Editor) EndDrag() {
	if e.drag.kind == dragNone {
		return
	}
	e.drag = dragState{}
	e.notify()
}

/* Segments returns the valid pairs in slice order as export segments. */
func (e *Editor) Segments() []Segment {
	segs := make([]Segment, 0, len(e.pairs))
	for _, p := range e.pairs {
		if !p.Valid() {
			continue
		}
		segs = append(segs, Segment{
			Start:    p.Start,
			Stop:     p.Stop,
			StartStr: FormatTime(p.Start),
			StopStr:  FormatTime(p.Stop),
			Index:    p.Index,
		})
	}
	return segs
}

/* Ordered returns the valid pairs sorted chronologically by start
 * time (stable), or by segment number when byNumber is set. */
func (e *Editor) Ordered(byNumber bool) []Segment {
	segs := e.Segments()
	if byNumber {
		sort.SliceStable(segs, func(i, j int) bool { return segs[i].Index < segs[j].Index })
	} else {
		sort.SliceStable(segs, func(i, j int) bool { return segs[i].Start < segs[j].Start })
	}
	return segs
}

/* Restore replaces the pair list from a cached segment list, keeping
 * the cached indices. */
func (e *Editor) Restore(segs []Segment) {
	e.pairs = e.pairs[:0]
	maxIndex := 0
	for _, s := range segs {
		e.pairs = append(e.pairs, Pair{Start: Round(s.Start), Stop: Round(s.Stop), Index: s.Index})
		if s.Index > maxIndex {
			maxIndex = s.Index
		}
	}
	e.nextIndex = maxIndex + 1
	e.mode = ModeStart
	e.target = -1
	e.drag = dragState{}
	e.notify()
}

/* Clear drops all pairs and resets the state machine. */
func (e *Editor) Clear() {
	e.pairs = e.pairs[:0]
	e.nextIndex = 1
	e.mode = ModeStart
	e.target = -1
	e.drag = dragState{}
	e.notify()
}

func (e *Editor) clamp(t float64) float64 {
	if t < 0 {
		return 0
	}
	if e.duration > 0 && t > e.duration {
		return e.duration
	}
	return t
}

func (e *Editor) notify() {
	e.events.C <- MarkersChanged{Segments: e.Segments()}
}

/* Round quantises seconds to millisecond precision. */
func Round(t float64) float64 {
	return math.Round(t*1000) / 1000
}

/* FormatTime renders seconds as HH:MM:SS.mmm, the boundary form the
 * transcoder consumes. */
func FormatTime(t float64) string {
	if t < 0 {
		t = 0
	}
	ms := int(math.Round(t * 1000))
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
