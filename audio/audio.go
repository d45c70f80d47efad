/* Package audio drives playback through an external ffplay process.
 * Position is interpolated between process launches; pausing kills the
 * process and remembers where it was. */
package audio

import (
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/biglinux/big-audio-converter-sub000/log"
	"github.com/biglinux/big-audio-converter-sub000/plumb"
)

/* Events published on the player's port. */
type PositionChanged struct {
	Pos      float64
	Duration float64
}

type DurationChanged struct {
	Duration float64
}

type StateChanged struct {
	Playing bool
}

type EndOfStream struct{}

type PlayerError struct {
	Msg string
}

/* Player is the capability set the core consumes. */
type Player interface {
	Load(path string) bool
	Play()
	Pause()
	Stop()
	Seek(seconds float64) bool
	SetVolume(v float64) /* 0..5 */
	SetSpeed(s float64)  /* 0.5..5 */
	IsPlaying() bool
	Position() float64
	Duration() float64
	Events() *plumb.Port
}

const tickInterval = 100 * time.Millisecond

/* ProbeFunc reports a file's duration in seconds. */
type ProbeFunc func(path string) (float64, error)

type FFPlayer struct {
	Bin   string
	Probe ProbeFunc

	events *plumb.Port

	mu       sync.Mutex
	path     string
	duration float64
	pos      float64 /* position when not playing / at process start */
	playing  bool
	volume   float64
	speed    float64
	cmd      *exec.Cmd
	epoch    int /* invalidates waiters/tickers of dead processes */
	started  time.Time
}

func NewFFPlayer(bin string, probe ProbeFunc) *FFPlayer {
	return &FFPlayer{
		Bin:    bin,
		Probe:  probe,
		events: plumb.MkPort(),
		volume: 1.0,
		speed:  1.0,
	}
}

func (p *FFPlayer) Events() *plumb.Port {
	return p.events
}

func (p *FFPlayer) Load(path string) bool {
	dur, err := p.Probe(path)
	if err != nil {
		log.AU.Printf("load %s: %v", path, err)
		p.events.C <- PlayerError{Msg: err.Error()}
		return false
	}
	p.mu.Lock()
	p.stopLocked()
	p.path = path
	p.duration = dur
	p.pos = 0
	p.mu.Unlock()
	p.events.C <- DurationChanged{Duration: dur}
	p.events.C <- PositionChanged{Pos: 0, Duration: dur}
	return true
}

func (p *FFPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing || p.path == "" {
		return
	}
	p.startLocked(p.pos)
}

func (p *FFPlayer) Pause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.pos = p.positionLocked()
	p.stopLocked()
	p.mu.Unlock()
	p.events.C <- StateChanged{Playing: false}
}

func (p *FFPlayer) Stop() {
	p.mu.Lock()
	was := p.playing
	p.stopLocked()
	p.pos = 0
	dur := p.duration
	p.mu.Unlock()
	if was {
		p.events.C <- StateChanged{Playing: false}
	}
	p.events.C <- PositionChanged{Pos: 0, Duration: dur}
}

/* Seek repositions with sample accuracy. A playing stream is restarted
 * at the new position. */
func (p *FFPlayer) Seek(seconds float64) bool {
	p.mu.Lock()
	if p.path == "" {
		p.mu.Unlock()
		return false
	}
	if seconds < 0 {
		seconds = 0
	}
	if p.duration > 0 && seconds > p.duration {
		seconds = p.duration
	}
	was := p.playing
	p.stopLocked()
	p.pos = seconds
	if was {
		p.startLocked(seconds)
	}
	dur := p.duration
	p.mu.Unlock()
	p.events.C <- PositionChanged{Pos: seconds, Duration: dur}
	return true
}

func (p *FFPlayer) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 5 {
		v = 5
	}
	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()
}

func (p *FFPlayer) SetSpeed(s float64) {
	if s < 0.5 {
		s = 0.5
	}
	if s > 5 {
		s = 5
	}
	p.mu.Lock()
	p.speed = s
	p.mu.Unlock()
}

func (p *FFPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *FFPlayer) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

func (p *FFPlayer) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

/* PlayArgs is the ffplay argv (sans binary) starting playback of path
 * at pos. */
func PlayArgs(path string, pos, volume, speed float64) []string {
	args := []string{"-autoexit", "-nodisp", "-loglevel", "quiet",
		"-volume", fmt.Sprintf("%d", int(volume*100))}
	if chain := AtempoChain(speed); chain != "" {
		args = append(args, "-af", chain)
	}
	if pos > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", pos))
	}
	return append(args, path)
}

/* AtempoChain builds the tempo filter for the given speed. A single
 * atempo stage only covers [0.5, 2.0] so faster rates are chained. */
func AtempoChain(speed float64) string {
	if speed == 1.0 {
		return ""
	}
	var stages []string
	for speed > 2.0 {
		stages = append(stages, "atempo=2.0")
		speed /= 2.0
	}
	stages = append(stages, fmt.Sprintf("atempo=%.3f", speed))
	if len(stages) == 1 {
		return stages[0]
	}
	chain := stages[0]
	for _, s := range stages[1:] {
		chain += "," + s
	}
	return chain
}

func (p *FFPlayer) startLocked(pos float64) {
	cmd := exec.Command(p.Bin, PlayArgs(p.path, pos, p.volume, p.speed)...)
	if err := cmd.Start(); err != nil {
		log.AU.Printf("ffplay start: %v", err)
		go func() { p.events.C <- PlayerError{Msg: err.Error()} }()
		return
	}
	p.cmd = cmd
	p.pos = pos
	p.started = time.Now()
	p.playing = true
	p.epoch++
	epoch := p.epoch
	go p.wait(cmd, epoch)
	go p.tick(epoch)
	go func() { p.events.C <- StateChanged{Playing: true} }()
}

func (p *FFPlayer) stopLocked() {
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.cmd = nil
	p.playing = false
	p.epoch++
}

/* positionLocked interpolates from process start so ticks don't need
 * any feedback channel from ffplay. */
func (p *FFPlayer) positionLocked() float64 {
	if !p.playing {
		return p.pos
	}
	pos := p.pos + time.Since(p.started).Seconds()*p.speed
	if p.duration > 0 && pos > p.duration {
		pos = p.duration
	}
	return pos
}

func (p *FFPlayer) wait(cmd *exec.Cmd, epoch int) {
	cmd.Wait()
	p.mu.Lock()
	if p.epoch != epoch {
		/* killed by pause/seek/stop; not a natural end */
		p.mu.Unlock()
		return
	}
	p.playing = false
	p.cmd = nil
	p.pos = p.duration
	p.epoch++
	dur := p.duration
	p.mu.Unlock()
	log.AU.Println("end of stream")
	p.events.C <- PositionChanged{Pos: dur, Duration: dur}
	p.events.C <- StateChanged{Playing: false}
	p.events.C <- EndOfStream{}
}

func (p *FFPlayer) tick(epoch int) {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for range t.C {
		p.mu.Lock()
		if p.epoch != epoch || !p.playing {
			p.mu.Unlock()
			return
		}
		pos := p.positionLocked()
		dur := p.duration
		p.mu.Unlock()
		p.events.C <- PositionChanged{Pos: pos, Duration: dur}
	}
}
