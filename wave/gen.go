package wave

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/biglinux/big-audio-converter-sub000/log"
)

/* sample budget for decoding; base rate adapts so long files don't
 * blow out memory (15e6 samples ≈ 60MB of float32) */
const (
	targetSamples = 15e6
	minDecodeRate = 500
	maxDecodeRate = 44100
	minSamples    = 100
)

/* Result of a generation task. Path identifies which file the result
 * belongs to; receivers must discard results for files they no longer
 * care about. */
type Result struct {
	Path string
	Wave *Waveform
	Err  error
}

type Task struct {
	Path   string
	cancel context.CancelFunc
}

func (t *Task) Cancel() {
	if t != nil {
		t.cancel()
	}
}

/* Generator decodes audio via external ffmpeg/ffprobe processes and
 * builds the multi-level waveform. At most one task runs at a time;
 * starting a new one cancels its predecessor. */
type Generator struct {
	FFmpeg  string
	FFprobe string

	mu      sync.Mutex
	current *Task
}

/* Start launches generation for path, cancelling any in-flight task.
 * done is invoked from the worker goroutine; callers marshal it back
 * onto their event loop. */
func (g *Generator) Start(path string, done func(Result)) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	task := &Task{Path: path, cancel: cancel}
	g.mu.Lock()
	if g.current != nil {
		g.current.Cancel()
	}
	g.current = task
	g.mu.Unlock()
	go func() {
		w, err := g.generate(ctx, path)
		if ctx.Err() != nil {
			log.WAV.Printf("generation cancelled: %s", path)
			return
		}
		done(Result{Path: path, Wave: w, Err: err})
	}()
	return task
}

func (g *Generator) CancelCurrent() {
	g.mu.Lock()
	if g.current != nil {
		g.current.Cancel()
		g.current = nil
	}
	g.mu.Unlock()
}

func (g *Generator) generate(ctx context.Context, path string) (*Waveform, error) {
	duration, err := ProbeDuration(ctx, g.FFprobe, path)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", path, err)
	}
	rate := DecodeRate(duration)
	samples, err := decode(ctx, g.FFmpeg, path, rate)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(samples) < minSamples {
		return nil, fmt.Errorf("decode %s: only %d samples", path, len(samples))
	}
	if err := normalize(samples); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	w := NewSingleLevel(samples, rate, duration)
	log.WAV.Printf("generated %d levels (%d samples @ %dHz, %.3fs) for %s",
		len(w.Levels), len(samples), rate, duration, path)
	return w, nil
}

/* DecodeRate picks the mono decode rate for a file of the given
 * duration, keeping total samples near the budget. */
func DecodeRate(duration float64) int {
	if duration <= 0 {
		return maxDecodeRate
	}
	rate := int(targetSamples / duration)
	if rate < minDecodeRate {
		rate = minDecodeRate
	}
	if rate > maxDecodeRate {
		rate = maxDecodeRate
	}
	return rate
}

/* ProbeDuration asks ffprobe for the container duration in seconds.
 * This value is authoritative even when it disagrees with the decoded
 * sample count. */
func ProbeDuration(ctx context.Context, ffprobe, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path)
	out, err := cmd.Output()
	if err != nil {
		return 0, err
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("bad duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	if dur <= 0 {
		return 0, fmt.Errorf("non-positive duration %g", dur)
	}
	return dur, nil
}

func decode(ctx context.Context, ffmpeg, path string, rate int) ([]float32, error) {
	cmd := exec.CommandContext(ctx, ffmpeg, DecodeArgs(path, rate)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	samples, rerr := readF32LE(bufio.NewReaderSize(stdout, 1<<16))
	werr := cmd.Wait()
	if rerr != nil {
		return nil, rerr
	}
	if werr != nil {
		return nil, werr
	}
	return samples, nil
}

/* DecodeArgs is the ffmpeg argv (sans binary) decoding path to mono
 * f32le on stdout at the given rate. */
func DecodeArgs(path string, rate int) []string {
	return []string{
		"-vn", "-sn",
		"-v", "error",
		"-i", path,
		"-f", "f32le",
		"-ac", "1",
		"-ar", strconv.Itoa(rate),
		"-",
	}
}

func readF32LE(r io.Reader) ([]float32, error) {
	samples := make([]float32, 0, 1<<20)
	buf := make([]byte, 4096)
	carry := 0
	for {
		n, err := r.Read(buf[carry:])
		n += carry
		whole := n &^ 3
		for i := 0; i < whole; i += 4 {
			samples = append(samples, math.Float32frombits(binary.LittleEndian.Uint32(buf[i:])))
		}
		carry = n - whole
		copy(buf, buf[whole:n])
		if err == io.EOF {
			return samples, nil
		}
		if err != nil {
			return samples, err
		}
	}
}

/* normalize scales samples into [-1, 1] in place, rejecting NaN/Inf. */
func normalize(samples []float32) error {
	var peak float32
	for _, s := range samples {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			return fmt.Errorf("non-finite sample")
		}
		if a := abs32(s); a > peak {
			peak = a
		}
	}
	if peak > 1.0 {
		inv := 1.0 / peak
		for i := range samples {
			samples[i] *= inv
		}
	}
	return nil
}
