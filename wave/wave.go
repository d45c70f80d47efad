/* Package wave holds decimated audio amplitude data and selects a
 * level of detail by zoom factor. Buffers can be tens of megabytes so
 * replacement goes through Release rather than waiting on the GC. */
package wave

import (
	"fmt"
	"math"
)

type MinMax struct {
	Min, Max float32
}

type Waveform struct {
	Levels         [][]float32
	Rates          []int
	ZoomThresholds []float64
	Duration       float64 /* seconds; probed, authoritative over len/rate */
}

/* DecimationFactor is the sample-count ratio between adjacent levels. */
const DecimationFactor = 8

/* MinLevelSamples stops tier construction once a level is this small. */
const MinLevelSamples = 2000

func New(levels [][]float32, rates []int, thresholds []float64, duration float64) (*Waveform, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("wave: no levels")
	}
	if len(levels) != len(rates) || len(levels) != len(thresholds) {
		return nil, fmt.Errorf("wave: %d levels, %d rates, %d thresholds", len(levels), len(rates), len(thresholds))
	}
	if thresholds[0] > 1.0 {
		return nil, fmt.Errorf("wave: no level covers zoom 1.0 (first threshold %g)", thresholds[0])
	}
	return &Waveform{Levels: levels, Rates: rates, ZoomThresholds: thresholds, Duration: duration}, nil
}

/* NewSingleLevel normalises a flat sample array into the multi-level
 * form, building coarser tiers by decimation. */
func NewSingleLevel(samples []float32, rate int, duration float64) *Waveform {
	levels, rates, thresholds := BuildLevels(samples, rate)
	return &Waveform{Levels: levels, Rates: rates, ZoomThresholds: thresholds, Duration: duration}
}

/* BuildLevels constructs the LOD tiers. Level 0 is the coarsest so it
 * serves zoom 1.0; each finer level needs DecimationFactor× the zoom
 * to be worth selecting. Decimation keeps the extreme sample of each
 * window (signed value of largest magnitude) so transients survive. */
func BuildLevels(samples []float32, rate int) (levels [][]float32, rates []int, thresholds []float64) {
	tiers := [][]float32{samples}
	tierRates := []int{rate}
	for len(tiers[len(tiers)-1]) >= MinLevelSamples*DecimationFactor {
		prev := tiers[len(tiers)-1]
		next := decimate(prev, DecimationFactor)
		tiers = append(tiers, next)
		tierRates = append(tierRates, tierRates[len(tierRates)-1]/DecimationFactor)
	}
	/* coarsest first; level i serves zoom ≥ DecimationFactor^i */
	n := len(tiers)
	levels = make([][]float32, n)
	rates = make([]int, n)
	thresholds = make([]float64, n)
	for i := 0; i < n; i++ {
		levels[i] = tiers[n-1-i]
		rates[i] = tierRates[n-1-i]
		thresholds[i] = math.Pow(DecimationFactor, float64(i))
	}
	thresholds[0] = 1.0
	return levels, rates, thresholds
}

func decimate(samples []float32, factor int) []float32 {
	out := make([]float32, 0, len(samples)/factor+1)
	for i := 0; i < len(samples); i += factor {
		end := i + factor
		if end > len(samples) {
			end = len(samples)
		}
		ext := samples[i]
		for _, s := range samples[i+1 : end] {
			if abs32(s) > abs32(ext) {
				ext = s
			}
		}
		out = append(out, ext)
	}
	return out
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

/* SelectLevel returns the highest-indexed level whose threshold is
 * ≤ zoom, defaulting to level 0. Monotone in zoom. */
func (w *Waveform) SelectLevel(zoom float64) int {
	level := 0
	for i, thresh := range w.ZoomThresholds {
		if thresh <= zoom {
			level = i
		}
	}
	return level
}

/* NumSamples returns the length of the given level. */
func (w *Waveform) NumSamples(level int) int {
	return len(w.Levels[level])
}

/* SampleAtTime converts seconds to a (possibly fractional) sample
 * index within the given level. */
func (w *Waveform) SampleAtTime(level int, t float64) float64 {
	return t * float64(w.Rates[level])
}

/* Peaks partitions the sample range [s0, sN) of a level into buckets
 * and returns the min/max of each. Bucket boundaries use fractional
 * indexing; a bucket containing no samples yields (0, 0). */
func (w *Waveform) Peaks(level int, s0, sN float64, buckets int) []MinMax {
	peaks := make([]MinMax, buckets)
	samples := w.Levels[level]
	if buckets <= 0 || sN <= s0 || len(samples) == 0 {
		return peaks
	}
	span := sN - s0
	for b := 0; b < buckets; b++ {
		lo := s0 + float64(b)*span/float64(buckets)
		hi := s0 + float64(b+1)*span/float64(buckets)
		i0 := int(math.Floor(lo))
		iN := int(math.Ceil(hi))
		if i0 < 0 {
			i0 = 0
		}
		if iN > len(samples) {
			iN = len(samples)
		}
		if i0 >= iN {
			continue
		}
		min, max := samples[i0], samples[i0]
		for _, s := range samples[i0+1 : iN] {
			if s < min {
				min = s
			}
			if s > max {
				max = s
			}
		}
		peaks[b] = MinMax{min, max}
	}
	return peaks
}

/* Release drops the sample buffers. The Waveform must not be used for
 * peak queries afterwards. */
func (w *Waveform) Release() {
	for i := range w.Levels {
		w.Levels[i] = nil
	}
	w.Levels = nil
	w.Rates = nil
	w.ZoomThresholds = nil
}
