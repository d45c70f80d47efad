package wave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvariants(t *testing.T) {
	_, err := New(nil, nil, nil, 10)
	assert.Error(t, err)

	_, err = New([][]float32{{0}}, []int{100, 200}, []float64{1}, 10)
	assert.Error(t, err, "length mismatch must be rejected")

	_, err = New([][]float32{{0}}, []int{100}, []float64{2}, 10)
	assert.Error(t, err, "first threshold must cover zoom 1.0")

	w, err := New([][]float32{{0}}, []int{100}, []float64{1}, 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, w.Duration)
}

func TestBuildLevels(t *testing.T) {
	samples := make([]float32, 200000)
	w := NewSingleLevel(samples, 20000, 10)

	require.Equal(t, len(w.Levels), len(w.Rates))
	require.Equal(t, len(w.Levels), len(w.ZoomThresholds))
	assert.True(t, len(w.Levels) >= 2)

	assert.Equal(t, 1.0, w.ZoomThresholds[0])
	for i := 1; i < len(w.Levels); i++ {
		assert.Greater(t, w.ZoomThresholds[i], w.ZoomThresholds[i-1], "thresholds ascend")
		assert.Greater(t, len(w.Levels[i]), len(w.Levels[i-1]), "finer levels have more samples")
	}
	/* finest level is the original data */
	assert.Equal(t, 200000, len(w.Levels[len(w.Levels)-1]))
	assert.Equal(t, 20000, w.Rates[len(w.Rates)-1])
}

func TestDecimateKeepsTransients(t *testing.T) {
	samples := make([]float32, 64)
	samples[17] = -0.9 /* a lone negative spike */
	out := decimate(samples, 8)
	require.Equal(t, 8, len(out))
	assert.Equal(t, float32(-0.9), out[2])
}

func TestSelectLevelMonotone(t *testing.T) {
	w := &Waveform{
		Levels:         [][]float32{{0}, {0}, {0}},
		Rates:          []int{10, 80, 640},
		ZoomThresholds: []float64{1, 8, 64},
	}
	zooms := []float64{1, 2, 7.99, 8, 20, 64, 500, 1000}
	prev := 0
	for _, z := range zooms {
		level := w.SelectLevel(z)
		assert.GreaterOrEqual(t, level, prev, "zoom %g", z)
		prev = level
	}
	assert.Equal(t, 0, w.SelectLevel(1))
	assert.Equal(t, 1, w.SelectLevel(8))
	assert.Equal(t, 2, w.SelectLevel(64))
	assert.Equal(t, 2, w.SelectLevel(1000))
}

func TestPeaks(t *testing.T) {
	samples := []float32{0.5, -0.5, 1, -1, 0.25, -0.25, 0, 0}
	w := &Waveform{Levels: [][]float32{samples}, Rates: []int{8}, ZoomThresholds: []float64{1}}

	peaks := w.Peaks(0, 0, 8, 4)
	require.Equal(t, 4, len(peaks))
	assert.Equal(t, MinMax{-0.5, 0.5}, peaks[0])
	assert.Equal(t, MinMax{-1, 1}, peaks[1])
	assert.Equal(t, MinMax{-0.25, 0.25}, peaks[2])
	assert.Equal(t, MinMax{0, 0}, peaks[3])
}

func TestPeaksDegenerateRange(t *testing.T) {
	w := &Waveform{Levels: [][]float32{{1, 1}}, Rates: []int{2}, ZoomThresholds: []float64{1}}
	for _, p := range w.Peaks(0, 5, 3, 4) {
		assert.Equal(t, MinMax{0, 0}, p, "inverted range yields empty buckets")
	}
	for _, p := range w.Peaks(0, 10, 20, 4) {
		assert.Equal(t, MinMax{0, 0}, p, "out-of-data range yields empty buckets")
	}
}

func TestRelease(t *testing.T) {
	w := NewSingleLevel(make([]float32, 1000), 100, 10)
	w.Release()
	assert.Nil(t, w.Levels)
	assert.Nil(t, w.Rates)
}

func TestDecodeRate(t *testing.T) {
	for _, tc := range []struct {
		duration float64
		want     int
	}{
		{0, 44100},
		{10, 44100},   /* 15e6/10 capped at 44100 */
		{1000, 15000}, /* within range */
		{100000, 500}, /* floor */
	} {
		assert.Equal(t, tc.want, DecodeRate(tc.duration), "duration %g", tc.duration)
	}
}

func TestDecodeArgs(t *testing.T) {
	args := DecodeArgs("/tmp/in.mp3", 8000)
	assert.Equal(t, []string{
		"-vn", "-sn",
		"-v", "error",
		"-i", "/tmp/in.mp3",
		"-f", "f32le",
		"-ac", "1",
		"-ar", "8000",
		"-",
	}, args)
}

func TestNormalize(t *testing.T) {
	s := []float32{2, -4, 1}
	require.NoError(t, normalize(s))
	assert.InDelta(t, 0.5, s[0], 1e-6)
	assert.InDelta(t, -1.0, s[1], 1e-6)

	assert.Error(t, normalize([]float32{float32(nan())}))
}

func nan() float64 {
	z := 0.0
	return z / z
}
