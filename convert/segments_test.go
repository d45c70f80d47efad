package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biglinux/big-audio-converter-sub000/marker"
)

func seg(start, stop float64, index int) marker.Segment {
	return marker.Segment{
		Start:    start,
		Stop:     stop,
		StartStr: marker.FormatTime(start),
		StopStr:  marker.FormatTime(stop),
		Index:    index,
	}
}

func TestExtractArgs(t *testing.T) {
	req := ConversionRequest{Input: "/music/in.flac", OutputFormat: "flac"}
	args := ExtractArgs(req, seg(61.5, 125.25, 1), "/tmp/part000.flac")
	assert.Equal(t, []string{
		"-y",
		"-v", "warning",
		"-accurate_seek",
		"-ss", "00:01:01.500",
		"-i", "/music/in.flac",
		"-t", "63.750",
		"-avoid_negative_ts", "1",
		"-map_metadata", "-1",
		"/tmp/part000.flac",
	}, args)
}

func TestExtractArgsWithFilters(t *testing.T) {
	req := ConversionRequest{Input: "in.mp3", OutputFormat: "mp3", Filters: "volume=2.0"}
	args := ExtractArgs(req, seg(0, 1, 1), "out.mp3")
	require.Contains(t, args, "-af")
	i := indexOf(args, "-af")
	assert.Equal(t, "volume=2.0", args[i+1])
	assert.Equal(t, "out.mp3", args[len(args)-1], "output stays last")
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

func TestConcatList(t *testing.T) {
	list := ConcatList([]string{"/tmp/a.mp3", "/tmp/b's.mp3"})
	assert.Equal(t, "file '/tmp/a.mp3'\nfile '/tmp/b'\\''s.mp3'\n", list)
}

func TestConcatArgs(t *testing.T) {
	assert.Equal(t, []string{
		"-y",
		"-v", "warning",
		"-f", "concat",
		"-safe", "0",
		"-i", "list.txt",
		"-c", "copy",
		"out.mp3",
	}, ConcatArgs("list.txt", "out.mp3"))
}

func TestValidate(t *testing.T) {
	good := ConversionRequest{
		Input:        "in.mp3",
		OutputFormat: "mp3",
		Segments:     []marker.Segment{seg(1, 2, 1)},
	}
	assert.NoError(t, good.Validate())

	for name, req := range map[string]ConversionRequest{
		"missing input": {
			OutputFormat: "mp3",
			Segments:     []marker.Segment{seg(1, 2, 1)},
		},
		"missing format": {
			Input:    "in.mp3",
			Segments: []marker.Segment{seg(1, 2, 1)},
		},
		"no segments": {
			Input:        "in.mp3",
			OutputFormat: "mp3",
		},
		"stop before start": {
			Input:        "in.mp3",
			OutputFormat: "mp3",
			Segments:     []marker.Segment{seg(5, 2, 1)},
		},
		"negative start": {
			Input:        "in.mp3",
			OutputFormat: "mp3",
			Segments:     []marker.Segment{seg(-1, 2, 1)},
		},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, req.Validate())
		})
	}
}

func TestValidateMissingBoundaryStrings(t *testing.T) {
	req := ConversionRequest{
		Input:        "in.mp3",
		OutputFormat: "mp3",
		Segments:     []marker.Segment{{Start: 1, Stop: 2, Index: 1}},
	}
	assert.Error(t, req.Validate())
}
