package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/biglinux/big-audio-converter-sub000/fs"
	"github.com/biglinux/big-audio-converter-sub000/marker"
)

type SavedSegment struct {
	Start float64
	Stop  float64
	Index int
}

type state interface {
	Capture(h *Headers) // captures current memory model state
	Restore()           // restores this object's state to the memory model
}

type stateV1 struct {
	Duration float64 `json:",omitempty"`
	Segments []SavedSegment
}

func (s *stateV1) Capture(h *Headers) {
	h.Extra["Filename"] = G.audiofile
	ed := G.ww.Editor()
	s.Duration = ed.Duration()
	for _, seg := range ed.Segments() {
		s.Segments = append(s.Segments, SavedSegment{seg.Start, seg.Stop, seg.Index})
	}
}

func (s *stateV1) Restore() {
	segs := make([]marker.Segment, 0, len(s.Segments))
	for _, sv := range s.Segments {
		segs = append(segs, marker.Segment{Start: sv.Start, Stop: sv.Stop, Index: sv.Index})
	}
	G.ww.Editor().Restore(segs)
}

type Headers struct {
	Version int
	Extra   map[string]interface{}
}

func mkHeaders() *Headers {
	return &Headers{currentVersion, make(map[string]interface{})}
}

func (h Headers) MarshalJSON() ([]byte, error) {
	var s string = fmt.Sprintf("{\"Version\": %d", h.Version)
	for k, v := range h.Extra {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		s += fmt.Sprintf(",\n\"%s\": %s", k, b)
	}
	s += "}\n"
	return []byte(s), nil
}

func (h *Headers) UnmarshalJSON(buf []byte) (err error) {
	var m map[string]interface{}
	err = json.Unmarshal(buf, &m)
	if err != nil {
		return err
	}
	h.Version = -1
	if i, ok := m["Version"]; ok {
		switch v := i.(type) {
		case float64:
			h.Version = int(v)
		}
		delete(m, "Version")
	}
	h.Extra = m
	if h.Version == -1 {
		return fmt.Errorf("missing required Version header. Have: %v", m)
	}
	return nil
}

var currentVersion = 1

func stateV(version int) state {
	switch version {
	case 1:
		return &stateV1{}
	}
	panic(fmt.Errorf("unknown file version %d", version))
}

func flatpath(r rune) rune {
	if r < 26 || strings.ContainsRune(" /:\\", r) {
		return '_'
	}
	return r
}

func stateKey(audiofile string) string {
	return strings.TrimLeft(strings.Map(flatpath, audiofile)+".cuts", "_")
}

func LoadStateFile(stateFile string) (err error) {
	if _, err = os.Stat(stateFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var f *os.File
	f, err = os.Open(stateFile)
	defer mustRecover(&err)
	must(err)
	defer f.Close()
	j := json.NewDecoder(f)
	var h Headers
	must(j.Decode(&h))
	s := stateV(h.Version)
	must(j.Decode(&s))
	s.Restore()
	return
}

func SaveStateFile(stateFile string) (err error) {
	tmpfile, err := os.CreateTemp(fs.SaveDir(), "state")
	defer mustRecover(&err)
	must(err)
	writeState(tmpfile)
	must(tmpfile.Close())
	must(fs.ReplaceFile(tmpfile.Name(), stateFile))
	return nil
}

// panics on error
func writeState(tmpfile io.Writer) {
	s := stateV(currentVersion)
	h := mkHeaders()
	s.Capture(h)
	mustWrite(writeSlice(tmpfile, mustMarshal(h.MarshalJSON())))
	mustWrite(writeSlice(tmpfile, mustMarshal(json.MarshalIndent(s, "", "\t"))))
}

func writeSlice(w io.Writer, buf []byte) (int64, error) {
	return io.CopyN(w, bytes.NewReader(buf), int64(len(buf)))
}

func mustMarshal(buf []byte, err error) []byte {
	must(err)
	return buf
}

func mustWrite(n int64, err error) int64 {
	must(err)
	return n
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func mustRecover(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = e
			return
		}
		panic(r)
	}
}
