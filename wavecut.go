package main

import (
	"context"
	"flag"
	"path/filepath"
	"strings"

	"github.com/biglinux/big-audio-converter-sub000/audio"
	"github.com/biglinux/big-audio-converter-sub000/convert"
	"github.com/biglinux/big-audio-converter-sub000/log"
	"github.com/biglinux/big-audio-converter-sub000/marker"
	"github.com/biglinux/big-audio-converter-sub000/plumb"
	"github.com/biglinux/big-audio-converter-sub000/wave"
)

var G struct {
	/* global state */
	audiofile string
	files     FileContext

	/* collaborators */
	generator *wave.Generator
	player    audio.Player
	bridge    *PlaybackBridge
	runner    *convert.Runner

	/* segments for files visited this session */
	markerCache map[string][]marker.Segment

	/* funcs marshalled onto the event loop */
	dispatch chan func()

	/* ui stuff */
	ww      *WaveWidget
	zoom    *ZoomSlider
	widgets []Widget /* hit-test order for event dispatch */
	kb      struct {
		shift, ctrl bool
	}

	orderByNumber bool
}

func marshal(fn func()) {
	G.dispatch <- fn
}

/* forward republishes a port's events as closures on the event loop so
 * handlers run on the single goroutine that owns the core state. */
func forward(port *plumb.Port, handle func(interface{})) {
	c := make(chan interface{}, 64)
	port.Sub(c)
	go func() {
		for ev := range c {
			ev := ev
			marshal(func() { handle(ev) })
		}
	}()
}

func handleAudioEvent(ev interface{}) {
	switch e := ev.(type) {
	case audio.PositionChanged:
		G.bridge.OnPosition(e.Pos)
	case audio.DurationChanged:
		G.ww.SetDuration(e.Duration)
	case audio.StateChanged:
		G.bridge.OnStateChanged(e.Playing)
	case audio.EndOfStream:
		G.bridge.OnEndOfStream()
	case audio.PlayerError:
		log.AU.Println("player error:", e.Msg)
	}
}

func handleMarkerEvent(ev interface{}) {
	if e, ok := ev.(marker.MarkersChanged); ok && G.audiofile != "" {
		G.markerCache[G.audiofile] = e.Segments
	}
}

func openAudio(filename string) {
	if G.audiofile != "" {
		G.markerCache[G.audiofile] = G.ww.Editor().Segments()
		if err := SaveMarkers(G.files); err != nil {
			log.FS.Println("saving state failed:", err)
		}
	}
	G.bridge.SetSelectionOnly(false)
	G.ww.ClearWaveform()
	G.ww.Editor().Clear()
	G.audiofile = filename

	files, err := OpenAudio(filename) /* restores persisted markers */
	if err != nil {
		log.FS.Println("loading state failed:", err)
	}
	G.files = files
	if segs, ok := G.markerCache[filename]; ok {
		/* edits from earlier in this session win over disk */
		G.ww.Editor().Restore(segs)
	}

	if G.player.Load(filename) {
		G.ww.SetDuration(G.player.Duration())
	}
	G.ww.SetGenerating(true)
	G.generator.Start(filename, func(res wave.Result) {
		marshal(func() {
			if res.Path != G.audiofile {
				return /* stale result from a superseded load */
			}
			G.ww.SetGenerating(false)
			if res.Err != nil {
				/* duration-only editing stays available */
				log.WAV.Printf("generation failed: %v", res.Err)
				return
			}
			G.ww.SetWaveform(res.Wave)
		})
	})
}

func playToggle() {
	if G.player.IsPlaying() {
		G.player.Pause()
	} else {
		G.player.Play()
	}
}

func toggleSelectionOnly() {
	if G.bridge.SelectionOnly() {
		G.bridge.SetSelectionOnly(false)
	} else if !G.bridge.SetSelectionOnly(true) {
		log.UI.Println("no valid segments for selection playback")
	}
}

func exportSegments() {
	if G.audiofile == "" {
		return
	}
	segs := G.ww.Editor().Ordered(G.orderByNumber)
	if len(segs) == 0 {
		log.CUT.Println("no valid segments to export")
		return
	}
	ext := strings.TrimPrefix(filepath.Ext(G.audiofile), ".")
	if ext == "" {
		ext = "mp3"
	}
	out := strings.TrimSuffix(G.audiofile, filepath.Ext(G.audiofile)) + ".cut." + ext
	req := convert.ConversionRequest{
		Input:        G.audiofile,
		OutputFormat: ext,
		Segments:     segs,
	}
	err := G.runner.Convert(req, out, marshal, func(res convert.ConversionResult) {
		if res.Err != nil {
			log.CUT.Printf("conversion failed: %v", res.Err)
			return
		}
		log.CUT.Printf("wrote %s", res.Output)
	})
	if err != nil {
		log.CUT.Printf("invalid conversion request: %v", err)
	}
}

func main() {
	flag.Parse()
	confinit()

	G.dispatch = make(chan func(), 16)
	G.markerCache = make(map[string][]marker.Segment)
	G.generator = &wave.Generator{FFmpeg: Cfg.Tools.FFmpeg, FFprobe: Cfg.Tools.FFprobe}
	G.runner = &convert.Runner{FFmpeg: Cfg.Tools.FFmpeg}
	G.player = audio.NewFFPlayer(Cfg.Tools.FFplay, func(path string) (float64, error) {
		return wave.ProbeDuration(context.Background(), Cfg.Tools.FFprobe, path)
	})

	refresh := make(chan Widget, 10)
	G.ww = NewWaveWidget(refresh)
	G.zoom = NewZoomSlider(G.ww, refresh)
	G.widgets = []Widget{G.ww, G.zoom}
	G.bridge = NewPlaybackBridge(G.player, G.ww, seekThrottle())

	forward(G.player.Events(), handleAudioEvent)
	forward(G.ww.Editor().Events(), handleMarkerEvent)

	wg := InitWde(refresh)

	if audioFile := flag.Arg(0); audioFile != "" {
		marshal(func() { openAudio(audioFile) })
	}
	refresh <- nil

	wg.Wait()

	G.player.Stop()
	G.generator.CancelCurrent()
	if G.audiofile != "" {
		if err := SaveMarkers(G.files); err != nil {
			log.FS.Println("saving state failed:", err)
		}
	}
}
