package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/biglinux/big-audio-converter-sub000/fs"
	"github.com/biglinux/big-audio-converter-sub000/log"
)

type ConfigJSON struct {
	Tools struct {
		FFmpeg  string
		FFprobe string
		FFplay  string
	}
	FS struct {
		SaveDir string
	}
	UI struct {
		SeekThrottleMs int
	}
}

/* environment overlay; set values win over the config file */
type configEnv struct {
	FFmpeg         string `env:"WAVECUT_FFMPEG"`
	FFprobe        string `env:"WAVECUT_FFPROBE"`
	FFplay         string `env:"WAVECUT_FFPLAY"`
	SaveDir        string `env:"WAVECUT_SAVE_DIR"`
	SeekThrottleMs int    `env:"WAVECUT_SEEK_THROTTLE_MS"`
}

var Cfg struct {
	ConfigJSON

	mtime time.Time // mtime of the config file when it was loaded
}

func confinit() {
	Cfg.Tools.FFmpeg = "ffmpeg"
	Cfg.Tools.FFprobe = "ffprobe"
	Cfg.Tools.FFplay = "ffplay"
	Cfg.UI.SeekThrottleMs = 50

	mtime, p, err := ReadConfig(fs.ConfigPath("wavecut.json"))
	if os.IsNotExist(err) {
		/* portable installs keep the config next to the binary */
		mtime, p, err = ReadConfig(fs.Join(fs.ExeDir(), "wavecut.json"))
	}
	if err == nil {
		applyConfig(mtime, &p)
	} else if !os.IsNotExist(err) {
		log.FS.Println("loading config failed:", err)
	}

	var env configEnv
	if err := envconfig.Process(context.Background(), &env); err != nil {
		log.FS.Println("reading environment failed:", err)
	} else {
		applyEnv(&env)
	}
	fs.SetSaveDir(Cfg.FS.SaveDir)
}

func ReadConfig(path string) (mtime time.Time, p ConfigJSON, err error) {
	var f *os.File
	var st os.FileInfo
	if st, err = os.Stat(path); err == nil {
		mtime = st.ModTime()
		if f, err = os.Open(path); err == nil {
			defer f.Close()
			j := json.NewDecoder(f)
			err = j.Decode(&p)
		}
	}
	return
}

// Applies a parsed config to the memory model
func applyConfig(mtime time.Time, params *ConfigJSON) {
	if params.Tools.FFmpeg != "" {
		Cfg.Tools.FFmpeg = params.Tools.FFmpeg
	}
	if params.Tools.FFprobe != "" {
		Cfg.Tools.FFprobe = params.Tools.FFprobe
	}
	if params.Tools.FFplay != "" {
		Cfg.Tools.FFplay = params.Tools.FFplay
	}
	if params.FS.SaveDir != "" {
		Cfg.FS.SaveDir = params.FS.SaveDir
	}
	if params.UI.SeekThrottleMs > 0 {
		Cfg.UI.SeekThrottleMs = params.UI.SeekThrottleMs
	}
	Cfg.mtime = mtime
}

func applyEnv(env *configEnv) {
	if env.FFmpeg != "" {
		Cfg.Tools.FFmpeg = env.FFmpeg
	}
	if env.FFprobe != "" {
		Cfg.Tools.FFprobe = env.FFprobe
	}
	if env.FFplay != "" {
		Cfg.Tools.FFplay = env.FFplay
	}
	if env.SaveDir != "" {
		Cfg.FS.SaveDir = env.SaveDir
	}
	if env.SeekThrottleMs > 0 {
		Cfg.UI.SeekThrottleMs = env.SeekThrottleMs
	}
}

func seekThrottle() time.Duration {
	return time.Duration(Cfg.UI.SeekThrottleMs) * time.Millisecond
}
