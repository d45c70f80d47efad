package fs

import (
	"os"
	"path/filepath"
	"strings"
)

func Join(dirs ...string) string {
	return strings.Join(dirs, string(os.PathSeparator))
}

var saveDir string

// SaveDir returns the directory holding per-file marker state and the
// association database. Defaults under the user config dir; overridable
// via SetSaveDir (config).
func SaveDir() string {
	if saveDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			base = os.TempDir()
		}
		saveDir = Join(base, "wavecut")
	}
	os.MkdirAll(saveDir, 0755)
	return saveDir
}

func SetSaveDir(dir string) {
	if dir != "" {
		saveDir = dir
	}
}

func ConfigPath(name string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return Join(base, "wavecut", name)
}

// ReplaceFile atomically moves src over dst, falling back to
// remove-then-rename on platforms where rename won't clobber.
func ReplaceFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(src, dst)
}

func ExeDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}
