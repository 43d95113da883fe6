// Package model manages the on-disk whisper model artifact and the
// transcription engine built around it.
package model

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultName is the model shipped by default; a compact English-only
	// model that keeps first-run download and load times reasonable.
	DefaultName = "base.en"

	huggingFaceBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"
)

// Info describes a downloadable whisper model.
type Info struct {
	Name     string
	Filename string
	URL      string
}

// Known returns the models this build knows how to fetch.
func Known() []Info {
	names := []string{"tiny.en", "base.en", "small.en", "tiny", "base", "small"}
	infos := make([]Info, 0, len(names))
	for _, name := range names {
		filename := "ggml-" + name + ".bin"
		infos = append(infos, Info{
			Name:     name,
			Filename: filename,
			URL:      huggingFaceBaseURL + "/" + filename,
		})
	}
	return infos
}

// Lookup resolves a model name to its download info. Unknown names fall
// back to DefaultName so a typo in config degrades instead of breaking
// startup.
func Lookup(name string) Info {
	name = strings.TrimSpace(name)
	for _, info := range Known() {
		if info.Name == name {
			return info
		}
	}
	return Lookup(DefaultName)
}

// Dir returns the directory where model files live, following XDG data
// conventions with a home fallback.
func Dir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "parla", "models"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "parla", "models"), nil
}

// Path returns the full path of a model file inside dir.
func Path(dir, name string) string {
	return filepath.Join(dir, Lookup(name).Filename)
}

// Exists reports whether the model file is present on disk.
func Exists(dir, name string) bool {
	info, err := os.Stat(Path(dir, name))
	return err == nil && info.Mode().IsRegular()
}
