// Package config resolves, loads, and persists parla configuration.
package config

import (
	"github.com/parlavoce/parla/internal/hotkey"
	"github.com/parlavoce/parla/internal/model"
)

// Config is the fully materialized runtime configuration.
type Config struct {
	Hotkey     hotkey.Descriptor `toml:"hotkey"`
	Refinement RefinementConfig  `toml:"refinement"`
	Model      ModelConfig       `toml:"model"`
	Audio      AudioConfig       `toml:"audio"`
	Cues       CueConfig         `toml:"cues"`
}

// RefinementConfig carries the transcript refinement credential.
type RefinementConfig struct {
	GeminiAPIKey string `toml:"gemini_api_key"`
}

// ModelConfig selects the transcription model.
type ModelConfig struct {
	Name string `toml:"name"`
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string `toml:"input"`
	Fallback string `toml:"fallback"`
}

// CueConfig controls the start/stop audio cues.
type CueConfig struct {
	Enable bool `toml:"enable"`
}

// Warning is a non-fatal config issue surfaced to the caller.
type Warning struct {
	Message string
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Hotkey:     hotkey.DefaultDescriptor(),
		Refinement: RefinementConfig{},
		Model:      ModelConfig{Name: model.DefaultName},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Cues: CueConfig{Enable: true},
	}
}
