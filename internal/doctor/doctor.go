// Package doctor runs runtime readiness diagnostics for config, tools,
// audio, and the transcription model.
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/parlavoce/parla/internal/audio"
	"github.com/parlavoce/parla/internal/config"
	"github.com/parlavoce/parla/internal/model"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded, modelDir string) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkModelArtifact(modelDir, cfg.Config.Model.Name))
	checks = append(checks, checkWhisperBinary())
	checks = append(checks, checkClipboardTool())
	checks = append(checks, checkCredential(cfg.Config))
	checks = append(checks, checkAudioSelection(cfg.Config))

	return Report{Checks: checks}
}

// checkModelArtifact reports whether the model file is on disk; absence
// is not a failure because the app downloads it on first run.
func checkModelArtifact(dir, name string) Check {
	if model.Exists(dir, name) {
		return Check{Name: "model", Pass: true, Message: fmt.Sprintf("found %s", model.Path(dir, name))}
	}
	return Check{Name: "model", Pass: true, Message: fmt.Sprintf("%s not downloaded yet (fetched on first run)", model.Lookup(name).Filename)}
}

// checkWhisperBinary validates that a transcription binary is reachable.
func checkWhisperBinary() Check {
	for _, bin := range []string{"whisper-cli", "whisper-cpp", "whisper"} {
		if path, err := exec.LookPath(bin); err == nil {
			return Check{Name: "whisper", Pass: true, Message: fmt.Sprintf("found at %s", path)}
		}
	}
	return Check{Name: "whisper", Pass: false, Message: "no whisper binary in PATH"}
}

// checkClipboardTool validates that at least one clipboard path exists.
func checkClipboardTool() Check {
	for _, bin := range []string{"wl-copy", "xclip", "xsel", "pbcopy"} {
		if path, err := exec.LookPath(bin); err == nil {
			return Check{Name: "clipboard", Pass: true, Message: fmt.Sprintf("found %s at %s", bin, path)}
		}
	}
	return Check{Name: "clipboard", Pass: false, Message: "no clipboard tool in PATH (wl-copy, xclip, xsel, pbcopy)"}
}

// checkCredential reports refinement availability. Missing credential
// passes: the pipeline degrades to raw transcripts without one.
func checkCredential(cfg config.Config) Check {
	if strings.TrimSpace(cfg.Refinement.GeminiAPIKey) != "" {
		return Check{Name: "refinement", Pass: true, Message: "credential configured"}
	}
	return Check{Name: "refinement", Pass: true, Message: "no credential; transcripts delivered unrefined"}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(cfg config.Config) Check {
	selection, err := audio.SelectDevice(context.Background(), cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message += " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}
