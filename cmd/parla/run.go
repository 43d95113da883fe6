package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/parlavoce/parla/internal/app"
	"github.com/parlavoce/parla/internal/audio"
	"github.com/parlavoce/parla/internal/clipboard"
	"github.com/parlavoce/parla/internal/config"
	"github.com/parlavoce/parla/internal/control"
	"github.com/parlavoce/parla/internal/cue"
	"github.com/parlavoce/parla/internal/event"
	"github.com/parlavoce/parla/internal/hotkey"
	"github.com/parlavoce/parla/internal/logging"
	"github.com/parlavoce/parla/internal/model"
	"github.com/parlavoce/parla/internal/refiner"
	"github.com/parlavoce/parla/internal/stats"
	"github.com/parlavoce/parla/internal/tasks"
	"github.com/parlavoce/parla/internal/ui"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the dictation loop",
		RunE:  runApp,
	}
}

func runApp(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	logRuntime, err := logging.New()
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer func() { _ = logRuntime.Close() }()
	logger := logRuntime.Logger

	loaded, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg := loaded.Config

	statsPath, err := stats.DefaultPath()
	if err != nil {
		return fmt.Errorf("resolve stats path: %w", err)
	}
	store, err := stats.Open(statsPath)
	if err != nil {
		return err
	}
	defer store.Close()

	modelDir, err := model.Dir()
	if err != nil {
		return fmt.Errorf("resolve model directory: %w", err)
	}

	bus := event.NewBus(event.DefaultBusCapacity)
	runtime := tasks.NewRuntime(tasks.DefaultBlockingSlots, logger)
	shared := hotkey.NewShared(cfg.Hotkey)

	source, err := hotkey.NewKeyEventSource(logger)
	if err != nil {
		return fmt.Errorf("open key event source: %w", err)
	}
	listener := hotkey.NewListener(source, shared, logger)
	listener.Start()
	defer listener.Stop()

	go func() {
		for range listener.Triggers() {
			if err := bus.Send(ctx, event.HotkeyTriggered{}); err != nil {
				return
			}
		}
	}()

	application := app.New(app.Deps{
		Logger:       logger,
		Bus:          bus,
		Runtime:      runtime,
		Display:      ui.NewTerminal(cmd.OutOrStdout()),
		Cues:         cue.NewPlayer(cfg.Cues.Enable, logger),
		Clipboard:    clipboard.NewWriter(logger),
		Store:        store,
		Refiner:      refiner.New(cfg.Refinement.GeminiAPIKey, logger),
		Hotkeys:      shared,
		StartCapture: captureStarter(cfg.Audio, logger),
		ModelDir:     modelDir,
		ModelName:    cfg.Model.Name,
	})

	socketPath, err := control.SocketPath()
	if err != nil {
		logger.Warn("control socket disabled", "error", err)
	} else {
		ctlListener, err := control.Acquire(ctx, socketPath, time.Second, 2)
		if err != nil {
			return err
		}
		defer ctlListener.Close()

		reload := func(ctx context.Context) error {
			reloaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			return bus.Send(ctx, event.HotkeyChanged{Descriptor: reloaded.Config.Hotkey})
		}
		controller := control.NewController(bus, application.StatusSnapshot, reload, logger)
		go func() {
			if err := control.Serve(ctx, ctlListener, controller); err != nil {
				logger.Error("control socket server failed", "error", err)
			}
		}()
	}

	logger.Info("parla starting", "hotkey", cfg.Hotkey.DisplayName, "model", cfg.Model.Name)
	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}

// captureStarter binds the configured input selection to the capture
// entry point the orchestrator calls.
func captureStarter(audioCfg config.AudioConfig, logger *slog.Logger) app.CaptureStarter {
	return func(ctx context.Context, buffer *audio.Buffer) (app.CaptureHandle, error) {
		selection, err := audio.SelectDevice(ctx, audioCfg.Input, audioCfg.Fallback)
		if err != nil {
			return nil, err
		}
		if selection.Warning != "" {
			logger.Warn("audio device fallback", "warning", selection.Warning)
		}
		return audio.StartCapture(selection.Device, buffer)
	}
}
