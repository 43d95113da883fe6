package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parlavoce/parla/internal/config"
	"github.com/parlavoce/parla/internal/control"
	"github.com/parlavoce/parla/internal/hotkey"
	"github.com/parlavoce/parla/internal/logging"
)

func newHotkeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hotkey",
		Short: "Capture a new trigger combination and save it",
		Long: `Waits up to 10 seconds for a key combination: hold one or more
modifiers and press a regular key. The captured combination replaces
the configured hotkey.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logRuntime, err := logging.New()
			if err != nil {
				return fmt.Errorf("setup logging: %w", err)
			}
			defer func() { _ = logRuntime.Close() }()

			loaded, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			source, err := hotkey.NewKeyEventSource(logRuntime.Logger)
			if err != nil {
				return fmt.Errorf("open key event source: %w", err)
			}
			defer func() { _ = source.Close() }()

			fmt.Fprintln(cmd.OutOrStdout(), "press the new hotkey (modifiers + key)...")
			descriptor, ok := hotkey.CaptureCombo(source, hotkey.CaptureTimeout)
			if !ok {
				return fmt.Errorf("no combination captured within %s", hotkey.CaptureTimeout)
			}

			cfg := loaded.Config
			cfg.Hotkey = descriptor
			if err := config.Save(loaded.Path, cfg); err != nil {
				return fmt.Errorf("save hotkey: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "hotkey set to %s\n", descriptor.DisplayName)
			notifyRunningInstance(cmd)
			return nil
		},
	}
}

// notifyRunningInstance asks a live daemon to re-read the config so the
// new combination applies without a restart. No daemon is not an error.
func notifyRunningInstance(cmd *cobra.Command) {
	path, err := control.SocketPath()
	if err != nil {
		return
	}
	reply, err := control.Send(cmd.Context(), path, control.Command{Name: control.CmdReload}, controlTimeout)
	if err != nil {
		return
	}
	if reply.OK {
		fmt.Fprintln(cmd.OutOrStdout(), "running instance reloaded")
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: running instance reload failed: %s\n", reply.Error)
	}
}
