package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parlavoce/parla/internal/audio"
)

func newDevicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio input sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			devices, err := audio.ListDevices(cmd.Context())
			if err != nil {
				return fmt.Errorf("list input sources: %w", err)
			}
			if len(devices) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no input sources found")
				return nil
			}
			for _, device := range devices {
				marks := ""
				if device.Default {
					marks += " [default]"
				}
				if device.Muted {
					marks += " [muted]"
				}
				if !device.Available {
					marks += " [unavailable]"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s%s\n", device.ID, device.Description, marks)
			}
			return nil
		},
	}
}
