package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parlavoce/parla/internal/config"
	"github.com/parlavoce/parla/internal/version"
)

var cfgFile string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "parla",
		Short: "Hotkey-driven dictation that turns speech into ready prompts",
		Long: `parla listens for a global hotkey, records speech, transcribes it
locally with whisper, optionally refines the transcript into a clean
prompt, and places the result on the clipboard.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	root.AddCommand(newRunCommand())
	root.AddCommand(newDevicesCommand())
	root.AddCommand(newDoctorCommand())
	root.AddCommand(newHotkeyCommand())
	root.AddCommand(newHistoryCommand())
	root.AddCommand(newToggleCommand())
	root.AddCommand(newDismissCommand())
	root.AddCommand(newStatusCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	})

	return root
}

// loadConfig loads the runtime config and prints non-fatal warnings.
func loadConfig(cmd *cobra.Command) (config.Loaded, error) {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return config.Loaded{}, err
	}
	for _, w := range loaded.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Message)
	}
	return loaded, nil
}
