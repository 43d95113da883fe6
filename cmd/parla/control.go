package main

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/parlavoce/parla/internal/control"
)

const controlTimeout = 2 * time.Second

func newToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Start or stop recording in the running instance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendControl(cmd, control.CmdToggle)
		},
	}
}

func newDismissCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dismiss",
		Short: "Dismiss the done overlay in the running instance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendControl(cmd, control.CmdDismiss)
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running instance's status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendControl(cmd, control.CmdStatus)
		},
	}
}

// sendControl delivers one command to the daemon's control socket and
// prints the reply.
func sendControl(cmd *cobra.Command, name string) error {
	path, err := control.SocketPath()
	if err != nil {
		return err
	}

	reply, err := control.Send(cmd.Context(), path, control.Command{Name: name}, controlTimeout)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
			return errors.New("parla is not running")
		}
		return err
	}
	if !reply.OK {
		return errors.New(reply.Error)
	}

	if reply.Message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), reply.Message)
	}
	if name == control.CmdStatus {
		fmt.Fprintln(cmd.OutOrStdout(), reply.Status)
	}
	return nil
}
