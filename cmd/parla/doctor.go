package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parlavoce/parla/internal/doctor"
	"github.com/parlavoce/parla/internal/model"
)

func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment for everything dictation needs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			modelDir, err := model.Dir()
			if err != nil {
				return fmt.Errorf("resolve model directory: %w", err)
			}

			report := doctor.Run(loaded, modelDir)
			fmt.Fprintln(cmd.OutOrStdout(), report.String())
			if !report.OK() {
				return fmt.Errorf("%d check(s) failed", failedCount(report))
			}
			return nil
		},
	}
}

func failedCount(report doctor.Report) int {
	failed := 0
	for _, check := range report.Checks {
		if !check.Pass {
			failed++
		}
	}
	return failed
}
