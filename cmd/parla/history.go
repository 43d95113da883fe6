package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parlavoce/parla/internal/stats"
)

func newHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently delivered prompts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := stats.DefaultPath()
			if err != nil {
				return fmt.Errorf("resolve stats path: %w", err)
			}
			store, err := stats.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no prompts recorded yet")
				return nil
			}

			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %4d words  %s\n",
					r.CreatedAt.Local().Format("2006-01-02 15:04"), r.WordCount, r.Text)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum prompts to show")
	return cmd
}
