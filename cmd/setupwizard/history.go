package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the flow journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closeStore, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		records, err := store.History(cmd.Context(), cfg.FlowID)
		if err != nil {
			return fmt.Errorf("failed to read journal: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintf(out, "No journal for flow %q\n", cfg.FlowID)
			return nil
		}
		for _, r := range records {
			fmt.Fprintf(out, "%s  %-14s %-16s %s\n", r.Timestamp.Local().Format(time.DateTime), r.Type, r.Page, r.Detail)
		}
		return nil
	},
}
