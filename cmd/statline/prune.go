package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/statline/statline/internal/store"
)

var pruneDays int

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete records older than the retention window",
	RunE:  runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().IntVar(&pruneDays, "days", 0,
		"Delete records older than this many days (0 = configured retention)")
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	days := pruneDays
	if days <= 0 {
		days = cfg.Monitor.RetentionDays
	}

	st, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	deleted, err := st.Prune(context.Background(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d records older than %d days\n", deleted, days)
	return nil
}
