package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statline/statline/internal/collector"
	"github.com/statline/statline/internal/store"
)

var saveRecord bool

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Take a single metrics snapshot",
	Long: `Collect takes one snapshot of the host's metrics and prints it as JSON.
With --save the record is also written to the metrics database.`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().BoolVar(&saveRecord, "save", false,
		"Persist the snapshot to the metrics database")
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := initLogger(cfg)
	defer logger.Sync()

	col := collector.NewSystemCollector(collector.Options{
		Timeout:   cfg.Monitor.CollectTimeout.Duration,
		CPUSample: cfg.Monitor.CPUSample.Duration,
		DiskPath:  cfg.Monitor.DiskPath,
	}, logger)

	rec, err := col.Collect(context.Background())
	if err != nil {
		return err
	}

	if saveRecord {
		st, err := store.Open(cfg.Database.Path, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Insert(context.Background(), rec); err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
