package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"convert-json-to-parquet/internal/job"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded job runs from the SQLite ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("ledger")
		if path == "" {
			path = viper.GetString("ledger_path")
		}
		if path == "" {
			return errors.New("no ledger configured: pass --ledger or set ledger_path")
		}

		ledger, err := job.OpenSQLiteLedger(path)
		if err != nil {
			return err
		}
		defer ledger.Close()

		name, _ := cmd.Flags().GetString("job")
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := ledger.Runs(cmd.Context(), name, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded.")
			return nil
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(runs); err != nil {
			return fmt.Errorf("encoding runs: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	runsCmd.Flags().String("ledger", "", "SQLite run ledger file (default: ledger_path from config)")
	runsCmd.Flags().String("job", "", "only list runs of this job")
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}
