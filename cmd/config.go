package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	config "progress-tracker.com/progress-tracker/internal/configs"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate the environment and print the effective configuration",
	Long:  "Loads the configuration the server would start with and prints it as JSON with secrets redacted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg.Summary())
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
