package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	config "progress-tracker.com/progress-tracker/internal/configs"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "progress-tracker",
	Short:         "Task tracking REST API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		err := config.LoadDotEnv(envFile)
		if err != nil && !(errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file")) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
