package cmd

import (
	"github.com/spf13/cobra"

	httpapi "progress-tracker.com/progress-tracker/internal/http"
)

var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "Print the OpenAPI document of the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := cmd.OutOrStdout().Write(httpapi.OpenAPIDocument())
		return err
	},
}

func init() {
	rootCmd.AddCommand(openapiCmd)
}
