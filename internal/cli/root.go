// Package cli holds the invoicer command tree: the HTTP server and the
// operator commands around invoice numbering and the database.
package cli

import (
	"fmt"
	"os"

	"invoicer/internal/config"
	"invoicer/internal/logger"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

var (
	envFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "invoicer",
	Short: "Invoicer - turn timesheet entries into XLSX invoices",
	Long: `Invoicer collects the time entries of a project over a billing period,
issues a uniquely numbered invoice for a customer and exports it as an XLSX
workbook. It runs as an HTTP service and offers commands for one-off invoices
and for maintaining the invoice number sequence.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if err := logger.Setup(loaded.GetLoggerConfig()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log := logger.WithComponent("cmd")
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", config.DefaultEnvFile, "Path to the .env file")
}
