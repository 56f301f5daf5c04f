package cli

import (
	"fmt"
	"strconv"

	"invoicer/internal/logger"
	"invoicer/internal/model"

	"github.com/spf13/cobra"
)

var sequenceCmd = &cobra.Command{
	Use:   "sequence",
	Short: "Inspect or reset the invoice number sequence",
}

var sequencePeekCmd = &cobra.Command{
	Use:   "peek",
	Short: "Print the next invoice number without issuing it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		fmt.Fprintln(cmd.OutOrStdout(), app.Allocator.Peek())
		return nil
	},
}

var sequenceResetCmd = &cobra.Command{
	Use:   "reset <value>",
	Short: "Set the counter so the next invoice uses <value>",
	Long: `Set the counter so the next invoice uses <value>. Numbers already issued
are not checked; resetting below them makes the store reject the duplicates.`,
	Example: `  invoicer sequence reset 20001`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.WithComponent("sequence")

		value, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || value < 0 {
			return fmt.Errorf("invalid counter value %q", args[0])
		}

		app, err := NewApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		previous := app.Allocator.Peek()
		if err := app.Allocator.Reset(cmd.Context(), value); err != nil {
			return err
		}
		details := map[string]interface{}{"previous": previous, "next": app.Allocator.Peek()}
		if err := app.Audit.Record(cmd.Context(), model.ActionSequenceReset, cfg.InvoicePrefix, "", details); err != nil {
			log.Warn().Err(err).Msg("Sequence reset but audit entry could not be written")
		}
		log.Info().Int64("value", value).Str("next_invoice", app.Allocator.Peek()).Msg("Invoice sequence reset")
		fmt.Fprintln(cmd.OutOrStdout(), app.Allocator.Peek())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sequenceCmd)
	sequenceCmd.AddCommand(sequencePeekCmd, sequenceResetCmd)
}
