package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"invoicer/internal/logger"
	"invoicer/internal/service"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create and export one invoice",
	Long: `Bill the time entries of a project within a period to a customer and
write the XLSX file to the storage directory. The result envelope is printed
as JSON.`,
	Example: `  # Invoice February 2025 of project 1 for customer 1
  invoicer create --customer 1 --project 1 --from 2025-02-01 --to 2025-02-28

  # Override tax and currency
  invoicer create --customer 2 --tax-rate 19 --currency EUR --notes "Thank you"`,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().Uint("user", 1, "User to notify")
	createCmd.Flags().Uint("customer", 1, "Customer ID")
	createCmd.Flags().Uint("project", 1, "Project ID")
	createCmd.Flags().String("from", "2025-02-01", "Period start (YYYY-MM-DD)")
	createCmd.Flags().String("to", "2025-02-28", "Period end, inclusive (YYYY-MM-DD)")
	createCmd.Flags().String("format", "xlsx", "Export format")
	createCmd.Flags().Float64("tax-rate", 0, "Tax rate in percent (default from config)")
	createCmd.Flags().String("currency", "", "ISO 4217 currency code (default from config)")
	createCmd.Flags().String("notes", "", "Notes printed on the invoice")
	createCmd.Flags().String("terms", "", "Payment terms (default from config)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("create")
	ctx := cmd.Context()

	flags := cmd.Flags()
	from, _ := flags.GetString("from")
	to, _ := flags.GetString("to")
	start, err := time.ParseInLocation("2006-01-02", from, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02", to, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}

	var c service.CreateInvoiceCommand
	c.UserID, _ = flags.GetUint("user")
	c.CustomerID, _ = flags.GetUint("customer")
	c.ProjectID, _ = flags.GetUint("project")
	c.StartDate = start
	c.EndDate = end.Add(24*time.Hour - time.Nanosecond)
	c.Options.Format, _ = flags.GetString("format")
	c.Options.Currency, _ = flags.GetString("currency")
	c.Options.Notes, _ = flags.GetString("notes")
	c.Options.PaymentTerms, _ = flags.GetString("terms")
	if flags.Changed("tax-rate") {
		rate, _ := flags.GetFloat64("tax-rate")
		c.Options.TaxRate = &rate
	}

	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	result := app.Gateway.HandleCreateInvoice(ctx, c)
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}
	log.Info().Str("storage", cfg.StorageDir).Msg("Invoice exported")
	return nil
}
