package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Result is the uniform envelope returned to API callers. Errors never escape
// the gateway; they are reported through Success=false.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Failure builds the envelope reported when an operation fails.
func Failure(prefix string, err error) Result {
	return Result{
		Success: false,
		Message: prefix + ": " + err.Error(),
		Error:   err.Error(),
	}
}

// CreateInvoiceCommand is one invoice creation request as received from a caller.
type CreateInvoiceCommand struct {
	UserID     uint
	CustomerID uint
	ProjectID  uint
	StartDate  time.Time
	EndDate    time.Time
	Options    ExportOptions
}

type CreatedInvoice struct {
	InvoiceID   string `json:"invoiceId"`
	DownloadURL string `json:"downloadUrl"`
}

type InvoiceList struct {
	Invoices []InvoiceResponse `json:"invoices"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// GatewayService orchestrates the collaborators behind the invoice API.
type GatewayService interface {
	HandleCreateInvoice(ctx context.Context, cmd CreateInvoiceCommand) Result
	HandleListInvoices(ctx context.Context, customerID uint, page, limit int) Result
	HandleDownloadInvoice(ctx context.Context, invoiceNumber, format string) Result
	HandleDeleteInvoice(ctx context.Context, invoiceNumber string) Result
}

type gatewayService struct {
	customers     CustomerService
	timesheets    TimesheetService
	invoices      InvoiceService
	notifications NotificationService
	log           zerolog.Logger
}

func NewGatewayService(
	customers CustomerService,
	timesheets TimesheetService,
	invoices InvoiceService,
	notifications NotificationService,
	log zerolog.Logger,
) GatewayService {
	return &gatewayService{
		customers:     customers,
		timesheets:    timesheets,
		invoices:      invoices,
		notifications: notifications,
		log:           log,
	}
}

func (g *gatewayService) HandleCreateInvoice(ctx context.Context, cmd CreateInvoiceCommand) Result {
	g.log.Info().
		Uint("customer_id", cmd.CustomerID).
		Uint("project_id", cmd.ProjectID).
		Time("start", cmd.StartDate).
		Time("end", cmd.EndDate).
		Msg("Create invoice requested")

	customer, err := g.customers.GetCustomerByID(ctx, cmd.CustomerID)
	if err != nil {
		return g.fail("Failed to create invoice", err)
	}

	entries, err := g.timesheets.GetEntries(ctx, cmd.ProjectID, cmd.StartDate, cmd.EndDate)
	if err != nil {
		return g.fail("Failed to create invoice", err)
	}

	inv, err := g.invoices.CreateAndExport(ctx, customer, entries, cmd.Options)
	if err != nil {
		return g.fail("Failed to create invoice", err)
	}

	// The invoice is already issued; a lost notification must not undo it.
	if _, err := g.notifications.Notify(ctx, cmd.UserID, inv.InvoiceNumber, cmd.CustomerID); err != nil {
		g.log.Error().Err(err).Str("invoice_number", inv.InvoiceNumber).Msg("Failed to send invoice notification")
	}

	return Result{
		Success: true,
		Message: "Invoice created successfully with number " + inv.InvoiceNumber,
		Data: CreatedInvoice{
			InvoiceID:   inv.InvoiceNumber,
			DownloadURL: inv.DownloadURL,
		},
	}
}

func (g *gatewayService) HandleListInvoices(ctx context.Context, customerID uint, page, limit int) Result {
	page, limit = pageBounds(page, limit)
	invoices, total, err := g.invoices.ListInvoices(ctx, customerID, page, limit)
	if err != nil {
		return g.fail("Failed to list invoices", err)
	}
	return Result{
		Success: true,
		Data:    InvoiceList{Invoices: invoices, Total: total, Page: page, Limit: limit},
	}
}

func (g *gatewayService) HandleDownloadInvoice(ctx context.Context, invoiceNumber, format string) Result {
	file, err := g.invoices.Download(ctx, invoiceNumber, format)
	if err != nil {
		return g.fail("Failed to download invoice", err)
	}
	return Result{Success: true, Data: file}
}

func (g *gatewayService) HandleDeleteInvoice(ctx context.Context, invoiceNumber string) Result {
	if err := g.invoices.DeleteInvoice(ctx, invoiceNumber); err != nil {
		return g.fail("Failed to delete invoice", err)
	}
	return Result{Success: true, Message: "Invoice " + invoiceNumber + " deleted"}
}

func (g *gatewayService) fail(prefix string, err error) Result {
	g.log.Error().Err(err).Msg(prefix)
	return Failure(prefix, err)
}
