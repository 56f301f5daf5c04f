package handler

import (
	"errors"
	"net/http"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/service"
	"invoicer/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var (
	defaultPeriodStart = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	defaultPeriodEnd   = time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
)

type InvoiceHandler struct {
	gateway service.GatewayService
	log     zerolog.Logger
}

func NewInvoiceHandler(gateway service.GatewayService, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{gateway: gateway, log: log}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/create", h.CreateInvoice)
		invoices.GET("/:customerId/download", h.DownloadInvoice)
		invoices.DELETE("/:invoiceNumber", h.DeleteInvoice)
	}
}

func resultStatus(r service.Result) int {
	if r.Success {
		return http.StatusOK
	}
	return http.StatusBadRequest
}

// CreateInvoice bills a project's time entries to a customer and exports the invoice
// @Summary      Create invoice
// @Description  Collects the project's time entries in the period, issues the next invoice number and writes the XLSX file
// @Tags         invoices
// @Produce      json
// @Param        userId        query     int     false  "User to notify (default 1)"
// @Param        customerId    query     int     false  "Customer ID (default 1)"
// @Param        projectId     query     int     false  "Project ID (default 1)"
// @Param        startDate     query     string  false  "Period start YYYY-MM-DD (default 2025-02-01)"
// @Param        endDate       query     string  false  "Period end YYYY-MM-DD, inclusive (default 2025-02-28)"
// @Param        format        query     string  false  "Export format (xlsx)"
// @Param        taxRate       query     number  false  "Tax rate in percent (default 10)"
// @Param        currency      query     string  false  "ISO 4217 currency code (default USD)"
// @Param        notes         query     string  false  "Free text notes"
// @Param        paymentTerms  query     string  false  "Payment terms text"
// @Success      200           {object}  service.Result{data=service.CreatedInvoice}
// @Failure      400           {object}  service.Result
// @Router       /api/invoices/create [get]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	cmd, err := h.createCommand(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.Failure("Failed to create invoice", err))
		return
	}

	result := h.gateway.HandleCreateInvoice(c.Request.Context(), cmd)
	c.JSON(resultStatus(result), result)
}

func (h *InvoiceHandler) createCommand(c *gin.Context) (service.CreateInvoiceCommand, error) {
	var (
		cmd service.CreateInvoiceCommand
		err error
	)
	if cmd.UserID, err = queryUint(c, "userId", 1); err != nil {
		return cmd, err
	}
	if cmd.CustomerID, err = queryUint(c, "customerId", 1); err != nil {
		return cmd, err
	}
	if cmd.ProjectID, err = queryUint(c, "projectId", 1); err != nil {
		return cmd, err
	}
	if cmd.StartDate, err = queryDate(c, "startDate", defaultPeriodStart, false); err != nil {
		return cmd, err
	}
	if cmd.EndDate, err = queryDate(c, "endDate", defaultPeriodEnd, true); err != nil {
		return cmd, err
	}
	if cmd.Options.TaxRate, err = queryFloat(c, "taxRate"); err != nil {
		return cmd, err
	}
	cmd.Options.Format = c.Query("format")
	cmd.Options.Currency = c.Query("currency")
	cmd.Options.Notes = c.Query("notes")
	cmd.Options.PaymentTerms = c.Query("paymentTerms")
	return cmd, nil
}

// DownloadInvoice streams a previously created invoice file
// @Summary      Download invoice
// @Description  Returns the exported invoice as an attachment, rendering it again if the file is missing
// @Tags         invoices
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        customerId     path      int     true   "Customer ID"
// @Param        invoiceNumber  query     string  true   "Invoice number"
// @Param        format         query     string  false  "Export format (xlsx)"
// @Success      200            {file}    file
// @Failure      400            {object}  service.Result
// @Router       /api/invoices/{customerId}/download [get]
func (h *InvoiceHandler) DownloadInvoice(c *gin.Context) {
	number := c.Query("invoiceNumber")
	if number == "" {
		err := apperror.Invalid("invoiceNumber", "is required")
		c.JSON(http.StatusBadRequest, service.Failure("Failed to download invoice", err))
		return
	}

	result := h.gateway.HandleDownloadInvoice(c.Request.Context(), number, c.Query("format"))
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	file, ok := result.Data.(service.InvoiceFile)
	if !ok {
		c.JSON(http.StatusInternalServerError, service.Failure("Failed to download invoice", errors.New("unexpected download result")))
		return
	}

	h.log.Info().Str("invoice_number", number).Str("customer_id", c.Param("customerId")).Msg("Invoice downloaded")
	c.Header("Content-Type", file.MIMEType)
	c.FileAttachment(file.FilePath, file.FileName)
}

// ListInvoices returns issued invoices, newest first
// @Summary      List invoices
// @Description  Retrieves a paginated list of invoices, optionally for one customer
// @Tags         invoices
// @Produce      json
// @Param        customerId  query     int  false  "Filter by customer"
// @Param        page        query     int  false  "Page number (default 1)"
// @Param        limit       query     int  false  "Number of items per page (default 20)"
// @Success      200         {object}  service.Result{data=service.InvoiceList}
// @Failure      400         {object}  service.Result
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	customerID, err := queryUint(c, "customerId", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, service.Failure("Failed to list invoices", err))
		return
	}
	params := pagination.Parse(c)

	result := h.gateway.HandleListInvoices(c.Request.Context(), customerID, params.Page, params.Limit)
	c.JSON(resultStatus(result), result)
}

// DeleteInvoice removes an invoice and its exported file
// @Summary      Delete invoice
// @Tags         invoices
// @Produce      json
// @Param        invoiceNumber  path      string  true  "Invoice number"
// @Success      200            {object}  service.Result
// @Failure      400            {object}  service.Result
// @Router       /api/invoices/{invoiceNumber} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	result := h.gateway.HandleDeleteInvoice(c.Request.Context(), c.Param("invoiceNumber"))
	c.JSON(resultStatus(result), result)
}
