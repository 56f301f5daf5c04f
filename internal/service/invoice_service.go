package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/calculator"
	"invoicer/internal/model"
	"invoicer/internal/render"
	"invoicer/internal/repository"
	"invoicer/internal/storage"
	"invoicer/pkg/pagination"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/semaphore"
)

// --- DTOs ---

// ExportOptions selects the document format and carries the assembler overrides.
type ExportOptions struct {
	Format string
	AssembleOptions
}

type InvoiceItemResponse struct {
	No          int    `json:"no"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Hours       string `json:"hours"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
}

type InvoiceResponse struct {
	ID            string                `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	IssueDate     string                `json:"issue_date"`
	DueDate       string                `json:"due_date"`
	CustomerID    uint                  `json:"customer_id"`
	CustomerName  string                `json:"customer_name"`
	Currency      string                `json:"currency"`
	TaxRate       string                `json:"tax_rate"`
	TotalHours    string                `json:"total_hours"`
	Subtotal      string                `json:"subtotal"`
	TaxAmount     string                `json:"tax_amount"`
	Total         string                `json:"total"`
	TotalDisplay  string                `json:"total_display"`
	Notes         string                `json:"notes"`
	PaymentTerms  string                `json:"payment_terms"`
	Format        string                `json:"format"`
	DownloadURL   string                `json:"download_url"`
	Items         []InvoiceItemResponse `json:"items"`
	CreatedAt     string                `json:"created_at"`
}

// InvoiceFile describes a rendered document ready to be streamed.
type InvoiceFile struct {
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
	MIMEType string `json:"mimeType"`
}

// DocumentRenderer writes an invoice document to path.
type DocumentRenderer interface {
	RenderToFile(inv *model.Invoice, path string) (string, error)
}

// --- Interface ---

type InvoiceService interface {
	CreateAndExport(ctx context.Context, customer *model.Customer, entries []model.BillableEntry, opts ExportOptions) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, customerID uint, page, limit int) ([]InvoiceResponse, int64, error)
	GetInvoice(ctx context.Context, invoiceNumber string) (InvoiceResponse, error)
	Download(ctx context.Context, invoiceNumber, format string) (InvoiceFile, error)
	DeleteInvoice(ctx context.Context, invoiceNumber string) error
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	auditRepo   repository.AuditRepository
	tx          repository.TransactionManager
	assembler   *Assembler
	renderer    DocumentRenderer
	store       *storage.ArtifactStore
	issuer      model.IssuerProfile
	renderSlots *semaphore.Weighted
	log         zerolog.Logger
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditRepository,
	tx repository.TransactionManager,
	assembler *Assembler,
	renderer DocumentRenderer,
	store *storage.ArtifactStore,
	issuer model.IssuerProfile,
	renderConcurrency int64,
	log zerolog.Logger,
) InvoiceService {
	if renderConcurrency < 1 {
		renderConcurrency = 1
	}
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		auditRepo:   auditRepo,
		tx:          tx,
		assembler:   assembler,
		renderer:    renderer,
		store:       store,
		issuer:      issuer,
		renderSlots: semaphore.NewWeighted(renderConcurrency),
		log:         log,
	}
}

// --- Implementation ---

func checkFormat(format string) (string, error) {
	if format == "" {
		return model.FormatXLSX, nil
	}
	if format != model.FormatXLSX {
		return "", apperror.NewUnsupportedFormat(format)
	}
	return format, nil
}

func (s *invoiceService) CreateAndExport(ctx context.Context, customer *model.Customer, entries []model.BillableEntry, opts ExportOptions) (InvoiceResponse, error) {
	format, err := checkFormat(opts.Format)
	if err != nil {
		return InvoiceResponse{}, err
	}

	inv, err := s.assembler.Assemble(ctx, customer, entries, s.issuer, opts.AssembleOptions)
	if err != nil {
		return InvoiceResponse{}, err
	}
	inv.Format = format

	// Past this check the artifact path is owned by this call.
	target := s.store.PathFor(inv.InvoiceNumber, format)
	if err := s.ensureUnissued(ctx, inv.InvoiceNumber, target); err != nil {
		return InvoiceResponse{}, err
	}

	path, err := s.renderFile(ctx, inv, target)
	if err != nil {
		return InvoiceResponse{}, err
	}
	inv.FilePath = path

	audit, err := newAuditLog(model.ActionInvoiceCreated, inv.InvoiceNumber, inv.Customer.Name, map[string]interface{}{
		"customer_id": inv.CustomerID,
		"items":       len(inv.Items),
		"total":       toInvoiceResponse(*inv).Total,
		"currency":    inv.Currency,
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.Create(txCtx, inv); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		if rmErr := s.store.Remove(path); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("invoice_number", inv.InvoiceNumber).Msg("Failed to clean up artifact")
		}
		return InvoiceResponse{}, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.log.Info().
		Str("invoice_number", inv.InvoiceNumber).
		Uint("customer_id", inv.CustomerID).
		Int("items", len(inv.Items)).
		Str("path", path).
		Msg("Invoice created")
	return toInvoiceResponse(*inv), nil
}

// ensureUnissued refuses a number that already has an invoice row or a document
// on disk. Both happen after an administrative sequence reset or when two
// prefixes sanitize to the same file name.
func (s *invoiceService) ensureUnissued(ctx context.Context, invoiceNumber, path string) error {
	_, err := s.invoiceRepo.FindByNumber(ctx, invoiceNumber)
	switch {
	case err == nil:
		return apperror.Invalid("invoice_number", invoiceNumber+" already exists")
	case !errors.Is(err, apperror.ErrNotFound):
		return fmt.Errorf("failed to check invoice %s: %w", invoiceNumber, err)
	}
	if s.store.Exists(path) {
		return apperror.Invalid("invoice_number", fmt.Sprintf("%s would overwrite existing document %s", invoiceNumber, filepath.Base(path)))
	}
	return nil
}

// renderFile bounds the number of documents rendered at once. Waiting for a
// slot honours ctx; the render itself runs to completion.
func (s *invoiceService) renderFile(ctx context.Context, inv *model.Invoice, path string) (string, error) {
	if err := s.renderSlots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for renderer: %w", err)
	}
	defer s.renderSlots.Release(1)

	out, err := s.renderer.RenderToFile(inv, path)
	if err != nil {
		return "", fmt.Errorf("failed to render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return out, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, customerID uint, page, limit int) ([]InvoiceResponse, int64, error) {
	page, limit = pageBounds(page, limit)
	invoices, total, err := s.invoiceRepo.List(ctx, customerID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, invoiceNumber string) (InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByNumber(ctx, invoiceNumber)
	if err != nil {
		return InvoiceResponse{}, err
	}
	return toInvoiceResponse(*inv), nil
}

// Download returns the stored document, re-rendering it from the invoice
// snapshot when the file has gone missing.
func (s *invoiceService) Download(ctx context.Context, invoiceNumber, format string) (InvoiceFile, error) {
	format, err := checkFormat(format)
	if err != nil {
		return InvoiceFile{}, err
	}

	inv, err := s.invoiceRepo.FindByNumber(ctx, invoiceNumber)
	if err != nil {
		return InvoiceFile{}, err
	}

	path := inv.FilePath
	if path == "" {
		path = s.store.PathFor(inv.InvoiceNumber, format)
	}
	if !s.store.Exists(path) {
		s.log.Info().Str("invoice_number", inv.InvoiceNumber).Msg("Artifact missing, re-rendering")
		if path, err = s.renderFile(ctx, inv, path); err != nil {
			return InvoiceFile{}, err
		}
	}

	return InvoiceFile{
		FilePath: path,
		FileName: storage.FileName(inv.InvoiceNumber, format),
		MIMEType: render.MIMEType,
	}, nil
}

// DeleteInvoice removes the record and its document. The number is not released.
func (s *invoiceService) DeleteInvoice(ctx context.Context, invoiceNumber string) error {
	inv, err := s.invoiceRepo.FindByNumber(ctx, invoiceNumber)
	if err != nil {
		return err
	}
	audit, err := newAuditLog(model.ActionInvoiceDeleted, inv.InvoiceNumber, inv.Customer.Name, map[string]interface{}{
		"customer_id": inv.CustomerID,
	})
	if err != nil {
		return err
	}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.DeleteByNumber(txCtx, invoiceNumber); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if err := s.store.Remove(inv.FilePath); err != nil {
		s.log.Warn().Err(err).Str("invoice_number", invoiceNumber).Msg("Invoice deleted but artifact could not be removed")
	}
	s.log.Info().Str("invoice_number", invoiceNumber).Msg("Invoice deleted")
	return nil
}

// --- Mapping ---

// DownloadURL is the HTTP path serving the invoice document.
func DownloadURL(customerID uint, invoiceNumber, format string) string {
	return fmt.Sprintf("/api/invoices/%d/download?invoiceNumber=%s&format=%s",
		customerID, url.QueryEscape(invoiceNumber), url.QueryEscape(format))
}

// pageBounds applies the default page and page size to unset values.
func pageBounds(page, limit int) (int, int) {
	if page <= 0 {
		page = pagination.DefaultPage
	}
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}
	return page, limit
}

// displayLocale formats the human-readable total.
const displayLocale = "en-US"

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate.UTC().Format(time.RFC3339),
		DueDate:       inv.DueDate.UTC().Format(time.RFC3339),
		CustomerID:    inv.CustomerID,
		CustomerName:  inv.Customer.Name,
		Currency:      inv.Currency,
		TaxRate:       decimal.NewFromFloat(inv.TaxRate).String(),
		Notes:         inv.Notes,
		PaymentTerms:  inv.PaymentTerms,
		Format:        inv.Format,
		DownloadURL:   DownloadURL(inv.CustomerID, inv.InvoiceNumber, inv.Format),
		Items:         make([]InvoiceItemResponse, 0, len(inv.Items)),
		CreatedAt:     inv.CreatedAt.UTC().Format(time.RFC3339),
	}

	// Stored entries were validated at creation, so the errors below cannot occur
	// for persisted invoices.
	var subtotal float64
	for i, item := range inv.Items {
		hours, _ := calculator.Duration(item)
		amount, _ := calculator.Amount(item)
		subtotal += amount
		resp.Items = append(resp.Items, InvoiceItemResponse{
			No:          i + 1,
			Description: item.Description,
			StartTime:   item.StartTime.UTC().Format(time.RFC3339),
			EndTime:     item.EndTime.UTC().Format(time.RFC3339),
			Hours:       money(hours),
			Rate:        money(item.Rate),
			Amount:      money(amount),
		})
	}
	hoursTotal, _ := calculator.TotalDuration(inv.Items)
	tax := calculator.TaxAmount(subtotal, inv.TaxRate)
	total := calculator.Total(subtotal, tax)
	resp.TotalHours = money(hoursTotal)
	resp.Subtotal = money(subtotal)
	resp.TaxAmount = money(tax)
	resp.Total = money(total)
	if display, err := calculator.FormatCurrency(total, inv.Currency, displayLocale); err == nil {
		resp.TotalDisplay = display
	}
	return resp
}
