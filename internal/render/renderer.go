// Package render lays an invoice out as an XLSX workbook.
package render

import (
	"fmt"
	"time"

	"invoicer/internal/calculator"
	"invoicer/internal/model"
	"invoicer/internal/storage"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// SheetName is the single worksheet of every invoice document.
const SheetName = "Invoice"

// Creator is written to the document properties.
const Creator = "Invoice Service"

// MIMEType of the rendered document.
const MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Options control optional parts of the layout.
type Options struct {
	// EmbedLogo places the issuer logo above the header when the file is readable.
	// A missing or broken logo is logged and skipped.
	EmbedLogo bool
}

// DefaultOptions embeds the logo when one is configured.
func DefaultOptions() Options {
	return Options{EmbedLogo: true}
}

// Renderer is safe for concurrent use; each call builds its own workbook.
type Renderer struct {
	opts Options
	log  zerolog.Logger
}

func NewRenderer(opts Options, log zerolog.Logger) *Renderer {
	return &Renderer{opts: opts, log: log}
}

// totals are computed once per render from the unrounded item amounts.
type totals struct {
	subtotal float64
	tax      float64
	total    float64
}

func computeTotals(inv *model.Invoice) (totals, error) {
	subtotal, err := calculator.Subtotal(inv.Items)
	if err != nil {
		return totals{}, err
	}
	tax := calculator.TaxAmount(subtotal, inv.TaxRate)
	return totals{subtotal: subtotal, tax: tax, total: calculator.Total(subtotal, tax)}, nil
}

// Render returns the workbook bytes. The same invoice always yields the same bytes.
func (r *Renderer) Render(inv *model.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("render: nil invoice")
	}
	sums, err := computeTotals(inv)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", inv.InvoiceNumber, err)
	}

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("render %s: %w", inv.InvoiceNumber, err)
	}

	w, err := newSheetWriter(f, SheetName, inv.Currency)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", inv.InvoiceNumber, err)
	}
	if err := r.layout(w, inv, sums); err != nil {
		return nil, fmt.Errorf("render %s: %w", inv.InvoiceNumber, err)
	}
	if err := setDocument(f, inv); err != nil {
		return nil, fmt.Errorf("render %s: %w", inv.InvoiceNumber, err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render %s: failed to serialize workbook: %w", inv.InvoiceNumber, err)
	}
	out, err := canonicalize(buf.Bytes(), inv.IssueDate.UTC())
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", inv.InvoiceNumber, err)
	}

	r.log.Debug().
		Str("invoice_number", inv.InvoiceNumber).
		Int("items", len(inv.Items)).
		Int("bytes", len(out)).
		Msg("Invoice rendered")
	return out, nil
}

// RenderToFile renders inv and writes it to path, replacing any previous file
// only once the new document is complete. It returns path.
func (r *Renderer) RenderToFile(inv *model.Invoice, path string) (string, error) {
	data, err := r.Render(inv)
	if err != nil {
		return "", err
	}
	if err := storage.WriteAtomic(path, data); err != nil {
		return "", fmt.Errorf("render %s: %w", inv.InvoiceNumber, err)
	}
	return path, nil
}

func setDocument(f *excelize.File, inv *model.Invoice) error {
	stamp := inv.IssueDate.UTC().Format(time.RFC3339)
	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:        Creator,
		LastModifiedBy: Creator,
		Created:        stamp,
		Modified:       stamp,
		Title:          "Invoice " + inv.InvoiceNumber,
	}); err != nil {
		return fmt.Errorf("failed to set document properties: %w", err)
	}

	a4 := 9
	portrait := "portrait"
	oneWide, anyTall := 1, 0
	if err := f.SetPageLayout(SheetName, &excelize.PageLayoutOptions{
		Size:        &a4,
		Orientation: &portrait,
		FitToWidth:  &oneWide,
		FitToHeight: &anyTall,
	}); err != nil {
		return fmt.Errorf("failed to set page layout: %w", err)
	}
	fit := true
	if err := f.SetSheetProps(SheetName, &excelize.SheetPropsOptions{FitToPage: &fit}); err != nil {
		return fmt.Errorf("failed to set sheet properties: %w", err)
	}
	return nil
}
