package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/calculator"
	"invoicer/internal/model"
	"invoicer/internal/sequence"

	"golang.org/x/text/currency"
)

// InvoiceDefaults fill the options a caller leaves empty.
type InvoiceDefaults struct {
	TaxRate      float64 // percent
	Currency     string
	PaymentTerms string
	DueDays      int
}

func DefaultInvoiceDefaults() InvoiceDefaults {
	return InvoiceDefaults{
		TaxRate:      10,
		Currency:     "USD",
		PaymentTerms: "Payment due within 30 days",
		DueDays:      30,
	}
}

// AssembleOptions are per-invoice overrides. A nil TaxRate means the default;
// an explicit zero is a valid tax-free invoice.
type AssembleOptions struct {
	TaxRate      *float64
	Currency     string
	Notes        string
	PaymentTerms string
}

// Assembler turns a customer and its billable entries into an issued invoice record.
type Assembler struct {
	allocator *sequence.Allocator
	defaults  InvoiceDefaults
	now       func() time.Time
}

func NewAssembler(allocator *sequence.Allocator, defaults InvoiceDefaults) *Assembler {
	return &Assembler{allocator: allocator, defaults: defaults, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// Assemble validates the input and, only if it is valid, allocates the next
// invoice number. The entries are copied in the order given; they are not
// checked against the customer or any project.
func (a *Assembler) Assemble(ctx context.Context, customer *model.Customer, entries []model.BillableEntry, issuer model.IssuerProfile, opts AssembleOptions) (*model.Invoice, error) {
	if customer == nil {
		return nil, apperror.Invalid("customer", "is required")
	}

	taxRate := a.defaults.TaxRate
	if opts.TaxRate != nil {
		taxRate = *opts.TaxRate
	}
	if taxRate < 0 || math.IsNaN(taxRate) || math.IsInf(taxRate, 0) {
		return nil, apperror.Invalid("taxRate", fmt.Sprintf("must be a non-negative number, got %v", taxRate))
	}

	code, err := a.resolveCurrency(opts.Currency)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Rate < 0 {
			return nil, apperror.Invalid("rate", fmt.Sprintf("of entry %d must not be negative", e.ID))
		}
		if _, err := calculator.Duration(e); err != nil {
			return nil, err
		}
	}

	terms := opts.PaymentTerms
	if terms == "" {
		terms = a.defaults.PaymentTerms
	}

	number, err := a.allocator.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate invoice number: %w", err)
	}

	issued := a.now().UTC()
	items := make([]model.BillableEntry, len(entries))
	copy(items, entries)

	return &model.Invoice{
		InvoiceNumber: number,
		IssueDate:     issued,
		DueDate:       issued.AddDate(0, 0, a.defaults.DueDays),
		IssuerID:      issuer.ID,
		Issuer:        issuer,
		CustomerID:    customer.ID,
		Customer:      *customer,
		Items:         items,
		TaxRate:       taxRate,
		Currency:      code,
		Notes:         opts.Notes,
		PaymentTerms:  terms,
		Format:        model.FormatXLSX,
	}, nil
}

func (a *Assembler) resolveCurrency(requested string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(requested))
	if code == "" {
		code = a.defaults.Currency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", apperror.Invalid("currency", fmt.Sprintf("%q is not an ISO 4217 code", requested))
	}
	return unit.String(), nil
}
