package render

import (
	"fmt"
	"os"
	"strconv"

	// Decoders for the logo formats excelize can embed.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"invoicer/internal/calculator"
	"invoicer/internal/model"

	"github.com/xuri/excelize/v2"
)

const dateLayout = "01/02/2006"

var columnWidths = []struct {
	col   string
	width float64
}{
	{"A", 5}, {"B", 30}, {"C", 15}, {"D", 15}, {"E", 15},
}

var tableColumns = []string{"A", "B", "C", "D", "E"}

type styleSet struct {
	company    int
	title      int
	bold       int
	header     int
	index      int
	text       int
	hours      int
	money      int
	totalLabel int
	totalValue int
	grandTotal int
}

// sheetWriter keeps the first error and turns later calls into no-ops, so the
// layout reads top to bottom without a check after every cell.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	styles styleSet
	err    error
}

func newSheetWriter(f *excelize.File, sheet, currency string) (*sheetWriter, error) {
	w := &sheetWriter{f: f, sheet: sheet}
	for _, c := range columnWidths {
		if err := f.SetColWidth(sheet, c.col, c.col, c.width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}
	styles, err := buildStyles(f, currency)
	if err != nil {
		return nil, err
	}
	w.styles = styles
	return w, nil
}

func buildStyles(f *excelize.File, currency string) (styleSet, error) {
	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	hoursFmt := "0.00"
	moneyFmt := fmt.Sprintf(`#,##0.00 "%s"`, currency)
	center := &excelize.Alignment{Horizontal: "center"}
	right := &excelize.Alignment{Horizontal: "right"}

	defs := []*excelize.Style{
		{Font: &excelize.Font{Bold: true, Size: 14}},
		{Font: &excelize.Font{Bold: true, Size: 18}, Alignment: center},
		{Font: &excelize.Font{Bold: true}},
		{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E0E0E0"}},
			Border:    thin,
			Alignment: center,
		},
		{Border: thin, Alignment: center},
		{Border: thin},
		{Border: thin, Alignment: right, CustomNumFmt: &hoursFmt},
		{Border: thin, Alignment: right, CustomNumFmt: &moneyFmt},
		{Font: &excelize.Font{Bold: true}, Alignment: right},
		{Alignment: right, CustomNumFmt: &moneyFmt},
		{Font: &excelize.Font{Bold: true}, Alignment: right, CustomNumFmt: &moneyFmt},
	}

	var s styleSet
	targets := []*int{
		&s.company, &s.title, &s.bold, &s.header, &s.index, &s.text,
		&s.hours, &s.money, &s.totalLabel, &s.totalValue, &s.grandTotal,
	}
	for i, d := range defs {
		id, err := f.NewStyle(d)
		if err != nil {
			return styleSet{}, fmt.Errorf("failed to create style: %w", err)
		}
		*targets[i] = id
	}
	return s, nil
}

func cell(col string, row int) string {
	return col + strconv.Itoa(row)
}

func (w *sheetWriter) set(col string, row int, value interface{}) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell(col, row), value)
}

func (w *sheetWriter) style(col string, row, style int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, cell(col, row), cell(col, row), style)
}

func (w *sheetWriter) merge(from, to string, row int) {
	if w.err != nil {
		return
	}
	w.err = w.f.MergeCell(w.sheet, cell(from, row), cell(to, row))
}

// line writes a merged single-value row.
func (w *sheetWriter) line(from, to string, row int, value interface{}, style int) {
	w.merge(from, to, row)
	w.set(from, row, value)
	if style != 0 {
		w.style(from, row, style)
	}
}

func (r *Renderer) layout(w *sheetWriter, inv *model.Invoice, sums totals) error {
	row := 1
	st := w.styles

	if r.opts.EmbedLogo && inv.Issuer.LogoPath != "" && r.addLogo(w, inv) {
		row += 5
	}

	issuer := inv.Issuer
	w.line("A", "C", row, issuer.Company, st.company)
	row++
	w.line("A", "C", row, issuer.Address, 0)
	row++
	w.line("A", "C", row, fmt.Sprintf("Phone: %s | Email: %s", issuer.Phone, issuer.Email), 0)
	row++
	if issuer.Website != "" {
		w.line("A", "C", row, "Website: "+issuer.Website, 0)
		row++
	}
	if issuer.TaxID != "" {
		w.line("A", "C", row, "VAT ID: "+issuer.TaxID, 0)
		row++
	}
	row += 2

	w.line("A", "E", row, "INVOICE", st.title)
	row += 2

	meta := []struct{ label, value string }{
		{"Invoice Number:", inv.InvoiceNumber},
		{"Invoice Date:", inv.IssueDate.UTC().Format(dateLayout)},
		{"Due Date:", inv.DueDate.UTC().Format(dateLayout)},
	}
	for i, m := range meta {
		w.line("A", "B", row, m.label, st.bold)
		w.line("C", "E", row, m.value, 0)
		if i < len(meta)-1 {
			row++
		}
	}
	row += 2

	customer := inv.Customer
	w.line("A", "E", row, "BILL TO:", st.bold)
	row++
	w.line("A", "E", row, customer.Name, st.bold)
	row++
	w.line("A", "E", row, customer.Address, 0)
	row++
	w.line("A", "E", row, "Email: "+customer.Email, 0)
	row++
	if customer.Phone != "" {
		w.line("A", "E", row, "Phone: "+customer.Phone, 0)
		row++
	}
	if customer.TaxID != "" {
		w.line("A", "E", row, "VAT ID: "+customer.TaxID, 0)
		row++
	}
	row += 2

	for i, title := range []string{"No.", "Description", "Hours", "Rate", "Amount"} {
		w.set(tableColumns[i], row, title)
		w.style(tableColumns[i], row, st.header)
	}
	row++

	for i, item := range inv.Items {
		hours, err := calculator.Duration(item)
		if err != nil {
			return err
		}
		amount, err := calculator.Amount(item)
		if err != nil {
			return err
		}
		w.set("A", row, i+1)
		w.style("A", row, st.index)
		w.set("B", row, item.Description)
		w.style("B", row, st.text)
		w.set("C", row, calculator.Round(hours, 2))
		w.style("C", row, st.hours)
		w.set("D", row, item.Rate)
		w.style("D", row, st.money)
		w.set("E", row, calculator.Round(amount, 2))
		w.style("E", row, st.money)
		row++
	}

	subtotalRow := row + 1
	summary := []struct {
		label string
		value float64
		style int
	}{
		{"Subtotal:", sums.subtotal, st.totalValue},
		{fmt.Sprintf("Tax (%s%%):", strconv.FormatFloat(inv.TaxRate, 'f', -1, 64)), sums.tax, st.totalValue},
		{"Total:", sums.total, st.grandTotal},
	}
	for i, s := range summary {
		at := subtotalRow + i
		w.line("A", "D", at, s.label, st.totalLabel)
		w.set("E", at, calculator.Round(s.value, 2))
		w.style("E", at, s.style)
	}
	totalRow := subtotalRow + len(summary) - 1

	if inv.Notes != "" || inv.PaymentTerms != "" {
		notesRow := totalRow + 3
		if inv.Notes != "" {
			w.line("A", "E", notesRow, "Notes:", st.bold)
			w.line("A", "E", notesRow+1, inv.Notes, 0)
		}
		if inv.PaymentTerms != "" {
			termsRow := notesRow
			if inv.Notes != "" {
				termsRow = notesRow + 3
			}
			w.line("A", "E", termsRow, "Payment Terms:", st.bold)
			w.line("A", "E", termsRow+1, inv.PaymentTerms, 0)
		}
	}

	return w.err
}

// addLogo embeds the issuer logo at A1. Failures are logged, never returned.
func (r *Renderer) addLogo(w *sheetWriter, inv *model.Invoice) bool {
	path := inv.Issuer.LogoPath
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		r.log.Warn().Err(err).Str("logo", path).Str("invoice_number", inv.InvoiceNumber).Msg("Logo not found, rendering without it")
		return false
	}
	opts := &excelize.GraphicOptions{OffsetX: 5, OffsetY: 5, LockAspectRatio: true, Positioning: "oneCell"}
	if err := w.f.AddPicture(w.sheet, "A1", path, opts); err != nil {
		r.log.Warn().Err(err).Str("logo", path).Str("invoice_number", inv.InvoiceNumber).Msg("Failed to embed logo, rendering without it")
		return false
	}
	return true
}
