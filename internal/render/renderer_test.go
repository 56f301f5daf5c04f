package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/model"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

func sampleInvoice() *model.Invoice {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &model.Invoice{
		InvoiceNumber: "INV-10001",
		IssueDate:     issued,
		DueDate:       issued.AddDate(0, 0, 30),
		Issuer: model.IssuerProfile{
			Company: "Kimai Time Tracking",
			Address: "123 Kimai Street, Kimai City, 10001",
			Phone:   "(123) 456-7890",
			Email:   "info@kimai.org",
			Website: "https://www.kimai.org",
			TaxID:   "VAT-987654321",
		},
		Customer: model.Customer{
			ID:      1,
			Name:    "ACME Corporation",
			Address: "123 Business Street, Business City, 10001",
			Email:   "contact@acme.com",
			Phone:   "(123) 456-7890",
			TaxID:   "VAT-12345678",
		},
		Items: []model.BillableEntry{{
			ID:          1,
			Description: "Development",
			StartTime:   time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
			EndTime:     time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
			Rate:        50,
		}},
		TaxRate:      10,
		Currency:     "USD",
		PaymentTerms: "Payment due within 30 days",
		Format:       model.FormatXLSX,
	}
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open rendered workbook: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func raw(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(SheetName, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue(%s): %v", cell, err)
	}
	return v
}

func TestRenderLayout(t *testing.T) {
	r := NewRenderer(DefaultOptions(), zerolog.Nop())
	data, err := r.Render(sampleInvoice())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	f := openWorkbook(t, data)

	want := map[string]string{
		"A1":  "Kimai Time Tracking",
		"A2":  "123 Kimai Street, Kimai City, 10001",
		"A3":  "Phone: (123) 456-7890 | Email: info@kimai.org",
		"A4":  "Website: https://www.kimai.org",
		"A5":  "VAT ID: VAT-987654321",
		"A8":  "INVOICE",
		"A10": "Invoice Number:",
		"C10": "INV-10001",
		"A11": "Invoice Date:",
		"C11": "03/01/2025",
		"A12": "Due Date:",
		"C12": "03/31/2025",
		"A14": "BILL TO:",
		"A15": "ACME Corporation",
		"A16": "123 Business Street, Business City, 10001",
		"A17": "Email: contact@acme.com",
		"A18": "Phone: (123) 456-7890",
		"A19": "VAT ID: VAT-12345678",
		"A22": "No.",
		"B22": "Description",
		"C22": "Hours",
		"D22": "Rate",
		"E22": "Amount",
		"A23": "1",
		"B23": "Development",
		"C23": "3",
		"D23": "50",
		"E23": "150",
		"A25": "Subtotal:",
		"E25": "150",
		"A26": "Tax (10%):",
		"E26": "15",
		"A27": "Total:",
		"E27": "165",
		"A30": "Payment Terms:",
		"A31": "Payment due within 30 days",
	}
	for cell, v := range want {
		if got := raw(t, f, cell); got != v {
			t.Errorf("%s = %q, want %q", cell, got, v)
		}
	}

	merged, err := f.GetMergeCells(SheetName)
	if err != nil {
		t.Fatalf("GetMergeCells: %v", err)
	}
	ranges := make(map[string]bool)
	for _, m := range merged {
		ranges[m.GetStartAxis()+":"+m.GetEndAxis()] = true
	}
	for _, rng := range []string{"A1:C1", "A8:E8", "A10:B10", "C10:E10", "A14:E14", "A25:D25", "A27:D27", "A30:E30"} {
		if !ranges[rng] {
			t.Errorf("expected merged range %s", rng)
		}
	}

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets = %v", sheets)
	}
	if w, _ := f.GetColWidth(SheetName, "B"); w != 30 {
		t.Fatalf("column B width = %v", w)
	}

	props, err := f.GetDocProps()
	if err != nil {
		t.Fatalf("GetDocProps: %v", err)
	}
	if props.Creator != Creator || !strings.HasPrefix(props.Created, "2025-03-01T12:00:00") {
		t.Fatalf("doc props = %+v", props)
	}
}

func TestRenderNotesAndOptionalFields(t *testing.T) {
	inv := sampleInvoice()
	inv.Issuer.Website = ""
	inv.Issuer.TaxID = ""
	inv.Customer.Phone = ""
	inv.Customer.TaxID = ""
	inv.Notes = "Thank you for your business"
	inv.TaxRate = 7.5

	data, err := NewRenderer(DefaultOptions(), zerolog.Nop()).Render(inv)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	f := openWorkbook(t, data)

	// Header shrinks by two rows and the customer block by two more.
	want := map[string]string{
		"A6":  "INVOICE",
		"A12": "BILL TO:",
		"A18": "No.",
		"B19": "Development",
		"A22": "Tax (7.5%):",
		"E22": "11.25",
		"E23": "161.25",
		"A26": "Notes:",
		"A27": "Thank you for your business",
		"A29": "Payment Terms:",
		"A30": "Payment due within 30 days",
	}
	for cell, v := range want {
		if got := raw(t, f, cell); got != v {
			t.Errorf("%s = %q, want %q", cell, got, v)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	a, err := NewRenderer(DefaultOptions(), zerolog.Nop()).Render(sampleInvoice())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	b, err := NewRenderer(DefaultOptions(), zerolog.Nop()).Render(sampleInvoice())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("rendering the same invoice twice produced different bytes")
	}
}

func TestRenderRejectsInvertedEntry(t *testing.T) {
	inv := sampleInvoice()
	inv.Items[0].EndTime = inv.Items[0].StartTime.Add(-time.Hour)
	if _, err := NewRenderer(DefaultOptions(), zerolog.Nop()).Render(inv); !errors.Is(err, apperror.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestMissingLogoIsLoggedAndSkipped(t *testing.T) {
	var logs bytes.Buffer
	inv := sampleInvoice()
	inv.Issuer.LogoPath = filepath.Join(t.TempDir(), "missing.png")

	data, err := NewRenderer(DefaultOptions(), zerolog.New(&logs)).Render(inv)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := raw(t, openWorkbook(t, data), "A1"); got != "Kimai Time Tracking" {
		t.Fatalf("A1 = %q", got)
	}
	if !strings.Contains(logs.String(), "Logo not found") {
		t.Fatalf("expected a warning, got %q", logs.String())
	}
}

func TestLogoShiftsHeader(t *testing.T) {
	logo := filepath.Join(t.TempDir(), "logo.png")
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	fh, err := os.Create(logo)
	if err != nil {
		t.Fatalf("create logo: %v", err)
	}
	if err := png.Encode(fh, img); err != nil {
		t.Fatalf("encode logo: %v", err)
	}
	_ = fh.Close()

	inv := sampleInvoice()
	inv.Issuer.LogoPath = logo

	data, err := NewRenderer(DefaultOptions(), zerolog.Nop()).Render(inv)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	f := openWorkbook(t, data)
	if got := raw(t, f, "A6"); got != "Kimai Time Tracking" {
		t.Fatalf("A6 = %q", got)
	}
	pics, err := f.GetPictures(SheetName, "A1")
	if err != nil || len(pics) != 1 {
		t.Fatalf("GetPictures = %d, %v", len(pics), err)
	}

	// With embedding disabled the configured logo is ignored.
	data, err = NewRenderer(Options{EmbedLogo: false}, zerolog.Nop()).Render(inv)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := raw(t, openWorkbook(t, data), "A1"); got != "Kimai Time Tracking" {
		t.Fatalf("A1 without logo = %q", got)
	}
}

func TestRenderToFile(t *testing.T) {
	r := NewRenderer(DefaultOptions(), zerolog.Nop())
	path := filepath.Join(t.TempDir(), "invoices", "INV_10001.xlsx")

	got, err := r.RenderToFile(sampleInvoice(), path)
	if err != nil {
		t.Fatalf("RenderToFile: %v", err)
	}
	if got != path {
		t.Fatalf("returned %q, want %q", got, path)
	}
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	inMemory, _ := r.Render(sampleInvoice())
	if !bytes.Equal(onDisk, inMemory) {
		t.Fatalf("file content differs from Render output")
	}
}
