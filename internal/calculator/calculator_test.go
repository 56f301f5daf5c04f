package calculator

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/model"
)

const tolerance = 1e-9

func entry(id uint, start time.Time, d time.Duration, rate float64) model.BillableEntry {
	return model.BillableEntry{ID: id, Description: "work", StartTime: start, EndTime: start.Add(d), Rate: rate}
}

func TestDurationAndAmount(t *testing.T) {
	start := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		span   time.Duration
		rate   float64
		hours  float64
		amount float64
	}{
		{"three hours", 3 * time.Hour, 50, 3, 150},
		{"ninety minutes", 90 * time.Minute, 45, 1.5, 67.5},
		{"zero length", 0, 70, 0, 0},
		{"twenty minutes", 20 * time.Minute, 60, 1.0 / 3.0, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := entry(1, start, tc.span, tc.rate)
			hours, err := Duration(e)
			if err != nil {
				t.Fatalf("Duration: %v", err)
			}
			if math.Abs(hours-tc.hours) > tolerance {
				t.Fatalf("hours = %v, want %v", hours, tc.hours)
			}
			amount, err := Amount(e)
			if err != nil {
				t.Fatalf("Amount: %v", err)
			}
			if math.Abs(amount-hours*tc.rate) > tolerance || math.Abs(amount-tc.amount) > tolerance {
				t.Fatalf("amount = %v, want %v", amount, tc.amount)
			}
		})
	}
}

func TestDurationAcrossZonesIsElapsedTime(t *testing.T) {
	hcm := time.FixedZone("ICT", 7*3600)
	start := time.Date(2025, 2, 1, 16, 0, 0, 0, hcm) // 09:00 UTC
	end := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	hours, err := Duration(model.BillableEntry{StartTime: start, EndTime: end})
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if hours != 3 {
		t.Fatalf("hours = %v, want 3", hours)
	}
}

func TestDurationRejectsInvertedRange(t *testing.T) {
	start := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	e := model.BillableEntry{ID: 7, StartTime: start, EndTime: start.Add(-time.Minute), Rate: 10}

	if _, err := Duration(e); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := Amount(e); !errors.Is(err, apperror.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange from Amount, got %v", err)
	}
	if _, err := Subtotal([]model.BillableEntry{e}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange from Subtotal, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	start := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	entries := []model.BillableEntry{
		entry(1, start, 3*time.Hour, 50),
		entry(2, start.Add(24*time.Hour), 4*time.Hour, 60),
		entry(3, start.Add(48*time.Hour), 90*time.Minute, 45),
		entry(4, start.Add(72*time.Hour), 4*time.Hour, 55),
		entry(5, start.Add(96*time.Hour), time.Hour, 70),
	}

	subtotal, err := Subtotal(entries)
	if err != nil {
		t.Fatalf("Subtotal: %v", err)
	}
	var want float64
	for _, e := range entries {
		a, _ := Amount(e)
		want += a
	}
	if math.Abs(subtotal-want) > tolerance || math.Abs(subtotal-747.5) > tolerance {
		t.Fatalf("subtotal = %v, want 747.5", subtotal)
	}

	tax := TaxAmount(subtotal, 10)
	if math.Abs(tax-subtotal*10/100) > tolerance {
		t.Fatalf("tax = %v", tax)
	}
	if total := Total(subtotal, tax); math.Abs(total-(subtotal+tax)) > tolerance {
		t.Fatalf("total = %v", total)
	}

	hours, err := TotalDuration(entries)
	if err != nil {
		t.Fatalf("TotalDuration: %v", err)
	}
	if math.Abs(hours-13.5) > tolerance {
		t.Fatalf("total hours = %v, want 13.5", hours)
	}
}

func TestSubtotalOfNoEntriesIsZero(t *testing.T) {
	subtotal, err := Subtotal(nil)
	if err != nil || subtotal != 0 {
		t.Fatalf("Subtotal(nil) = %v, %v", subtotal, err)
	}
}

// Values are rounded at their shortest decimal representation, so the classic
// binary-float traps round up like the printed number suggests.
func TestRound(t *testing.T) {
	cases := []struct {
		in   float64
		dec  int32
		want float64
	}{
		{2.005, 2, 2.01},
		{10.005, 2, 10.01},
		{1.005, 2, 1.01},
		{2.004, 2, 2.0},
		{165, 2, 165},
		{0.125, 2, 0.13},
		{-0.125, 2, -0.13},
		{1.0 / 3.0, 2, 0.33},
		{2.5, 0, 3},
	}
	for _, tc := range cases {
		if got := Round(tc.in, tc.dec); got != tc.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tc.in, tc.dec, got, tc.want)
		}
	}
}

func TestFixed(t *testing.T) {
	if got := Fixed(150, 2); got != "150.00" {
		t.Fatalf("Fixed(150) = %q", got)
	}
	if got := Fixed(10.005, 2); got != "10.01" {
		t.Fatalf("Fixed(10.005) = %q", got)
	}
}

func TestFormatCurrency(t *testing.T) {
	got, err := FormatCurrency(1234.5, "usd", "en-US")
	if err != nil {
		t.Fatalf("FormatCurrency: %v", err)
	}
	if !strings.Contains(got, "1,234.50") || !strings.Contains(got, "$") {
		t.Fatalf("FormatCurrency = %q", got)
	}

	if _, err := FormatCurrency(1, "ZZZ1", "en-US"); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for bad code, got %v", err)
	}
}
