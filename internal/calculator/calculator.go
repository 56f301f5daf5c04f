// Package calculator holds the pure billing arithmetic used by the assembler and the renderer.
// Every function works on unrounded float64 values; Round is applied only when presenting.
package calculator

import (
	"fmt"
	"strings"

	"invoicer/internal/apperror"
	"invoicer/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrInvalidRange is returned when an entry ends before it starts.
var ErrInvalidRange = apperror.ErrInvalidRange

// Duration returns the elapsed hours of an entry.
func Duration(e model.BillableEntry) (float64, error) {
	if e.EndTime.Before(e.StartTime) {
		return 0, fmt.Errorf("entry %d: %w", e.ID, ErrInvalidRange)
	}
	return e.EndTime.Sub(e.StartTime).Hours(), nil
}

// Amount returns duration × rate.
func Amount(e model.BillableEntry) (float64, error) {
	hours, err := Duration(e)
	if err != nil {
		return 0, err
	}
	return hours * e.Rate, nil
}

// Subtotal sums the amounts of all entries.
func Subtotal(entries []model.BillableEntry) (float64, error) {
	var sum float64
	for _, e := range entries {
		amount, err := Amount(e)
		if err != nil {
			return 0, err
		}
		sum += amount
	}
	return sum, nil
}

// TotalDuration sums the hours of all entries.
func TotalDuration(entries []model.BillableEntry) (float64, error) {
	var sum float64
	for _, e := range entries {
		hours, err := Duration(e)
		if err != nil {
			return 0, err
		}
		sum += hours
	}
	return sum, nil
}

// TaxAmount applies a percentage rate.
func TaxAmount(subtotal, ratePercent float64) float64 {
	return subtotal * (ratePercent / 100)
}

// Total adds tax to the subtotal.
func Total(subtotal, taxAmount float64) float64 {
	return subtotal + taxAmount
}

// Round rounds half away from zero to the given number of decimals. The value is
// taken at its shortest decimal representation, so Round(2.005, 2) is 2.01 even
// though the binary float is slightly below 2.005.
func Round(value float64, decimals int32) float64 {
	return decimal.NewFromFloat(value).Round(decimals).InexactFloat64()
}

// Fixed formats a value rounded with Round using exactly the given decimals.
func Fixed(value float64, decimals int32) string {
	return decimal.NewFromFloat(value).StringFixed(decimals)
}

// FormatCurrency renders an amount for display, e.g. "$1,234.50" for USD in en-US.
// It never feeds back into computation.
func FormatCurrency(amount float64, currencyCode, locale string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(currencyCode))
	if err != nil {
		return "", apperror.Invalid("currency", fmt.Sprintf("%q is not an ISO 4217 code", currencyCode))
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}

	scale, _ := currency.Standard.Rounding(unit)
	rounded := Round(amount, int32(scale))

	p := message.NewPrinter(tag)
	symbol := p.Sprint(currency.Symbol(unit))
	return symbol + p.Sprint(number.Decimal(rounded, number.Scale(scale))), nil
}
