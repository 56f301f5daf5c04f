package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("lookup failed: %w", NewNotFound("invoice", "INV-10001"))

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is(err, ErrNotFound)")
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *NotFoundError in chain")
	}
	if nf.Entity != "invoice" || nf.Key != "INV-10001" {
		t.Fatalf("unexpected error fields: %+v", nf)
	}
	if got := nf.Error(); got != "invoice INV-10001 not found" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUnsupportedFormatMessage(t *testing.T) {
	err := NewUnsupportedFormat("pdf")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected errors.Is(err, ErrUnsupportedFormat)")
	}
	if got := err.Error(); got != "format pdf is not supported" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestInvalidWrapsSentinel(t *testing.T) {
	err := Invalid("tax_rate", "must not be negative")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("did not expect ErrNotFound")
	}
}
