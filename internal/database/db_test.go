package database

import (
	"path/filepath"
	"testing"

	"invoicer/internal/model"
)

func TestNewConnectionSQLiteMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "invoicer.db")
	db, err := NewConnection("sqlite", path)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	for _, m := range []interface{}{&model.Customer{}, &model.TimeEntry{}, &model.Invoice{}, &model.Notification{}, &model.InvoiceSequence{}, &model.IssuerProfile{}} {
		if !db.Migrator().HasTable(m) {
			t.Fatalf("table for %T not created", m)
		}
	}
}

func TestNewConnectionRejectsUnknownDriver(t *testing.T) {
	if _, err := NewConnection("mysql", "x"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
