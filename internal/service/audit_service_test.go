package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/model"
	"invoicer/internal/render"
	"invoicer/internal/repository"
	"invoicer/internal/sequence"
	"invoicer/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestInvoiceLifecycleIsAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.HandleCreateInvoice(ctx, f.createCommand("xlsx"))
	f.gateway.HandleDeleteInvoice(ctx, "INV-10001")

	logs, total, err := NewAuditService(f.auditRepo).GetAuditLogs(ctx, 0, 0)
	if err != nil {
		t.Fatalf("GetAuditLogs: %v", err)
	}
	if total != 2 || logs[0].Action != model.ActionInvoiceDeleted || logs[1].Action != model.ActionInvoiceCreated {
		t.Fatalf("logs = %+v", logs)
	}
	if logs[1].EntityID != "INV-10001" || logs[1].EntityName != "ACME Corporation" {
		t.Fatalf("created entry = %+v", logs[1])
	}
	if logs[1].Details != `{"currency":"USD","customer_id":1,"items":1,"total":"165.00"}` {
		t.Fatalf("details = %s", logs[1].Details)
	}
}

func TestAuditRecord(t *testing.T) {
	ctx := context.Background()
	svc := NewAuditService(repository.NewMemoryAuditRepository())
	if err := svc.Record(ctx, model.ActionSequenceReset, "INV-", "", map[string]int64{"value": 20001}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := svc.Record(ctx, model.ActionSequenceReset, "INV-", "", func() {}); err == nil {
		t.Fatalf("expected an error for unserializable details")
	}
	logs, total, _ := svc.GetAuditLogs(ctx, 1, 10)
	if total != 1 || logs[0].Details != `{"value":20001}` {
		t.Fatalf("logs = %+v", logs)
	}
}

type failingAudit struct {
	repository.AuditRepository
}

func (failingAudit) Log(context.Context, *model.AuditLog) error {
	return errors.New("audit table locked")
}

func TestFailedAuditRollsBackInvoice(t *testing.T) {
	ctx := context.Background()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.AutoMigrate(&model.Invoice{}, &model.AuditLog{}, &model.InvoiceSequence{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	alloc, err := sequence.NewAllocator(ctx, sequence.NewGenerator("INV-", 10001, 5), repository.NewSequenceRepository(db))
	if err != nil {
		t.Fatalf("NewAllocator: %v", err)
	}
	dir := t.TempDir()
	store, err := storage.NewArtifactStore(dir)
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}
	invoices := repository.NewInvoiceRepository(db)
	svc := NewInvoiceService(
		invoices,
		failingAudit{repository.NewAuditRepository(db)},
		repository.NewTransactionManager(db),
		NewAssembler(alloc, DefaultInvoiceDefaults()).WithClock(func() time.Time { return fixedNow }),
		render.NewRenderer(render.DefaultOptions(), zerolog.Nop()),
		store,
		model.IssuerProfile{ID: 1, Company: "Kimai"},
		1,
		zerolog.Nop(),
	)

	_, err = svc.CreateAndExport(ctx, &model.Customer{ID: 1, Name: "ACME"}, billable(), ExportOptions{})
	if err == nil {
		t.Fatalf("expected the failed audit to fail the create")
	}
	if _, err := invoices.FindByNumber(ctx, "INV-10001"); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("invoice row should be rolled back, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("artifact left behind: %v", entries)
	}
	// The number stays consumed.
	if got := alloc.Peek(); got != "INV-10002" {
		t.Fatalf("next number = %s", got)
	}
}
