package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/repository"

	"github.com/rs/zerolog"
)

func TestTimesheetGetEntriesFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	svc := NewTimesheetService(repository.NewMemoryTimeEntryRepository(), zerolog.Nop())

	reqs := []TimeEntryRequest{
		{ProjectID: 1, Description: "second", StartTime: time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC), EndTime: time.Date(2025, 2, 3, 11, 30, 0, 0, time.UTC), Rate: 45},
		{ProjectID: 1, Description: "first", StartTime: time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC), EndTime: time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC), Rate: 50},
		{ProjectID: 2, Description: "other", StartTime: time.Date(2025, 2, 2, 9, 0, 0, 0, time.UTC), EndTime: time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC), Rate: 10},
	}
	for _, r := range reqs {
		if _, err := svc.CreateEntry(ctx, r); err != nil {
			t.Fatalf("CreateEntry: %v", err)
		}
	}

	start, end := february()
	got, err := svc.GetEntries(ctx, 1, start, end)
	if err != nil {
		t.Fatalf("GetEntries: %v", err)
	}
	if len(got) != 2 || got[0].Description != "first" || got[1].Description != "second" {
		t.Fatalf("entries = %+v", got)
	}

	listed, _ := svc.ListEntries(ctx, 1, start, end)
	if listed[1].Hours != "1.50" || listed[1].Amount != "67.50" {
		t.Fatalf("listed = %+v", listed[1])
	}

	if _, err := svc.GetEntries(ctx, 1, end, start); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for inverted range, got %v", err)
	}
}

func TestTimesheetRejectsInvalidEntries(t *testing.T) {
	ctx := context.Background()
	svc := NewTimesheetService(repository.NewMemoryTimeEntryRepository(), zerolog.Nop())
	start := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	_, err := svc.CreateEntry(ctx, TimeEntryRequest{ProjectID: 1, Description: "x", StartTime: start, EndTime: start.Add(-time.Hour), Rate: 1})
	if !errors.Is(err, apperror.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	_, err = svc.CreateEntry(ctx, TimeEntryRequest{ProjectID: 1, Description: "x", StartTime: start, EndTime: start, Rate: -5})
	if !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.UpdateEntry(ctx, 99, TimeEntryRequest{ProjectID: 1, Description: "x", StartTime: start, EndTime: start}); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCustomerServiceCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewCustomerService(repository.NewMemoryCustomerRepository(), zerolog.Nop())

	created, err := svc.CreateCustomer(ctx, CreateCustomerRequest{Name: "  TechSolutions Inc. ", Email: "info@techsolutions.com"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	if created.Name != "TechSolutions Inc." || created.Revision != 1 {
		t.Fatalf("created = %+v", created)
	}

	blank := " "
	if _, err := svc.UpdateCustomer(ctx, created.ID, UpdateCustomerRequest{Name: &blank}); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	list, total, err := svc.ListCustomers(ctx, 0, 0)
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("ListCustomers = %+v %d %v", list, total, err)
	}

	if err := svc.DeleteCustomer(ctx, created.ID); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}
	if _, err := svc.GetCustomer(ctx, created.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewNotificationService(repository.NewMemoryNotificationRepository(), pub, zerolog.Nop())

	n, err := svc.Notify(ctx, 5, "INV-10001", 1)
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if n.Message != "Invoice INV-10001 has been created for customer 1" || n.Read {
		t.Fatalf("notification = %+v", n)
	}

	var pushed NotificationResponse
	if err := json.Unmarshal(pub.messages[5][0], &pushed); err != nil {
		t.Fatalf("pushed payload: %v", err)
	}
	if pushed.ID != n.ID.String() || pushed.Type != "invoice_created" {
		t.Fatalf("pushed = %+v", pushed)
	}

	if err := svc.MarkAsRead(ctx, n.ID.String()); err != nil {
		t.Fatalf("MarkAsRead: %v", err)
	}
	unread, _ := svc.ListNotifications(ctx, 5, true)
	if len(unread) != 0 {
		t.Fatalf("unread = %+v", unread)
	}
	if err := svc.MarkAsRead(ctx, "not-a-uuid"); !errors.Is(err, apperror.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if err := svc.DeleteNotification(ctx, n.ID.String()); err != nil {
		t.Fatalf("DeleteNotification: %v", err)
	}
	if err := svc.DeleteNotification(ctx, n.ID.String()); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
