// Package seed loads the demo customers and the February 2025 timesheet of
// the "Website Redesign" project into an empty store.
package seed

import (
	"context"
	"fmt"
	"time"

	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/rs/zerolog"
)

const DemoProjectID uint = 1

func demoCustomers() []model.Customer {
	return []model.Customer{
		{Name: "ACME Corporation", Address: "123 Business Street, Business City, 10001", Email: "contact@acme.com", Phone: "(123) 456-7890", TaxID: "VAT-12345678", Revision: 1},
		{Name: "TechSolutions Inc.", Address: "456 Tech Avenue, Tech City, 20002", Email: "info@techsolutions.com", Phone: "(234) 567-8901", TaxID: "VAT-23456789", Revision: 1},
		{Name: "Global Enterprises", Address: "789 Global Road, Global City, 30003", Email: "contact@globalenterprises.com", Phone: "(345) 678-9012", TaxID: "VAT-34567890", Revision: 1},
	}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.February, day, hour, minute, 0, 0, time.UTC)
}

func demoEntries() []model.TimeEntry {
	entry := func(desc string, start, end time.Time, rate float64, activity string) model.TimeEntry {
		return model.TimeEntry{
			ProjectID:   DemoProjectID,
			Description: desc,
			StartTime:   start,
			EndTime:     end,
			Rate:        rate,
			Project:     "Website Redesign",
			Activity:    activity,
		}
	}
	return []model.TimeEntry{
		entry("Login feature development", at(1, 9, 0), at(1, 12, 0), 50, "Development"),
		entry("User interface design", at(2, 13, 0), at(2, 17, 0), 60, "Design"),
		entry("Login feature testing", at(3, 10, 0), at(3, 11, 30), 45, "Testing"),
		entry("Performance optimization", at(4, 14, 0), at(4, 18, 0), 55, "Development"),
		entry("Customer meeting", at(5, 10, 0), at(5, 11, 0), 70, "Meeting"),
	}
}

// Demo stores the demo data unless customers already exist. It reports
// whether anything was written.
func Demo(ctx context.Context, tx repository.TransactionManager, customers repository.CustomerRepository, entries repository.TimeEntryRepository, log zerolog.Logger) (bool, error) {
	_, total, err := customers.List(ctx, 1, 1)
	if err != nil {
		return false, fmt.Errorf("failed to check existing customers: %w", err)
	}
	if total > 0 {
		log.Debug().Int64("customers", total).Msg("Store not empty, skipping demo data")
		return false, nil
	}

	err = tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, c := range demoCustomers() {
			c := c
			if err := customers.Create(txCtx, &c); err != nil {
				return fmt.Errorf("failed to seed customer %s: %w", c.Name, err)
			}
		}
		for _, e := range demoEntries() {
			e := e
			if err := entries.Create(txCtx, &e); err != nil {
				return fmt.Errorf("failed to seed time entry %q: %w", e.Description, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	log.Info().Int("customers", len(demoCustomers())).Int("time_entries", len(demoEntries())).Msg("Demo data loaded")
	return true, nil
}
