package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/model"

	"github.com/google/uuid"
)

// In-memory implementations used by DB_DRIVER=memory and by service tests.
// Records are copied on the way in and out so callers never share state with the store.

type memoryCustomerRepository struct {
	mu     sync.RWMutex
	nextID uint
	items  map[uint]model.Customer
}

func NewMemoryCustomerRepository() CustomerRepository {
	return &memoryCustomerRepository{nextID: 1, items: make(map[uint]model.Customer)}
}

func (r *memoryCustomerRepository) Create(_ context.Context, customer *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if customer.ID == 0 {
		customer.ID = r.nextID
	}
	if customer.ID >= r.nextID {
		r.nextID = customer.ID + 1
	}
	now := time.Now()
	customer.CreatedAt, customer.UpdatedAt = now, now
	r.items[customer.ID] = *customer
	return nil
}

func (r *memoryCustomerRepository) Update(_ context.Context, customer *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[customer.ID]; !ok {
		return apperror.NewNotFound("customer", customer.ID)
	}
	customer.UpdatedAt = time.Now()
	r.items[customer.ID] = *customer
	return nil
}

func (r *memoryCustomerRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperror.NewNotFound("customer", id)
	}
	delete(r.items, id)
	return nil
}

func (r *memoryCustomerRepository) FindByID(_ context.Context, id uint) (*model.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, apperror.NewNotFound("customer", id)
	}
	return &c, nil
}

func (r *memoryCustomerRepository) List(_ context.Context, page, limit int) ([]model.Customer, int64, error) {
	r.mu.RLock()
	all := make([]model.Customer, 0, len(r.items))
	for _, c := range r.items {
		all = append(all, c)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page, limit), int64(len(all)), nil
}

type memoryTimeEntryRepository struct {
	mu     sync.RWMutex
	nextID uint
	items  map[uint]model.TimeEntry
}

func NewMemoryTimeEntryRepository() TimeEntryRepository {
	return &memoryTimeEntryRepository{nextID: 1, items: make(map[uint]model.TimeEntry)}
}

func (r *memoryTimeEntryRepository) Create(_ context.Context, entry *model.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == 0 {
		entry.ID = r.nextID
	}
	if entry.ID >= r.nextID {
		r.nextID = entry.ID + 1
	}
	now := time.Now()
	entry.CreatedAt, entry.UpdatedAt = now, now
	r.items[entry.ID] = *entry
	return nil
}

func (r *memoryTimeEntryRepository) Update(_ context.Context, entry *model.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[entry.ID]; !ok {
		return apperror.NewNotFound("time entry", entry.ID)
	}
	entry.UpdatedAt = time.Now()
	r.items[entry.ID] = *entry
	return nil
}

func (r *memoryTimeEntryRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return apperror.NewNotFound("time entry", id)
	}
	delete(r.items, id)
	return nil
}

func (r *memoryTimeEntryRepository) FindByID(_ context.Context, id uint) (*model.TimeEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.items[id]
	if !ok {
		return nil, apperror.NewNotFound("time entry", id)
	}
	return &e, nil
}

func (r *memoryTimeEntryRepository) FindByProjectAndRange(_ context.Context, projectID uint, start, end time.Time) ([]model.TimeEntry, error) {
	r.mu.RLock()
	result := make([]model.TimeEntry, 0)
	for _, e := range r.items {
		if e.ProjectID != projectID {
			continue
		}
		if e.StartTime.Before(start) || e.StartTime.After(end) {
			continue
		}
		result = append(result, e)
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartTime.Equal(result[j].StartTime) {
			return result[i].StartTime.Before(result[j].StartTime)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

type memoryInvoiceRepository struct {
	mu    sync.RWMutex
	items map[string]model.Invoice
}

func NewMemoryInvoiceRepository() InvoiceRepository {
	return &memoryInvoiceRepository{items: make(map[string]model.Invoice)}
}

func (r *memoryInvoiceRepository) Create(_ context.Context, invoice *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[invoice.InvoiceNumber]; exists {
		return apperror.Invalid("invoice_number", invoice.InvoiceNumber+" already exists")
	}
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now()
	}
	r.items[invoice.InvoiceNumber] = cloneInvoice(*invoice)
	return nil
}

func (r *memoryInvoiceRepository) FindByNumber(_ context.Context, invoiceNumber string) (*model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.items[invoiceNumber]
	if !ok {
		return nil, apperror.NewNotFound("invoice", invoiceNumber)
	}
	inv = cloneInvoice(inv)
	return &inv, nil
}

func (r *memoryInvoiceRepository) List(_ context.Context, customerID uint, page, limit int) ([]model.Invoice, int64, error) {
	r.mu.RLock()
	all := make([]model.Invoice, 0, len(r.items))
	for _, inv := range r.items {
		if customerID != 0 && inv.CustomerID != customerID {
			continue
		}
		all = append(all, cloneInvoice(inv))
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].InvoiceNumber > all[j].InvoiceNumber
	})
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *memoryInvoiceRepository) DeleteByNumber(_ context.Context, invoiceNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[invoiceNumber]; !ok {
		return apperror.NewNotFound("invoice", invoiceNumber)
	}
	delete(r.items, invoiceNumber)
	return nil
}

func cloneInvoice(inv model.Invoice) model.Invoice {
	inv.Items = append([]model.BillableEntry(nil), inv.Items...)
	return inv
}

type memoryNotificationRepository struct {
	mu    sync.RWMutex
	items []model.Notification
}

func NewMemoryNotificationRepository() NotificationRepository {
	return &memoryNotificationRepository{}
}

func (r *memoryNotificationRepository) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *memoryNotificationRepository) ListByUser(_ context.Context, userID uint, unreadOnly bool) ([]model.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.Notification, 0)
	for _, n := range r.items {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		result = append(result, n)
	}
	return result, nil
}

func (r *memoryNotificationRepository) MarkRead(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].Read = true
			return nil
		}
	}
	return apperror.NewNotFound("notification", id)
}

func (r *memoryNotificationRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("notification", id)
}

type memorySequenceRepository struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemorySequenceRepository() SequenceRepository {
	return &memorySequenceRepository{values: make(map[string]int64)}
}

func (r *memorySequenceRepository) Load(_ context.Context, prefix string) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[prefix]
	return v, ok, nil
}

func (r *memorySequenceRepository) Save(_ context.Context, prefix string, next int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[prefix] = next
	return nil
}

type memoryIssuerRepository struct {
	mu    sync.RWMutex
	items map[uint]model.IssuerProfile
}

func NewMemoryIssuerRepository() IssuerRepository {
	return &memoryIssuerRepository{items: make(map[uint]model.IssuerProfile)}
}

func (r *memoryIssuerRepository) Save(_ context.Context, profile *model.IssuerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.ID == 0 {
		profile.ID = uint(len(r.items) + 1)
	}
	r.items[profile.ID] = *profile
	return nil
}

func (r *memoryIssuerRepository) FindByID(_ context.Context, id uint) (*model.IssuerProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, apperror.NewNotFound("issuer profile", id)
	}
	return &p, nil
}

func paginate[T any](all []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		return all
	}
	offset := (page - 1) * limit
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

type memoryAuditRepository struct {
	mu   sync.RWMutex
	logs []model.AuditLog
}

func NewMemoryAuditRepository() AuditRepository {
	return &memoryAuditRepository{}
}

func (r *memoryAuditRepository) Log(_ context.Context, entry *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *memoryAuditRepository) List(_ context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	newest := make([]model.AuditLog, 0, len(r.logs))
	for i := len(r.logs) - 1; i >= 0; i-- {
		newest = append(newest, r.logs[i])
	}
	return paginate(newest, page, limit), int64(len(newest)), nil
}
