package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"invoicer/internal/model"
	"invoicer/internal/render"
	"invoicer/internal/repository"
	"invoicer/internal/sequence"
	"invoicer/internal/service"
	"invoicer/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type envelope struct {
	Success    bool            `json:"success"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Pagination *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int64 `json:"total_pages"`
	} `json:"pagination"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	log := zerolog.Nop()

	customers := repository.NewMemoryCustomerRepository()
	entries := repository.NewMemoryTimeEntryRepository()
	if err := customers.Create(ctx, &model.Customer{
		Name:     "ACME Corporation",
		Address:  "123 Business Street, Business City, 10001",
		Email:    "contact@acme.com",
		Revision: 1,
	}); err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if err := entries.Create(ctx, &model.TimeEntry{
		ProjectID:   1,
		Description: "Website Development",
		StartTime:   time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
		Rate:        50,
	}); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	alloc, err := sequence.NewAllocator(ctx, sequence.NewGenerator("INV-", 10001, 5), repository.NewMemorySequenceRepository())
	if err != nil {
		t.Fatalf("NewAllocator: %v", err)
	}
	store, err := storage.NewArtifactStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewArtifactStore: %v", err)
	}

	auditRepo := repository.NewMemoryAuditRepository()
	customerSvc := service.NewCustomerService(customers, log)
	timesheetSvc := service.NewTimesheetService(entries, log)
	invoiceSvc := service.NewInvoiceService(
		repository.NewMemoryInvoiceRepository(),
		auditRepo,
		repository.NoopTransactionManager{},
		service.NewAssembler(alloc, service.DefaultInvoiceDefaults()),
		render.NewRenderer(render.DefaultOptions(), log),
		store,
		model.IssuerProfile{ID: 1, Company: "Kimai Time Tracking"},
		2,
		log,
	)
	notificationSvc := service.NewNotificationService(repository.NewMemoryNotificationRepository(), nil, log)
	gateway := service.NewGatewayService(customerSvc, timesheetSvc, invoiceSvc, notificationSvc, log)

	r := gin.New()
	api := r.Group("")
	NewInvoiceHandler(gateway, log).RegisterRoutes(api)
	NewCustomerHandler(customerSvc).RegisterRoutes(api)
	NewTimeEntryHandler(timesheetSvc).RegisterRoutes(api)
	NewNotificationHandler(notificationSvc).RegisterRoutes(api)
	NewAuditHandler(service.NewAuditService(auditRepo)).RegisterRoutes(api)
	return r
}

func do(t *testing.T, r http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

func TestCreateInvoiceWithDefaults(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/api/invoices/create", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	env := decode(t, w)
	if !env.Success || env.Message != "Invoice created successfully with number INV-10001" {
		t.Fatalf("envelope = %+v", env)
	}
	var created service.CreatedInvoice
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("data: %v", err)
	}
	if created.InvoiceID != "INV-10001" ||
		created.DownloadURL != "/api/invoices/1/download?invoiceNumber=INV-10001&format=xlsx" {
		t.Fatalf("created = %+v", created)
	}

	list := decode(t, do(t, r, http.MethodGet, "/api/invoices?customerId=1", nil))
	var invoices service.InvoiceList
	if err := json.Unmarshal(list.Data, &invoices); err != nil {
		t.Fatalf("list data: %v", err)
	}
	if invoices.Total != 1 || invoices.Invoices[0].Total != "165.00" || invoices.Invoices[0].Subtotal != "150.00" {
		t.Fatalf("invoices = %+v", invoices)
	}

	notifications := decode(t, do(t, r, http.MethodGet, "/api/notifications?userId=1&unreadOnly=true", nil))
	var pushed []service.NotificationResponse
	if err := json.Unmarshal(notifications.Data, &pushed); err != nil {
		t.Fatalf("notifications: %v", err)
	}
	if len(pushed) != 1 || pushed[0].InvoiceNumber != "INV-10001" {
		t.Fatalf("notifications = %+v", pushed)
	}
}

func TestCreateInvoiceFailures(t *testing.T) {
	r := setupRouter(t)
	cases := []struct {
		name   string
		target string
		want   string
	}{
		{"pdf", "/api/invoices/create?format=pdf", "not supported"},
		{"bad date", "/api/invoices/create?startDate=yesterday", "is not a date"},
		{"unknown customer", "/api/invoices/create?customerId=42", "customer 42 not found"},
		{"negative tax", "/api/invoices/create?taxRate=-1", "invalid argument"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodGet, tc.target, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", w.Code)
			}
			env := decode(t, w)
			if env.Success || !strings.HasPrefix(env.Message, "Failed to create invoice: ") || !strings.Contains(env.Error, tc.want) {
				t.Fatalf("envelope = %+v", env)
			}
		})
	}

	// Nothing above consumed a number.
	env := decode(t, do(t, r, http.MethodGet, "/api/invoices/create", nil))
	if env.Message != "Invoice created successfully with number INV-10001" {
		t.Fatalf("message = %q", env.Message)
	}
}

func TestDownloadInvoice(t *testing.T) {
	r := setupRouter(t)
	do(t, r, http.MethodGet, "/api/invoices/create", nil)

	w := do(t, r, http.MethodGet, "/api/invoices/1/download?invoiceNumber=INV-10001&format=xlsx", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="INV_10001.xlsx"` {
		t.Fatalf("Content-Disposition = %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != render.MIMEType {
		t.Fatalf("Content-Type = %q", got)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("PK")) {
		t.Fatalf("body is not a zip archive")
	}

	for _, target := range []string{
		"/api/invoices/1/download?invoiceNumber=INV-99999",
		"/api/invoices/1/download",
		"/api/invoices/1/download?invoiceNumber=INV-10001&format=pdf",
	} {
		w := do(t, r, http.MethodGet, target, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", target, w.Code)
		}
		if env := decode(t, w); env.Success || !strings.HasPrefix(env.Message, "Failed to download invoice") {
			t.Fatalf("%s: envelope = %+v", target, env)
		}
	}
}

func TestDeleteInvoice(t *testing.T) {
	r := setupRouter(t)
	do(t, r, http.MethodGet, "/api/invoices/create", nil)

	if w := do(t, r, http.MethodDelete, "/api/invoices/INV-10001", nil); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d body = %s", w.Code, w.Body.String())
	}
	if w := do(t, r, http.MethodDelete, "/api/invoices/INV-10001", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("second delete status = %d", w.Code)
	}
	env := decode(t, do(t, r, http.MethodGet, "/api/invoices/create", nil))
	if env.Message != "Invoice created successfully with number INV-10002" {
		t.Fatalf("numbers must not be reused: %q", env.Message)
	}
}

func TestCustomerEndpoints(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/customers", map[string]string{"name": "Global Systems", "email": "contact@globalsystems.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body.String())
	}
	var created service.CustomerResponse
	if err := json.Unmarshal(decode(t, w).Data, &created); err != nil {
		t.Fatalf("data: %v", err)
	}

	if w := do(t, r, http.MethodPost, "/api/customers", map[string]string{"name": "No Email"}); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid payload status = %d", w.Code)
	}

	name := "Global Systems Ltd"
	w = do(t, r, http.MethodPut, "/api/customers/2", service.UpdateCustomerRequest{Name: &name})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d body = %s", w.Code, w.Body.String())
	}
	var updated service.CustomerResponse
	_ = json.Unmarshal(decode(t, w).Data, &updated)
	if updated.Name != name || updated.Revision != created.Revision+1 {
		t.Fatalf("updated = %+v", updated)
	}

	env := decode(t, do(t, r, http.MethodGet, "/api/customers?page=1&limit=1", nil))
	if env.Pagination == nil || env.Pagination.Total != 2 || env.Pagination.TotalPages != 2 {
		t.Fatalf("pagination = %+v", env.Pagination)
	}

	if w := do(t, r, http.MethodGet, "/api/customers/abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/api/customers/2", nil); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/customers/2", nil); w.Code != http.StatusNotFound {
		t.Fatalf("get deleted status = %d", w.Code)
	}
}

func TestTimeEntryEndpoints(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/time-entries", map[string]interface{}{
		"project_id":  1,
		"description": "UI/UX Design",
		"start_time":  "2025-02-02T13:00:00Z",
		"end_time":    "2025-02-02T17:00:00Z",
		"rate":        60,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, "/api/time-entries", map[string]interface{}{
		"project_id":  1,
		"description": "Backwards",
		"start_time":  "2025-02-02T13:00:00Z",
		"end_time":    "2025-02-02T12:00:00Z",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("inverted entry status = %d", w.Code)
	}

	env := decode(t, do(t, r, http.MethodGet, "/api/time-entries?projectId=1&startDate=2025-02-02&endDate=2025-02-02", nil))
	var entries []service.TimeEntryResponse
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("data: %v", err)
	}
	if len(entries) != 1 || entries[0].Amount != "240.00" {
		t.Fatalf("entries = %+v", entries)
	}

	if w := do(t, r, http.MethodGet, "/api/time-entries?startDate=2025-03-01&endDate=2025-02-01", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("inverted range status = %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/time-entries/99", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing entry status = %d", w.Code)
	}
}

func TestNotificationEndpoints(t *testing.T) {
	r := setupRouter(t)
	do(t, r, http.MethodGet, "/api/invoices/create?userId=3", nil)

	var list []service.NotificationResponse
	_ = json.Unmarshal(decode(t, do(t, r, http.MethodGet, "/api/notifications?userId=3", nil)).Data, &list)
	if len(list) != 1 {
		t.Fatalf("notifications = %+v", list)
	}

	if w := do(t, r, http.MethodPut, "/api/notifications/"+list[0].ID+"/read", nil); w.Code != http.StatusOK {
		t.Fatalf("mark read status = %d", w.Code)
	}
	if w := do(t, r, http.MethodPut, "/api/notifications/nope/read", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/api/notifications/"+list[0].ID, nil); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := do(t, r, http.MethodDelete, "/api/notifications/"+list[0].ID, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", w.Code)
	}
}

func TestAuditLogEndpoint(t *testing.T) {
	r := setupRouter(t)
	do(t, r, http.MethodGet, "/api/invoices/create", nil)
	do(t, r, http.MethodDelete, "/api/invoices/INV-10001", nil)

	w := do(t, r, http.MethodGet, "/api/audit-logs?limit=1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	env := decode(t, w)
	var logs []service.AuditLogResponse
	if err := json.Unmarshal(env.Data, &logs); err != nil {
		t.Fatalf("data: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != "INVOICE_DELETED" || env.Pagination.Total != 2 {
		t.Fatalf("logs = %+v pagination = %+v", logs, env.Pagination)
	}
}
