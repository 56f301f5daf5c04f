package cli

import (
	"context"
	"fmt"

	"invoicer/internal/config"
	"invoicer/internal/database"
	"invoicer/internal/logger"
	"invoicer/internal/render"
	"invoicer/internal/repository"
	"invoicer/internal/seed"
	"invoicer/internal/sequence"
	"invoicer/internal/service"
	"invoicer/internal/storage"
	"invoicer/internal/websocket"

	"gorm.io/gorm"
)

type repositories struct {
	tx            repository.TransactionManager
	customers     repository.CustomerRepository
	entries       repository.TimeEntryRepository
	invoices      repository.InvoiceRepository
	notifications repository.NotificationRepository
	sequences     repository.SequenceRepository
	issuers       repository.IssuerRepository
	audit         repository.AuditRepository
}

func newRepositories(db *gorm.DB) repositories {
	if db == nil {
		return repositories{
			tx:            repository.NoopTransactionManager{},
			customers:     repository.NewMemoryCustomerRepository(),
			entries:       repository.NewMemoryTimeEntryRepository(),
			invoices:      repository.NewMemoryInvoiceRepository(),
			notifications: repository.NewMemoryNotificationRepository(),
			sequences:     repository.NewMemorySequenceRepository(),
			issuers:       repository.NewMemoryIssuerRepository(),
			audit:         repository.NewMemoryAuditRepository(),
		}
	}
	return repositories{
		tx:            repository.NewTransactionManager(db),
		customers:     repository.NewCustomerRepository(db),
		entries:       repository.NewTimeEntryRepository(db),
		invoices:      repository.NewInvoiceRepository(db),
		notifications: repository.NewNotificationRepository(db),
		sequences:     repository.NewSequenceRepository(db),
		issuers:       repository.NewIssuerRepository(db),
		audit:         repository.NewAuditRepository(db),
	}
}

// App holds the wired dependency graph (Repository -> Service -> Handler).
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Hub       *websocket.Hub
	Allocator *sequence.Allocator

	Customers     service.CustomerService
	Timesheets    service.TimesheetService
	Invoices      service.InvoiceService
	Notifications service.NotificationService
	Audit         service.AuditService
	Gateway       service.GatewayService
}

// NewApp opens the configured store, seeds it when asked and builds the services.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.WithComponent("app")

	var db *gorm.DB
	if cfg.DBDriver != "memory" {
		var err error
		db, err = database.NewConnection(cfg.DBDriver, cfg.DSN())
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("Connected to database")
	}
	repos := newRepositories(db)

	issuer := cfg.Issuer
	if err := repos.issuers.Save(ctx, &issuer); err != nil {
		return nil, fmt.Errorf("failed to store issuer profile: %w", err)
	}

	if cfg.SeedDemo {
		if _, err := seed.Demo(ctx, repos.tx, repos.customers, repos.entries, logger.WithComponent("seed")); err != nil {
			return nil, err
		}
	}

	gen := sequence.NewGenerator(cfg.InvoicePrefix, cfg.InvoiceStart, cfg.InvoicePad)
	alloc, err := sequence.NewAllocator(ctx, gen, repos.sequences)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise invoice numbering: %w", err)
	}

	store, err := storage.NewArtifactStore(cfg.StorageDir)
	if err != nil {
		return nil, err
	}

	renderer := render.NewRenderer(render.Options{EmbedLogo: cfg.EmbedLogo}, logger.WithComponent("render"))
	hub := websocket.NewHub(logger.WithComponent("websocket"))

	app := &App{
		Config:    cfg,
		DB:        db,
		Hub:       hub,
		Allocator: alloc,
	}
	app.Customers = service.NewCustomerService(repos.customers, logger.WithComponent("customer"))
	app.Timesheets = service.NewTimesheetService(repos.entries, logger.WithComponent("timesheet"))
	app.Invoices = service.NewInvoiceService(
		repos.invoices,
		repos.audit,
		repos.tx,
		service.NewAssembler(alloc, cfg.InvoiceDefaults()),
		renderer,
		store,
		issuer,
		cfg.RenderConcurrency,
		logger.WithComponent("invoice"),
	)
	app.Audit = service.NewAuditService(repos.audit)
	app.Notifications = service.NewNotificationService(repos.notifications, hub, logger.WithComponent("notification"))
	app.Gateway = service.NewGatewayService(app.Customers, app.Timesheets, app.Invoices, app.Notifications, logger.WithComponent("gateway"))

	log.Info().
		Str("storage", store.Dir()).
		Str("next_invoice", alloc.Peek()).
		Msg("Invoice service ready")
	return app, nil
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
