package repository

import (
	"context"

	"invoicer/internal/model"

	"gorm.io/gorm"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByNumber(ctx context.Context, invoiceNumber string) (*model.Invoice, error)
	// List returns invoices newest first; customerID 0 means all customers.
	List(ctx context.Context, customerID uint, page, limit int) ([]model.Invoice, int64, error)
	DeleteByNumber(ctx context.Context, invoiceNumber string) error
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, "invoice_number = ?", invoiceNumber).Error; err != nil {
		return nil, notFound(err, "invoice", invoiceNumber)
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, customerID uint, page, limit int) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Invoice{})
	if customerID != 0 {
		query = query.Where("customer_id = ?", customerID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Model(&model.Invoice{})
	if customerID != 0 {
		fetchQuery = fetchQuery.Where("customer_id = ?", customerID)
	}
	if err := fetchQuery.Order("created_at desc, invoice_number desc").Offset(offset).Limit(limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) DeleteByNumber(ctx context.Context, invoiceNumber string) error {
	res := GetDB(ctx, r.db).Where("invoice_number = ?", invoiceNumber).Delete(&model.Invoice{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "invoice", invoiceNumber)
	}
	return nil
}
