package repository

import (
	"context"

	"invoicer/internal/model"

	"gorm.io/gorm"
)

type IssuerRepository interface {
	// Save inserts or replaces the profile with the given ID.
	Save(ctx context.Context, profile *model.IssuerProfile) error
	FindByID(ctx context.Context, id uint) (*model.IssuerProfile, error)
}

type issuerRepository struct {
	db *gorm.DB
}

func NewIssuerRepository(db *gorm.DB) IssuerRepository {
	return &issuerRepository{db: db}
}

func (r *issuerRepository) Save(ctx context.Context, profile *model.IssuerProfile) error {
	return GetDB(ctx, r.db).Save(profile).Error
}

func (r *issuerRepository) FindByID(ctx context.Context, id uint) (*model.IssuerProfile, error) {
	var profile model.IssuerProfile
	if err := GetDB(ctx, r.db).First(&profile, id).Error; err != nil {
		return nil, notFound(err, "issuer profile", id)
	}
	return &profile, nil
}
