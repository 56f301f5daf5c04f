package repository

import (
	"context"
	"errors"

	"invoicer/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository persists invoice-number counters. It satisfies sequence.Store.
type SequenceRepository interface {
	Load(ctx context.Context, prefix string) (int64, bool, error)
	Save(ctx context.Context, prefix string, next int64) error
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Load(ctx context.Context, prefix string) (int64, bool, error) {
	var seq model.InvoiceSequence
	err := GetDB(ctx, r.db).First(&seq, "prefix = ?", prefix).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return seq.NextValue, true, nil
}

func (r *sequenceRepository) Save(ctx context.Context, prefix string, next int64) error {
	seq := model.InvoiceSequence{Prefix: prefix, NextValue: next}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "prefix"}},
		DoUpdates: clause.AssignmentColumns([]string{"next_value", "updated_at"}),
	}).Create(&seq).Error
}
