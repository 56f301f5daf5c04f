package repository

import (
	"context"
	"time"

	"invoicer/internal/model"

	"gorm.io/gorm"
)

type TimeEntryRepository interface {
	Create(ctx context.Context, entry *model.TimeEntry) error
	Update(ctx context.Context, entry *model.TimeEntry) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.TimeEntry, error)
	// FindByProjectAndRange returns entries of the project whose start lies in [start, end],
	// ordered by start time then id.
	FindByProjectAndRange(ctx context.Context, projectID uint, start, end time.Time) ([]model.TimeEntry, error)
}

type timeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

func (r *timeEntryRepository) Create(ctx context.Context, entry *model.TimeEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *timeEntryRepository) Update(ctx context.Context, entry *model.TimeEntry) error {
	return GetDB(ctx, r.db).Save(entry).Error
}

func (r *timeEntryRepository) Delete(ctx context.Context, id uint) error {
	res := GetDB(ctx, r.db).Delete(&model.TimeEntry{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "time entry", id)
	}
	return nil
}

func (r *timeEntryRepository) FindByID(ctx context.Context, id uint) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := GetDB(ctx, r.db).First(&entry, id).Error; err != nil {
		return nil, notFound(err, "time entry", id)
	}
	return &entry, nil
}

func (r *timeEntryRepository) FindByProjectAndRange(ctx context.Context, projectID uint, start, end time.Time) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	err := GetDB(ctx, r.db).
		Where("project_id = ? AND start_time >= ? AND start_time <= ?", projectID, start, end).
		Order("start_time asc, id asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
