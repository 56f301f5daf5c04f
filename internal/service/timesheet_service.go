package service

import (
	"context"
	"fmt"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/calculator"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/rs/zerolog"
)

// --- DTOs ---

type TimeEntryRequest struct {
	ProjectID   uint      `json:"project_id" binding:"required"`
	Description string    `json:"description" binding:"required"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Rate        float64   `json:"rate"`
	Project     string    `json:"project"`
	Activity    string    `json:"activity"`
}

type TimeEntryResponse struct {
	ID          uint   `json:"id"`
	ProjectID   uint   `json:"project_id"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Hours       string `json:"hours"`
	Rate        string `json:"rate"`
	Amount      string `json:"amount"`
	Project     string `json:"project,omitempty"`
	Activity    string `json:"activity,omitempty"`
}

// --- Interface ---

type TimesheetService interface {
	// GetEntries returns the billable entries of a project whose start lies in
	// [start, end], oldest first.
	GetEntries(ctx context.Context, projectID uint, start, end time.Time) ([]model.BillableEntry, error)
	ListEntries(ctx context.Context, projectID uint, start, end time.Time) ([]TimeEntryResponse, error)
	GetEntry(ctx context.Context, id uint) (TimeEntryResponse, error)
	CreateEntry(ctx context.Context, req TimeEntryRequest) (TimeEntryResponse, error)
	UpdateEntry(ctx context.Context, id uint, req TimeEntryRequest) (TimeEntryResponse, error)
	DeleteEntry(ctx context.Context, id uint) error
}

type timesheetService struct {
	repo repository.TimeEntryRepository
	log  zerolog.Logger
}

func NewTimesheetService(repo repository.TimeEntryRepository, log zerolog.Logger) TimesheetService {
	return &timesheetService{repo: repo, log: log}
}

// --- Implementation ---

func (s *timesheetService) GetEntries(ctx context.Context, projectID uint, start, end time.Time) ([]model.BillableEntry, error) {
	if end.Before(start) {
		return nil, apperror.Invalid("date range", fmt.Sprintf("end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	entries, err := s.repo.FindByProjectAndRange(ctx, projectID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch time entries: %w", err)
	}
	result := make([]model.BillableEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.Billable())
	}
	s.log.Debug().Uint("project_id", projectID).Int("entries", len(result)).Msg("Time entries loaded")
	return result, nil
}

func (s *timesheetService) ListEntries(ctx context.Context, projectID uint, start, end time.Time) ([]TimeEntryResponse, error) {
	if end.Before(start) {
		return nil, apperror.Invalid("date range", "end is before start")
	}
	entries, err := s.repo.FindByProjectAndRange(ctx, projectID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch time entries: %w", err)
	}
	result := make([]TimeEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, toTimeEntryResponse(e))
	}
	return result, nil
}

func (s *timesheetService) GetEntry(ctx context.Context, id uint) (TimeEntryResponse, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return TimeEntryResponse{}, err
	}
	return toTimeEntryResponse(*entry), nil
}

func validateEntry(req TimeEntryRequest) error {
	if req.Rate < 0 {
		return apperror.Invalid("rate", "must not be negative")
	}
	if req.EndTime.Before(req.StartTime) {
		return fmt.Errorf("time entry: %w", apperror.ErrInvalidRange)
	}
	return nil
}

func (s *timesheetService) CreateEntry(ctx context.Context, req TimeEntryRequest) (TimeEntryResponse, error) {
	if err := validateEntry(req); err != nil {
		return TimeEntryResponse{}, err
	}
	entry := model.TimeEntry{
		ProjectID:   req.ProjectID,
		Description: req.Description,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Rate:        req.Rate,
		Project:     req.Project,
		Activity:    req.Activity,
	}
	if err := s.repo.Create(ctx, &entry); err != nil {
		return TimeEntryResponse{}, fmt.Errorf("failed to create time entry: %w", err)
	}
	return toTimeEntryResponse(entry), nil
}

func (s *timesheetService) UpdateEntry(ctx context.Context, id uint, req TimeEntryRequest) (TimeEntryResponse, error) {
	if err := validateEntry(req); err != nil {
		return TimeEntryResponse{}, err
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return TimeEntryResponse{}, err
	}
	entry.ProjectID = req.ProjectID
	entry.Description = req.Description
	entry.StartTime = req.StartTime.UTC()
	entry.EndTime = req.EndTime.UTC()
	entry.Rate = req.Rate
	entry.Project = req.Project
	entry.Activity = req.Activity

	if err := s.repo.Update(ctx, entry); err != nil {
		return TimeEntryResponse{}, fmt.Errorf("failed to update time entry: %w", err)
	}
	return toTimeEntryResponse(*entry), nil
}

func (s *timesheetService) DeleteEntry(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// --- Mapping ---

func toTimeEntryResponse(e model.TimeEntry) TimeEntryResponse {
	b := e.Billable()
	hours, _ := calculator.Duration(b)
	amount, _ := calculator.Amount(b)
	return TimeEntryResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		Description: e.Description,
		StartTime:   e.StartTime.UTC().Format(time.RFC3339),
		EndTime:     e.EndTime.UTC().Format(time.RFC3339),
		Hours:       money(hours),
		Rate:        money(e.Rate),
		Amount:      money(amount),
		Project:     e.Project,
		Activity:    e.Activity,
	}
}
