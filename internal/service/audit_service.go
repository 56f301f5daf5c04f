package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoicer/internal/model"
	"invoicer/internal/repository"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	// Record stores one audit entry; details are serialized to JSON.
	Record(ctx context.Context, action, entityID, entityName string, details interface{}) error
	GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// newAuditLog builds an entry whose details are the JSON form of v.
func newAuditLog(action, entityID, entityName string, v interface{}) (*model.AuditLog, error) {
	details, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit details: %w", err)
	}
	return &model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(details),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (s *auditService) Record(ctx context.Context, action, entityID, entityName string, details interface{}) error {
	entry, err := newAuditLog(action, entityID, entityName, details)
	if err != nil {
		return err
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *auditService) GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return res, total, nil
}
