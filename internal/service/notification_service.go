package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"invoicer/internal/apperror"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Publisher pushes a payload to a user's live connections. *websocket.Hub implements it.
type Publisher interface {
	Publish(userID uint, payload []byte)
}

type NotificationResponse struct {
	ID            string `json:"id"`
	UserID        uint   `json:"user_id"`
	Type          string `json:"type"`
	Message       string `json:"message"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	CustomerID    uint   `json:"customer_id,omitempty"`
	Read          bool   `json:"read"`
	CreatedAt     string `json:"created_at"`
}

type NotificationService interface {
	// Notify records that an invoice was created and pushes it to the user if connected.
	Notify(ctx context.Context, userID uint, invoiceNumber string, customerID uint) (*model.Notification, error)
	ListNotifications(ctx context.Context, userID uint, unreadOnly bool) ([]NotificationResponse, error)
	MarkAsRead(ctx context.Context, id string) error
	DeleteNotification(ctx context.Context, id string) error
}

type notificationService struct {
	repo      repository.NotificationRepository
	publisher Publisher
	log       zerolog.Logger
}

// NewNotificationService creates the service; publisher may be nil.
func NewNotificationService(repo repository.NotificationRepository, publisher Publisher, log zerolog.Logger) NotificationService {
	return &notificationService{repo: repo, publisher: publisher, log: log}
}

func (s *notificationService) Notify(ctx context.Context, userID uint, invoiceNumber string, customerID uint) (*model.Notification, error) {
	n := model.Notification{
		UserID:        userID,
		Type:          model.NotificationInvoiceCreated,
		Message:       fmt.Sprintf("Invoice %s has been created for customer %d", invoiceNumber, customerID),
		InvoiceNumber: invoiceNumber,
		CustomerID:    customerID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	if s.publisher != nil {
		payload, err := json.Marshal(toNotificationResponse(n))
		if err == nil {
			s.publisher.Publish(userID, payload)
		}
	}

	s.log.Info().
		Uint("user_id", userID).
		Str("invoice_number", invoiceNumber).
		Uint("customer_id", customerID).
		Msg("Notification sent")
	return &n, nil
}

func (s *notificationService) ListNotifications(ctx context.Context, userID uint, unreadOnly bool) ([]NotificationResponse, error) {
	list, err := s.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	result := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		result = append(result, toNotificationResponse(n))
	}
	return result, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, id string) error {
	nid, err := parseNotificationID(id)
	if err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, nid)
}

func (s *notificationService) DeleteNotification(ctx context.Context, id string) error {
	nid, err := parseNotificationID(id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, nid)
}

func parseNotificationID(id string) (uuid.UUID, error) {
	nid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperror.Invalid("notification id", fmt.Sprintf("%q is not a UUID", id))
	}
	return nid, nil
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            n.ID.String(),
		UserID:        n.UserID,
		Type:          n.Type,
		Message:       n.Message,
		InvoiceNumber: n.InvoiceNumber,
		CustomerID:    n.CustomerID,
		Read:          n.Read,
		CreatedAt:     n.CreatedAt.UTC().Format(time.RFC3339),
	}
}
