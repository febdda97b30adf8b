package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civiceye/backend/internal/models"
	"github.com/civiceye/backend/internal/orchestration"
	"github.com/civiceye/backend/internal/validation"
)

// NotificationStore is the persistence the notification relay needs
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	Get(ctx context.Context, id int64) (*models.Notification, error)
	ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id int64) (*models.Notification, error)
	Delete(ctx context.Context, id int64) error
}

// NotificationService handles notification business logic
type NotificationService struct {
	store    NotificationStore
	users    orchestration.Validator
	validate *validation.Validator
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(store NotificationStore, users orchestration.Validator, validate *validation.Validator, logger *zap.SugaredLogger) *NotificationService {
	return &NotificationService{
		store:    store,
		users:    orchestration.UserValidator(users),
		validate: validate,
		logger:   logger,
		now:      time.Now,
	}
}

// Create records a notification for an existing user
func (s *NotificationService) Create(ctx context.Context, req *models.NotificationRequest) (*models.Notification, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	ref := orchestration.Reference{Kind: orchestration.KindUser, ID: req.UserID}

	return orchestration.CreateDependent(ctx, "notification", s.users, ref,
		func(ctx context.Context, _ orchestration.Result) (*models.Notification, error) {
			n := &models.Notification{
				UserID:      req.UserID,
				ComplaintID: req.ComplaintID,
				Message:     req.Message,
				Type:        req.Type,
				IsRead:      false,
				CreatedAt:   s.now().UTC(),
			}
			if err := s.store.Create(ctx, n); err != nil {
				return nil, err
			}

			s.logger.Infow("Notification created",
				"notification_id", n.ID,
				"user_id", n.UserID,
				"type", n.Type,
			)
			return n, nil
		},
		nil,
	)
}

// Get returns a notification by id
func (s *NotificationService) Get(ctx context.Context, id int64) (*models.Notification, error) {
	return s.store.Get(ctx, id)
}

// ListByUser returns a user's notifications, optionally only unread ones
func (s *NotificationService) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	return s.store.ListByUser(ctx, userID, unreadOnly)
}

// MarkRead sets the read flag. Marking an already read notification succeeds.
func (s *NotificationService) MarkRead(ctx context.Context, id int64) (*models.Notification, error) {
	n, err := s.store.MarkRead(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("Notification marked as read", "notification_id", id)
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("Notification deleted", "notification_id", id)
	return nil
}
