package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/models"
)

// NotificationStore persists notifications in PostgreSQL
type NotificationStore struct {
	db *pgxpool.Pool
}

func NewNotificationStore(db *pgxpool.Pool) *NotificationStore {
	return &NotificationStore{db: db}
}

// Create records a notification addressed to a user
func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, complaint_id, message, type, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		n.UserID, n.ComplaintID, n.Message, n.Type, n.IsRead, n.CreatedAt,
	).Scan(&n.ID)
	if err != nil {
		return errors.Wrap(err, "insert notification")
	}
	return nil
}

func (s *NotificationStore) Get(ctx context.Context, id int64) (*models.Notification, error) {
	query := `SELECT id, user_id, complaint_id, message, type, is_read, created_at FROM notifications WHERE id = $1`

	var n models.Notification
	err := s.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.ComplaintID, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("notification not found with id: %d", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "select notification")
	}
	return &n, nil
}

// ListByUser returns notifications for a user, newest first
func (s *NotificationStore) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, complaint_id, message, type, is_read, created_at
		FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR is_read = FALSE)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.Query(ctx, query, userID, unreadOnly)
	if err != nil {
		return nil, errors.Wrap(err, "list notifications")
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.ComplaintID, &n.Message,
			&n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan notification")
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flips the read flag and returns the updated row
func (s *NotificationStore) MarkRead(ctx context.Context, id int64) (*models.Notification, error) {
	query := `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1
		RETURNING id, user_id, complaint_id, message, type, is_read, created_at
	`

	var n models.Notification
	err := s.db.QueryRow(ctx, query, id).Scan(
		&n.ID, &n.UserID, &n.ComplaintID, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("notification not found with id: %d", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "mark notification read")
	}
	return &n, nil
}

func (s *NotificationStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete notification")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification not found with id: %d", id)
	}
	return nil
}

func (s *NotificationStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
