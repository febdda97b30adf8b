package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/models"
)

// MediaStore persists media metadata in PostgreSQL
type MediaStore struct {
	db *pgxpool.Pool
}

func NewMediaStore(db *pgxpool.Pool) *MediaStore {
	return &MediaStore{db: db}
}

func (s *MediaStore) Create(ctx context.Context, m *models.Media) error {
	query := `
		INSERT INTO media (complaint_id, file_name, file_type, file_size, file_url, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		m.ComplaintID, m.FileName, m.FileType, m.FileSize, m.FileURL, m.UploadedAt,
	).Scan(&m.ID)
	if err != nil {
		return errors.Wrap(err, "insert media")
	}
	return nil
}

func (s *MediaStore) Get(ctx context.Context, id int64) (*models.Media, error) {
	query := `SELECT id, complaint_id, file_name, file_type, file_size, file_url, uploaded_at FROM media WHERE id = $1`

	var m models.Media
	err := s.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.ComplaintID, &m.FileName, &m.FileType, &m.FileSize, &m.FileURL, &m.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("media not found with id: %d", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "select media")
	}
	return &m, nil
}

// ListByComplaint returns the media attached to a complaint, oldest first
func (s *MediaStore) ListByComplaint(ctx context.Context, complaintID int64) ([]models.Media, error) {
	query := `
		SELECT id, complaint_id, file_name, file_type, file_size, file_url, uploaded_at
		FROM media
		WHERE complaint_id = $1
		ORDER BY uploaded_at ASC, id ASC
	`

	rows, err := s.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, errors.Wrap(err, "list media")
	}
	defer rows.Close()

	media := make([]models.Media, 0)
	for rows.Next() {
		var m models.Media
		if err := rows.Scan(&m.ID, &m.ComplaintID, &m.FileName, &m.FileType,
			&m.FileSize, &m.FileURL, &m.UploadedAt); err != nil {
			return nil, errors.Wrap(err, "scan media")
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

func (s *MediaStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete media")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("media not found with id: %d", id)
	}
	return nil
}

func (s *MediaStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
