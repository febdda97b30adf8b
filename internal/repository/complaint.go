// Package repository persists each service's records. Postgres stores back
// production deployments; memory stores back development and tests.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/models"
)

const complaintColumns = `id, user_id, title, description, category, status, latitude, longitude, address, created_at, updated_at`

// ComplaintStore persists complaints in PostgreSQL
type ComplaintStore struct {
	db *pgxpool.Pool
}

// NewComplaintStore creates a new complaint store
func NewComplaintStore(db *pgxpool.Pool) *ComplaintStore {
	return &ComplaintStore{db: db}
}

// Create inserts c and fills in its ID
func (s *ComplaintStore) Create(ctx context.Context, c *models.Complaint) error {
	query := `
		INSERT INTO complaints (user_id, title, description, category, status, latitude, longitude, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		c.UserID, c.Title, c.Description, c.Category, c.Status,
		c.Latitude, c.Longitude, c.Address,
		c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	if err != nil {
		return errors.Wrap(err, "insert complaint")
	}
	return nil
}

// Get returns a complaint by id
func (s *ComplaintStore) Get(ctx context.Context, id int64) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`

	c, err := scanComplaint(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("complaint not found with id: %d", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "select complaint")
	}
	return c, nil
}

// List returns complaints matching f, newest first
func (s *ComplaintStore) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.UserID != 0 {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + complaintColumns + ` FROM complaints`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list complaints")
	}
	defer rows.Close()

	complaints := make([]models.Complaint, 0)
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan complaint")
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}

// Update overwrites the mutable fields of c
func (s *ComplaintStore) Update(ctx context.Context, c *models.Complaint) error {
	query := `
		UPDATE complaints
		SET title = $2, description = $3, category = $4, latitude = $5, longitude = $6, address = $7, updated_at = $8
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query,
		c.ID, c.Title, c.Description, c.Category,
		c.Latitude, c.Longitude, c.Address, c.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "update complaint")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("complaint not found with id: %d", c.ID)
	}
	return nil
}

// UpdateStatus sets the status in a single statement and returns the prior
// status together with the updated row.
func (s *ComplaintStore) UpdateStatus(ctx context.Context, id int64, status models.ComplaintStatus, now time.Time) (models.ComplaintStatus, *models.Complaint, error) {
	query := `
		WITH prev AS (
			SELECT id, status FROM complaints WHERE id = $1 FOR UPDATE
		)
		UPDATE complaints c
		SET status = $2, updated_at = $3
		FROM prev
		WHERE c.id = prev.id
		RETURNING prev.status, c.id, c.user_id, c.title, c.description, c.category, c.status,
			c.latitude, c.longitude, c.address, c.created_at, c.updated_at
	`

	var (
		old models.ComplaintStatus
		c   models.Complaint
	)
	err := s.db.QueryRow(ctx, query, id, status, now).Scan(
		&old, &c.ID, &c.UserID, &c.Title, &c.Description, &c.Category, &c.Status,
		&c.Latitude, &c.Longitude, &c.Address, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil, apperr.NotFound("complaint not found with id: %d", id)
	}
	if err != nil {
		return "", nil, errors.Wrap(err, "update complaint status")
	}
	return old, &c, nil
}

// Delete removes a complaint. Media and notifications referencing it live in
// other services and are not touched.
func (s *ComplaintStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM complaints WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete complaint")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("complaint not found with id: %d", id)
	}
	return nil
}

// Count returns the total number of complaints
func (s *ComplaintStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM complaints").Scan(&count)
	return count, err
}

func (s *ComplaintStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func scanComplaint(row pgx.Row) (*models.Complaint, error) {
	var c models.Complaint
	err := row.Scan(&c.ID, &c.UserID, &c.Title, &c.Description, &c.Category, &c.Status,
		&c.Latitude, &c.Longitude, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
