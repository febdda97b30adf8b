package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/civiceye/backend/internal/apperr"
	"github.com/civiceye/backend/internal/models"
)

const (
	userColumns        = `id, username, email, phone_number, role, password_hash, created_at, updated_at`
	pgUniqueViolation  = "23505"
	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

// UserStore persists user accounts in PostgreSQL
type UserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (username, email, phone_number, role, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		u.Username, u.Email, u.PhoneNumber, u.Role, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if err != nil {
		return userWriteError(err, u, "insert user")
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.getBy(ctx, "id", id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found with id: %d", id)
	}
	return u, err
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.getBy(ctx, "email", email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found with email: %s", email)
	}
	return u, err
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.getBy(ctx, "username", username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("user not found with username: %s", username)
	}
	return u, err
}

// getBy looks a user up by one of the fixed, unique columns above.
func (s *UserStore) getBy(ctx context.Context, column string, value interface{}) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	var u models.User
	err := s.db.QueryRow(ctx, query, value).Scan(
		&u.ID, &u.Username, &u.Email, &u.PhoneNumber, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select user by %s", column)
	}
	return &u, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PhoneNumber, &u.Role,
			&u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan user")
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, phone_number = $4, role = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := s.db.Exec(ctx, query, u.ID, u.Username, u.Email, u.PhoneNumber, u.Role, u.UpdatedAt)
	if err != nil {
		return userWriteError(err, u, "update user")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found with id: %d", u.ID)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "delete user")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("user not found with id: %d", id)
	}
	return nil
}

func (s *UserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (s *UserStore) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (s *UserStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// userWriteError turns unique violations into Conflict errors.
func userWriteError(err error, u *models.User, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case emailConstraint:
			return apperr.Conflict("email already exists: %s", u.Email)
		case usernameConstraint:
			return apperr.Conflict("username already exists: %s", u.Username)
		}
		return apperr.Conflict("user already exists")
	}
	return errors.Wrap(err, op)
}
