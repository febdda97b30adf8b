package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civiceye/backend/internal/config"
)

var schemas = map[string][]string{
	config.UserService: {
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			username      VARCHAR(50)  NOT NULL UNIQUE,
			email         VARCHAR(255) NOT NULL UNIQUE,
			phone_number  VARCHAR(20)  NOT NULL DEFAULT '',
			role          VARCHAR(20)  NOT NULL DEFAULT 'CITIZEN',
			password_hash TEXT         NOT NULL,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,
	},
	config.ComplaintService: {
		`CREATE TABLE IF NOT EXISTS complaints (
			id          BIGSERIAL PRIMARY KEY,
			user_id     BIGINT        NOT NULL,
			title       VARCHAR(200)  NOT NULL,
			description VARCHAR(2000) NOT NULL,
			category    VARCHAR(100)  NOT NULL,
			status      VARCHAR(20)   NOT NULL DEFAULT 'PENDING',
			latitude    DOUBLE PRECISION,
			longitude   DOUBLE PRECISION,
			address     VARCHAR(500),
			created_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_complaints_user_id ON complaints (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints (status)`,
	},
	config.MediaService: {
		`CREATE TABLE IF NOT EXISTS media (
			id           BIGSERIAL PRIMARY KEY,
			complaint_id BIGINT       NOT NULL,
			file_name    VARCHAR(255) NOT NULL,
			file_type    VARCHAR(255) NOT NULL,
			file_size    BIGINT       NOT NULL,
			file_url     TEXT         NOT NULL,
			uploaded_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_media_complaint_id ON media (complaint_id)`,
	},
	config.NotificationService: {
		`CREATE TABLE IF NOT EXISTS notifications (
			id           BIGSERIAL PRIMARY KEY,
			user_id      BIGINT        NOT NULL,
			complaint_id BIGINT,
			message      VARCHAR(1000) NOT NULL,
			type         VARCHAR(50)   NOT NULL,
			is_read      BOOLEAN       NOT NULL DEFAULT FALSE,
			created_at   TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications (user_id, is_read)`,
	},
}

// Migrate creates the tables owned by service if they do not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, service string) error {
	stmts, ok := schemas[service]
	if !ok {
		return fmt.Errorf("no schema for service %q", service)
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", service, err)
		}
	}
	return nil
}
