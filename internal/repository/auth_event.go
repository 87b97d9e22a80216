// internal/repository/auth_event.go
package repository

import (
	"context"
	"fmt"

	"authflow-server/internal/domain/auth"

	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS auth_events (
	id          BIGSERIAL PRIMARY KEY,
	tab_id      TEXT        NOT NULL,
	operation   TEXT        NOT NULL,
	provider    TEXT        NOT NULL DEFAULT '',
	outcome     TEXT        NOT NULL,
	code        TEXT        NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL
)`

const insertEvent = `INSERT INTO auth_events (tab_id, operation, provider, outcome, code, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`

type AuthEventRepository struct {
	db DB
}

func NewAuthEventRepository(db DB) *AuthEventRepository {
	return &AuthEventRepository{db: db}
}

func (r *AuthEventRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create auth_events: %w", err)
	}
	return nil
}

func (r *AuthEventRepository) Record(ctx context.Context, e auth.Event) error {
	_, err := r.db.Exec(ctx, insertEvent,
		e.TabID, e.Operation, e.Provider, string(e.Outcome), e.Code, e.OccurredAt)
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
