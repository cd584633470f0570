package simulation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Alexandre220990/ProfitumMVP-sub006/pkg/platform/sentinel"
)

// PostgresSessionStore persists sessions in PostgreSQL.
type PostgresSessionStore struct {
	db *sql.DB
}

func NewPostgresSessionStore(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

func (s *PostgresSessionStore) Create(ctx context.Context, session Session) error {
	query := `
		INSERT INTO simulation_sessions (id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, session.ID, string(session.Status), session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PostgresSessionStore) Get(ctx context.Context, sessionID string) (Session, error) {
	query := `
		SELECT id, status, created_at, updated_at
		FROM simulation_sessions
		WHERE id = $1
	`
	var (
		session Session
		status  string
	)
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&session.ID, &status, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, sentinel.ErrNotFound
		}
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	session.Status = Status(status)
	return session, nil
}

func (s *PostgresSessionStore) SetStatus(ctx context.Context, sessionID string, status Status) error {
	query := `
		UPDATE simulation_sessions
		SET status = $2, updated_at = $3
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query, sessionID, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
