package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

// SessionRepository implements ports.SessionRepository on the sessions table.
type SessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) ports.SessionRepository {
	return &SessionRepository{db: db}
}

// Acquire inserts the session, or replaces the existing one only when it has
// expired. The conditional upsert makes two concurrent logins race on a single
// row: at most one of them sees a row affected.
func (r *SessionRepository) Acquire(ctx context.Context, s domain.Session, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, token_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET token_id = excluded.token_id,
		    expires_at = excluded.expires_at,
		    created_at = excluded.created_at
		WHERE sessions.expires_at <= $5`,
		s.UserID, s.TokenID, s.ExpiresAt.Unix(), now.UTC().Truncate(time.Second), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	if n == 0 {
		return domain.ErrActiveSession
	}
	return nil
}

func (r *SessionRepository) Find(ctx context.Context, userID int64) (*domain.Session, error) {
	var (
		s       domain.Session
		expires int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, token_id, expires_at FROM sessions WHERE user_id = $1`, userID,
	).Scan(&s.UserID, &s.TokenID, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvalidSession
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	s.ExpiresAt = time.Unix(expires, 0).UTC()
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
