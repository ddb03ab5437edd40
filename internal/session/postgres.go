// internal/session/postgres.go

package session

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// CreateSession inserts the audit row for a freshly created session
func (r *postgresRepository) CreateSession(ctx context.Context, session *Session) error {
	query := `
        INSERT INTO video_sessions (
            id, user1_id, user2_id, intent_mode, status, started_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(
		ctx, query,
		session.ID, session.User1ID, session.User2ID,
		session.IntentMode, session.Status, session.StartedAt,
	)

	return err
}

// FinishSession records the final status and duration
func (r *postgresRepository) FinishSession(ctx context.Context, session *Session) error {
	query := `
        UPDATE video_sessions
        SET status = $1, ended_at = $2, duration_seconds = $3
        WHERE id = $4`

	_, err := r.db.ExecContext(
		ctx, query,
		session.Status, session.EndedAt, session.DurationSeconds, session.ID,
	)

	return err
}

// GetUserSessions returns a user's most recent sessions
func (r *postgresRepository) GetUserSessions(ctx context.Context, userID string, limit int) ([]*Session, error) {
	query := `
        SELECT id, user1_id, user2_id, intent_mode, status,
               started_at, ended_at, duration_seconds
        FROM video_sessions
        WHERE user1_id = $1 OR user2_id = $1
        ORDER BY started_at DESC
        LIMIT $2`

	var sessions []*Session
	err := r.db.SelectContext(ctx, &sessions, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}
