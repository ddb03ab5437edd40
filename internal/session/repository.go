// internal/session/repository.go

package session

import "context"

// Repository is the durable audit sink for session history. The in-memory
// registry stays the source of truth for live orchestration.
type Repository interface {
	CreateSession(ctx context.Context, session *Session) error
	FinishSession(ctx context.Context, session *Session) error
	GetUserSessions(ctx context.Context, userID string, limit int) ([]*Session, error)
}
