// internal/session/registry.go
// In-memory registry of live sessions. The owning service serializes access.

package session

import "time"

type registry struct {
	sessions     map[string]*Session
	userSessions map[string]string // userID -> sessionID
}

func newRegistry() *registry {
	return &registry{
		sessions:     make(map[string]*Session),
		userSessions: make(map[string]string),
	}
}

func (r *registry) put(s *Session) {
	r.sessions[s.ID] = s
	r.userSessions[s.User1ID] = s.ID
	r.userSessions[s.User2ID] = s.ID
}

func (r *registry) get(sessionID string) (*Session, bool) {
	s, ok := r.sessions[sessionID]
	return s, ok
}

func (r *registry) sessionFor(userID string) (string, bool) {
	id, ok := r.userSessions[userID]
	return id, ok
}

// finish marks the session done and drops both user lookups.
// Returns nil when the session is unknown or already finished.
func (r *registry) finish(sessionID string, status Status, endedAt time.Time) *Session {
	s, ok := r.sessions[sessionID]
	if !ok || s.Status != StatusActive {
		return nil
	}

	s.Status = status
	s.EndedAt = &endedAt
	duration := int(endedAt.Sub(s.StartedAt).Seconds())
	s.DurationSeconds = &duration

	delete(r.userSessions, s.User1ID)
	delete(r.userSessions, s.User2ID)
	delete(r.sessions, sessionID)

	return s
}

func (r *registry) activeCount() int {
	return len(r.sessions)
}

func (r *registry) activeIDs() []string {
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}
