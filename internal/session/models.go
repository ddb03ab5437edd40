// internal/session/models.go

package session

import "time"

// Status of a session's lifecycle
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusEnded    Status = "ENDED"
	StatusReported Status = "REPORTED"
)

// Session is one live (or finished) blind-date call between two users.
// Participants are immutable once created.
type Session struct {
	ID              string     `json:"id" db:"id"`
	User1ID         string     `json:"user1_id" db:"user1_id"`
	User2ID         string     `json:"user2_id" db:"user2_id"`
	IntentMode      string     `json:"intent_mode" db:"intent_mode"`
	Status          Status     `json:"status" db:"status"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	DurationSeconds *int       `json:"duration_seconds,omitempty" db:"duration_seconds"`
}

// Other returns the partner of a participant
func (s *Session) Other(userID string) string {
	if s.User1ID == userID {
		return s.User2ID
	}
	return s.User1ID
}

// ConversationPhase orders the blind-date escalation stages
type ConversationPhase string

const (
	PhaseWarmup       ConversationPhase = "warmup"
	PhaseGettingToKnow ConversationPhase = "getting-to-know"
	PhaseDeepDive     ConversationPhase = "deep-dive"
	PhaseRomantic     ConversationPhase = "romantic"
)

// Next returns the following phase; the terminal phase returns itself
func (p ConversationPhase) Next() ConversationPhase {
	switch p {
	case PhaseWarmup:
		return PhaseGettingToKnow
	case PhaseGettingToKnow:
		return PhaseDeepDive
	case PhaseDeepDive:
		return PhaseRomantic
	default:
		return p
	}
}

// BlindRevealState drives the progressive reveal of one session.
// blurLevel only ever decreases; the phase only ever advances.
type BlindRevealState struct {
	SessionID       string            `json:"session_id"`
	Participants    [2]string         `json:"participants"`
	BlurLevel       int               `json:"blur_level"`
	Phase           ConversationPhase `json:"phase"`
	TopicHistory    []string          `json:"topic_history"`
	IntroMessage    string            `json:"intro_message,omitempty"`
	CurrentTopic    string            `json:"current_topic,omitempty"`
	LastActivity    time.Time         `json:"last_activity"`
	LastSuggestion  time.Time         `json:"last_suggestion,omitempty"`
	RevealTriggered bool              `json:"reveal_triggered"`
}

// SilenceResult is what the game loop acts on each poll
type SilenceResult struct {
	SilenceDuration time.Duration
	ShouldSuggest   bool
}
