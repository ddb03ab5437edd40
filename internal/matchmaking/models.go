// internal/matchmaking/models.go

package matchmaking

import (
	"strings"
	"time"
)

// IntentMode is the relationship goal used as a hard matching filter
type IntentMode string

const (
	IntentDate   IntentMode = "DATE"
	IntentStudy  IntentMode = "STUDY"
	IntentFriend IntentMode = "FRIEND"
)

// Gender of a queued user; empty means unknown
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// GenderPreference is who the user wants to be matched with
type GenderPreference string

const (
	PreferMale   GenderPreference = "MALE"
	PreferFemale GenderPreference = "FEMALE"
	PreferAll    GenderPreference = "ALL"
)

// QueueStatus is the logical state of a queue entry
type QueueStatus string

const (
	StatusWaiting      QueueStatus = "WAITING"
	StatusMatchPending QueueStatus = "MATCH_PENDING"
)

// MatchRole distinguishes the two sides of a committed pair
type MatchRole string

const (
	RoleInitiator MatchRole = "INITIATOR"
	RoleReceiver  MatchRole = "RECEIVER"
)

// QueueEntry is one user waiting for a partner
type QueueEntry struct {
	UserID           string           `json:"user_id"`
	IntentMode       IntentMode       `json:"intent_mode"`
	GenderPreference GenderPreference `json:"gender_preference"`
	Gender           Gender           `json:"gender,omitempty"`
	City             string           `json:"city,omitempty"`
	DisplayName      string           `json:"display_name,omitempty"`
	Bio              string           `json:"bio,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
	Query            string           `json:"query,omitempty"`
	Embedding        []float64        `json:"-"`
	Status           QueueStatus      `json:"status"`
	JoinedAt         time.Time        `json:"joined_at"`
}

// Flexible reports whether the entry can satisfy any gender requirement.
// Unknown gender and OTHER both count as flexible.
func (e *QueueEntry) Flexible() bool {
	return e.Gender == "" || e.Gender == GenderOther
}

// CityKey normalizes the city field for comparison
func (e *QueueEntry) CityKey() string {
	return strings.ToLower(strings.TrimSpace(e.City))
}

// MatchPair is one side of the bidirectional lock committed for a match
type MatchPair struct {
	UserID    string    `json:"user_id"`
	PartnerID string    `json:"partner_id"`
	Role      MatchRole `json:"role"`
	RoomID    string    `json:"room_id"`
	Timestamp time.Time `json:"timestamp"`
}

// QueueStats is what waiting users see in queue:status broadcasts
type QueueStats struct {
	Position      int    `json:"position"`
	Total         int    `json:"total"`
	EstimatedWait string `json:"estimated_wait"`
}

// MatchResult describes a committed match ready for session setup
type MatchResult struct {
	SessionID   string
	RoomID      string
	InitiatorID string
	ReceiverID  string
	Partner     *QueueEntry
	Similarity  float64
}

// JoinRequest is the queue:join payload. Profile fields ride along
// because identity and profiles live in a separate service.
type JoinRequest struct {
	IntentMode       string   `json:"intentMode" validate:"required,oneof=DATE STUDY FRIEND"`
	GenderPreference string   `json:"genderPreference" validate:"omitempty,oneof=MALE FEMALE ALL"`
	Gender           string   `json:"gender,omitempty" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	City             string   `json:"city,omitempty" validate:"omitempty,max=100"`
	DisplayName      string   `json:"displayName,omitempty" validate:"omitempty,max=100"`
	Bio              string   `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Tags             []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	Query            string   `json:"query,omitempty" validate:"omitempty,max=500"`
}
