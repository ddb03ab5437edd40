// internal/realtime/models.go
// Wire protocol for the websocket gateway. Event names and payload
// shapes match what the mobile and web clients already speak.

package realtime

import (
	"encoding/json"
	"time"
)

// Client -> server events
const (
	EventQueueJoin          = "queue:join"
	EventQueueLeave         = "queue:leave"
	EventCallOffer          = "call:offer"
	EventCallAnswer         = "call:answer"
	EventCallICECandidate   = "call:ice-candidate"
	EventCallEnd            = "call:end"
	EventCallNext           = "call:next"
	EventCallReport         = "call:report"
	EventBlindActivity      = "blind:activity"
	EventBlindRequestTopic  = "blind:request_topic"
	EventBlindRequestReveal = "blind:request_reveal"
	EventBlindAcceptReveal  = "blind:accept_reveal"
	EventChatMessage        = "chat:message"
)

// Server -> client events
const (
	EventMatchFound           = "match:found"
	EventQueueStatus          = "queue:status"
	EventCallEnded            = "call:ended"
	EventBlindBlurUpdate      = "blind:blur_update"
	EventBlindNewTopic        = "blind:new_topic"
	EventBlindContentUpdated  = "blind:content_updated"
	EventBlindRevealRequested = "blind:reveal_requested"
	EventError                = "error"
)

// WSMessage is the envelope for every frame in both directions
type WSMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// SignalPayload carries WebRTC negotiation blobs. Offer, answer and
// candidate are forwarded verbatim to the partner.
type SignalPayload struct {
	SessionID  string          `json:"sessionId"`
	Offer      json.RawMessage `json:"offer,omitempty"`
	Answer     json.RawMessage `json:"answer,omitempty"`
	Candidate  json.RawMessage `json:"candidate,omitempty"`
	FromUserID string          `json:"fromUserId,omitempty"`
}

// BlindDatePayload is the blind-reveal part of a match notification
type BlindDatePayload struct {
	IntroMessage string `json:"introMessage"`
	InitialTopic string `json:"initialTopic"`
	BlurLevel    int    `json:"blurLevel"`
}

// MatchFoundPayload notifies one side of a committed match
type MatchFoundPayload struct {
	SessionID   string           `json:"sessionId"`
	RoomID      string           `json:"roomId"`
	PartnerID   string           `json:"partnerId"`
	PartnerName string           `json:"partnerName,omitempty"`
	IsInitiator bool             `json:"isInitiator"`
	Similarity  float64          `json:"similarity,omitempty"`
	BlindDate   BlindDatePayload `json:"blindDate"`
}

// QueueStatusPayload reports queue state to a connected user
type QueueStatusPayload struct {
	QueueSize     int    `json:"queueSize"`
	IsInQueue     bool   `json:"isInQueue"`
	Searching     bool   `json:"searching,omitempty"`
	Position      int    `json:"position,omitempty"`
	EstimatedWait string `json:"estimatedWait,omitempty"`
}

// CallEndedPayload tells a user why their call stopped
type CallEndedPayload struct {
	SessionID string `json:"sessionId,omitempty"`
	Reason    string `json:"reason"`
}

// Reasons carried in call:ended
const (
	ReasonPartnerEnded        = "partner_ended"
	ReasonPartnerSkipped      = "partner_skipped"
	ReasonPartnerDisconnected = "partner_disconnected"
	ReasonReported            = "reported"
)

// BlurUpdatePayload announces a blur level change
type BlurUpdatePayload struct {
	SessionID string `json:"sessionId"`
	BlurLevel int    `json:"blurLevel"`
	Revealed  bool   `json:"revealed"`
	Message   string `json:"message"`
}

// NewTopicPayload delivers the next conversation topic
type NewTopicPayload struct {
	SessionID   string `json:"sessionId"`
	Topic       string `json:"topic"`
	IsRescue    bool   `json:"isRescue"`
	TopicNumber int    `json:"topicNumber"`
	RequestedBy string `json:"requestedBy,omitempty"`
}

// ContentUpdatedPayload swaps in personalized intro and topic once
// background generation completes
type ContentUpdatedPayload struct {
	SessionID    string `json:"sessionId"`
	IntroMessage string `json:"introMessage"`
	CurrentTopic string `json:"currentTopic"`
}

// RevealRequestedPayload asks the partner to consent to an early reveal
type RevealRequestedPayload struct {
	SessionID  string `json:"sessionId"`
	FromUserID string `json:"fromUserId"`
}

// ChatPayload is an inbound text message
type ChatPayload struct {
	Message string `json:"message"`
}

// ChatDeliveryPayload is the message as the partner sees it. The sender
// stays anonymous until reveal.
type ChatDeliveryPayload struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ReportPayload carries the reason for a call:report
type ReportPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NextPayload optionally overrides preferences when skipping to the
// next partner
type NextPayload struct {
	IntentMode       string `json:"intentMode,omitempty"`
	GenderPreference string `json:"genderPreference,omitempty"`
}

// ErrorPayload is sent back when an inbound event cannot be handled
type ErrorPayload struct {
	Event   string `json:"event"`
	Message string `json:"message"`
}

func newWSMessage(eventType string, payload interface{}) WSMessage {
	return WSMessage{
		Type:      eventType,
		Data:      mustMarshal(payload),
		Timestamp: time.Now(),
	}
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}
