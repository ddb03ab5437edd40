// internal/realtime/gateway.go
// Translates websocket events into matchmaking and session operations.
// Authentication is a JWT minted by the identity service; this gateway
// only verifies it.

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/peerzee/match-backend/internal/ai"
	"github.com/peerzee/match-backend/internal/common/utils"
	"github.com/peerzee/match-backend/internal/matchmaking"
	"github.com/peerzee/match-backend/internal/presence"
	"github.com/peerzee/match-backend/internal/session"
)

const (
	embedTimeout    = 10 * time.Second
	generateTimeout = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Configure CORS as needed
		return true
	},
}

type Gateway struct {
	hub       *Hub
	matches   matchmaking.Service
	sessions  session.Service
	ai        *ai.Client
	presence  presence.Service
	jwtSecret string

	// Last join payload per user, kept so call:next can re-enqueue the
	// same profile without a fresh embedding
	mu       sync.Mutex
	profiles map[string]matchmaking.QueueEntry
}

func NewGateway(
	hub *Hub,
	matches matchmaking.Service,
	sessions session.Service,
	aiClient *ai.Client,
	presenceService presence.Service,
	jwtSecret string,
) *Gateway {
	return &Gateway{
		hub:       hub,
		matches:   matches,
		sessions:  sessions,
		ai:        aiClient,
		presence:  presenceService,
		jwtSecret: jwtSecret,
		profiles:  make(map[string]matchmaking.QueueEntry),
	}
}

// HandleWebSocket authenticates and upgrades the connection
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	claims, err := utils.ValidateJWT(token, g.jwtSecret)
	if err != nil || claims.UserID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := NewClient(g.hub, conn, claims.UserID)
	g.hub.register <- client
	client.Start()
}

func (g *Gateway) HandleConnect(userID string) {
	if g.presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		// Fresh connections get the status key created here; later
		// transitions only rewrite it
		if err := g.presence.SetOnline(ctx, userID); err != nil {
			log.Printf("realtime: presence online failed for %s: %v", userID, err)
		}
	}

	g.sendQueueStatus(userID)
}

func (g *Gateway) HandleDisconnect(userID string) {
	g.mu.Lock()
	delete(g.profiles, userID)
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	partnerID, sessionID, hadSession := g.matches.Disconnect(ctx, userID)
	if hadSession && partnerID != "" {
		g.hub.SendEvent(partnerID, EventCallEnded, CallEndedPayload{
			SessionID: sessionID,
			Reason:    ReasonPartnerDisconnected,
		})
		g.setPresence(partnerID, presence.StatusOnline)
	}

	if g.presence != nil {
		if err := g.presence.SetOffline(ctx, userID); err != nil {
			log.Printf("realtime: presence offline failed for %s: %v", userID, err)
		}
	}

	g.BroadcastQueueStatus()
}

func (g *Gateway) HandleMessage(userID string, msg WSMessage) {
	switch msg.Type {
	case EventQueueJoin:
		g.handleQueueJoin(userID, msg.Data)
	case EventQueueLeave:
		g.handleQueueLeave(userID)
	case EventCallOffer, EventCallAnswer, EventCallICECandidate:
		g.handleSignal(userID, msg.Type, msg.Data)
	case EventCallEnd:
		g.handleCallEnd(userID)
	case EventCallNext:
		g.handleCallNext(userID, msg.Data)
	case EventCallReport:
		g.handleCallReport(userID, msg.Data)
	case EventBlindActivity:
		g.handleBlindActivity(userID)
	case EventBlindRequestTopic:
		g.handleRequestTopic(userID)
	case EventBlindRequestReveal:
		g.handleRequestReveal(userID)
	case EventBlindAcceptReveal:
		g.handleAcceptReveal(userID)
	case EventChatMessage:
		g.handleChatMessage(userID, msg.Data)
	default:
		log.Printf("realtime: unknown event type %q from %s", msg.Type, userID)
	}
}

func (g *Gateway) handleQueueJoin(userID string, data json.RawMessage) {
	var req matchmaking.JoinRequest
	if err := json.Unmarshal(data, &req); err != nil {
		g.sendError(userID, EventQueueJoin, "invalid payload")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		g.sendError(userID, EventQueueJoin, err.Error())
		return
	}

	entry := entryFromRequest(userID, req)

	// Embedding happens before the queue is touched so the matching
	// step itself never waits on the network
	ctx, cancel := context.WithTimeout(context.Background(), embedTimeout)
	entry.Embedding = g.ai.EmbedProfile(ctx, profileFromEntry(entry))
	cancel()

	g.mu.Lock()
	g.profiles[userID] = *entry
	g.mu.Unlock()

	g.joinQueue(userID, entry)
}

// joinQueue runs the queue insert plus match attempt and fans out the
// results. Shared by queue:join and call:next.
func (g *Gateway) joinQueue(userID string, entry *matchmaking.QueueEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := g.matches.Join(ctx, entry)
	if err != nil {
		g.sendError(userID, EventQueueJoin, err.Error())
		return
	}

	if result == nil {
		g.setPresence(userID, presence.StatusMatching)
		g.sendQueueStatus(userID)
		g.BroadcastQueueStatus()
		return
	}

	g.notifyMatch(result, entry)
	g.BroadcastQueueStatus()
}

func (g *Gateway) notifyMatch(result *matchmaking.MatchResult, initiator *matchmaking.QueueEntry) {
	g.setPresence(result.InitiatorID, presence.StatusBusy)
	g.setPresence(result.ReceiverID, presence.StatusBusy)

	blurLevel := 0
	if state, ok := g.sessions.Reveal(result.SessionID); ok {
		blurLevel = state.BlurLevel
	}

	blind := BlindDatePayload{
		IntroMessage: ai.DefaultIntro,
		InitialTopic: ai.DefaultTopic,
		BlurLevel:    blurLevel,
	}

	g.hub.SendEvent(result.InitiatorID, EventMatchFound, MatchFoundPayload{
		SessionID:   result.SessionID,
		RoomID:      result.RoomID,
		PartnerID:   result.ReceiverID,
		PartnerName: result.Partner.DisplayName,
		IsInitiator: true,
		Similarity:  result.Similarity,
		BlindDate:   blind,
	})
	g.hub.SendEvent(result.ReceiverID, EventMatchFound, MatchFoundPayload{
		SessionID:   result.SessionID,
		RoomID:      result.RoomID,
		PartnerID:   result.InitiatorID,
		PartnerName: initiator.DisplayName,
		IsInitiator: false,
		Similarity:  result.Similarity,
		BlindDate:   blind,
	})

	log.Printf("realtime: match %s <-> %s (session %s, similarity %.2f)",
		result.InitiatorID, result.ReceiverID, result.SessionID, result.Similarity)

	go g.generateSessionContent(
		result.SessionID,
		profileFromEntry(initiator),
		profileFromEntry(result.Partner),
		result.InitiatorID,
		result.ReceiverID,
	)
}

// generateSessionContent replaces the placeholder intro and topic once
// the model responds. Users already have defaults, so failure here only
// costs personalization.
func (g *Gateway) generateSessionContent(sessionID string, p1, p2 ai.Profile, user1, user2 string) {
	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	intro := g.ai.GenerateIntro(ctx, p1, p2)
	topic := g.ai.GenerateTopic(ctx, p1, p2, nil, string(session.PhaseWarmup), false)

	if !g.sessions.SetContent(sessionID, intro, topic) {
		// Session ended before generation finished
		return
	}

	payload := ContentUpdatedPayload{
		SessionID:    sessionID,
		IntroMessage: intro,
		CurrentTopic: topic,
	}
	g.hub.SendEvent(user1, EventBlindContentUpdated, payload)
	g.hub.SendEvent(user2, EventBlindContentUpdated, payload)
}

func (g *Gateway) handleQueueLeave(userID string) {
	if err := g.matches.Leave(userID); err != nil {
		return
	}

	g.setPresence(userID, presence.StatusOnline)
	g.sendQueueStatus(userID)
	g.BroadcastQueueStatus()
}

func (g *Gateway) handleSignal(userID, eventType string, data json.RawMessage) {
	var payload SignalPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		g.sendError(userID, eventType, "invalid payload")
		return
	}

	pair, ok := g.matches.PairFor(userID)
	if !ok {
		g.sendError(userID, eventType, "not in a session")
		return
	}

	if payload.SessionID == "" {
		if sessionID, ok := g.sessions.SessionFor(userID); ok {
			payload.SessionID = sessionID
		}
	}
	payload.FromUserID = userID

	g.hub.SendEvent(pair.PartnerID, eventType, payload)
}

func (g *Gateway) handleCallEnd(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	partnerID, sessionID, ok := g.matches.EndSession(ctx, userID)
	if ok && partnerID != "" {
		g.hub.SendEvent(partnerID, EventCallEnded, CallEndedPayload{
			SessionID: sessionID,
			Reason:    ReasonPartnerEnded,
		})
		g.setPresence(partnerID, presence.StatusOnline)
	}

	g.matches.Release(userID)
	g.setPresence(userID, presence.StatusOnline)
	g.BroadcastQueueStatus()
}

func (g *Gateway) handleCallNext(userID string, data json.RawMessage) {
	var payload NextPayload
	if len(data) > 0 {
		json.Unmarshal(data, &payload)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	partnerID, sessionID, ok := g.matches.EndSession(ctx, userID)
	if ok && partnerID != "" {
		g.hub.SendEvent(partnerID, EventCallEnded, CallEndedPayload{
			SessionID: sessionID,
			Reason:    ReasonPartnerSkipped,
		})
		g.setPresence(partnerID, presence.StatusOnline)
	}

	entry := g.cachedEntry(userID)
	if payload.IntentMode != "" {
		entry.IntentMode = matchmaking.IntentMode(payload.IntentMode)
	}
	if payload.GenderPreference != "" {
		entry.GenderPreference = matchmaking.GenderPreference(payload.GenderPreference)
	}
	entry.JoinedAt = time.Time{}

	g.joinQueue(userID, &entry)
}

func (g *Gateway) handleCallReport(userID string, data json.RawMessage) {
	var payload ReportPayload
	if len(data) > 0 {
		json.Unmarshal(data, &payload)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	partnerID, sessionID, ok := g.matches.ReportSession(ctx, userID)
	if !ok {
		g.sendError(userID, EventCallReport, "not in a session")
		return
	}

	log.Printf("realtime: user %s reported session %s: %s", userID, sessionID, payload.Reason)

	if partnerID != "" {
		g.hub.SendEvent(partnerID, EventCallEnded, CallEndedPayload{
			SessionID: sessionID,
			Reason:    ReasonReported,
		})
		g.setPresence(partnerID, presence.StatusOnline)
	}
	g.setPresence(userID, presence.StatusOnline)
	g.BroadcastQueueStatus()
}

func (g *Gateway) handleBlindActivity(userID string) {
	sessionID, ok := g.sessions.SessionFor(userID)
	if !ok {
		return
	}
	g.sessions.RecordActivity(sessionID, time.Now())
}

func (g *Gateway) handleRequestTopic(userID string) {
	sessionID, ok := g.sessions.SessionFor(userID)
	if !ok {
		g.sendError(userID, EventBlindRequestTopic, "not in a session")
		return
	}

	state, ok := g.sessions.Reveal(sessionID)
	if !ok {
		return
	}

	// A manual request counts as a suggestion immediately, keeping the
	// silence rescue quiet while this one generates
	g.sessions.MarkSuggested(sessionID, time.Now())

	go g.suggestTopic(sessionID, state, "manual", false, userID)
}

func (g *Gateway) handleRequestReveal(userID string) {
	sessionID, ok := g.sessions.SessionFor(userID)
	if !ok {
		g.sendError(userID, EventBlindRequestReveal, "not in a session")
		return
	}

	pair, ok := g.matches.PairFor(userID)
	if !ok {
		return
	}

	g.hub.SendEvent(pair.PartnerID, EventBlindRevealRequested, RevealRequestedPayload{
		SessionID:  sessionID,
		FromUserID: userID,
	})
}

func (g *Gateway) handleAcceptReveal(userID string) {
	sessionID, ok := g.sessions.SessionFor(userID)
	if !ok {
		g.sendError(userID, EventBlindAcceptReveal, "not in a session")
		return
	}

	state, ok := g.sessions.Reveal(sessionID)
	if !ok {
		return
	}

	g.sessions.ForceReveal(sessionID)

	payload := BlurUpdatePayload{
		SessionID: sessionID,
		BlurLevel: 0,
		Revealed:  true,
		Message:   "🎉 Faces revealed! You both agreed to reveal!",
	}
	g.hub.SendEvent(state.Participants[0], EventBlindBlurUpdate, payload)
	g.hub.SendEvent(state.Participants[1], EventBlindBlurUpdate, payload)
}

func (g *Gateway) handleChatMessage(userID string, data json.RawMessage) {
	var payload ChatPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Message == "" {
		return
	}

	pair, ok := g.matches.PairFor(userID)
	if !ok {
		g.sendError(userID, EventChatMessage, "not in a session")
		return
	}

	g.hub.SendEvent(pair.PartnerID, EventChatMessage, ChatDeliveryPayload{
		Sender:    "stranger",
		Content:   payload.Message,
		Timestamp: time.Now(),
	})

	if sessionID, ok := g.sessions.SessionFor(userID); ok {
		g.sessions.RecordActivity(sessionID, time.Now())
	}
}

// suggestTopic generates and publishes the next topic for a session.
// Runs outside any lock; the session may end while the model responds.
func (g *Gateway) suggestTopic(sessionID string, state session.BlindRevealState, trigger string, rescue bool, requestedBy string) {
	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	p1 := g.profileFor(state.Participants[0])
	p2 := g.profileFor(state.Participants[1])

	topic := g.ai.GenerateTopic(ctx, p1, p2, state.TopicHistory, string(state.Phase), rescue)

	topicNumber, ok := g.sessions.AddTopic(sessionID, topic, trigger, time.Now())
	if !ok {
		return
	}

	payload := NewTopicPayload{
		SessionID:   sessionID,
		Topic:       topic,
		IsRescue:    rescue,
		TopicNumber: topicNumber,
		RequestedBy: requestedBy,
	}
	g.hub.SendEvent(state.Participants[0], EventBlindNewTopic, payload)
	g.hub.SendEvent(state.Participants[1], EventBlindNewTopic, payload)
}

// sendQueueStatus delivers a personalized queue:status frame
func (g *Gateway) sendQueueStatus(userID string) {
	payload := QueueStatusPayload{
		QueueSize: g.matches.QueueSize(),
		IsInQueue: g.matches.IsQueued(userID),
	}
	if payload.IsInQueue {
		stats := g.matches.Stats(userID)
		payload.Searching = true
		payload.Position = stats.Position
		payload.EstimatedWait = stats.EstimatedWait
	}

	g.hub.SendEvent(userID, EventQueueStatus, payload)
}

// BroadcastQueueStatus refreshes queue:status for everyone connected
func (g *Gateway) BroadcastQueueStatus() {
	for _, userID := range g.hub.ConnectedUserIDs() {
		g.sendQueueStatus(userID)
	}
}

func (g *Gateway) sendError(userID, event, message string) {
	g.hub.SendEvent(userID, EventError, ErrorPayload{Event: event, Message: message})
}

func (g *Gateway) setPresence(userID string, status presence.Status) {
	if g.presence == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var err error
	switch status {
	case presence.StatusMatching:
		err = g.presence.JoinMatchingPool(ctx, userID)
	case presence.StatusBusy:
		err = g.presence.SetBusy(ctx, userID)
	default:
		err = g.presence.LeaveMatchingPool(ctx, userID)
	}
	if err != nil {
		log.Printf("realtime: presence update failed for %s: %v", userID, err)
	}
}

// cachedEntry returns the user's last join profile, or a minimal default
// when they never joined on this connection
func (g *Gateway) cachedEntry(userID string) matchmaking.QueueEntry {
	g.mu.Lock()
	defer g.mu.Unlock()

	if entry, ok := g.profiles[userID]; ok {
		return entry
	}
	return matchmaking.QueueEntry{
		UserID:           userID,
		IntentMode:       matchmaking.IntentDate,
		GenderPreference: matchmaking.PreferAll,
	}
}

// profileFor builds the AI-facing profile for a user from the join cache
func (g *Gateway) profileFor(userID string) ai.Profile {
	g.mu.Lock()
	defer g.mu.Unlock()

	if entry, ok := g.profiles[userID]; ok {
		return profileFromEntry(&entry)
	}
	return ai.Profile{}
}

func entryFromRequest(userID string, req matchmaking.JoinRequest) *matchmaking.QueueEntry {
	pref := matchmaking.GenderPreference(req.GenderPreference)
	if pref == "" {
		pref = matchmaking.PreferAll
	}

	return &matchmaking.QueueEntry{
		UserID:           userID,
		IntentMode:       matchmaking.IntentMode(req.IntentMode),
		GenderPreference: pref,
		Gender:           matchmaking.Gender(req.Gender),
		City:             req.City,
		DisplayName:      req.DisplayName,
		Bio:              req.Bio,
		Tags:             req.Tags,
		Query:            req.Query,
	}
}

func profileFromEntry(entry *matchmaking.QueueEntry) ai.Profile {
	return ai.Profile{
		DisplayName: entry.DisplayName,
		Bio:         entry.Bio,
		Tags:        entry.Tags,
		City:        entry.City,
		IntentMode:  string(entry.IntentMode),
		Query:       entry.Query,
	}
}

// blurMessage is what accompanies each blur step
func blurMessage(level int) string {
	if level > 0 {
		return fmt.Sprintf("Chemistry is building! Blur down to %dpx 💕", level)
	}
	return "🎉 Faces revealed! Do you want to match?"
}
