// internal/session/service.go
// Session lifecycle and blind-reveal orchestration. The matchmaking
// service calls Create/End/Report inside its own locked step; everything
// here must therefore stay fast and in-memory, with the durable audit
// write pushed to a background goroutine.

package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	BlurMax            int
	MaxTopics          int
	SilenceThreshold   time.Duration
	SuggestionCooldown time.Duration
}

type Service interface {
	// Registry
	Create(ctx context.Context, user1, user2, intentMode string) (string, error)
	End(ctx context.Context, sessionID string)
	Report(ctx context.Context, sessionID string)
	SessionFor(userID string) (string, bool)
	Get(sessionID string) (Session, bool)
	ActiveSessionIDs() []string
	ActiveCount() int

	// Blind reveal
	Reveal(sessionID string) (BlindRevealState, bool)
	DecreaseBlur(sessionID string, amount int) (level int, justRevealed, ok bool)
	ForceReveal(sessionID string) (ok bool)
	AddTopic(sessionID, topic, trigger string, now time.Time) (topicNumber int, ok bool)
	SetContent(sessionID, intro, topic string) bool
	RecordActivity(sessionID string, now time.Time) bool
	CheckSilence(sessionID string, now time.Time) (SilenceResult, bool)
	MarkSuggested(sessionID string, now time.Time) bool

	// History
	History(ctx context.Context, userID string, limit int) ([]*Session, error)
}

type service struct {
	mu       sync.Mutex
	cfg      Config
	repo     Repository
	registry *registry
	reveals  map[string]*BlindRevealState
}

func NewService(cfg Config, repo Repository) Service {
	return &service{
		cfg:      cfg,
		repo:     repo,
		registry: newRegistry(),
		reveals:  make(map[string]*BlindRevealState),
	}
}

// Create registers a new active session and its blind-reveal state.
// The audit row is written in the background; a failed write never
// blocks or aborts live orchestration.
func (s *service) Create(ctx context.Context, user1, user2, intentMode string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ID:         uuid.NewString(),
		User1ID:    user1,
		User2ID:    user2,
		IntentMode: intentMode,
		Status:     StatusActive,
		StartedAt:  now,
	}

	s.registry.put(sess)
	s.reveals[sess.ID] = newBlindRevealState(sess.ID, user1, user2, s.cfg.BlurMax, now)
	recordSessionStart()

	go s.persistCreate(*sess)

	return sess.ID, nil
}

func (s *service) End(ctx context.Context, sessionID string) {
	s.finish(sessionID, StatusEnded)
}

func (s *service) Report(ctx context.Context, sessionID string) {
	s.finish(sessionID, StatusReported)
}

// finish closes the session and tears down its blind-reveal state in the
// same step, so no reveal state outlives its session
func (s *service) finish(sessionID string, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.registry.finish(sessionID, status, time.Now())
	if sess == nil {
		return
	}

	delete(s.reveals, sessionID)
	recordSessionFinish(status, *sess.DurationSeconds)

	go s.persistFinish(*sess)

	log.Printf("session: %s finished (%s, %ds)", sessionID, status, *sess.DurationSeconds)
}

func (s *service) SessionFor(userID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.sessionFor(userID)
}

func (s *service) Get(sessionID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.registry.get(sessionID)
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

func (s *service) ActiveSessionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.activeIDs()
}

func (s *service) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.activeCount()
}

func (s *service) Reveal(sessionID string) (BlindRevealState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.reveals[sessionID]
	if !ok {
		return BlindRevealState{}, false
	}
	return *state, true
}

func (s *service) DecreaseBlur(sessionID string, amount int) (int, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.reveals[sessionID]
	if !ok {
		return 0, false, false
	}

	level, justRevealed := state.decreaseBlur(amount)
	if justRevealed {
		recordReveal()
	}
	return level, justRevealed, true
}

// ForceReveal drops the blur straight to zero after mutual consent
func (s *service) ForceReveal(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.reveals[sessionID]
	if !ok {
		return false
	}

	if _, justRevealed := state.decreaseBlur(state.BlurLevel); justRevealed {
		recordReveal()
	}
	return true
}

func (s *service) AddTopic(sessionID, topic, trigger string, now time.Time) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.reveals[sessionID]
	if !ok {
		return 0, false
	}

	state.addTopic(topic, now)
	state.markSuggested(now)
	recordTopic(trigger)

	return len(state.TopicHistory), true
}

// SetContent swaps in the personalized intro and opening topic once the
// background generation resolves
func (s *service) SetContent(sessionID, intro, topic string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.reveals[sessionID]
	if !ok {
		return false
	}

	state.IntroMessage = intro
	if topic != "" {
		state.CurrentTopic = topic
		state.TopicHistory = []string{topic}
	}
	return true
}

func (s *service) RecordActivity(sessionID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.reveals[sessionID]
	if !ok {
		return false
	}

	state.recordActivity(now)
	return true
}

func (s *service) CheckSilence(sessionID string, now time.Time) (SilenceResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.reveals[sessionID]
	if !ok {
		return SilenceResult{}, false
	}

	return state.checkSilence(now, s.cfg.SilenceThreshold, s.cfg.SuggestionCooldown), true
}

// MarkSuggested arms the suggestion cooldown the moment a topic is
// dispatched for generation, so overlapping ticks cannot double-suggest
// while a slow generation is still in flight
func (s *service) MarkSuggested(sessionID string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.reveals[sessionID]
	if !ok {
		return false
	}

	state.markSuggested(now)
	return true
}

func (s *service) History(ctx context.Context, userID string, limit int) ([]*Session, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.GetUserSessions(ctx, userID, limit)
}

func (s *service) persistCreate(sess Session) {
	if s.repo == nil {
		return
	}
	if err := s.repo.CreateSession(context.Background(), &sess); err != nil {
		log.Printf("session: failed to persist session %s: %v", sess.ID, err)
	}
}

func (s *service) persistFinish(sess Session) {
	if s.repo == nil {
		return
	}
	if err := s.repo.FinishSession(context.Background(), &sess); err != nil {
		log.Printf("session: failed to persist session %s end: %v", sess.ID, err)
	}
}
