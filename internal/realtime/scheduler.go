// internal/realtime/scheduler.go
// Background loops: periodic queue:status refresh and the game loop that
// drives blur decay, topic rotation and silence rescue for every active
// session.

package realtime

import (
	"sync"
	"time"

	"github.com/peerzee/match-backend/internal/session"
)

type SchedulerConfig struct {
	QueueBroadcastInterval time.Duration
	GameLoopInterval       time.Duration
	BlurInterval           time.Duration
	BlurDecrement          int
	TopicInterval          time.Duration
	MaxTopics              int
}

type Scheduler struct {
	gateway  *Gateway
	sessions session.Service
	cfg      SchedulerConfig

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewScheduler(gateway *Gateway, sessions session.Service, cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		gateway:  gateway,
		sessions: sessions,
		cfg:      cfg,
		stop:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(2)
	go s.queueLoop()
	go s.gameLoop()
}

func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Scheduler) queueLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.QueueBroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.gateway.BroadcastQueueStatus()
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) gameLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.GameLoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(time.Now())
		case <-s.stop:
			return
		}
	}
}

// tick advances every active session one game-loop step
func (s *Scheduler) tick(now time.Time) {
	for _, sessionID := range s.sessions.ActiveSessionIDs() {
		sess, ok := s.sessions.Get(sessionID)
		if !ok {
			continue
		}
		state, ok := s.sessions.Reveal(sessionID)
		if !ok {
			continue
		}

		elapsed := now.Sub(sess.StartedAt)

		s.stepBlur(sessionID, &state, elapsed)
		s.stepTopic(sessionID, state, elapsed, now)
	}
}

func (s *Scheduler) stepBlur(sessionID string, state *session.BlindRevealState, elapsed time.Duration) {
	if state.BlurLevel <= 0 || !inWindow(elapsed, s.cfg.BlurInterval, s.cfg.GameLoopInterval) {
		return
	}

	level, justRevealed, ok := s.sessions.DecreaseBlur(sessionID, s.cfg.BlurDecrement)
	if !ok {
		return
	}

	payload := BlurUpdatePayload{
		SessionID: sessionID,
		BlurLevel: level,
		Revealed:  justRevealed,
		Message:   blurMessage(level),
	}
	s.gateway.hub.SendEvent(state.Participants[0], EventBlindBlurUpdate, payload)
	s.gateway.hub.SendEvent(state.Participants[1], EventBlindBlurUpdate, payload)
}

func (s *Scheduler) stepTopic(sessionID string, state session.BlindRevealState, elapsed time.Duration, now time.Time) {
	if len(state.TopicHistory) >= s.cfg.MaxTopics {
		return
	}

	silence, _ := s.sessions.CheckSilence(sessionID, now)
	rotate := inWindow(elapsed, s.cfg.TopicInterval, s.cfg.GameLoopInterval)

	if !rotate && !silence.ShouldSuggest {
		return
	}

	trigger := "rotation"
	if silence.ShouldSuggest {
		trigger = "silence"
	}

	// Arm the cooldown before dispatch: generation can outlast a loop
	// tick, and an in-flight suggestion must block the next one
	s.sessions.MarkSuggested(sessionID, now)

	// Generation is a network call, keep the loop moving
	go s.gateway.suggestTopic(sessionID, state, trigger, silence.ShouldSuggest, "")
}

// inWindow reports whether the current tick lands inside the first
// game-loop slot of each interval, so an action fires once per interval
func inWindow(elapsed, interval, tick time.Duration) bool {
	if elapsed <= 0 || interval <= 0 {
		return false
	}
	return int64(elapsed.Seconds())%int64(interval.Seconds()) < int64(tick.Seconds())
}
