// internal/matchmaking/service.go
// The orchestrator that owns queue, pairing and session transitions.
// Every mutation runs under one mutex so that find-match plus commit is a
// single atomic step and no user can be double-matched. Slow collaborators
// (embeddings, topic generation) are never called while the lock is held.

package matchmaking

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sessions is the session registry driven in the same synchronous step as
// pairing commits and releases.
type Sessions interface {
	Create(ctx context.Context, user1, user2, intentMode string) (string, error)
	End(ctx context.Context, sessionID string)
	Report(ctx context.Context, sessionID string)
	SessionFor(userID string) (string, bool)
}

type Service interface {
	// Join upserts the entry and immediately attempts a match.
	// Returns a MatchResult when a partner was committed, nil otherwise.
	Join(ctx context.Context, entry *QueueEntry) (*MatchResult, error)

	// Leave removes the user from the queue and releases any pair
	Leave(userID string) error

	// EndSession ends the caller's active session, releasing both sides.
	// Returns the partner and session IDs for notification.
	EndSession(ctx context.Context, userID string) (partnerID, sessionID string, ok bool)

	// ReportSession is EndSession with the REPORTED status
	ReportSession(ctx context.Context, userID string) (partnerID, sessionID string, ok bool)

	// Disconnect tears down everything the user holds: queue entry,
	// match pair and active session
	Disconnect(ctx context.Context, userID string) (partnerID, sessionID string, hadSession bool)

	// Release idempotently drops the user's match pair, restoring a
	// still-queued partner to waiting
	Release(userID string)

	IsQueued(userID string) bool
	QueueSize() int
	Stats(userID string) QueueStats
	GetEntry(userID string) (QueueEntry, bool)
	PairFor(userID string) (MatchPair, bool)
	WaitingUserIDs() []string
}

type service struct {
	mu       sync.Mutex
	queue    *Queue
	matcher  *Matcher
	pairs    map[string]*MatchPair
	sessions Sessions
}

func NewService(matcher *Matcher, sessions Sessions) Service {
	return &service{
		queue:    NewQueue(),
		matcher:  matcher,
		pairs:    make(map[string]*MatchPair),
		sessions: sessions,
	}
}

func (s *service) Join(ctx context.Context, entry *QueueEntry) (*MatchResult, error) {
	if entry.IntentMode == "" {
		return nil, ErrMissingIntent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, inSession := s.sessions.SessionFor(entry.UserID); inSession {
		return nil, ErrAlreadyInSession
	}

	if entry.JoinedAt.IsZero() {
		entry.JoinedAt = time.Now()
	}
	entry.Status = StatusWaiting
	s.queue.Add(entry)
	recordJoin(entry.IntentMode)
	setQueueSize(s.queue.Len())

	partner, similarity := s.matcher.FindMatch(entry, s.queue.Snapshot())
	if partner == nil {
		return nil, nil
	}

	// The waiting side receives, the newcomer initiates
	roomID := uuid.NewString()
	s.commit(partner.UserID, entry.UserID, roomID)

	sessionID, err := s.sessions.Create(ctx, entry.UserID, partner.UserID, string(entry.IntentMode))
	if err != nil {
		// Undo the commit so neither side is left half-paired
		s.rollback(entry, partner)
		return nil, err
	}

	recordMatch(similarity)
	setQueueSize(s.queue.Len())

	return &MatchResult{
		SessionID:   sessionID,
		RoomID:      roomID,
		InitiatorID: entry.UserID,
		ReceiverID:  partner.UserID,
		Partner:     partner,
		Similarity:  similarity,
	}, nil
}

// commit locks both sides of a match: mark pending, write both pair
// records with opposite roles, then drop the entries from the queue.
// Caller holds s.mu.
func (s *service) commit(receiverID, initiatorID, roomID string) {
	now := time.Now()

	if entry, ok := s.queue.Get(receiverID); ok {
		entry.Status = StatusMatchPending
	}
	if entry, ok := s.queue.Get(initiatorID); ok {
		entry.Status = StatusMatchPending
	}

	s.pairs[receiverID] = &MatchPair{
		UserID:    receiverID,
		PartnerID: initiatorID,
		Role:      RoleReceiver,
		RoomID:    roomID,
		Timestamp: now,
	}
	s.pairs[initiatorID] = &MatchPair{
		UserID:    initiatorID,
		PartnerID: receiverID,
		Role:      RoleInitiator,
		RoomID:    roomID,
		Timestamp: now,
	}

	s.queue.Remove(receiverID)
	s.queue.Remove(initiatorID)
}

// rollback restores both users to waiting after a failed session create.
// Caller holds s.mu.
func (s *service) rollback(initiator, receiver *QueueEntry) {
	delete(s.pairs, initiator.UserID)
	delete(s.pairs, receiver.UserID)

	initiator.Status = StatusWaiting
	receiver.Status = StatusWaiting
	s.queue.Add(receiver)
	s.queue.Add(initiator)
	setQueueSize(s.queue.Len())
}

func (s *service) Leave(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.queue.Contains(userID) && s.pairs[userID] == nil {
		return ErrNotQueued
	}

	s.release(userID)
	return nil
}

func (s *service) Release(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(userID)
}

// release drops the user's pair record and its partner's, restores a
// still-queued partner to waiting, and removes the user from the queue.
// Idempotent: releasing a user with no pair is a no-op beyond queue
// removal. Caller holds s.mu.
func (s *service) release(userID string) {
	if pair := s.pairs[userID]; pair != nil {
		delete(s.pairs, pair.PartnerID)
		if partner, ok := s.queue.Get(pair.PartnerID); ok {
			partner.Status = StatusWaiting
		}
		delete(s.pairs, userID)
		recordRelease()
	}

	s.queue.Remove(userID)
	setQueueSize(s.queue.Len())
}

func (s *service) EndSession(ctx context.Context, userID string) (string, string, bool) {
	return s.teardown(ctx, userID, false)
}

func (s *service) ReportSession(ctx context.Context, userID string) (string, string, bool) {
	return s.teardown(ctx, userID, true)
}

func (s *service) teardown(ctx context.Context, userID string, reported bool) (string, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID, ok := s.sessions.SessionFor(userID)
	if !ok {
		return "", "", false
	}

	partnerID := ""
	if pair := s.pairs[userID]; pair != nil {
		partnerID = pair.PartnerID
	}

	if reported {
		s.sessions.Report(ctx, sessionID)
	} else {
		s.sessions.End(ctx, sessionID)
	}

	s.release(userID)
	if partnerID != "" {
		s.release(partnerID)
	}

	return partnerID, sessionID, true
}

func (s *service) Disconnect(ctx context.Context, userID string) (string, string, bool) {
	partnerID, sessionID, hadSession := s.teardown(ctx, userID, false)
	if !hadSession {
		s.Release(userID)
	}
	log.Printf("matchmaking: user %s disconnected (had session: %v)", userID, hadSession)
	return partnerID, sessionID, hadSession
}

func (s *service) IsQueued(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Contains(userID)
}

func (s *service) QueueSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

func (s *service) Stats(userID string) QueueStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Stats(userID)
}

func (s *service) GetEntry(userID string) (QueueEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.queue.Get(userID)
	if !ok {
		return QueueEntry{}, false
	}
	return *entry, true
}

func (s *service) PairFor(userID string) (MatchPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pair, ok := s.pairs[userID]
	if !ok {
		return MatchPair{}, false
	}
	return *pair, true
}

func (s *service) WaitingUserIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	waiting := s.queue.Snapshot()
	ids := make([]string, 0, len(waiting))
	for _, entry := range waiting {
		ids = append(ids, entry.UserID)
	}
	return ids
}
