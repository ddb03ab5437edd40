// internal/matchmaking/service_test.go

package matchmaking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessions records lifecycle calls and tracks the user -> session map
// the way the real registry does
type fakeSessions struct {
	nextID    string
	createErr error

	created  []string
	ended    []string
	reported []string

	byUser map[string]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{nextID: "session-1", byUser: make(map[string]string)}
}

func (f *fakeSessions) Create(ctx context.Context, user1, user2, intentMode string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, f.nextID)
	f.byUser[user1] = f.nextID
	f.byUser[user2] = f.nextID
	return f.nextID, nil
}

func (f *fakeSessions) End(ctx context.Context, sessionID string) {
	f.ended = append(f.ended, sessionID)
	f.drop(sessionID)
}

func (f *fakeSessions) Report(ctx context.Context, sessionID string) {
	f.reported = append(f.reported, sessionID)
	f.drop(sessionID)
}

func (f *fakeSessions) SessionFor(userID string) (string, bool) {
	id, ok := f.byUser[userID]
	return id, ok
}

func (f *fakeSessions) drop(sessionID string) {
	for user, id := range f.byUser {
		if id == sessionID {
			delete(f.byUser, user)
		}
	}
}

func newTestService(sessions Sessions) Service {
	return NewService(NewMatcher(0.6), sessions)
}

func joinUser(t *testing.T, svc Service, userID string, embedding []float64) *MatchResult {
	t.Helper()
	result, err := svc.Join(context.Background(), &QueueEntry{
		UserID:     userID,
		IntentMode: IntentDate,
		Embedding:  embedding,
	})
	require.NoError(t, err)
	return result
}

func TestJoinWithoutPartnerStaysQueued(t *testing.T) {
	svc := newTestService(newFakeSessions())

	result := joinUser(t, svc, "alice", []float64{1, 0})

	assert.Nil(t, result)
	assert.True(t, svc.IsQueued("alice"))
	assert.Equal(t, 1, svc.QueueSize())
}

func TestJoinCommitsMatch(t *testing.T) {
	sessions := newFakeSessions()
	svc := newTestService(sessions)

	joinUser(t, svc, "alice", []float64{1, 0})
	result := joinUser(t, svc, "bob", []float64{1, 0})

	require.NotNil(t, result)
	assert.Equal(t, "session-1", result.SessionID)
	assert.NotEmpty(t, result.RoomID)

	// The newcomer initiates, the waiting side receives
	assert.Equal(t, "bob", result.InitiatorID)
	assert.Equal(t, "alice", result.ReceiverID)

	bobPair, ok := svc.PairFor("bob")
	require.True(t, ok)
	assert.Equal(t, RoleInitiator, bobPair.Role)
	assert.Equal(t, "alice", bobPair.PartnerID)

	alicePair, ok := svc.PairFor("alice")
	require.True(t, ok)
	assert.Equal(t, RoleReceiver, alicePair.Role)
	assert.Equal(t, bobPair.RoomID, alicePair.RoomID)

	// Both left the queue atomically with the commit
	assert.False(t, svc.IsQueued("alice"))
	assert.False(t, svc.IsQueued("bob"))
	assert.Equal(t, 0, svc.QueueSize())
}

func TestJoinRollsBackOnSessionCreateFailure(t *testing.T) {
	sessions := newFakeSessions()
	sessions.createErr = errors.New("db down")
	svc := newTestService(sessions)

	joinUser(t, svc, "alice", []float64{1, 0})

	result, err := svc.Join(context.Background(), &QueueEntry{
		UserID:     "bob",
		IntentMode: IntentDate,
		Embedding:  []float64{1, 0},
	})

	assert.Error(t, err)
	assert.Nil(t, result)

	// Both users are back to waiting with no dangling pairs
	assert.True(t, svc.IsQueued("alice"))
	assert.True(t, svc.IsQueued("bob"))
	_, ok := svc.PairFor("alice")
	assert.False(t, ok)
	_, ok = svc.PairFor("bob")
	assert.False(t, ok)
}

func TestJoinRejectsMissingIntent(t *testing.T) {
	svc := newTestService(newFakeSessions())

	_, err := svc.Join(context.Background(), &QueueEntry{UserID: "alice"})
	assert.ErrorIs(t, err, ErrMissingIntent)
}

func TestJoinRejectsUserAlreadyInSession(t *testing.T) {
	sessions := newFakeSessions()
	svc := newTestService(sessions)

	joinUser(t, svc, "alice", []float64{1, 0})
	joinUser(t, svc, "bob", []float64{1, 0})

	_, err := svc.Join(context.Background(), &QueueEntry{
		UserID:     "bob",
		IntentMode: IntentDate,
	})
	assert.ErrorIs(t, err, ErrAlreadyInSession)
}

func TestLeaveNotQueued(t *testing.T) {
	svc := newTestService(newFakeSessions())
	assert.ErrorIs(t, svc.Leave("ghost"), ErrNotQueued)
}

func TestEndSessionReleasesBothSides(t *testing.T) {
	sessions := newFakeSessions()
	svc := newTestService(sessions)

	joinUser(t, svc, "alice", []float64{1, 0})
	joinUser(t, svc, "bob", []float64{1, 0})

	partnerID, sessionID, ok := svc.EndSession(context.Background(), "alice")
	require.True(t, ok)
	assert.Equal(t, "bob", partnerID)
	assert.Equal(t, "session-1", sessionID)
	assert.Equal(t, []string{"session-1"}, sessions.ended)

	// Both pairs are gone and both can queue again
	_, ok = svc.PairFor("alice")
	assert.False(t, ok)
	_, ok = svc.PairFor("bob")
	assert.False(t, ok)

	_, err := svc.Join(context.Background(), &QueueEntry{UserID: "alice", IntentMode: IntentStudy})
	assert.NoError(t, err)
}

func TestReportSessionMarksReported(t *testing.T) {
	sessions := newFakeSessions()
	svc := newTestService(sessions)

	joinUser(t, svc, "alice", []float64{1, 0})
	joinUser(t, svc, "bob", []float64{1, 0})

	_, sessionID, ok := svc.ReportSession(context.Background(), "bob")
	require.True(t, ok)
	assert.Equal(t, []string{sessionID}, sessions.reported)
	assert.Empty(t, sessions.ended)
}

func TestEndSessionWithoutSession(t *testing.T) {
	svc := newTestService(newFakeSessions())

	_, _, ok := svc.EndSession(context.Background(), "alice")
	assert.False(t, ok)
}

func TestReleaseIsIdempotent(t *testing.T) {
	sessions := newFakeSessions()
	svc := newTestService(sessions)

	joinUser(t, svc, "alice", []float64{1, 0})

	svc.Release("alice")
	svc.Release("alice")

	assert.False(t, svc.IsQueued("alice"))
	assert.Equal(t, 0, svc.QueueSize())
}

func TestDisconnectEndsActiveSession(t *testing.T) {
	sessions := newFakeSessions()
	svc := newTestService(sessions)

	joinUser(t, svc, "alice", []float64{1, 0})
	joinUser(t, svc, "bob", []float64{1, 0})

	partnerID, sessionID, hadSession := svc.Disconnect(context.Background(), "bob")
	assert.True(t, hadSession)
	assert.Equal(t, "alice", partnerID)
	assert.Equal(t, "session-1", sessionID)
	assert.Equal(t, []string{"session-1"}, sessions.ended)
}

func TestDisconnectWhileQueuedJustLeaves(t *testing.T) {
	svc := newTestService(newFakeSessions())

	joinUser(t, svc, "alice", []float64{1, 0})

	_, _, hadSession := svc.Disconnect(context.Background(), "alice")
	assert.False(t, hadSession)
	assert.False(t, svc.IsQueued("alice"))
}

func TestIncompatibleUsersQueueSeparately(t *testing.T) {
	svc := newTestService(newFakeSessions())

	result, err := svc.Join(context.Background(), &QueueEntry{
		UserID:     "alice",
		IntentMode: IntentDate,
		Embedding:  []float64{1, 0},
	})
	require.NoError(t, err)
	require.Nil(t, result)

	result, err = svc.Join(context.Background(), &QueueEntry{
		UserID:     "bob",
		IntentMode: IntentStudy,
		Embedding:  []float64{1, 0},
	})
	require.NoError(t, err)
	assert.Nil(t, result)

	assert.Equal(t, 2, svc.QueueSize())
	assert.ElementsMatch(t, []string{"alice", "bob"}, svc.WaitingUserIDs())
}
