// internal/realtime/gateway_test.go

package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peerzee/match-backend/internal/matchmaking"
)

func TestEntryFromRequestDefaults(t *testing.T) {
	entry := entryFromRequest("alice", matchmaking.JoinRequest{IntentMode: "DATE"})

	assert.Equal(t, "alice", entry.UserID)
	assert.Equal(t, matchmaking.IntentDate, entry.IntentMode)
	assert.Equal(t, matchmaking.PreferAll, entry.GenderPreference)
}

func TestEntryFromRequestCarriesProfile(t *testing.T) {
	entry := entryFromRequest("alice", matchmaking.JoinRequest{
		IntentMode:       "STUDY",
		GenderPreference: "FEMALE",
		Gender:           "MALE",
		City:             "Hanoi",
		DisplayName:      "Alice",
		Bio:              "coffee person",
		Tags:             []string{"hiking"},
		Query:            "study buddy",
	})

	assert.Equal(t, matchmaking.IntentStudy, entry.IntentMode)
	assert.Equal(t, matchmaking.PreferFemale, entry.GenderPreference)
	assert.Equal(t, matchmaking.GenderMale, entry.Gender)
	assert.Equal(t, "Hanoi", entry.City)

	profile := profileFromEntry(entry)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, "coffee person", profile.Bio)
	assert.Equal(t, "STUDY", profile.IntentMode)
	assert.Equal(t, "study buddy", profile.Query)
}

func TestBlurMessage(t *testing.T) {
	assert.Contains(t, blurMessage(17), "17px")
	assert.Contains(t, blurMessage(0), "revealed")
}

func TestWSMessageEnvelope(t *testing.T) {
	msg := newWSMessage(EventQueueStatus, QueueStatusPayload{QueueSize: 3, IsInQueue: true})

	assert.Equal(t, EventQueueStatus, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	var payload QueueStatusPayload
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	assert.Equal(t, 3, payload.QueueSize)
	assert.True(t, payload.IsInQueue)
}

func TestSignalPayloadForwardsBlobVerbatim(t *testing.T) {
	raw := []byte(`{"sessionId":"s1","offer":{"type":"offer","sdp":"v=0..."}}`)

	var payload SignalPayload
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "s1", payload.SessionID)
	assert.JSONEq(t, `{"type":"offer","sdp":"v=0..."}`, string(payload.Offer))

	// Round trip keeps the blob untouched
	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"sdp":"v=0..."`)
}
