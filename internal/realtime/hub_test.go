// internal/realtime/hub_test.go

package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendToOfflineUserReturnsTransportError(t *testing.T) {
	h := NewHub()

	err := h.SendToUser("ghost", newWSMessage(EventQueueStatus, QueueStatusPayload{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransportUnavailable)
	assert.Contains(t, err.Error(), "ghost")
}

func TestSendEventDropsOfflineFrames(t *testing.T) {
	h := NewHub()

	// Must not panic or block: delivery misses are logged and dropped
	h.SendEvent("ghost", EventCallEnded, CallEndedPayload{Reason: ReasonPartnerEnded})

	assert.False(t, h.IsUserOnline("ghost"))
	assert.Zero(t, h.ActiveConnections())
	assert.Empty(t, h.ConnectedUserIDs())
}
