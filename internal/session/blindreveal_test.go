// internal/session/blindreveal_test.go

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBlurDecaysToZeroAndRevealsOnce(t *testing.T) {
	now := time.Now()
	state := newBlindRevealState("s1", "alice", "bob", 20, now)

	// Six decrements of 3: 20 -> 17 -> 14 -> 11 -> 8 -> 5 -> 2
	for i := 0; i < 6; i++ {
		level, revealed := state.decreaseBlur(3)
		assert.False(t, revealed)
		assert.Equal(t, 20-3*(i+1), level)
	}

	// Seventh decrement clamps at 0 and fires the reveal
	level, revealed := state.decreaseBlur(3)
	assert.Equal(t, 0, level)
	assert.True(t, revealed)

	// Further decrements never fire again
	level, revealed = state.decreaseBlur(3)
	assert.Equal(t, 0, level)
	assert.False(t, revealed)
}

func TestForceRevealFromFullBlur(t *testing.T) {
	state := newBlindRevealState("s1", "alice", "bob", 20, time.Now())

	level, revealed := state.decreaseBlur(state.BlurLevel)
	assert.Equal(t, 0, level)
	assert.True(t, revealed)
}

func TestNegativeDecrementIsIgnored(t *testing.T) {
	state := newBlindRevealState("s1", "alice", "bob", 20, time.Now())

	level, revealed := state.decreaseBlur(-5)
	assert.Equal(t, 20, level)
	assert.False(t, revealed)
}

func TestAddTopicAdvancesPhase(t *testing.T) {
	now := time.Now()
	state := newBlindRevealState("s1", "alice", "bob", 20, now)
	assert.Equal(t, PhaseWarmup, state.Phase)

	state.addTopic("topic one", now)
	assert.Equal(t, PhaseGettingToKnow, state.Phase)
	assert.Equal(t, "topic one", state.CurrentTopic)

	state.addTopic("topic two", now)
	assert.Equal(t, PhaseDeepDive, state.Phase)

	state.addTopic("topic three", now)
	assert.Equal(t, PhaseRomantic, state.Phase)

	// Terminal phase holds
	state.addTopic("topic four", now)
	assert.Equal(t, PhaseRomantic, state.Phase)
	assert.Len(t, state.TopicHistory, 4)
}

func TestCheckSilenceBelowThreshold(t *testing.T) {
	start := time.Now()
	state := newBlindRevealState("s1", "alice", "bob", 20, start)

	result := state.checkSilence(start.Add(3*time.Second), 5*time.Second, 30*time.Second)
	assert.False(t, result.ShouldSuggest)
	assert.Equal(t, 3*time.Second, result.SilenceDuration)
}

func TestCheckSilencePastThresholdSuggests(t *testing.T) {
	start := time.Now()
	state := newBlindRevealState("s1", "alice", "bob", 20, start)

	result := state.checkSilence(start.Add(6*time.Second), 5*time.Second, 30*time.Second)
	assert.True(t, result.ShouldSuggest)
	assert.Equal(t, 6*time.Second, result.SilenceDuration)
}

func TestCheckSilenceRespectsCooldown(t *testing.T) {
	start := time.Now()
	state := newBlindRevealState("s1", "alice", "bob", 20, start)

	// A suggestion just went out
	state.markSuggested(start.Add(6 * time.Second))

	// Still silent 3s later, but inside the cooldown window
	result := state.checkSilence(start.Add(9*time.Second), 5*time.Second, 30*time.Second)
	assert.False(t, result.ShouldSuggest)

	// Once the cooldown expires the next suggestion is allowed
	result = state.checkSilence(start.Add(40*time.Second), 5*time.Second, 30*time.Second)
	assert.True(t, result.ShouldSuggest)
}

func TestRecordActivityResetsSilence(t *testing.T) {
	start := time.Now()
	state := newBlindRevealState("s1", "alice", "bob", 20, start)

	state.recordActivity(start.Add(10 * time.Second))

	result := state.checkSilence(start.Add(12*time.Second), 5*time.Second, 30*time.Second)
	assert.False(t, result.ShouldSuggest)
	assert.Equal(t, 2*time.Second, result.SilenceDuration)
}

func TestPhaseProgression(t *testing.T) {
	assert.Equal(t, PhaseGettingToKnow, PhaseWarmup.Next())
	assert.Equal(t, PhaseDeepDive, PhaseGettingToKnow.Next())
	assert.Equal(t, PhaseRomantic, PhaseDeepDive.Next())
	assert.Equal(t, PhaseRomantic, PhaseRomantic.Next())
}
