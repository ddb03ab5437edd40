// internal/session/blindreveal.go
// Blind-reveal state machine. The owning service serializes access.

package session

import "time"

func newBlindRevealState(sessionID, user1, user2 string, blurMax int, now time.Time) *BlindRevealState {
	return &BlindRevealState{
		SessionID:    sessionID,
		Participants: [2]string{user1, user2},
		BlurLevel:    blurMax,
		Phase:        PhaseWarmup,
		LastActivity: now,
	}
}

// decreaseBlur lowers the blur level, clamped at zero. The first time the
// level hits zero the reveal fires; repeated calls at zero change nothing.
func (b *BlindRevealState) decreaseBlur(amount int) (level int, justRevealed bool) {
	if amount < 0 {
		amount = 0
	}

	b.BlurLevel -= amount
	if b.BlurLevel < 0 {
		b.BlurLevel = 0
	}

	if b.BlurLevel == 0 && !b.RevealTriggered {
		b.RevealTriggered = true
		return 0, true
	}
	return b.BlurLevel, false
}

// addTopic appends to the history, counts as activity, and advances the
// conversation phase one step unless already at the terminal phase.
func (b *BlindRevealState) addTopic(topic string, now time.Time) {
	b.TopicHistory = append(b.TopicHistory, topic)
	b.CurrentTopic = topic
	b.LastActivity = now
	b.Phase = b.Phase.Next()
}

// recordActivity clears any accumulated silence
func (b *BlindRevealState) recordActivity(now time.Time) {
	b.LastActivity = now
}

// checkSilence decides whether the session needs a rescue topic: silent
// past the threshold and outside the suggestion cooldown window.
func (b *BlindRevealState) checkSilence(now time.Time, threshold, cooldown time.Duration) SilenceResult {
	silence := now.Sub(b.LastActivity)
	if silence <= threshold {
		return SilenceResult{SilenceDuration: silence}
	}

	if !b.LastSuggestion.IsZero() && now.Sub(b.LastSuggestion) < cooldown {
		return SilenceResult{SilenceDuration: silence}
	}

	return SilenceResult{SilenceDuration: silence, ShouldSuggest: true}
}

// markSuggested arms the cooldown after a topic was delivered
func (b *BlindRevealState) markSuggested(now time.Time) {
	b.LastSuggestion = now
}
