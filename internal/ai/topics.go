// internal/ai/topics.go
// Intro and topic generation for blind-date sessions.

package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// DefaultIntro greets both users while personalized content generates.
const DefaultIntro = "Welcome! Your cameras are blurred for now. Keep the conversation going to reveal each other. 👋"

// DefaultTopic opens the conversation before the first generated topic lands.
const DefaultTopic = "Introduce yourselves! What should your date know about you? 😊"

var fallbackTopics = []string{
	"What's the most interesting thing that happened to you this week?",
	"If you could travel anywhere right now, where would you go?",
	"What's something you're passionate about that most people don't know?",
	"What's a skill you've always wanted to learn?",
	"Describe your perfect weekend.",
	"What's the best meal you've ever had?",
	"What's a movie or show you could rewatch forever?",
	"If you could have dinner with anyone, living or dead, who would it be?",
	"What's something small that always makes your day better?",
	"What's the boldest thing you've ever done?",
}

// GenerateIntro produces a short personalized greeting for two matched
// users. Falls back to DefaultIntro when the model is unavailable.
func (c *Client) GenerateIntro(ctx context.Context, p1, p2 Profile) string {
	if c.client == nil {
		return DefaultIntro
	}

	prompt := fmt.Sprintf(`You are the host of a blind video date between two people.

Person 1: %s. %s
Person 2: %s. %s

Write ONE short, warm welcome message (max 2 sentences) that both will see.
Mention something they have in common if possible. Do not reveal names or
appearances. Output only the message text.`,
		p1.DisplayName, buildProfileText(p1),
		p2.DisplayName, buildProfileText(p2))

	intro, err := c.generateText(ctx, prompt)
	if err != nil || intro == "" {
		log.Printf("ai: intro generation failed, using default: %v", err)
		return DefaultIntro
	}

	return intro
}

// GenerateTopic produces the next conversation topic for a session,
// avoiding topics already used. urgent signals a silence rescue, which
// asks for an easier opener. Falls back to a rotating static list.
func (c *Client) GenerateTopic(ctx context.Context, p1, p2 Profile, history []string, phase string, urgent bool) string {
	if c.client == nil {
		return fallbackTopic(history)
	}

	tone := "Be engaging and appropriate for the conversation phase."
	if urgent {
		tone = "The conversation has gone quiet. Suggest something light and very easy to answer."
	}

	used := "None"
	if len(history) > 0 {
		used = strings.Join(history, "; ")
	}

	prompt := fmt.Sprintf(`You are a dating coach helping two people on a blind video date.

Person 1: %s. %s
Person 2: %s. %s

Conversation phase: %s
Topics already suggested: %s

%s
Generate ONE new conversation topic as a single question. It must be
relevant to their profiles, not repeat previous topics, and be easy to
start talking about. Output only the question text.`,
		p1.DisplayName, buildProfileText(p1),
		p2.DisplayName, buildProfileText(p2),
		phase, used, tone)

	topic, err := c.generateText(ctx, prompt)
	if err != nil || topic == "" {
		log.Printf("ai: topic generation failed, using fallback: %v", err)
		return fallbackTopic(history)
	}

	return topic
}

func fallbackTopic(history []string) string {
	return fallbackTopics[len(history)%len(fallbackTopics)]
}
