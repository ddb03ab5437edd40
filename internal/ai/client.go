// internal/ai/client.go
// Gemini-backed content generation. Every call degrades to a static
// fallback, so the rest of the system never depends on the API being up.

package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrUnavailable classifies upstream generation failures. Callers absorb
// it with static fallbacks; it never aborts the matching pipeline.
var ErrUnavailable = errors.New("generation service unavailable")

type Client struct {
	client         *genai.Client
	embeddingModel string
	topicModel     string
	dims           int
}

// NewClient connects to Gemini. An empty API key yields a client that
// serves fallbacks only.
func NewClient(ctx context.Context, apiKey, embeddingModel, topicModel string, dims int) (*Client, error) {
	c := &Client{
		embeddingModel: embeddingModel,
		topicModel:     topicModel,
		dims:           dims,
	}

	if apiKey == "" {
		log.Println("ai: GEMINI_API_KEY not set, using fallback content only")
		return c, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c.client = client

	return c, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// generateText runs a prompt through the topic model and returns the
// concatenated text parts.
func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	if c.client == nil {
		return "", ErrUnavailable
	}

	model := c.client.GenerativeModel(c.topicModel)
	model.SetTemperature(0.8)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
