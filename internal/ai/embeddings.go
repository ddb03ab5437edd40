// internal/ai/embeddings.go

package ai

import (
	"context"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// Profile carries the fields that feed embedding and topic generation.
type Profile struct {
	DisplayName string
	Bio         string
	Tags        []string
	City        string
	IntentMode  string
	Query       string
}

// EmbedProfile serializes the profile into structured text and embeds it.
// On any failure it returns a neutral vector, which scores 0 against every
// candidate and leaves matching to the hard filters.
func (c *Client) EmbedProfile(ctx context.Context, p Profile) []float64 {
	text := buildProfileText(p)
	if text == "" || c.client == nil {
		return c.neutralVector()
	}

	em := c.client.EmbeddingModel(c.embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		log.Printf("ai: embedding failed, using neutral vector: %v", err)
		return c.neutralVector()
	}
	if res.Embedding == nil {
		return c.neutralVector()
	}

	values := res.Embedding.Values
	if len(values) != c.dims {
		log.Printf("ai: unexpected embedding dimension %d, expected %d", len(values), c.dims)
	}

	embedding := make([]float64, len(values))
	for i, v := range values {
		embedding[i] = float64(v)
	}

	return embedding
}

func buildProfileText(p Profile) string {
	var parts []string

	if p.IntentMode != "" {
		parts = append(parts, "Intent: "+p.IntentMode)
	}
	if p.Bio != "" {
		parts = append(parts, "Bio: "+p.Bio)
	}
	if len(p.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(p.Tags, ", "))
	}
	if p.City != "" {
		parts = append(parts, "Location: "+p.City)
	}
	if p.Query != "" {
		parts = append(parts, "Looking for: "+p.Query)
	}

	return strings.Join(parts, ". ")
}

func (c *Client) neutralVector() []float64 {
	return make([]float64, c.dims)
}
