package embedding

import (
	"context"
	"fmt"
	"strings"
)

// Provider defines the interface for embedding generation
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
}

// PrepareIssueText combines title and body for embedding
func PrepareIssueText(title, body string) string {
	text := fmt.Sprintf("Title: %s\n\nBody: %s", title, body)

	// Truncate to ~6000 chars (~1500 tokens) to stay within limits
	if len(text) > 6000 {
		text = text[:6000] + "..."
	}

	return text
}

// Normalize forces a vector to exactly the index dimensionality: shorter
// vectors are zero-padded, longer vectors truncated. Lossy but deterministic.
func Normalize(vector []float32, dimensions int) []float32 {
	if len(vector) == dimensions {
		return vector
	}
	out := make([]float32, dimensions)
	copy(out, vector)
	return out
}

// ZeroVector returns the all-zero fallback vector. Under cosine similarity it
// is essentially dissimilar to everything, so classification degrades to
// "unique" instead of crashing.
func ZeroVector(dimensions int) []float32 {
	return make([]float32, dimensions)
}

// CleanText removes excessive whitespace from text
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
