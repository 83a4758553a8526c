// Package hash provides a deterministic, dependency-free embedding provider.
// It is a stand-in for a learned embedding model: vectors carry enough lexical
// signal for coarse similarity ranking, are stable across process restarts,
// and never require a network call.
package hash

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/VetleSkaar/EiT-AI-Project/internal/domain"
)

// maxPrefix bounds the text prefix used for character features so embedding
// cost stays flat for very large documents.
const maxPrefix = 2048

// keywords are domain terms that get dedicated presence slots in the vector.
var keywords = []string{
	"construction", "development", "supply", "services", "installation",
	"sustainable", "eco", "green", "renewable", "environment",
	"innovative", "ai", "advanced", "smart", "modern",
	"healthcare", "security", "infrastructure", "software", "equipment",
}

// Embedder derives fixed-dimension vectors from character-frequency buckets,
// a word-count feature, and keyword presence indicators. Identical input
// always produces an identical vector.
type Embedder struct {
	dimensions int
}

var _ domain.Embedder = (*Embedder)(nil)

// New creates a hash embedder with the given dimension. The dimension must
// leave room for the keyword and word-count slots; anything smaller falls
// back to the minimum usable size.
func New(dimensions int) *Embedder {
	min := len(keywords) + 2
	if dimensions < min {
		dimensions = min
	}
	return &Embedder{dimensions: dimensions}
}

// Dimensions returns the fixed vector length of this provider.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Embed implements domain.Embedder. The result is L2-normalized; all-empty
// input yields the zero vector rather than dividing by zero.
func (e *Embedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	vec := make([]float32, e.dimensions)
	lower := strings.ToLower(text)
	if len(lower) > maxPrefix {
		lower = lower[:maxPrefix]
	}

	// Character-frequency buckets occupy the slots before the feature tail.
	buckets := e.dimensions - len(keywords) - 1
	for _, r := range lower {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			vec[int(r)%buckets]++
		}
	}

	// Word-count feature, dampened so it cannot dominate the character signal.
	words := strings.Fields(lower)
	vec[buckets] = float32(math.Log1p(float64(len(words))))

	// Keyword presence indicators.
	for i, kw := range keywords {
		if strings.Contains(lower, kw) {
			vec[buckets+1+i] = 1
		}
	}

	normalize(vec)

	return domain.EmbeddingResult{Embedding: vec}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchFallback(ctx, e, texts)
}

// HealthCheck implements domain.HealthChecker. The hash provider is always
// available.
func (e *Embedder) HealthCheck(context.Context) error { return nil }

// normalize scales the vector to unit L2 norm in place. The zero vector is
// left untouched.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}
