package sentiment

import (
	"math/rand"
	"sync"
	"time"

	"github.com/seenimoa/newspulse/pkg/models"
)

// ConfidenceSource supplies the confidence (0-100) for a classification.
// The keyword classifier has no real notion of certainty, so the default
// source is random jitter; tests and demos inject a deterministic one.
type ConfidenceSource interface {
	Confidence(s models.Sentiment) int
}

// ConfidenceFunc adapts a plain function to ConfidenceSource.
type ConfidenceFunc func(s models.Sentiment) int

// Confidence calls f(s).
func (f ConfidenceFunc) Confidence(s models.Sentiment) int { return f(s) }

// FixedConfidence always returns n.
func FixedConfidence(n int) ConfidenceSource {
	return ConfidenceFunc(func(models.Sentiment) int { return n })
}

// Confidence ranges: directional verdicts draw from [70,100), neutral
// from [60,80).
const (
	directionalMin  = 70
	directionalSpan = 30
	neutralMin      = 60
	neutralSpan     = 20
)

// RandomConfidence draws uniformly from the per-class ranges.
type RandomConfidence struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomConfidence wraps rng; a nil rng is seeded from the clock.
func NewRandomConfidence(rng *rand.Rand) *RandomConfidence {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomConfidence{rng: rng}
}

// NewSeededConfidence returns a reproducible random source.
func NewSeededConfidence(seed int64) *RandomConfidence {
	return NewRandomConfidence(rand.New(rand.NewSource(seed)))
}

// Confidence implements ConfidenceSource.
func (r *RandomConfidence) Confidence(s models.Sentiment) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s == models.SentimentNeutral {
		return neutralMin + r.rng.Intn(neutralSpan)
	}
	return directionalMin + r.rng.Intn(directionalSpan)
}
