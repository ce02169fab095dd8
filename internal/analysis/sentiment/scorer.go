// Package sentiment tags portfolio-relevant headlines with a keyword-based
// sentiment and rolls the per-headline verdicts up into one portfolio view.
package sentiment

import (
	"strings"

	"github.com/seenimoa/newspulse/internal/analysis/relevance"
	"github.com/seenimoa/newspulse/pkg/models"
)

// ------------------------------------------------------------------
// Keyword-based headline classifier (offline, no model needed).
// The first matching dictionary wins; positive is checked before
// negative, so "gain despite concern" is positive.
// ------------------------------------------------------------------

// positiveWords and negativeWords are lowercase substrings.
var positiveWords = []string{"surge", "high", "beats", "positive", "rally", "gain"}

var negativeWords = []string{"falls", "negative", "concern", "pressure", "decline"}

var reasoning = map[models.Sentiment]string{
	models.SentimentPositive: "Positive market sentiment and strong performance indicators",
	models.SentimentNegative: "Market headwinds and negative sentiment indicators",
	models.SentimentNeutral:  "Mixed signals with no clear directional bias",
}

// Classify returns the sentiment class of a headline.
func Classify(headline string) models.Sentiment {
	lower := strings.ToLower(headline)
	switch {
	case containsAny(lower, positiveWords):
		return models.SentimentPositive
	case containsAny(lower, negativeWords):
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// Reasoning returns the fixed explanation attached to a sentiment class.
// Unknown classes get the neutral text.
func Reasoning(s models.Sentiment) string {
	if !s.Valid() {
		s = models.SentimentNeutral
	}
	return reasoning[s]
}

// Score analyses each relevant news item against the holdings. Affected
// stocks are recomputed per item; items where none of the tickers match
// a holding are dropped. A nil conf uses a time-seeded random source.
func Score(relevant []models.NewsItem, holdings []models.Holding, conf ConfidenceSource) []models.Analysis {
	if conf == nil {
		conf = NewRandomConfidence(nil)
	}
	symbols := models.Symbols(holdings)

	analyses := make([]models.Analysis, 0, len(relevant))
	for _, item := range relevant {
		affected := relevance.MatchingTickers(item, symbols)
		if len(affected) == 0 {
			continue
		}

		s := Classify(item.Headline)
		analyses = append(analyses, models.Analysis{
			NewsID:         item.ID,
			Headline:       item.Headline,
			Sentiment:      s,
			Confidence:     clampConfidence(conf.Confidence(s)),
			Reasoning:      Reasoning(s),
			AffectedStocks: affected,
		})
	}
	return analyses
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func clampConfidence(c int) int {
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	}
	return c
}
