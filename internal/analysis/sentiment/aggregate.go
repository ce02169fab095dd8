package sentiment

import (
	"math"

	"github.com/seenimoa/newspulse/pkg/models"
)

// Threshold the mean score must strictly exceed (in either direction)
// for the portfolio to be called positive or negative.
const Threshold = 0.3

// Aggregate rolls analyses up into one portfolio sentiment. Each analysis
// contributes +confidence/100 (positive), -confidence/100 (negative) or 0
// (neutral); the score is the mean over all analyses, neutral included.
func Aggregate(analyses []models.Analysis) models.PortfolioSentiment {
	if len(analyses) == 0 {
		return models.PortfolioSentiment{Sentiment: models.SentimentNeutral}
	}

	totalScore := 0.0
	totalConfidence := 0
	for _, a := range analyses {
		totalScore += direction(a.Sentiment) * float64(a.Confidence) / 100
		totalConfidence += a.Confidence
	}

	n := float64(len(analyses))
	avgScore := totalScore / n

	label := models.SentimentNeutral
	switch {
	case avgScore > Threshold:
		label = models.SentimentPositive
	case avgScore < -Threshold:
		label = models.SentimentNegative
	}

	return models.PortfolioSentiment{
		Sentiment:  label,
		Score:      avgScore,
		Confidence: int(math.Round(float64(totalConfidence) / n)),
	}
}

func direction(s models.Sentiment) float64 {
	switch s {
	case models.SentimentPositive:
		return 1
	case models.SentimentNegative:
		return -1
	}
	return 0
}
