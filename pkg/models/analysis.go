package models

// Sentiment is a coarse directional classification of a headline.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the three known classes.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// Analysis is the derived sentiment verdict for one relevant news item.
type Analysis struct {
	NewsID         string    `json:"news_id"`
	Headline       string    `json:"headline"`
	Sentiment      Sentiment `json:"sentiment"`
	Confidence     int       `json:"confidence"` // 0 to 100
	Reasoning      string    `json:"reasoning"`
	AffectedStocks []string  `json:"affected_stocks"`
}

// PortfolioSentiment aggregates all analyses into one portfolio verdict.
type PortfolioSentiment struct {
	Sentiment  Sentiment `json:"sentiment"`
	Score      float64   `json:"score"`      // mean signed contribution, -1.0 to +1.0
	Confidence int       `json:"confidence"` // mean confidence, 0 to 100
}

// DerivedState is everything computed from the current holdings and news.
// PortfolioSentiment is nil when the portfolio is empty.
type DerivedState struct {
	FilteredNews       []NewsItem          `json:"filtered_news"`
	Analyses           []Analysis          `json:"analyses"`
	PortfolioSentiment *PortfolioSentiment `json:"portfolio_sentiment,omitempty"`
}
