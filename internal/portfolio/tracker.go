// Package portfolio holds the portfolio state object: the user's holdings,
// the working news set, and the analysis derived from both.
//
// Every mutation recomputes the derived state synchronously, so readers
// always see analyses consistent with the current holdings and news.
package portfolio

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seenimoa/newspulse/internal/analysis/relevance"
	"github.com/seenimoa/newspulse/internal/analysis/sentiment"
	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// Tracker owns holdings, news and derived state. It is safe for use by
// multiple goroutines.
type Tracker struct {
	mu       sync.RWMutex
	holdings []models.Holding
	news     []models.NewsItem
	derived  models.DerivedState
	conf     sentiment.ConfidenceSource
	now      func() time.Time
}

// NewTracker creates an empty tracker. A nil conf uses random jitter.
func NewTracker(conf sentiment.ConfidenceSource) *Tracker {
	if conf == nil {
		conf = sentiment.NewRandomConfidence(nil)
	}
	t := &Tracker{
		conf: conf,
		now:  time.Now,
	}
	t.recompute()
	return t
}

// AddHolding validates the raw form fields and appends a new holding.
// On failure it returns an error matching ErrValidationFailed.
func (t *Tracker) AddHolding(symbol, quantity, price string) (models.Holding, error) {
	h, err := parseHolding(symbol, quantity, price)
	if err != nil {
		return models.Holding{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	h.ID = uuid.New()
	h.AddedAt = t.now()
	t.holdings = append(t.holdings, h)
	t.recompute()
	return h, nil
}

// RemoveHolding removes the holding with the given ID. It reports whether
// a holding was removed; unknown IDs are a no-op.
func (t *Tracker) RemoveHolding(id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, h := range t.holdings {
		if h.ID == id {
			t.holdings = append(t.holdings[:i:i], t.holdings[i+1:]...)
			t.recompute()
			return true
		}
	}
	return false
}

// SetNewsFeed replaces the working news set wholesale.
func (t *Tracker) SetNewsFeed(items []models.NewsItem) {
	cp := copyNews(items)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.news = cp
	t.recompute()
}

// DerivedState returns the filtered news, analyses and portfolio sentiment
// for the current holdings and news.
func (t *Tracker) DerivedState() models.DerivedState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return models.DerivedState{
		FilteredNews:       copyNews(t.derived.FilteredNews),
		Analyses:           copyAnalyses(t.derived.Analyses),
		PortfolioSentiment: copySentiment(t.derived.PortfolioSentiment),
	}
}

// Holdings returns a copy of the current holdings in insertion order.
func (t *Tracker) Holdings() []models.Holding {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.Holding{}, t.holdings...)
}

// News returns a copy of the working news set.
func (t *Tracker) News() []models.NewsItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return copyNews(t.news)
}

// recompute rebuilds the derived state. Must be called with mu held.
func (t *Tracker) recompute() {
	if len(t.holdings) == 0 {
		t.derived = models.DerivedState{
			FilteredNews: []models.NewsItem{},
			Analyses:     []models.Analysis{},
		}
		return
	}

	filtered := relevance.Filter(t.news, models.Symbols(t.holdings))
	analyses := sentiment.Score(filtered, t.holdings, t.conf)
	agg := sentiment.Aggregate(analyses)

	t.derived = models.DerivedState{
		FilteredNews:       filtered,
		Analyses:           analyses,
		PortfolioSentiment: &agg,
	}
}

// parseHolding validates form input. All three fields are required.
func parseHolding(symbol, quantity, price string) (models.Holding, error) {
	sym := utils.NormalizeSymbol(symbol)
	if sym == "" {
		return models.Holding{}, invalid("symbol", "is required")
	}

	quantity = strings.TrimSpace(quantity)
	if quantity == "" {
		return models.Holding{}, invalid("quantity", "is required")
	}
	qty, err := strconv.ParseInt(quantity, 10, 64)
	if err != nil {
		return models.Holding{}, invalid("quantity", "must be a whole number")
	}
	if qty <= 0 {
		return models.Holding{}, invalid("quantity", "must be positive")
	}

	price = strings.TrimSpace(price)
	if price == "" {
		return models.Holding{}, invalid("price", "is required")
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return models.Holding{}, invalid("price", "must be a number")
	}
	if p.IsNegative() {
		return models.Holding{}, invalid("price", "must not be negative")
	}

	return models.Holding{Symbol: sym, Quantity: qty, Price: p}, nil
}

func copyNews(items []models.NewsItem) []models.NewsItem {
	out := make([]models.NewsItem, len(items))
	for i, it := range items {
		if it.Stocks != nil {
			it.Stocks = append([]string{}, it.Stocks...)
		}
		out[i] = it
	}
	return out
}

func copyAnalyses(analyses []models.Analysis) []models.Analysis {
	out := make([]models.Analysis, len(analyses))
	for i, a := range analyses {
		a.AffectedStocks = append([]string{}, a.AffectedStocks...)
		out[i] = a
	}
	return out
}

func copySentiment(ps *models.PortfolioSentiment) *models.PortfolioSentiment {
	if ps == nil {
		return nil
	}
	cp := *ps
	return &cp
}
