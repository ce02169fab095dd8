package datasource

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/seenimoa/newspulse/pkg/models"
)

// ReferenceFeed is the fixed set of Indian market headlines the dashboard
// ships with when no live feed is configured.
var ReferenceFeed = []models.NewsItem{
	{
		ID:       "1",
		Headline: "Nifty 50 hits all-time high as banking stocks surge",
		Source:   "Economic Times",
		Time:     "2 hours ago",
		Category: "Market Update",
		Stocks:   []string{"NIFTY", "HDFC", "ICICI", "SBI"},
	},
	{
		ID:       "2",
		Headline: "Reliance Industries reports strong Q3 earnings, beats estimates",
		Source:   "Moneycontrol",
		Time:     "4 hours ago",
		Category: "Earnings",
		Stocks:   []string{"RELIANCE"},
	},
	{
		ID:       "3",
		Headline: "IT sector outlook positive amid global digital transformation",
		Source:   "Business Standard",
		Time:     "6 hours ago",
		Category: "Sector News",
		Stocks:   []string{"TCS", "INFY", "WIPRO", "HCLTECH"},
	},
	{
		ID:       "4",
		Headline: "RBI maintains repo rate at 6.5%, signals dovish stance",
		Source:   "LiveMint",
		Time:     "8 hours ago",
		Category: "Policy",
		Stocks:   []string{"NIFTY", "BANKNIFTY"},
	},
	{
		ID:       "5",
		Headline: "Adani Group stocks rally after successful bond issuance",
		Source:   "Economic Times",
		Time:     "10 hours ago",
		Category: "Corporate News",
		Stocks:   []string{"ADANIPORTS", "ADANIGREEN", "ADANIPOWER"},
	},
	{
		ID:       "6",
		Headline: "Auto sector shows signs of recovery with festive season demand",
		Source:   "Moneycontrol",
		Time:     "12 hours ago",
		Category: "Sector News",
		Stocks:   []string{"MARUTI", "TATAMOTOR", "M&M", "BAJAJ-AUTO"},
	},
	{
		ID:       "7",
		Headline: "Pharma stocks gain on export opportunities and new drug approvals",
		Source:   "Business Line",
		Time:     "1 day ago",
		Category: "Sector News",
		Stocks:   []string{"SUNPHARMA", "DRREDDY", "CIPLA", "LUPIN"},
	},
	{
		ID:       "8",
		Headline: "FII selling pressure continues, domestic investors provide support",
		Source:   "Economic Times",
		Time:     "1 day ago",
		Category: "Market Update",
		Stocks:   []string{"NIFTY", "SENSEX"},
	},
}

// Static serves a fixed list of items. With shuffling enabled every Fetch
// returns them in a new random order, which is how the demo dashboard
// makes a refresh visible.
type Static struct {
	mu      sync.Mutex
	items   []models.NewsItem
	shuffle bool
	rng     *rand.Rand
}

// NewStatic creates a source serving the reference feed in fixed order.
func NewStatic() *Static {
	return NewStaticWithItems(ReferenceFeed, false, nil)
}

// NewStaticWithItems creates a static source over custom items. A nil rng
// is seeded from the clock.
func NewStaticWithItems(items []models.NewsItem, shuffle bool, rng *rand.Rand) *Static {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Static{
		items:   cloneItems(items),
		shuffle: shuffle,
		rng:     rng,
	}
}

// Name returns the data source name.
func (s *Static) Name() string { return "Reference Feed" }

// Fetch returns the items, shuffled if enabled.
func (s *Static) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := cloneItems(s.items)
	if s.shuffle {
		s.mu.Lock()
		s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		s.mu.Unlock()
	}
	return out, nil
}

func cloneItems(items []models.NewsItem) []models.NewsItem {
	out := make([]models.NewsItem, len(items))
	for i, it := range items {
		if it.Stocks != nil {
			it.Stocks = append([]string{}, it.Stocks...)
		}
		out[i] = it
	}
	return out
}
