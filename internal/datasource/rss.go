package datasource

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/seenimoa/newspulse/internal/infra"
	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// FeedConfig describes one RSS/Atom feed.
type FeedConfig struct {
	Name     string `mapstructure:"name" yaml:"name" json:"name"`
	URL      string `mapstructure:"url" yaml:"url" json:"url"`
	Category string `mapstructure:"category" yaml:"category" json:"category,omitempty"`
}

// DefaultFeeds lists the Indian financial news RSS feeds used when none
// are configured.
var DefaultFeeds = []FeedConfig{
	{Name: "Moneycontrol", URL: "https://www.moneycontrol.com/rss/marketreports.xml", Category: "Market Update"},
	{Name: "Economic Times", URL: "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms", Category: "Market Update"},
	{Name: "LiveMint", URL: "https://www.livemint.com/rss/markets", Category: "Market Update"},
	{Name: "Business Standard", URL: "https://www.business-standard.com/rss/markets-106.rss", Category: "Market Update"},
}

// RSS fetches news from a single RSS or Atom feed. Tickers are not part of
// RSS, so each item's stock list is extracted from its title and summary.
type RSS struct {
	feed    FeedConfig
	client  *http.Client
	parser  *gofeed.Parser
	cache   *infra.Cache[[]models.NewsItem]
	limiter *rate.Limiter
	limit   int
	now     func() time.Time
}

// RSSOption customises an RSS source.
type RSSOption func(*RSS)

// WithHTTPClient sets the client used to download the feed.
func WithHTTPClient(c *http.Client) RSSOption {
	return func(r *RSS) { r.client = c }
}

// WithCacheTTL sets how long a parsed feed is reused. Zero disables caching.
func WithCacheTTL(ttl time.Duration) RSSOption {
	return func(r *RSS) { r.cache = infra.NewCache[[]models.NewsItem](ttl) }
}

// WithRateLimit caps requests per second against the feed host.
func WithRateLimit(perSecond float64) RSSOption {
	return func(r *RSS) { r.limiter = infra.NewLimiter(perSecond) }
}

// WithMaxItems keeps only the newest n items. Zero keeps everything.
func WithMaxItems(n int) RSSOption {
	return func(r *RSS) { r.limit = n }
}

// WithClock overrides the clock used for relative timestamps.
func WithClock(now func() time.Time) RSSOption {
	return func(r *RSS) { r.now = now }
}

// NewRSS creates an RSS source for the given feed.
func NewRSS(feed FeedConfig, opts ...RSSOption) *RSS {
	r := &RSS{
		feed:    feed,
		client:  HTTPClient,
		parser:  gofeed.NewParser(),
		cache:   infra.NewCache[[]models.NewsItem](10 * time.Minute),
		limiter: infra.NewLimiter(2), // conservative: 2 req/s
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.parser.Client = r.client
	r.parser.UserAgent = DefaultUserAgent
	return r
}

// Name returns the feed name.
func (r *RSS) Name() string { return r.feed.Name }

// Fetch downloads and parses the feed.
func (r *RSS) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	if cached, ok := r.cache.Get(r.feed.URL); ok {
		return cloneItems(cached), nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	feed, err := r.parser.ParseURLWithContext(r.feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", r.feed.Name, err)
	}

	now := r.now()
	items := make([]models.NewsItem, 0, len(feed.Items))
	for _, fi := range feed.Items {
		headline := strings.TrimSpace(cleanHTML(fi.Title))
		if headline == "" {
			continue
		}
		summary := cleanHTML(fi.Description)

		item := models.NewsItem{
			ID:       itemID(fi),
			Headline: headline,
			Source:   r.feed.Name,
			Category: r.category(fi),
			Stocks:   ExtractTickers(headline + " " + summary),
			URL:      fi.Link,
		}
		if fi.PublishedParsed != nil {
			item.PublishedAt = *fi.PublishedParsed
		} else if fi.UpdatedParsed != nil {
			item.PublishedAt = *fi.UpdatedParsed
		}
		if !item.PublishedAt.IsZero() {
			item.Time = utils.RelativeTime(item.PublishedAt, now)
		}
		items = append(items, item)
	}

	sortItemsByDate(items)
	if r.limit > 0 && len(items) > r.limit {
		items = items[:r.limit]
	}

	r.cache.Set(r.feed.URL, items)
	return cloneItems(items), nil
}

func (r *RSS) category(fi *gofeed.Item) string {
	for _, c := range fi.Categories {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	if r.feed.Category != "" {
		return r.feed.Category
	}
	return r.feed.Name
}

// itemID prefers the feed GUID, then the link, and only then a random id.
func itemID(fi *gofeed.Item) string {
	switch {
	case fi.GUID != "":
		return fi.GUID
	case fi.Link != "":
		return fi.Link
	default:
		return uuid.NewString()
	}
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// sortItemsByDate sorts newest first; undated items keep their order at the end.
func sortItemsByDate(items []models.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
}
