package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"golang.org/x/time/rate"

	"github.com/seenimoa/newspulse/internal/infra"
	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// JSONFeedConfig describes a JSON news endpoint. ItemsPath selects the item
// array from the document; the other paths are evaluated against each item.
// Empty paths fall back to the defaults below.
type JSONFeedConfig struct {
	Name          string `mapstructure:"name" yaml:"name" json:"name"`
	URL           string `mapstructure:"url" yaml:"url" json:"url"`
	ItemsPath     string `mapstructure:"items_path" yaml:"items_path" json:"items_path,omitempty"`
	IDPath        string `mapstructure:"id_path" yaml:"id_path" json:"id_path,omitempty"`
	HeadlinePath  string `mapstructure:"headline_path" yaml:"headline_path" json:"headline_path,omitempty"`
	SourcePath    string `mapstructure:"source_path" yaml:"source_path" json:"source_path,omitempty"`
	TimePath      string `mapstructure:"time_path" yaml:"time_path" json:"time_path,omitempty"`
	CategoryPath  string `mapstructure:"category_path" yaml:"category_path" json:"category_path,omitempty"`
	StocksPath    string `mapstructure:"stocks_path" yaml:"stocks_path" json:"stocks_path,omitempty"`
	URLPath       string `mapstructure:"url_path" yaml:"url_path" json:"url_path,omitempty"`
	PublishedPath string `mapstructure:"published_path" yaml:"published_path" json:"published_path,omitempty"`
	APIKey        string `mapstructure:"api_key" yaml:"api_key" json:"-"`
	APIKeyHeader  string `mapstructure:"api_key_header" yaml:"api_key_header" json:"api_key_header,omitempty"`
}

func (c JSONFeedConfig) withDefaults() JSONFeedConfig {
	def := func(p *string, v string) {
		if *p == "" {
			*p = v
		}
	}
	def(&c.ItemsPath, "$.items")
	def(&c.IDPath, "$.id")
	def(&c.HeadlinePath, "$.headline")
	def(&c.SourcePath, "$.source")
	def(&c.TimePath, "$.time")
	def(&c.CategoryPath, "$.category")
	def(&c.StocksPath, "$.stocks")
	def(&c.URLPath, "$.url")
	def(&c.PublishedPath, "$.published_at")
	def(&c.APIKeyHeader, "X-API-Key")
	return c
}

// JSONFeed fetches news from an HTTP endpoint returning JSON.
type JSONFeed struct {
	cfg     JSONFeedConfig
	client  *http.Client
	cache   *infra.Cache[[]models.NewsItem]
	limiter *rate.Limiter
	now     func() time.Time
}

// NewJSONFeed creates a JSON feed source.
func NewJSONFeed(cfg JSONFeedConfig, client *http.Client, cacheTTL time.Duration, perSecond float64) *JSONFeed {
	if client == nil {
		client = HTTPClient
	}
	return &JSONFeed{
		cfg:     cfg.withDefaults(),
		client:  client,
		cache:   infra.NewCache[[]models.NewsItem](cacheTTL),
		limiter: infra.NewLimiter(perSecond),
		now:     time.Now,
	}
}

// Name returns the feed name.
func (f *JSONFeed) Name() string { return f.cfg.Name }

// Fetch downloads the document and extracts its items.
func (f *JSONFeed) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	if cached, ok := f.cache.Get(f.cfg.URL); ok {
		return cloneItems(cached), nil
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	headers := map[string]string{"Accept": "application/json"}
	if f.cfg.APIKey != "" {
		headers[f.cfg.APIKeyHeader] = f.cfg.APIKey
	}
	body, err := doGet(ctx, f.client, f.cfg.URL, headers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.cfg.Name, err)
	}
	defer body.Close()

	items, err := parseJSONFeed(body, f.cfg, f.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.cfg.Name, err)
	}
	f.cache.Set(f.cfg.URL, items)
	return cloneItems(items), nil
}

// ParseJSONFeed decodes a JSON news document using the configured paths.
func ParseJSONFeed(r io.Reader, cfg JSONFeedConfig) ([]models.NewsItem, error) {
	return parseJSONFeed(r, cfg.withDefaults(), time.Now())
}

func parseJSONFeed(r io.Reader, cfg JSONFeedConfig, now time.Time) ([]models.NewsItem, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}

	raw, err := jsonpath.Get(cfg.ItemsPath, doc)
	if err != nil {
		return nil, fmt.Errorf("items path %q: %w", cfg.ItemsPath, err)
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("items path %q: expected array, got %T", cfg.ItemsPath, raw)
	}

	items := make([]models.NewsItem, 0, len(list))
	for i, entry := range list {
		headline := lookupString(cfg.HeadlinePath, entry)
		if headline == "" {
			continue
		}
		item := models.NewsItem{
			ID:       lookupString(cfg.IDPath, entry),
			Headline: headline,
			Source:   lookupString(cfg.SourcePath, entry),
			Time:     lookupString(cfg.TimePath, entry),
			Category: lookupString(cfg.CategoryPath, entry),
			Stocks:   lookupStrings(cfg.StocksPath, entry),
			URL:      lookupString(cfg.URLPath, entry),
		}
		if item.ID == "" {
			item.ID = fallbackID(cfg.Name, i)
		}
		if item.Source == "" {
			item.Source = cfg.Name
		}
		if item.Stocks == nil {
			item.Stocks = ExtractTickers(headline)
		}
		if ts := lookupString(cfg.PublishedPath, entry); ts != "" {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				item.PublishedAt = t
				if item.Time == "" {
					item.Time = utils.RelativeTime(t, now)
				}
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// fallbackID names an item by feed and position so that id-less items
// from different feeds stay distinct once aggregated.
func fallbackID(feed string, i int) string {
	if feed == "" {
		return strconv.Itoa(i + 1)
	}
	return feed + "-" + strconv.Itoa(i+1)
}

// lookupString evaluates path against v; missing keys yield "".
func lookupString(path string, v any) string {
	res, err := jsonpath.Get(path, v)
	if err != nil || res == nil {
		return ""
	}
	switch x := res.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

// lookupStrings accepts either a JSON array of strings or a comma-separated
// string. A missing field yields nil so callers can fall back.
func lookupStrings(path string, v any) []string {
	res, err := jsonpath.Get(path, v)
	if err != nil || res == nil {
		return nil
	}
	out := []string{}
	switch x := res.(type) {
	case []any:
		for _, e := range x {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(x, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	default:
		return nil
	}
	return out
}
