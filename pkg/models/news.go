package models

import "time"

// NewsItem represents a single market headline. Items are immutable once
// obtained from a source; a refresh replaces the whole set.
type NewsItem struct {
	ID          string    `json:"id"`
	Headline    string    `json:"headline"`
	Source      string    `json:"source"`             // e.g., "Economic Times"
	Time        string    `json:"time"`               // display string, e.g. "2 hours ago"
	Category    string    `json:"category"`           // e.g., "Market Update"
	Stocks      []string  `json:"stocks"`             // tickers mentioned, may be empty
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"published_at,omitzero"`
}
