package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/newspulse/internal/analysis/sentiment"
	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/internal/datasource"
)

// newSource builds the configured news source. RSS and JSON providers fan
// out over their source lists through an aggregator.
func newSource(cfg *config.Config, log logrus.FieldLogger) (datasource.Source, error) {
	feed := cfg.Feed
	ttl := time.Duration(feed.CacheTTL) * time.Second

	switch feed.Provider {
	case config.ProviderStatic, "":
		var rng *rand.Rand
		if cfg.Scoring.Seed != 0 {
			rng = rand.New(rand.NewSource(cfg.Scoring.Seed))
		}
		return datasource.NewStaticWithItems(datasource.ReferenceFeed, feed.Shuffle, rng), nil

	case config.ProviderRSS:
		feeds := feed.RSSSources
		if len(feeds) == 0 {
			feeds = datasource.DefaultFeeds
		}
		sources := make([]datasource.Source, len(feeds))
		for i, f := range feeds {
			sources[i] = datasource.NewRSS(f,
				datasource.WithCacheTTL(ttl),
				datasource.WithRateLimit(feed.RateLimitPerSec),
				datasource.WithMaxItems(feed.MaxItems),
			)
		}
		return datasource.NewAggregator(log, feed.ConcurrentFetches, sources...), nil

	case config.ProviderJSON:
		sources := make([]datasource.Source, len(feed.JSONSources))
		for i, f := range feed.JSONSources {
			sources[i] = datasource.NewJSONFeed(f, nil, ttl, feed.RateLimitPerSec)
		}
		return datasource.NewAggregator(log, feed.ConcurrentFetches, sources...), nil
	}
	return nil, fmt.Errorf("unknown feed provider %q", feed.Provider)
}

// newConfidence picks the scorer's confidence source.
func newConfidence(sc config.ScoringConfig) sentiment.ConfidenceSource {
	switch {
	case sc.FixedConfidence > 0:
		return sentiment.FixedConfidence(sc.FixedConfidence)
	case sc.Seed != 0:
		return sentiment.NewSeededConfidence(sc.Seed)
	default:
		return sentiment.NewRandomConfidence(nil)
	}
}
