package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/newspulse/pkg/models"
)

// Aggregator fetches from several sources concurrently and merges the
// results into a single feed.
type Aggregator struct {
	sources    []Source
	concurrent int
	log        logrus.FieldLogger
}

// NewAggregator creates an aggregator over the given sources. concurrent
// bounds the number of simultaneous fetches; zero or less means unbounded.
func NewAggregator(log logrus.FieldLogger, concurrent int, sources ...Source) *Aggregator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Aggregator{sources: sources, concurrent: concurrent, log: log}
}

// Name returns the data source name.
func (a *Aggregator) Name() string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.Name()
	}
	return "Aggregate(" + strings.Join(names, ", ") + ")"
}

// Fetch queries every source. Failing sources are logged and skipped; an
// error is returned only if none succeeded. Items keep source order, then
// feed order, and repeated headlines are dropped.
func (a *Aggregator) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	if len(a.sources) == 0 {
		return nil, ErrNoSources
	}

	results := make([][]models.NewsItem, len(a.sources))
	errs := make([]error, len(a.sources))

	g, gctx := errgroup.WithContext(ctx)
	if a.concurrent > 0 {
		g.SetLimit(a.concurrent)
	}
	for i, src := range a.sources {
		g.Go(func() error {
			items, err := src.Fetch(gctx)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", src.Name(), err)
				a.log.WithFields(logrus.Fields{"source": src.Name(), "error": err}).Warn("news source failed")
				return nil // non-fatal
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		merged []models.NewsItem
		failed int
		seen   = make(map[string]bool)
	)
	for i, items := range results {
		if errs[i] != nil {
			failed++
			continue
		}
		for _, it := range items {
			key := strings.ToLower(strings.TrimSpace(it.Headline))
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, it)
		}
	}

	if failed == len(a.sources) {
		return nil, fmt.Errorf("%w: %w", ErrNoSources, errors.Join(errs...))
	}
	if merged == nil {
		merged = []models.NewsItem{}
	}

	a.log.WithFields(logrus.Fields{"items": len(merged), "sources": len(a.sources), "failed": failed}).Debug("news aggregated")
	return merged, nil
}
