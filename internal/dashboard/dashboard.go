// Package dashboard drives a portfolio tracker from a news source. It adds
// what an interactive dashboard needs on top of the tracker: a guarded
// refresh, the news alert toggle, and change notifications.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/newspulse/internal/datasource"
	"github.com/seenimoa/newspulse/internal/portfolio"
	"github.com/seenimoa/newspulse/pkg/models"
)

// ErrRefreshInProgress is returned when a refresh is requested while
// another one is still pending.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// Event types delivered to subscribers.
const (
	EventStateUpdated   = "state_updated"
	EventNewsAlert      = "news_alert"
	EventRefreshStarted = "refresh_started"
	EventRefreshFailed  = "refresh_failed"
	EventAlertsChanged  = "alerts_changed"
)

// Event is a change notification. Data holds a State for state_updated, a
// models.Analysis for news_alert, a bool for alerts_changed and an error
// message for refresh_failed.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// State is a snapshot of everything the dashboard shows.
type State struct {
	Holdings      []models.Holding  `json:"holdings"`
	News          []models.NewsItem `json:"news"`
	TotalValue    decimal.Decimal   `json:"total_value"`
	Refreshing    bool              `json:"refreshing"`
	AlertsEnabled bool              `json:"alerts_enabled"`
	LastRefresh   time.Time         `json:"last_refresh,omitzero"`
	models.DerivedState
}

// Options tunes a Service.
type Options struct {
	// RefreshDelay is waited before each user-triggered refresh fetch.
	RefreshDelay time.Duration
	// AlertsEnabled is the initial state of the news alert toggle.
	AlertsEnabled bool
	Logger        logrus.FieldLogger
}

// Service coordinates a tracker and its news source.
type Service struct {
	tracker *portfolio.Tracker
	source  datasource.Source
	delay   time.Duration
	log     logrus.FieldLogger
	now     func() time.Time

	// mu serialises mutations so that alerts are computed against the
	// state the mutation started from.
	mu          sync.Mutex
	refreshing  atomic.Bool
	alerts      atomic.Bool
	lastRefresh atomic.Int64 // unix nanos, 0 = never

	subMu  sync.RWMutex
	nextID int
	subs   map[int]func(Event)
}

// New creates a service over tracker and source.
func New(tracker *portfolio.Tracker, source datasource.Source, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{
		tracker: tracker,
		source:  source,
		delay:   opts.RefreshDelay,
		log:     log.WithField("component", "dashboard"),
		now:     time.Now,
		subs:    make(map[int]func(Event)),
	}
	s.alerts.Store(opts.AlertsEnabled)
	return s
}

// Tracker returns the underlying tracker.
func (s *Service) Tracker() *portfolio.Tracker { return s.tracker }

// SourceName returns the configured news source name.
func (s *Service) SourceName() string { return s.source.Name() }

// Subscribe registers fn for every event and returns a function that
// removes it. fn runs synchronously and must not call back into mutating
// methods of the service.
func (s *Service) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Service) emit(ev Event) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, fn := range s.subs {
		fn(ev)
	}
}

// Prime loads the news feed once without the refresh delay. It is meant
// for startup.
func (s *Service) Prime(ctx context.Context) error {
	return s.refresh(ctx, 0)
}

// Refresh re-fetches the news feed after the configured delay and
// replaces the working set. Only one refresh may be pending at a time.
func (s *Service) Refresh(ctx context.Context) error {
	return s.refresh(ctx, s.delay)
}

func (s *Service) refresh(ctx context.Context, delay time.Duration) error {
	if !s.refreshing.CompareAndSwap(false, true) {
		return ErrRefreshInProgress
	}

	s.emit(Event{Type: EventRefreshStarted})
	start := s.now()

	items, err := s.fetch(ctx, delay)
	if err != nil {
		s.refreshing.Store(false)
		s.log.WithFields(logrus.Fields{"source": s.source.Name(), "error": err}).Error("news refresh failed")
		s.emit(Event{Type: EventRefreshFailed, Data: err.Error()})
		return err
	}

	s.lastRefresh.Store(s.now().UnixNano())
	s.mutate(func() bool {
		s.tracker.SetNewsFeed(items)
		// Published state must already show the refresh as finished.
		s.refreshing.Store(false)
		return true
	})

	s.log.WithFields(logrus.Fields{
		"source":   s.source.Name(),
		"items":    len(items),
		"duration": s.now().Sub(start).Round(time.Millisecond),
	}).Info("news refreshed")
	return nil
}

func (s *Service) fetch(ctx context.Context, delay time.Duration) ([]models.NewsItem, error) {
	if delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return s.source.Fetch(ctx)
}

// Refreshing reports whether a refresh is pending.
func (s *Service) Refreshing() bool { return s.refreshing.Load() }

// AddHolding validates and adds a holding.
func (s *Service) AddHolding(symbol, quantity, price string) (models.Holding, error) {
	var (
		h   models.Holding
		err error
	)
	s.mutate(func() bool {
		h, err = s.tracker.AddHolding(symbol, quantity, price)
		return err == nil
	})
	if err != nil {
		return models.Holding{}, err
	}
	s.log.WithFields(logrus.Fields{"id": h.ID, "symbol": h.Symbol, "quantity": h.Quantity}).Info("holding added")
	return h, nil
}

// RemoveHolding removes the holding with id and reports whether it existed.
func (s *Service) RemoveHolding(id uuid.UUID) bool {
	var removed bool
	s.mutate(func() bool {
		removed = s.tracker.RemoveHolding(id)
		return removed
	})
	if removed {
		s.log.WithField("id", id).Info("holding removed")
	}
	return removed
}

// SetNewsFeed replaces the working news set directly.
func (s *Service) SetNewsFeed(items []models.NewsItem) {
	s.mutate(func() bool {
		s.tracker.SetNewsFeed(items)
		return true
	})
}

// AlertsEnabled reports the state of the news alert toggle.
func (s *Service) AlertsEnabled() bool { return s.alerts.Load() }

// SetAlerts switches news alerts on or off.
func (s *Service) SetAlerts(enabled bool) {
	if s.alerts.Swap(enabled) == enabled {
		return
	}
	s.log.WithField("enabled", enabled).Info("news alerts toggled")
	s.emit(Event{Type: EventAlertsChanged, Data: enabled})
}

// State returns a snapshot of the dashboard.
func (s *Service) State() State {
	holdings := s.tracker.Holdings()
	st := State{
		Holdings:      holdings,
		News:          s.tracker.News(),
		TotalValue:    models.TotalValue(holdings),
		Refreshing:    s.refreshing.Load(),
		AlertsEnabled: s.alerts.Load(),
		DerivedState:  s.tracker.DerivedState(),
	}
	if ns := s.lastRefresh.Load(); ns != 0 {
		st.LastRefresh = time.Unix(0, ns)
	}
	return st
}

// mutate applies fn to the tracker. If fn reports a change, the new state
// is published along with an alert for each analysis not present before.
func (s *Service) mutate(fn func() bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.tracker.DerivedState()
	if !fn() {
		return
	}
	st := s.State()

	s.emit(Event{Type: EventStateUpdated, Data: st})
	if !s.alerts.Load() {
		return
	}
	for _, a := range newAnalyses(before.Analyses, st.Analyses) {
		s.emit(Event{Type: EventNewsAlert, Data: a})
	}
}

// newAnalyses returns the entries of after whose news item was not
// analysed in before.
func newAnalyses(before, after []models.Analysis) []models.Analysis {
	seen := make(map[string]bool, len(before))
	for _, a := range before {
		seen[a.NewsID] = true
	}
	var out []models.Analysis
	for _, a := range after {
		if !seen[a.NewsID] {
			out = append(out, a)
		}
	}
	return out
}
