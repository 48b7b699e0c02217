package push

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mkadlec/spajz/internal/expiration"
	"github.com/mkadlec/spajz/internal/store"
)

// The daily check fires at this local wall-clock time.
const (
	fireHour   = 9
	fireMinute = 0
)

// CheckReport summarizes one expiration check cycle.
type CheckReport struct {
	Expired      int  `json:"expired"`
	ExpiringSoon int  `json:"expiring_soon"`
	Notified     int  `json:"notified"`
	Removed      int  `json:"removed"`
	Failed       int  `json:"failed"`
	PushDisabled bool `json:"push_disabled,omitempty"`
}

// Broadcaster receives a summary after each completed cycle so connected
// clients can refresh. Optional.
type Broadcaster interface {
	CheckCompleted(report CheckReport)
}

// Scheduler runs the daily expiration check: evaluate items against the
// configured threshold, compose notifications, and dispatch them to all
// registered devices.
type Scheduler struct {
	runMu sync.Mutex // serializes check cycles

	mu         sync.RWMutex
	foods      *store.FoodStore
	settings   *store.SettingsStore
	push       *store.PushStore
	dispatcher *Dispatcher
	broadcast  Broadcaster
	logger     *slog.Logger
	now        func() time.Time
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewScheduler creates the expiration check scheduler.
func NewScheduler(dispatcher *Dispatcher, foods *store.FoodStore, settings *store.SettingsStore, pushStore *store.PushStore, broadcast Broadcaster, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		foods:      foods,
		settings:   settings,
		push:       pushStore,
		dispatcher: dispatcher,
		broadcast:  broadcast,
		logger:     logger,
		now:        time.Now,
	}
}

// Start begins the scheduler loop, firing once per day at the configured
// wall-clock time.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		for {
			next := nextFireTime(s.now())
			timer := time.NewTimer(next.Sub(s.now()))

			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.logger.Info("running daily expiration check")
				s.RunExpirationCheck()
			}
		}
	}()

	s.logger.Info("scheduler started", "fire_time", time.Date(0, 1, 1, fireHour, fireMinute, 0, 0, time.Local).Format("15:04"))
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// nextFireTime returns the next occurrence of the fire time strictly after now.
func nextFireTime(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), fireHour, fireMinute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunExpirationCheck executes one full evaluate -> compose -> dispatch
// cycle and returns its summary. Cycles are serialized, so a manually
// triggered check cannot race the scheduled one while the registry is
// being mutated. Failures are logged and never propagate to the caller.
func (s *Scheduler) RunExpirationCheck() (report CheckReport) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("expiration check panicked", "panic", r)
		}
	}()

	items, err := s.foods.List()
	if err != nil {
		s.logger.Error("expiration check: list foods", "error", err)
		return report
	}

	threshold, err := s.settings.NotifyDaysBefore()
	if err != nil {
		s.logger.Error("expiration check: read threshold", "error", err)
		return report
	}

	result := expiration.Evaluate(items, threshold, s.now())
	for _, item := range result.Skipped {
		s.logger.Warn("skipping item with invalid expiration date",
			"id", item.ID, "name", item.Name, "expiration_date", item.ExpirationDate)
	}
	report.Expired = len(result.Expired)
	report.ExpiringSoon = len(result.ExpiringSoon)

	notifs := expiration.Compose(result)
	if len(notifs) == 0 {
		s.logger.Info("no expiring items found", "threshold_days", threshold)
		s.completed(report)
		return report
	}

	// Read the registry once per cycle; removals discovered during
	// dispatch are idempotent, so both payloads can share the snapshot.
	subs, err := s.push.List()
	if err != nil {
		s.logger.Error("expiration check: list subscriptions", "error", err)
		return report
	}

	var dispatched Report
	for _, n := range notifs {
		r := s.dispatcher.Dispatch(Payload{Title: n.Title, Body: n.Body, Tag: n.Tag}, subs)
		dispatched.add(r)
	}

	// A subscription gone for every payload triggers one removal request
	// per payload; count the dead subscription once.
	removed := make(map[string]struct{})
	for _, endpoint := range dispatched.removedEndpoints {
		removed[endpoint] = struct{}{}
	}

	report.Notified = dispatched.Sent
	report.Removed = len(removed)
	report.Failed = dispatched.Failed
	report.PushDisabled = dispatched.Disabled

	s.logger.Info("expiration check completed",
		"expired", report.Expired,
		"expiring_soon", report.ExpiringSoon,
		"notified", report.Notified,
		"removed", report.Removed,
		"failed", report.Failed)

	s.completed(report)
	return report
}

func (s *Scheduler) completed(report CheckReport) {
	if s.broadcast != nil {
		s.broadcast.CheckCompleted(report)
	}
}
