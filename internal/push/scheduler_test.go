package push

import (
	"sync"
	"testing"
	"time"

	"github.com/mkadlec/spajz/internal/database"
	"github.com/mkadlec/spajz/internal/store"
)

type schedulerFixture struct {
	scheduler *Scheduler
	foods     *store.FoodStore
	settings  *store.SettingsStore
	push      *store.PushStore
	sender    *fakeSender
}

func setupScheduler(t *testing.T, now time.Time) *schedulerFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	foods := store.NewFoodStore(db)
	settings := store.NewSettingsStore(db)
	pushStore := store.NewPushStore(db)
	sender := &fakeSender{outcomes: map[string]error{}}

	dispatcher := NewDispatcher(sender, pushStore, testLogger())
	scheduler := NewScheduler(dispatcher, foods, settings, pushStore, nil, testLogger())
	scheduler.now = func() time.Time { return now }

	return &schedulerFixture{
		scheduler: scheduler,
		foods:     foods,
		settings:  settings,
		push:      pushStore,
		sender:    sender,
	}
}

var checkDay = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestRunExpirationCheckEndToEnd(t *testing.T) {
	f := setupScheduler(t, checkDay)

	// Milk expires today, Ham expired two days ago, threshold 3
	f.foods.Create("Milk", "2026-03-01", "2026-03-10")
	f.foods.Create("Ham", "2026-03-01", "2026-03-08")
	f.push.Create("https://push.example.com/1", "k1", "a1")
	f.push.Create("https://push.example.com/2", "k2", "a2")

	report := f.scheduler.RunExpirationCheck()

	if report.Expired != 1 {
		t.Errorf("expired = %d, want 1", report.Expired)
	}
	if report.ExpiringSoon != 1 {
		t.Errorf("expiring soon = %d, want 1", report.ExpiringSoon)
	}
	// Two payloads to two subscriptions each
	if report.Notified != 4 {
		t.Errorf("notified = %d, want 4", report.Notified)
	}
	if len(f.sender.sent) != 4 {
		t.Errorf("sends = %d, want 4", len(f.sender.sent))
	}
}

func TestRunExpirationCheckNothingExpiring(t *testing.T) {
	f := setupScheduler(t, checkDay)

	f.foods.Create("Cheese", "2026-03-01", "2026-06-01")
	f.push.Create("https://push.example.com/1", "k1", "a1")

	report := f.scheduler.RunExpirationCheck()

	if report.Expired != 0 || report.ExpiringSoon != 0 {
		t.Errorf("report = %+v, want empty partitions", report)
	}
	if len(f.sender.sent) != 0 {
		t.Errorf("sends = %d, want 0 for a no-op run", len(f.sender.sent))
	}
}

func TestRunExpirationCheckRemovesGoneSubscription(t *testing.T) {
	f := setupScheduler(t, checkDay)

	f.foods.Create("Milk", "2026-03-01", "2026-03-10")
	f.push.Create("https://push.example.com/alive", "k1", "a1")
	f.push.Create("https://push.example.com/dead", "k2", "a2")
	f.sender.outcomes["https://push.example.com/dead"] = ErrExpired

	report := f.scheduler.RunExpirationCheck()

	if report.Notified != 1 {
		t.Errorf("notified = %d, want 1", report.Notified)
	}
	if report.Removed != 1 {
		t.Errorf("removed = %d, want 1", report.Removed)
	}

	subs, _ := f.push.List()
	if len(subs) != 1 || subs[0].Endpoint != "https://push.example.com/alive" {
		t.Errorf("remaining subs = %+v, want only the alive endpoint", subs)
	}
}

func TestRunExpirationCheckCountsDeadSubscriptionOnce(t *testing.T) {
	f := setupScheduler(t, checkDay)

	// Two notifications go out (expired and expiring-soon), and the dead
	// subscription is gone for both. The report counts dead subscriptions,
	// not removal requests.
	f.foods.Create("Milk", "2026-03-01", "2026-03-10")
	f.foods.Create("Ham", "2026-03-01", "2026-03-08")
	f.push.Create("https://push.example.com/alive", "k1", "a1")
	f.push.Create("https://push.example.com/dead", "k2", "a2")
	f.sender.outcomes["https://push.example.com/dead"] = ErrExpired

	report := f.scheduler.RunExpirationCheck()

	if report.Removed != 1 {
		t.Errorf("removed = %d, want 1", report.Removed)
	}
	if report.Notified != 2 {
		t.Errorf("notified = %d, want 2", report.Notified)
	}

	subs, _ := f.push.List()
	if len(subs) != 1 || subs[0].Endpoint != "https://push.example.com/alive" {
		t.Errorf("remaining subs = %+v, want only the alive endpoint", subs)
	}
}

func TestRunExpirationCheckHonorsThresholdSetting(t *testing.T) {
	f := setupScheduler(t, checkDay)

	f.foods.Create("Eggs", "2026-03-01", "2026-03-17") // 7 days out
	f.push.Create("https://push.example.com/1", "k1", "a1")

	report := f.scheduler.RunExpirationCheck()
	if report.ExpiringSoon != 0 {
		t.Errorf("expiring soon = %d, want 0 with default threshold", report.ExpiringSoon)
	}

	f.settings.SetNotifyDaysBefore(10)
	report = f.scheduler.RunExpirationCheck()
	if report.ExpiringSoon != 1 {
		t.Errorf("expiring soon = %d, want 1 with threshold 10", report.ExpiringSoon)
	}
}

func TestRunExpirationCheckPushDisabled(t *testing.T) {
	f := setupScheduler(t, checkDay)
	f.scheduler.dispatcher = NewDispatcher(nil, f.push, testLogger())

	f.foods.Create("Milk", "2026-03-01", "2026-03-10")
	f.push.Create("https://push.example.com/1", "k1", "a1")

	report := f.scheduler.RunExpirationCheck()

	if !report.PushDisabled {
		t.Error("expected push_disabled report")
	}
	if report.Notified != 0 {
		t.Errorf("notified = %d, want 0", report.Notified)
	}
	// Evaluation still ran
	if report.ExpiringSoon != 1 {
		t.Errorf("expiring soon = %d, want 1", report.ExpiringSoon)
	}
}

func TestRunExpirationCheckSerialized(t *testing.T) {
	f := setupScheduler(t, checkDay)

	f.foods.Create("Milk", "2026-03-01", "2026-03-10")
	f.push.Create("https://push.example.com/1", "k1", "a1")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.scheduler.RunExpirationCheck()
		}()
	}
	wg.Wait()

	// Eight serialized cycles, one payload and one subscription each
	if len(f.sender.sent) != 8 {
		t.Errorf("sends = %d, want 8", len(f.sender.sent))
	}
}

func TestNextFireTime(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		// Before 09:00 fires the same day
		{time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC), time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		// At or after 09:00 fires the next day
		{time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)},
		{time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC), time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)},
		// Month rollover
		{time.Date(2026, 3, 31, 10, 0, 0, 0, time.UTC), time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		if got := nextFireTime(tt.now); !got.Equal(tt.want) {
			t.Errorf("nextFireTime(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestSchedulerStartStop(t *testing.T) {
	f := setupScheduler(t, checkDay)

	f.scheduler.Start(t.Context())
	f.scheduler.Stop()
}
