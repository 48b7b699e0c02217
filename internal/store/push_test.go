package store

import (
	"testing"

	"github.com/mkadlec/spajz/internal/database"
)

func setupPushTestDB(t *testing.T) *PushStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPushStore(db)
}

func TestPushCreate(t *testing.T) {
	ps := setupPushTestDB(t)

	sub, err := ps.Create("https://push.example.com/sub1", "p256dh_key1", "auth_key1")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}
	if sub.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if sub.Endpoint != "https://push.example.com/sub1" {
		t.Errorf("endpoint = %q, want %q", sub.Endpoint, "https://push.example.com/sub1")
	}
}

func TestPushCreateUpsertOnEndpoint(t *testing.T) {
	ps := setupPushTestDB(t)

	sub1, _ := ps.Create("https://push.example.com/sub1", "key1", "auth1")
	sub2, err := ps.Create("https://push.example.com/sub1", "key2", "auth2")
	if err != nil {
		t.Fatalf("upsert subscription: %v", err)
	}

	// Same endpoint means same subscription, updated keys
	if sub2.ID != sub1.ID {
		t.Errorf("expected same ID on upsert, got %d != %d", sub2.ID, sub1.ID)
	}
	if sub2.P256dhKey != "key2" {
		t.Errorf("p256dh = %q, want %q", sub2.P256dhKey, "key2")
	}

	subs, _ := ps.List()
	if len(subs) != 1 {
		t.Errorf("len = %d, want 1 (no duplicate rows)", len(subs))
	}
}

func TestPushList(t *testing.T) {
	ps := setupPushTestDB(t)

	ps.Create("https://push.example.com/1", "k1", "a1")
	ps.Create("https://push.example.com/2", "k2", "a2")

	subs, err := ps.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("len = %d, want 2", len(subs))
	}
}

func TestPushDeleteByEndpoint(t *testing.T) {
	ps := setupPushTestDB(t)

	ps.Create("https://push.example.com/expired", "k1", "a1")

	if err := ps.DeleteByEndpoint("https://push.example.com/expired"); err != nil {
		t.Fatalf("delete by endpoint: %v", err)
	}

	subs, _ := ps.List()
	if len(subs) != 0 {
		t.Errorf("expected 0 subs, got %d", len(subs))
	}
}

func TestPushDeleteByEndpointIdempotent(t *testing.T) {
	ps := setupPushTestDB(t)

	ps.Create("https://push.example.com/1", "k1", "a1")

	if err := ps.DeleteByEndpoint("https://push.example.com/1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	// Deleting an already-absent endpoint is a no-op, not an error
	if err := ps.DeleteByEndpoint("https://push.example.com/1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if err := ps.DeleteByEndpoint("https://push.example.com/never-existed"); err != nil {
		t.Fatalf("delete of unknown endpoint: %v", err)
	}
}

func TestPushGetByEndpointMissing(t *testing.T) {
	ps := setupPushTestDB(t)

	sub, err := ps.GetByEndpoint("https://push.example.com/none")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sub != nil {
		t.Errorf("sub = %+v, want nil", sub)
	}
}
