package store

import (
	"testing"
	"time"

	"github.com/mkadlec/spajz/internal/database"
	"github.com/mkadlec/spajz/internal/model"
)

func setupFoodTestDB(t *testing.T) *FoodStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewFoodStore(db)
}

func TestFoodCreate(t *testing.T) {
	fs := setupFoodTestDB(t)

	food, err := fs.Create("Milk", "2026-03-01", "2026-03-10")
	if err != nil {
		t.Fatalf("create food: %v", err)
	}
	if food.ID == "" {
		t.Error("expected non-empty ID")
	}
	if food.Name != "Milk" {
		t.Errorf("name = %q, want %q", food.Name, "Milk")
	}
	if food.ExpirationDate != "2026-03-10" {
		t.Errorf("expiration_date = %q, want %q", food.ExpirationDate, "2026-03-10")
	}
}

func TestFoodCreateDefaultsAddedDate(t *testing.T) {
	fs := setupFoodTestDB(t)

	food, err := fs.Create("Milk", "", "2026-03-10")
	if err != nil {
		t.Fatalf("create food: %v", err)
	}
	want := time.Now().Format(model.DateFormat)
	if food.AddedDate != want {
		t.Errorf("added_date = %q, want today %q", food.AddedDate, want)
	}
}

func TestFoodList(t *testing.T) {
	fs := setupFoodTestDB(t)

	first, _ := fs.Create("Milk", "2026-03-01", "2026-03-10")
	second, _ := fs.Create("Ham", "2026-03-02", "2026-03-05")

	foods, err := fs.List()
	if err != nil {
		t.Fatalf("list foods: %v", err)
	}
	if len(foods) != 2 {
		t.Fatalf("len = %d, want 2", len(foods))
	}
	if foods[0].ID != first.ID || foods[1].ID != second.ID {
		t.Error("expected insertion order to be preserved")
	}
}

func TestFoodGetByIDMissing(t *testing.T) {
	fs := setupFoodTestDB(t)

	food, err := fs.GetByID("nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if food != nil {
		t.Errorf("food = %+v, want nil", food)
	}
}

func TestFoodUpdate(t *testing.T) {
	fs := setupFoodTestDB(t)

	food, _ := fs.Create("Milk", "2026-03-01", "2026-03-10")

	updated, err := fs.Update(food.ID, "Whole Milk", "", "2026-03-12")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Whole Milk" {
		t.Errorf("name = %q, want %q", updated.Name, "Whole Milk")
	}
	if updated.AddedDate != "2026-03-01" {
		t.Errorf("added_date = %q, want unchanged %q", updated.AddedDate, "2026-03-01")
	}
	if updated.ExpirationDate != "2026-03-12" {
		t.Errorf("expiration_date = %q, want %q", updated.ExpirationDate, "2026-03-12")
	}
}

func TestFoodUpdateMissing(t *testing.T) {
	fs := setupFoodTestDB(t)

	updated, err := fs.Update("nope", "Name", "", "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated != nil {
		t.Errorf("updated = %+v, want nil", updated)
	}
}

func TestFoodDelete(t *testing.T) {
	fs := setupFoodTestDB(t)

	food, _ := fs.Create("Milk", "2026-03-01", "2026-03-10")

	deleted, err := fs.Delete(food.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Error("expected delete to report true")
	}

	deleted, err = fs.Delete(food.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted {
		t.Error("expected second delete to report false")
	}
}
