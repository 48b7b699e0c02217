package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkadlec/spajz/internal/model"
)

type FoodStore struct {
	db *sql.DB
}

func NewFoodStore(db *sql.DB) *FoodStore {
	return &FoodStore{db: db}
}

const foodCols = `id, name, added_date, expiration_date, created_at`

func scanFood(scanner interface{ Scan(...any) error }) (*model.FoodItem, error) {
	var f model.FoodItem
	err := scanner.Scan(&f.ID, &f.Name, &f.AddedDate, &f.ExpirationDate, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns all food items in insertion order.
func (s *FoodStore) List() ([]model.FoodItem, error) {
	rows, err := s.db.Query(`SELECT ` + foodCols + ` FROM foods ORDER BY rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	defer rows.Close()

	var foods []model.FoodItem
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		foods = append(foods, *f)
	}
	return foods, rows.Err()
}

func (s *FoodStore) GetByID(id string) (*model.FoodItem, error) {
	row := s.db.QueryRow(`SELECT `+foodCols+` FROM foods WHERE id = ?`, id)
	f, err := scanFood(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get food: %w", err)
	}
	return f, nil
}

// Create inserts a new food item with a generated ID. An empty addedDate
// defaults to today's calendar date.
func (s *FoodStore) Create(name, addedDate, expirationDate string) (*model.FoodItem, error) {
	if addedDate == "" {
		addedDate = time.Now().Format(model.DateFormat)
	}
	id := uuid.NewString()

	_, err := s.db.Exec(
		`INSERT INTO foods (id, name, added_date, expiration_date) VALUES (?, ?, ?, ?)`,
		id, name, addedDate, expirationDate,
	)
	if err != nil {
		return nil, fmt.Errorf("create food: %w", err)
	}
	return s.GetByID(id)
}

// Update modifies an existing item. Empty fields keep their current value.
// Returns nil when the item does not exist.
func (s *FoodStore) Update(id, name, addedDate, expirationDate string) (*model.FoodItem, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if name == "" {
		name = existing.Name
	}
	if addedDate == "" {
		addedDate = existing.AddedDate
	}
	if expirationDate == "" {
		expirationDate = existing.ExpirationDate
	}

	_, err = s.db.Exec(
		`UPDATE foods SET name = ?, added_date = ?, expiration_date = ? WHERE id = ?`,
		name, addedDate, expirationDate, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update food: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes an item and reports whether it existed.
func (s *FoodStore) Delete(id string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM foods WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete food: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete food rows affected: %w", err)
	}
	return n > 0, nil
}
