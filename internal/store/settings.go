package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// DefaultNotifyDaysBefore is used when the setting row is missing or invalid.
const DefaultNotifyDaysBefore = 3

const notifyDaysKey = "notify_days_before"

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the value for key, or "" when the setting is not present.
func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// NotifyDaysBefore returns how many days ahead of expiration items count as
// expiring soon. Falls back to the default when the setting is unset or
// unparsable; query failures propagate.
func (s *SettingsStore) NotifyDaysBefore() (int, error) {
	value, err := s.Get(notifyDaysKey)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(value)
	if convErr != nil || n < 1 {
		return DefaultNotifyDaysBefore, nil
	}
	return n, nil
}

func (s *SettingsStore) SetNotifyDaysBefore(days int) error {
	if days < 1 {
		return fmt.Errorf("notify days must be at least 1, got %d", days)
	}
	return s.Set(notifyDaysKey, strconv.Itoa(days))
}
