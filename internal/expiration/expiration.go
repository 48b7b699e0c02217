// Package expiration classifies food items by how close they are to their
// expiration date and composes the notification texts for a check run.
// Everything here is pure computation over an in-memory item list; callers
// supply "today" so results are deterministic.
package expiration

import (
	"math"
	"time"

	"github.com/mkadlec/spajz/internal/model"
)

// Entry is a food item together with its day-count to expiration.
type Entry struct {
	Item model.FoodItem
	Days int
}

// Result partitions items into already-expired and expiring-soon sets.
// Relative input order is preserved within each set. Skipped holds items
// whose expiration date could not be parsed; callers decide how to report
// them.
type Result struct {
	Expired      []Entry
	ExpiringSoon []Entry
	Skipped      []model.FoodItem
}

// DaysUntil returns the whole-day count from today until the expiration
// date. Both sides are truncated to local midnight before subtracting, so
// time-of-day and DST offsets never shift the result. Negative means the
// date has passed, zero means it expires today.
func DaysUntil(expirationDate string, today time.Time) (int, error) {
	exp, err := time.ParseInLocation(model.DateFormat, expirationDate, today.Location())
	if err != nil {
		return 0, err
	}
	diff := startOfDay(exp).Sub(startOfDay(today))
	return int(math.Ceil(diff.Hours() / 24)), nil
}

// Evaluate partitions items against the threshold: day-count < 0 is
// expired, 0 <= day-count <= thresholdDays is expiring soon (an item
// expiring today counts as expiring soon, not expired). Items whose
// expiration date cannot be parsed land in Skipped so one bad record never
// blocks notifications for the rest.
func Evaluate(items []model.FoodItem, thresholdDays int, today time.Time) Result {
	var result Result
	for _, item := range items {
		days, err := DaysUntil(item.ExpirationDate, today)
		if err != nil {
			result.Skipped = append(result.Skipped, item)
			continue
		}
		switch {
		case days < 0:
			result.Expired = append(result.Expired, Entry{Item: item, Days: days})
		case days <= thresholdDays:
			result.ExpiringSoon = append(result.ExpiringSoon, Entry{Item: item, Days: days})
		}
	}
	return result
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
