package expiration

import (
	"fmt"
	"strings"
)

// Notification is one composed message for a check run. The tag is stable
// across runs so a device replaces yesterday's notification instead of
// stacking a new one.
type Notification struct {
	Title string
	Body  string
	Tag   string
}

const (
	TagExpired  = "expired-items"
	TagExpiring = "expiring-items"

	titleExpired  = "🚨 Prošlé potraviny!"
	titleExpiring = "⏰ Blížící se expirace"
)

// Compose turns an evaluation result into at most two notifications: one
// listing expired items, one listing upcoming expirations. Item order
// follows the result's order. Empty partitions produce nothing.
func Compose(result Result) []Notification {
	var notifs []Notification

	if len(result.Expired) > 0 {
		names := make([]string, len(result.Expired))
		for i, e := range result.Expired {
			names[i] = e.Item.Name
		}
		notifs = append(notifs, Notification{
			Title: titleExpired,
			Body:  "Tyto potraviny už expirovaly: " + strings.Join(names, ", "),
			Tag:   TagExpired,
		})
	}

	if len(result.ExpiringSoon) > 0 {
		lines := make([]string, len(result.ExpiringSoon))
		for i, e := range result.ExpiringSoon {
			if e.Days == 0 {
				lines[i] = fmt.Sprintf("%s — dnes!", e.Item.Name)
			} else {
				lines[i] = fmt.Sprintf("%s — za %d %s", e.Item.Name, e.Days, pluralDays(e.Days))
			}
		}
		notifs = append(notifs, Notification{
			Title: titleExpiring,
			Body:  strings.Join(lines, "\n"),
			Tag:   TagExpiring,
		})
	}

	return notifs
}

// pluralDays picks the Czech plural form: 1 den, 2-4 dny, 5+ dní.
func pluralDays(days int) string {
	switch {
	case days == 1:
		return "den"
	case days < 5:
		return "dny"
	default:
		return "dní"
	}
}
