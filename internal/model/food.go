package model

import "time"

// DateFormat is the calendar-date layout used for added and expiration dates.
const DateFormat = "2006-01-02"

type FoodItem struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	AddedDate      string    `json:"addedDate"`
	ExpirationDate string    `json:"expirationDate"`
	CreatedAt      time.Time `json:"createdAt"`
}
