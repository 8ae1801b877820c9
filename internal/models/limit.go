package models

import "time"

// SpendingLimit is a user's monthly (or N-month) advisory ceiling. At most
// one row per user is active; setting a new limit deactivates the rest.
type SpendingLimit struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	Amount    int64     `json:"amount" db:"amount"` // in cents
	Months    int       `json:"months" db:"months"` // 1, 3, 6 or 12
	Note      string    `json:"note" db:"note"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	Active    bool      `json:"active" db:"active"`
}
