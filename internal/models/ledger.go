package models

import "time"

// All monetary amounts are int64 minor units (cents). Floats never carry
// money past the JSON boundary.

// Income statuses.
const (
	IncomeStatusPending   = "pending"
	IncomeStatusConfirmed = "confirmed"
	IncomeStatusCompleted = "completed"
)

// SourceGroupContribution marks the negative income adjustment written when
// a user funds a group contribution.
const SourceGroupContribution = "group_contribution"

// Income is a signed monetary delta attributed to a user. Negative rows are
// adjustments (personal money leaving toward a group fund). The signed sum
// of a user's pending rows is the pool withdrawals drain from.
type Income struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	Amount       int64     `json:"amount" db:"amount"` // in cents, signed
	Source       string    `json:"source" db:"source"`
	Note         string    `json:"note" db:"note"`
	ReceivedDate time.Time `json:"received_date" db:"received_date"`
	Status       string    `json:"status" db:"status"`
	CategoryID   *int      `json:"category_id,omitempty" db:"category_id"`
}

// Expense is a realized personal expense, created as the pair of a
// successful withdrawal.
type Expense struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"user_id" db:"user_id"`
	Amount     int64     `json:"amount" db:"amount"` // in cents, >= 0
	Source     string    `json:"source" db:"source"`
	Note       string    `json:"note" db:"note"`
	Date       time.Time `json:"date" db:"date"`
	CategoryID *int      `json:"category_id,omitempty" db:"category_id"`
}

// Withdraw records a withdrawal request that succeeded. Always paired 1:1
// with an Expense row and a deduction against pending Income rows.
type Withdraw struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	Amount       int64     `json:"amount" db:"amount"` // in cents
	Source       string    `json:"source" db:"source"`
	Note         string    `json:"note" db:"note"`
	WithdrawDate time.Time `json:"withdraw_date" db:"withdraw_date"`
	CategoryID   *int      `json:"category_id,omitempty" db:"category_id"`
}

// Transaction history types and statuses.
const (
	HistoryTypeExpense      = "expense"
	HistoryTypeIncome       = "income"
	HistoryTypeDebtPayment  = "debt_payment"
	HistoryTypeContribution = "contribution"

	HistoryStatusCompleted = "completed"
	HistoryStatusPending   = "pending"
	HistoryStatusFailed    = "failed"
)

// TransactionHistory mirrors every completed money movement. Rows are
// append-only: created inside the same transaction as the movement they
// describe and never updated afterwards.
type TransactionHistory struct {
	ID              int       `json:"id" db:"id"`
	ReferenceID     string    `json:"reference_id" db:"reference_id"`
	TransactionType string    `json:"transaction_type" db:"transaction_type"`
	Amount          int64     `json:"amount" db:"amount"` // in cents, >= 0
	TransactionDate time.Time `json:"transaction_date" db:"transaction_date"`
	CategoryID      *int      `json:"category_id,omitempty" db:"category_id"`
	Description     string    `json:"description" db:"description"`
	UserID          int       `json:"user_id" db:"user_id"`
	GroupID         *int      `json:"group_id,omitempty" db:"group_id"`
	Status          string    `json:"status" db:"status"`
}
