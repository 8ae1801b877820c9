package models

// Category types.
const (
	CategoryTypeIncome  = "income"
	CategoryTypeExpense = "expense"
)

type Category struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Icon        string `json:"icon" db:"icon"`
	Type        string `json:"type" db:"type"`
}
