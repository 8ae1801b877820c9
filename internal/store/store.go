// Package store is the record store for the ledger: thin, typed SQL
// accessors giving each collection create, find, update-by-id and
// sum-aggregate operations. Services compose these inside transactions;
// no business rules live here.
package store

import (
	"database/sql"

	"github.com/groupfund/backend/internal/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same accessors work
// inside and outside a transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type Store struct {
	q  DBTX
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{q: db, db: db}
}

// WithTx returns a Store bound to the given transaction.
func (s *Store) WithTx(tx *sql.Tx) *Store {
	return &Store{q: tx, db: s.db}
}

func (s *Store) Begin() (*sql.Tx, error) {
	return s.db.Begin()
}

// ---- incomes ----

func (s *Store) CreateIncome(inc *models.Income) error {
	return s.q.QueryRow(`
		INSERT INTO incomes (user_id, amount, source, note, received_date, status, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		inc.UserID, inc.Amount, inc.Source, inc.Note, inc.ReceivedDate, inc.Status, inc.CategoryID).
		Scan(&inc.ID)
}

// PendingIncomesForUpdate returns the user's pending income rows oldest
// first, row-locked so concurrent withdrawals for the same user serialize.
func (s *Store) PendingIncomesForUpdate(userID int) ([]models.Income, error) {
	rows, err := s.q.Query(`
		SELECT id, user_id, amount, source, note, received_date, status, category_id
		FROM incomes
		WHERE user_id = $1 AND status = $2
		ORDER BY received_date, id
		FOR UPDATE`,
		userID, models.IncomeStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incomes []models.Income
	for rows.Next() {
		var inc models.Income
		if err := rows.Scan(&inc.ID, &inc.UserID, &inc.Amount, &inc.Source, &inc.Note,
			&inc.ReceivedDate, &inc.Status, &inc.CategoryID); err != nil {
			return nil, err
		}
		incomes = append(incomes, inc)
	}
	return incomes, rows.Err()
}

func (s *Store) SetIncomeAmount(id int, amount int64) error {
	_, err := s.q.Exec(`UPDATE incomes SET amount = $1 WHERE id = $2`, amount, id)
	return err
}

// SumPendingIncome is the signed pending pool: negative adjustment rows
// reduce it.
func (s *Store) SumPendingIncome(userID int) (int64, error) {
	var total int64
	err := s.q.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM incomes
		WHERE user_id = $1 AND status = $2`,
		userID, models.IncomeStatusPending).Scan(&total)
	return total, err
}

func (s *Store) SumConfirmedDeposits(userID int) (int64, error) {
	var total int64
	err := s.q.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM incomes
		WHERE user_id = $1 AND amount >= 0 AND status = $2`,
		userID, models.IncomeStatusConfirmed).Scan(&total)
	return total, err
}

func (s *Store) SumCompletedContributionDebits(userID int) (int64, error) {
	var total int64
	err := s.q.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM incomes
		WHERE user_id = $1 AND amount < 0 AND source = $2 AND status = $3`,
		userID, models.SourceGroupContribution, models.IncomeStatusCompleted).Scan(&total)
	return total, err
}

func (s *Store) ListIncomesByUser(userID int) ([]models.Income, error) {
	rows, err := s.q.Query(`
		SELECT id, user_id, amount, source, note, received_date, status, category_id
		FROM incomes WHERE user_id = $1
		ORDER BY received_date DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incomes []models.Income
	for rows.Next() {
		var inc models.Income
		if err := rows.Scan(&inc.ID, &inc.UserID, &inc.Amount, &inc.Source, &inc.Note,
			&inc.ReceivedDate, &inc.Status, &inc.CategoryID); err != nil {
			return nil, err
		}
		incomes = append(incomes, inc)
	}
	return incomes, rows.Err()
}

// ---- expenses ----

func (s *Store) CreateExpense(exp *models.Expense) error {
	return s.q.QueryRow(`
		INSERT INTO expenses (user_id, amount, source, note, date, category_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		exp.UserID, exp.Amount, exp.Source, exp.Note, exp.Date, exp.CategoryID).
		Scan(&exp.ID)
}

func (s *Store) SumExpenses(userID int) (int64, error) {
	var total int64
	err := s.q.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = $1`,
		userID).Scan(&total)
	return total, err
}

func (s *Store) ListExpensesByUser(userID int) ([]models.Expense, error) {
	rows, err := s.q.Query(`
		SELECT id, user_id, amount, source, note, date, category_id
		FROM expenses WHERE user_id = $1
		ORDER BY date DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var exp models.Expense
		if err := rows.Scan(&exp.ID, &exp.UserID, &exp.Amount, &exp.Source, &exp.Note,
			&exp.Date, &exp.CategoryID); err != nil {
			return nil, err
		}
		expenses = append(expenses, exp)
	}
	return expenses, rows.Err()
}

// ---- withdrawals ----

func (s *Store) CreateWithdraw(wd *models.Withdraw) error {
	return s.q.QueryRow(`
		INSERT INTO withdrawals (user_id, amount, source, note, withdraw_date, category_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		wd.UserID, wd.Amount, wd.Source, wd.Note, wd.WithdrawDate, wd.CategoryID).
		Scan(&wd.ID)
}

// ---- transaction history (append-only) ----

func (s *Store) AppendHistory(h *models.TransactionHistory) error {
	return s.q.QueryRow(`
		INSERT INTO transaction_history
			(reference_id, transaction_type, amount, transaction_date, category_id, description, user_id, group_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		h.ReferenceID, h.TransactionType, h.Amount, h.TransactionDate, h.CategoryID,
		h.Description, h.UserID, h.GroupID, h.Status).
		Scan(&h.ID)
}

func (s *Store) ListHistoryByUser(userID int) ([]models.TransactionHistory, error) {
	rows, err := s.q.Query(`
		SELECT id, reference_id, transaction_type, amount, transaction_date, category_id, description, user_id, group_id, status
		FROM transaction_history WHERE user_id = $1
		ORDER BY transaction_date DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.TransactionHistory
	for rows.Next() {
		var h models.TransactionHistory
		if err := rows.Scan(&h.ID, &h.ReferenceID, &h.TransactionType, &h.Amount, &h.TransactionDate,
			&h.CategoryID, &h.Description, &h.UserID, &h.GroupID, &h.Status); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

// ---- spending limits ----

func (s *Store) DeactivateLimits(userID int) error {
	_, err := s.q.Exec(`
		UPDATE spending_limits SET active = false WHERE user_id = $1 AND active`,
		userID)
	return err
}

func (s *Store) CreateLimit(l *models.SpendingLimit) error {
	return s.q.QueryRow(`
		INSERT INTO spending_limits (user_id, amount, months, note, start_date, end_date, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		l.UserID, l.Amount, l.Months, l.Note, l.StartDate, l.EndDate, l.Active).
		Scan(&l.ID)
}

func (s *Store) ActiveLimit(userID int) (*models.SpendingLimit, error) {
	var l models.SpendingLimit
	err := s.q.QueryRow(`
		SELECT id, user_id, amount, months, note, start_date, end_date, active
		FROM spending_limits
		WHERE user_id = $1 AND active
		ORDER BY start_date DESC LIMIT 1`,
		userID).
		Scan(&l.ID, &l.UserID, &l.Amount, &l.Months, &l.Note, &l.StartDate, &l.EndDate, &l.Active)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) ListLimits(userID int) ([]models.SpendingLimit, error) {
	rows, err := s.q.Query(`
		SELECT id, user_id, amount, months, note, start_date, end_date, active
		FROM spending_limits WHERE user_id = $1
		ORDER BY start_date DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var limits []models.SpendingLimit
	for rows.Next() {
		var l models.SpendingLimit
		if err := rows.Scan(&l.ID, &l.UserID, &l.Amount, &l.Months, &l.Note,
			&l.StartDate, &l.EndDate, &l.Active); err != nil {
			return nil, err
		}
		limits = append(limits, l)
	}
	return limits, rows.Err()
}

// ---- categories ----

func (s *Store) ListCategories() ([]models.Category, error) {
	rows, err := s.q.Query(`
		SELECT id, name, description, icon, type FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.Type); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) CreateCategory(c *models.Category) error {
	return s.q.QueryRow(`
		INSERT INTO categories (name, description, icon, type)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Name, c.Description, c.Icon, c.Type).
		Scan(&c.ID)
}

func (s *Store) DeleteCategory(id int) (bool, error) {
	res, err := s.q.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
