package services

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/groupfund/backend/internal/audit"
	"github.com/groupfund/backend/internal/models"
	"github.com/groupfund/backend/internal/store"
)

// LedgerService owns the personal money paths: recording income and the
// withdrawal engine. A withdrawal is a single transaction that locks the
// caller's pending income rows, re-checks the balance gate under the lock,
// writes the withdraw/expense pair, drains the pending pool oldest first and
// appends history. Either everything commits or nothing does.
type LedgerService struct {
	db        *sql.DB
	store     *store.Store
	audit     *audit.Logger
	validator *ValidationHelper
}

func NewLedgerService(db *sql.DB) *LedgerService {
	return &LedgerService{
		db:        db,
		store:     store.New(db),
		audit:     audit.NewLogger(),
		validator: NewValidationHelper(),
	}
}

type IncomeRequest struct {
	Amount       int64  `json:"amount" validate:"required,gt=0"`
	Source       string `json:"source" validate:"required"`
	Note         string `json:"note"`
	ReceivedDate string `json:"received_date,omitempty"`
	Status       string `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed"`
	CategoryID   *int   `json:"category_id,omitempty"`
}

type WithdrawRequest struct {
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Source     string `json:"source"`
	Note       string `json:"note"`
	CategoryID *int   `json:"category_id,omitempty"`
}

// RecordIncome inserts an income row and its history entry in one
// transaction.
func (ls *LedgerService) RecordIncome(userID int, req *IncomeRequest) (*models.Income, error) {
	receivedDate := time.Now()
	if req.ReceivedDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ReceivedDate)
		if err != nil {
			return nil, models.ErrInvalidInput
		}
		receivedDate = parsed
	}

	status := req.Status
	if status == "" {
		status = models.IncomeStatusPending
	}

	tx, err := ls.store.Begin()
	if err != nil {
		return nil, models.ErrStoreFailure
	}
	defer tx.Rollback()
	st := ls.store.WithTx(tx)

	income := &models.Income{
		UserID:       userID,
		Amount:       req.Amount,
		Source:       req.Source,
		Note:         req.Note,
		ReceivedDate: receivedDate,
		Status:       status,
		CategoryID:   req.CategoryID,
	}
	if err := st.CreateIncome(income); err != nil {
		return nil, models.ErrStoreFailure
	}

	referenceID := uuid.New().String()
	if err := st.AppendHistory(&models.TransactionHistory{
		ReferenceID:     referenceID,
		TransactionType: models.HistoryTypeIncome,
		Amount:          req.Amount,
		TransactionDate: receivedDate,
		CategoryID:      req.CategoryID,
		Description:     req.Note,
		UserID:          userID,
		Status:          models.HistoryStatusCompleted,
	}); err != nil {
		return nil, models.ErrStoreFailure
	}

	if err := tx.Commit(); err != nil {
		ls.audit.LogError(referenceID, userID, err)
		return nil, models.ErrStoreFailure
	}

	ls.audit.LogMovement(referenceID, userID, "INCOME", req.Amount, "SUCCESS")
	return income, nil
}

// Withdraw runs the withdrawal engine for one user.
func (ls *LedgerService) Withdraw(userID int, req *WithdrawRequest) (*models.Withdraw, error) {
	tx, err := ls.store.Begin()
	if err != nil {
		return nil, models.ErrStoreFailure
	}
	defer tx.Rollback()
	st := ls.store.WithTx(tx)

	// Locking every pending row up front serializes concurrent withdrawals
	// for the same user, so the gate below cannot race.
	pending, err := st.PendingIncomesForUpdate(userID)
	if err != nil {
		return nil, models.ErrStoreFailure
	}

	var pool int64
	for _, inc := range pending {
		pool += inc.Amount
	}
	spent, err := st.SumExpenses(userID)
	if err != nil {
		return nil, models.ErrStoreFailure
	}
	if pool-spent < req.Amount {
		return nil, models.ErrInsufficientFunds
	}

	now := time.Now()
	withdraw := &models.Withdraw{
		UserID:       userID,
		Amount:       req.Amount,
		Source:       req.Source,
		Note:         req.Note,
		WithdrawDate: now,
		CategoryID:   req.CategoryID,
	}
	if err := st.CreateWithdraw(withdraw); err != nil {
		return nil, models.ErrStoreFailure
	}

	if err := st.CreateExpense(&models.Expense{
		UserID:     userID,
		Amount:     req.Amount,
		Source:     req.Source,
		Note:       req.Note,
		Date:       now,
		CategoryID: req.CategoryID,
	}); err != nil {
		return nil, models.ErrStoreFailure
	}

	// Drain the pending pool oldest first. Adjustment rows (amount <= 0)
	// count against the gate but are never drained, and no row goes below
	// zero.
	remaining := req.Amount
	for _, inc := range pending {
		if remaining == 0 {
			break
		}
		if inc.Amount <= 0 {
			continue
		}
		take := inc.Amount
		if take > remaining {
			take = remaining
		}
		if err := st.SetIncomeAmount(inc.ID, inc.Amount-take); err != nil {
			return nil, models.ErrStoreFailure
		}
		remaining -= take
	}

	referenceID := uuid.New().String()
	if err := st.AppendHistory(&models.TransactionHistory{
		ReferenceID:     referenceID,
		TransactionType: models.HistoryTypeExpense,
		Amount:          req.Amount,
		TransactionDate: now,
		CategoryID:      req.CategoryID,
		Description:     req.Note,
		UserID:          userID,
		Status:          models.HistoryStatusCompleted,
	}); err != nil {
		return nil, models.ErrStoreFailure
	}

	if err := tx.Commit(); err != nil {
		ls.audit.LogError(referenceID, userID, err)
		return nil, models.ErrStoreFailure
	}

	ls.audit.LogMovement(referenceID, userID, "WITHDRAW", req.Amount, "SUCCESS")
	return withdraw, nil
}

// CreateIncome handles income recording
// @Summary Record income
// @Description Records a deposit for the caller and appends a history entry
// @Tags ledger
// @Accept json
// @Produce json
// @Param income body IncomeRequest true "Income data"
// @Success 201 {object} models.Income
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /incomes [post]
// @Security BearerAuth
func (ls *LedgerService) CreateIncome(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req IncomeRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := ls.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	income, err := ls.RecordIncome(userID, &req)
	if err != nil {
		log.Printf("[LEDGER] Failed to record income for user %d: %v", userID, err)
		SendServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, income)
}

// ListIncomes returns the caller's income rows
// @Summary List incomes
// @Tags ledger
// @Produce json
// @Success 200 {array} models.Income
// @Failure 401 {object} ErrorResponse
// @Router /incomes [get]
// @Security BearerAuth
func (ls *LedgerService) ListIncomes(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	incomes, err := ls.store.ListIncomesByUser(userID)
	if err != nil {
		SendErrorResponse(w, "Failed to fetch incomes", http.StatusInternalServerError, nil)
		return
	}
	if incomes == nil {
		incomes = []models.Income{}
	}
	WriteJSON(w, http.StatusOK, incomes)
}

// PendingIncomeTotal returns the signed sum of the caller's pending rows
// @Summary Pending income total
// @Tags ledger
// @Produce json
// @Success 200 {object} map[string]int64
// @Failure 401 {object} ErrorResponse
// @Router /incomes/pending-total [get]
// @Security BearerAuth
func (ls *LedgerService) PendingIncomeTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	total, err := ls.store.SumPendingIncome(userID)
	if err != nil {
		SendErrorResponse(w, "Failed to compute pending total", http.StatusInternalServerError, nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"pending_total": total})
}

// CreateWithdrawal handles withdrawal requests
// @Summary Withdraw funds
// @Description Withdraws from the caller's pending income pool, FIFO
// @Tags ledger
// @Accept json
// @Produce json
// @Param withdrawal body WithdrawRequest true "Withdrawal data"
// @Success 201 {object} models.Withdraw
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /withdrawals [post]
// @Security BearerAuth
func (ls *LedgerService) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req WithdrawRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := ls.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	withdraw, err := ls.Withdraw(userID, &req)
	if err != nil {
		log.Printf("[LEDGER] Withdrawal rejected for user %d: %v", userID, err)
		SendServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, withdraw)
}
