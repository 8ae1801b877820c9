package services

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/groupfund/backend/internal/models"
	"github.com/groupfund/backend/internal/store"
)

// LimitService tracks advisory spending limits. A user has at most one
// active limit; setting a new one deactivates the rest in the same
// transaction. Nothing in the ledger consults the limit to block spending.
type LimitService struct {
	db        *sql.DB
	store     *store.Store
	validator *ValidationHelper
}

func NewLimitService(db *sql.DB) *LimitService {
	return &LimitService{
		db:        db,
		store:     store.New(db),
		validator: NewValidationHelper(),
	}
}

type LimitRequest struct {
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Months int    `json:"months" validate:"required,gt=0,lte=120"`
	Note   string `json:"note"`
}

func (lim *LimitService) Set(userID int, req *LimitRequest) (*models.SpendingLimit, error) {
	tx, err := lim.store.Begin()
	if err != nil {
		return nil, models.ErrStoreFailure
	}
	defer tx.Rollback()
	st := lim.store.WithTx(tx)

	if err := st.DeactivateLimits(userID); err != nil {
		return nil, models.ErrStoreFailure
	}

	now := time.Now()
	limit := &models.SpendingLimit{
		UserID:    userID,
		Amount:    req.Amount,
		Months:    req.Months,
		Note:      req.Note,
		StartDate: now,
		EndDate:   now.AddDate(0, req.Months, 0),
		Active:    true,
	}
	if err := st.CreateLimit(limit); err != nil {
		return nil, models.ErrStoreFailure
	}

	if err := tx.Commit(); err != nil {
		return nil, models.ErrStoreFailure
	}
	return limit, nil
}

// SetLimit replaces the caller's active spending limit
// @Summary Set spending limit
// @Tags limits
// @Accept json
// @Produce json
// @Param limit body LimitRequest true "Limit data"
// @Success 201 {object} models.SpendingLimit
// @Failure 400 {object} ErrorResponse
// @Router /limits [post]
// @Security BearerAuth
func (lim *LimitService) SetLimit(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req LimitRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := lim.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	limit, err := lim.Set(userID, &req)
	if err != nil {
		SendServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, limit)
}

// GetCurrentLimit returns the active limit, or set=false when unset
// @Summary Current spending limit
// @Tags limits
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /limits/current [get]
// @Security BearerAuth
func (lim *LimitService) GetCurrentLimit(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	limit, err := lim.store.ActiveLimit(userID)
	if errors.Is(err, sql.ErrNoRows) {
		WriteJSON(w, http.StatusOK, map[string]interface{}{"set": false})
		return
	}
	if err != nil {
		SendErrorResponse(w, "Failed to fetch limit", http.StatusInternalServerError, nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"set": true, "limit": limit})
}

// GetLimitHistory returns every limit ever set, newest first
// @Summary Spending limit history
// @Tags limits
// @Produce json
// @Success 200 {array} models.SpendingLimit
// @Router /limits/history [get]
// @Security BearerAuth
func (lim *LimitService) GetLimitHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	limits, err := lim.store.ListLimits(userID)
	if err != nil {
		SendErrorResponse(w, "Failed to fetch limit history", http.StatusInternalServerError, nil)
		return
	}
	if limits == nil {
		limits = []models.SpendingLimit{}
	}
	WriteJSON(w, http.StatusOK, limits)
}
