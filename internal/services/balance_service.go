package services

import (
	"database/sql"
	"net/http"

	"github.com/groupfund/backend/internal/store"
)

// BalanceV1 is the withdrawal gate: every pending income row (deposits and
// adjustment debits alike) minus everything already spent.
func BalanceV1(st *store.Store, userID int) (int64, error) {
	pending, err := st.SumPendingIncome(userID)
	if err != nil {
		return 0, err
	}
	spent, err := st.SumExpenses(userID)
	if err != nil {
		return 0, err
	}
	return pending - spent, nil
}

// BalanceV2 counts only settled money: confirmed deposits plus completed
// group-contribution debits, minus expenses.
func BalanceV2(st *store.Store, userID int) (int64, error) {
	deposits, err := st.SumConfirmedDeposits(userID)
	if err != nil {
		return 0, err
	}
	debits, err := st.SumCompletedContributionDebits(userID)
	if err != nil {
		return 0, err
	}
	spent, err := st.SumExpenses(userID)
	if err != nil {
		return 0, err
	}
	return deposits + debits - spent, nil
}

// FundBalance is a single fund's not-rejected contributions minus its
// approved expenses.
func FundBalance(st *store.Store, fundID int) (int64, error) {
	contributed, err := st.SumFundContributions(fundID)
	if err != nil {
		return 0, err
	}
	spent, err := st.SumFundApprovedExpenses(fundID)
	if err != nil {
		return 0, err
	}
	return contributed - spent, nil
}

// GroupBalance aggregates across all of a group's funds. confirmedOnly
// selects the settled view; otherwise pending contributions count.
func GroupBalance(st *store.Store, groupID int, confirmedOnly bool) (int64, error) {
	contributed, err := st.SumGroupContributions(groupID, confirmedOnly)
	if err != nil {
		return 0, err
	}
	spent, err := st.SumGroupApprovedExpenses(groupID)
	if err != nil {
		return 0, err
	}
	return contributed - spent, nil
}

type BalanceService struct {
	db    *sql.DB
	store *store.Store
}

func NewBalanceService(db *sql.DB) *BalanceService {
	return &BalanceService{db: db, store: store.New(db)}
}

// GetBalance returns the caller's balance
// @Summary Get personal balance
// @Description Returns the caller's balance; view=v1 (default, pending-inclusive) or view=v2 (settled only)
// @Tags balance
// @Produce json
// @Param view query string false "Balance view" Enums(v1, v2)
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} ErrorResponse
// @Router /balance [get]
// @Security BearerAuth
func (bs *BalanceService) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	view := r.URL.Query().Get("view")
	if view == "" {
		view = "v1"
	}

	var balance int64
	var err error
	switch view {
	case "v1":
		balance, err = BalanceV1(bs.store, userID)
	case "v2":
		balance, err = BalanceV2(bs.store, userID)
	default:
		SendErrorResponse(w, "Unknown balance view", http.StatusBadRequest, nil)
		return
	}
	if err != nil {
		SendErrorResponse(w, "Failed to compute balance", http.StatusInternalServerError, nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"view":    view,
		"balance": balance,
	})
}
