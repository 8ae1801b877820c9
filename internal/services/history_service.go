package services

import (
	"database/sql"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/groupfund/backend/internal/models"
	"github.com/groupfund/backend/internal/store"
)

// HistoryService serves three views of past activity: a personal feed
// merged from the income and expense collections, a group feed merged from
// contributions and group expenses, and the raw append-only transaction log.
type HistoryService struct {
	db    *sql.DB
	store *store.Store
}

func NewHistoryService(db *sql.DB) *HistoryService {
	return &HistoryService{db: db, store: store.New(db)}
}

// Feed entry types derived from the underlying rows. A non-negative income
// row is a deposit; a negative one is either a group fund debit or a
// personal adjustment depending on its source. Expense rows surface as
// withdrawals with negated amounts.
const (
	FeedTypeDeposit           = "deposit"
	FeedTypeGroupFundPayment  = "paid_to_group_fund"
	FeedTypeAdjustment        = "personal_spending_or_adjustment"
	FeedTypeWithdrawal        = "withdrawal"
	FeedTypeGroupContribution = "group_contribution"
	FeedTypeGroupExpense      = "group_expense"
)

// FeedItem is one entry of the merged personal feed.
type FeedItem struct {
	Type       string    `json:"type"`
	Amount     int64     `json:"amount"`
	Source     string    `json:"source,omitempty"`
	Note       string    `json:"note,omitempty"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status,omitempty"`
	CategoryID *int      `json:"category_id,omitempty"`
}

// GroupFeedItem is one entry of the merged group feed, carrying the fund
// and acting member alongside the raw row.
type GroupFeedItem struct {
	ID            int       `json:"id"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
	Description   string    `json:"description,omitempty"`
	UserName      string    `json:"user_name"`
	UserAvatar    string    `json:"user_avatar,omitempty"`
	FundName      string    `json:"fund_name"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Status        string    `json:"status"`
	CategoryID    *int      `json:"category_id,omitempty"`
	Date          time.Time `json:"date"`
}

// PersonalFeed merges the caller's income and expense rows, newest first.
func (hs *HistoryService) PersonalFeed(userID int) ([]FeedItem, error) {
	incomes, err := hs.store.ListIncomesByUser(userID)
	if err != nil {
		return nil, err
	}
	expenses, err := hs.store.ListExpensesByUser(userID)
	if err != nil {
		return nil, err
	}

	feed := make([]FeedItem, 0, len(incomes)+len(expenses))
	for _, inc := range incomes {
		typ := FeedTypeDeposit
		if inc.Amount < 0 {
			typ = FeedTypeAdjustment
			if inc.Source == models.SourceGroupContribution {
				typ = FeedTypeGroupFundPayment
			}
		}
		feed = append(feed, FeedItem{
			Type:       typ,
			Amount:     inc.Amount,
			Source:     inc.Source,
			Note:       inc.Note,
			Date:       inc.ReceivedDate,
			Status:     inc.Status,
			CategoryID: inc.CategoryID,
		})
	}
	for _, exp := range expenses {
		// Expenses always show as outflows.
		amount := exp.Amount
		if amount > 0 {
			amount = -amount
		}
		feed = append(feed, FeedItem{
			Type:       FeedTypeWithdrawal,
			Amount:     amount,
			Source:     exp.Source,
			Note:       exp.Note,
			Date:       exp.Date,
			CategoryID: exp.CategoryID,
		})
	}

	sort.Slice(feed, func(i, j int) bool {
		return feed[i].Date.After(feed[j].Date)
	})
	return feed, nil
}

// GroupFeed merges a group's contributions and expenses across all of its
// funds, newest first.
func (hs *HistoryService) GroupFeed(groupID int) ([]GroupFeedItem, error) {
	contributions, err := hs.store.ListContributionDetailsByGroup(groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := hs.store.ListGroupExpenseDetailsByGroup(groupID)
	if err != nil {
		return nil, err
	}

	feed := make([]GroupFeedItem, 0, len(contributions)+len(expenses))
	for _, c := range contributions {
		feed = append(feed, GroupFeedItem{
			ID:            c.ID,
			Type:          FeedTypeGroupContribution,
			Amount:        c.Amount,
			Description:   c.Note,
			UserName:      c.UserName,
			UserAvatar:    c.UserAvatar,
			FundName:      c.FundName,
			PaymentMethod: c.PaymentMethod,
			Status:        c.Status,
			Date:          c.ContributedAt,
		})
	}
	for _, e := range expenses {
		amount := e.Amount
		if amount > 0 {
			amount = -amount
		}
		feed = append(feed, GroupFeedItem{
			ID:          e.ID,
			Type:        FeedTypeGroupExpense,
			Amount:      amount,
			Description: e.Description,
			UserName:    e.UserName,
			UserAvatar:  e.UserAvatar,
			FundName:    e.FundName,
			Status:      e.ApprovalStatus,
			CategoryID:  e.CategoryID,
			Date:        e.Date,
		})
	}

	sort.Slice(feed, func(i, j int) bool {
		return feed[i].Date.After(feed[j].Date)
	})
	return feed, nil
}

// GetPersonalHistory returns the merged income/expense feed
// @Summary Personal history feed
// @Tags history
// @Produce json
// @Success 200 {array} FeedItem
// @Router /history/me [get]
// @Security BearerAuth
func (hs *HistoryService) GetPersonalHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	feed, err := hs.PersonalFeed(userID)
	if err != nil {
		SendErrorResponse(w, "Failed to build history feed", http.StatusInternalServerError, nil)
		return
	}
	WriteJSON(w, http.StatusOK, feed)
}

// GetGroupHistory returns a group's merged contribution/expense feed
// @Summary Group transaction history
// @Tags history
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {array} GroupFeedItem
// @Failure 403 {object} ErrorResponse
// @Router /history/groups/{id} [get]
// @Security BearerAuth
func (hs *HistoryService) GetGroupHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	groupID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		SendErrorResponse(w, "Invalid group id", http.StatusBadRequest, nil)
		return
	}

	if _, err := hs.store.ActiveMember(groupID, userID); err != nil {
		SendServiceError(w, models.ErrForbidden)
		return
	}

	feed, err := hs.GroupFeed(groupID)
	if err != nil {
		SendErrorResponse(w, "Failed to build group history feed", http.StatusInternalServerError, nil)
		return
	}
	WriteJSON(w, http.StatusOK, feed)
}

// GetTransactionLog returns the caller's raw transaction log entries
// @Summary Raw transaction log
// @Tags history
// @Produce json
// @Success 200 {array} models.TransactionHistory
// @Router /history/log [get]
// @Security BearerAuth
func (hs *HistoryService) GetTransactionLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	entries, err := hs.store.ListHistoryByUser(userID)
	if err != nil {
		SendErrorResponse(w, "Failed to fetch transaction log", http.StatusInternalServerError, nil)
		return
	}
	if entries == nil {
		entries = []models.TransactionHistory{}
	}
	WriteJSON(w, http.StatusOK, entries)
}
