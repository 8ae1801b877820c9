package services

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/groupfund/backend/internal/audit"
	"github.com/groupfund/backend/internal/models"
	"github.com/groupfund/backend/internal/store"
)

// GroupService owns the shared-money paths: groups, memberships, funds,
// contributions, group expenses and their approval transitions. Every
// balance-mutating operation takes a row lock on the group so concurrent
// spending against the same pool serializes.
type GroupService struct {
	db        *sql.DB
	store     *store.Store
	audit     *audit.Logger
	validator *ValidationHelper
}

func NewGroupService(db *sql.DB) *GroupService {
	return &GroupService{
		db:        db,
		store:     store.New(db),
		audit:     audit.NewLogger(),
		validator: NewValidationHelper(),
	}
}

type GroupRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description"`
}

type MemberRequest struct {
	UserID int    `json:"user_id" validate:"required,gt=0"`
	Role   string `json:"role,omitempty" validate:"omitempty,oneof=admin member"`
}

type ContributionRequest struct {
	FundName      string `json:"fund_name" validate:"required,min=1,max=100"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note"`
	FundPurpose   string `json:"fund_purpose,omitempty"`
}

type GroupExpenseRequest struct {
	Amount           int64  `json:"amount" validate:"required,gt=0"`
	Description      string `json:"description"`
	CategoryID       *int   `json:"category_id,omitempty"`
	Receipt          string `json:"receipt,omitempty"`
	RequiresApproval bool   `json:"requires_approval,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Create makes a group with the creator as its first admin member.
func (gs *GroupService) Create(userID int, req *GroupRequest) (*models.Group, error) {
	tx, err := gs.store.Begin()
	if err != nil {
		return nil, models.ErrStoreFailure
	}
	defer tx.Rollback()
	st := gs.store.WithTx(tx)

	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
	}
	if err := st.CreateGroup(group); err != nil {
		return nil, models.ErrStoreFailure
	}

	if err := st.CreateMember(&models.GroupMember{
		GroupID: group.ID,
		UserID:  userID,
		Role:    models.MemberRoleAdmin,
		Status:  models.MemberStatusActive,
	}); err != nil {
		return nil, models.ErrStoreFailure
	}

	if err := tx.Commit(); err != nil {
		return nil, models.ErrStoreFailure
	}
	return group, nil
}

// AddMember adds a user to a group. Only group admins may do this.
func (gs *GroupService) AddMember(groupID, actorID int, req *MemberRequest) (*models.GroupMember, error) {
	exists, err := gs.store.GroupExists(groupID)
	if err != nil {
		return nil, models.ErrStoreFailure
	}
	if !exists {
		return nil, models.ErrNotFound
	}

	actor, err := gs.store.ActiveMember(groupID, actorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrForbidden
	}
	if err != nil {
		return nil, models.ErrStoreFailure
	}
	if actor.Role != models.MemberRoleAdmin {
		return nil, models.ErrForbidden
	}

	exists, err = gs.store.UserExists(req.UserID)
	if err != nil {
		return nil, models.ErrStoreFailure
	}
	if !exists {
		return nil, models.ErrNotFound
	}

	if _, err := gs.store.ActiveMember(groupID, req.UserID); err == nil {
		return nil, models.ErrConflict
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrStoreFailure
	}

	role := req.Role
	if role == "" {
		role = models.MemberRoleMember
	}
	member := &models.GroupMember{
		GroupID: groupID,
		UserID:  req.UserID,
		Role:    role,
		Status:  models.MemberStatusActive,
	}
	if err := gs.store.CreateMember(member); err != nil {
		return nil, models.ErrStoreFailure
	}
	return member, nil
}

// Contribute records a member's payment into a named fund. The fund is
// found or created by name, the contribution starts pending, and an
// offsetting negative income row records the personal debit. The caller's
// personal balance is not checked here.
func (gs *GroupService) Contribute(groupID, userID int, req *ContributionRequest) (*models.GroupContribution, error) {
	tx, err := gs.store.Begin()
	if err != nil {
		return nil, models.ErrStoreFailure
	}
	defer tx.Rollback()
	st := gs.store.WithTx(tx)

	if err := st.LockGroup(groupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, models.ErrStoreFailure
	}

	member, err := st.ActiveMember(groupID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrForbidden
	}
	if err != nil {
		return nil, models.ErrStoreFailure
	}

	fund := &models.GroupFund{
		GroupID: groupID,
		Name:    req.FundName,
		Purpose: req.FundPurpose,
	}
	if err := st.UpsertFundByName(fund); err != nil {
		return nil, models.ErrStoreFailure
	}

	contribution := &models.GroupContribution{
		FundID:        fund.ID,
		MemberID:      member.ID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
		Status:        models.ContributionStatusPending,
	}
	if err := st.CreateContribution(contribution); err != nil {
		return nil, models.ErrStoreFailure
	}

	// The personal debit rides the pending income pool as a negative row.
	if err := st.CreateIncome(&models.Income{
		UserID:       userID,
		Amount:       -req.Amount,
		Source:       models.SourceGroupContribution,
		Note:         req.Note,
		ReceivedDate: time.Now(),
		Status:       models.IncomeStatusPending,
	}); err != nil {
		return nil, models.ErrStoreFailure
	}

	referenceID := uuid.New().String()
	if err := st.AppendHistory(&models.TransactionHistory{
		ReferenceID:     referenceID,
		TransactionType: models.HistoryTypeContribution,
		Amount:          req.Amount,
		TransactionDate: time.Now(),
		Description:     req.Note,
		UserID:          userID,
		GroupID:         &groupID,
		Status:          models.HistoryStatusPending,
	}); err != nil {
		return nil, models.ErrStoreFailure
	}

	if err := tx.Commit(); err != nil {
		gs.audit.LogError(referenceID, userID, err)
		return nil, models.ErrStoreFailure
	}

	gs.audit.LogGroupMovement(referenceID, userID, groupID, "CONTRIBUTION", req.Amount, "PENDING")
	return contribution, nil
}

// SpendFromFund creates a group expense against a fund, gated on the
// group-wide available balance (pending contributions count as available).
// Expenses are auto-approved unless the caller asks for manual review.
func (gs *GroupService) SpendFromFund(fundID, userID int, req *GroupExpenseRequest) (*models.GroupExpense, error) {
	fund, err := gs.store.FundByID(fundID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.ErrStoreFailure
	}

	tx, err := gs.store.Begin()
	if err != nil {
		return nil, models.ErrStoreFailure
	}
	defer tx.Rollback()
	st := gs.store.WithTx(tx)

	// The lock serializes concurrent spends against the same group pool.
	if err := st.LockGroup(fund.GroupID); err != nil {
		return nil, models.ErrStoreFailure
	}

	member, err := st.ActiveMember(fund.GroupID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrForbidden
	}
	if err != nil {
		return nil, models.ErrStoreFailure
	}

	available, err := GroupBalance(st, fund.GroupID, false)
	if err != nil {
		return nil, models.ErrStoreFailure
	}
	if available < req.Amount {
		return nil, models.ErrInsufficientFunds
	}

	status := models.ApprovalStatusApproved
	if req.RequiresApproval {
		status = models.ApprovalStatusPending
	}
	expense := &models.GroupExpense{
		FundID:         fundID,
		MemberID:       member.ID,
		Amount:         req.Amount,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		Receipt:        req.Receipt,
		ApprovalStatus: status,
	}
	if err := st.CreateGroupExpense(expense); err != nil {
		return nil, models.ErrStoreFailure
	}

	groupID := fund.GroupID
	referenceID := uuid.New().String()
	if err := st.AppendHistory(&models.TransactionHistory{
		ReferenceID:     referenceID,
		TransactionType: models.HistoryTypeExpense,
		Amount:          req.Amount,
		TransactionDate: time.Now(),
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		UserID:          userID,
		GroupID:         &groupID,
		Status:          models.HistoryStatusCompleted,
	}); err != nil {
		return nil, models.ErrStoreFailure
	}

	if err := tx.Commit(); err != nil {
		gs.audit.LogError(referenceID, userID, err)
		return nil, models.ErrStoreFailure
	}

	gs.audit.LogGroupMovement(referenceID, userID, groupID, "GROUP_EXPENSE", req.Amount, status)
	return expense, nil
}

// requireAdmin resolves the caller's membership and checks the admin role.
func (gs *GroupService) requireAdmin(groupID, userID int) error {
	member, err := gs.store.ActiveMember(groupID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrForbidden
	}
	if err != nil {
		return models.ErrStoreFailure
	}
	if member.Role != models.MemberRoleAdmin {
		return models.ErrForbidden
	}
	return nil
}

// ResolveContribution moves a pending contribution to confirmed or
// rejected. Terminal states are immutable; a second transition conflicts.
func (gs *GroupService) ResolveContribution(contributionID, actorID int, status string) error {
	if status != models.ContributionStatusConfirmed && status != models.ContributionStatusRejected {
		return models.ErrInvalidInput
	}

	groupID, err := gs.store.ContributionGroupID(contributionID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return models.ErrStoreFailure
	}
	if err := gs.requireAdmin(groupID, actorID); err != nil {
		return err
	}

	ok, err := gs.store.TransitionContribution(contributionID, status)
	if err != nil {
		return models.ErrStoreFailure
	}
	if !ok {
		return models.ErrConflict
	}
	return nil
}

// ResolveExpense moves a pending group expense to approved or rejected.
func (gs *GroupService) ResolveExpense(expenseID, actorID int, status string) error {
	if status != models.ApprovalStatusApproved && status != models.ApprovalStatusRejected {
		return models.ErrInvalidInput
	}

	groupID, err := gs.store.GroupExpenseGroupID(expenseID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if err != nil {
		return models.ErrStoreFailure
	}
	if err := gs.requireAdmin(groupID, actorID); err != nil {
		return err
	}

	ok, err := gs.store.TransitionGroupExpense(expenseID, status)
	if err != nil {
		return models.ErrStoreFailure
	}
	if !ok {
		return models.ErrConflict
	}
	return nil
}

// ---- HTTP handlers ----

func callerID(r *http.Request) (int, bool) {
	id, ok := r.Context().Value("userID").(int)
	return id, ok
}

func urlParamInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

// CreateGroup creates a group
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Param group body GroupRequest true "Group data"
// @Success 201 {object} models.Group
// @Failure 400 {object} ErrorResponse
// @Router /groups [post]
// @Security BearerAuth
func (gs *GroupService) CreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req GroupRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := gs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	group, err := gs.Create(userID, &req)
	if err != nil {
		log.Printf("[GROUP] Failed to create group for user %d: %v", userID, err)
		SendServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, group)
}

// ListGroups returns the caller's groups
// @Summary List my groups
// @Tags groups
// @Produce json
// @Success 200 {array} models.Group
// @Router /groups [get]
// @Security BearerAuth
func (gs *GroupService) ListGroups(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	groups, err := gs.store.ListGroupsByUser(userID)
	if err != nil {
		SendErrorResponse(w, "Failed to fetch groups", http.StatusInternalServerError, nil)
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	WriteJSON(w, http.StatusOK, groups)
}

// AddGroupMember adds a member to a group
// @Summary Add group member
// @Tags groups
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param member body MemberRequest true "Member data"
// @Success 201 {object} models.GroupMember
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /groups/{id}/members [post]
// @Security BearerAuth
func (gs *GroupService) AddGroupMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	groupID, err := urlParamInt(r, "id")
	if err != nil {
		SendErrorResponse(w, "Invalid group id", http.StatusBadRequest, nil)
		return
	}

	var req MemberRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := gs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	member, err := gs.AddMember(groupID, userID, &req)
	if err != nil {
		SendServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, member)
}

// ListGroupMembers lists a group's members
// @Summary List group members
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {array} models.GroupMember
// @Failure 403 {object} ErrorResponse
// @Router /groups/{id}/members [get]
// @Security BearerAuth
func (gs *GroupService) ListGroupMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	groupID, err := urlParamInt(r, "id")
	if err != nil {
		SendErrorResponse(w, "Invalid group id", http.StatusBadRequest, nil)
		return
	}

	if _, err := gs.store.ActiveMember(groupID, userID); err != nil {
		SendServiceError(w, models.ErrForbidden)
		return
	}

	members, err := gs.store.ListMembers(groupID)
	if err != nil {
		SendErrorResponse(w, "Failed to fetch members", http.StatusInternalServerError, nil)
		return
	}
	WriteJSON(w, http.StatusOK, members)
}

// ListGroupFunds lists a group's funds
// @Summary List group funds
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {array} models.GroupFund
// @Failure 403 {object} ErrorResponse
// @Router /groups/{id}/funds [get]
// @Security BearerAuth
func (gs *GroupService) ListGroupFunds(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	groupID, err := urlParamInt(r, "id")
	if err != nil {
		SendErrorResponse(w, "Invalid group id", http.StatusBadRequest, nil)
		return
	}

	if _, err := gs.store.ActiveMember(groupID, userID); err != nil {
		SendServiceError(w, models.ErrForbidden)
		return
	}

	funds, err := gs.store.ListFundsByGroup(groupID)
	if err != nil {
		SendErrorResponse(w, "Failed to fetch funds", http.StatusInternalServerError, nil)
		return
	}
	if funds == nil {
		funds = []models.GroupFund{}
	}
	WriteJSON(w, http.StatusOK, funds)
}

// CreateContribution records a contribution into a named fund
// @Summary Contribute to a group fund
// @Tags groups
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param contribution body ContributionRequest true "Contribution data"
// @Success 201 {object} models.GroupContribution
// @Failure 403 {object} ErrorResponse
// @Router /groups/{id}/contributions [post]
// @Security BearerAuth
func (gs *GroupService) CreateContribution(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	groupID, err := urlParamInt(r, "id")
	if err != nil {
		SendErrorResponse(w, "Invalid group id", http.StatusBadRequest, nil)
		return
	}

	var req ContributionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := gs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	contribution, err := gs.Contribute(groupID, userID, &req)
	if err != nil {
		log.Printf("[GROUP] Contribution rejected for user %d in group %d: %v", userID, groupID, err)
		SendServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, contribution)
}

// ListGroupContributions lists a group's contributions
// @Summary List group contributions
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {array} models.GroupContribution
// @Failure 403 {object} ErrorResponse
// @Router /groups/{id}/contributions [get]
// @Security BearerAuth
func (gs *GroupService) ListGroupContributions(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	groupID, err := urlParamInt(r, "id")
	if err != nil {
		SendErrorResponse(w, "Invalid group id", http.StatusBadRequest, nil)
		return
	}

	if _, err := gs.store.ActiveMember(groupID, userID); err != nil {
		SendServiceError(w, models.ErrForbidden)
		return
	}

	contributions, err := gs.store.ListContributionsByGroup(groupID)
	if err != nil {
		SendErrorResponse(w, "Failed to fetch contributions", http.StatusInternalServerError, nil)
		return
	}
	if contributions == nil {
		contributions = []models.GroupContribution{}
	}
	WriteJSON(w, http.StatusOK, contributions)
}

// CreateGroupExpense records spending from a fund
// @Summary Spend from a group fund
// @Tags groups
// @Accept json
// @Produce json
// @Param id path int true "Fund ID"
// @Param expense body GroupExpenseRequest true "Expense data"
// @Success 201 {object} models.GroupExpense
// @Failure 403 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /funds/{id}/expenses [post]
// @Security BearerAuth
func (gs *GroupService) CreateGroupExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	fundID, err := urlParamInt(r, "id")
	if err != nil {
		SendErrorResponse(w, "Invalid fund id", http.StatusBadRequest, nil)
		return
	}

	var req GroupExpenseRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := gs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	expense, err := gs.SpendFromFund(fundID, userID, &req)
	if err != nil {
		log.Printf("[GROUP] Expense rejected for user %d on fund %d: %v", userID, fundID, err)
		SendServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, expense)
}

// ListGroupExpenses lists a group's expenses
// @Summary List group expenses
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {array} models.GroupExpense
// @Failure 403 {object} ErrorResponse
// @Router /groups/{id}/expenses [get]
// @Security BearerAuth
func (gs *GroupService) ListGroupExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	groupID, err := urlParamInt(r, "id")
	if err != nil {
		SendErrorResponse(w, "Invalid group id", http.StatusBadRequest, nil)
		return
	}

	if _, err := gs.store.ActiveMember(groupID, userID); err != nil {
		SendServiceError(w, models.ErrForbidden)
		return
	}

	expenses, err := gs.store.ListGroupExpensesByGroup(groupID)
	if err != nil {
		SendErrorResponse(w, "Failed to fetch expenses", http.StatusInternalServerError, nil)
		return
	}
	if expenses == nil {
		expenses = []models.GroupExpense{}
	}
	WriteJSON(w, http.StatusOK, expenses)
}

// UpdateContributionStatus confirms or rejects a pending contribution
// @Summary Resolve a contribution
// @Tags groups
// @Accept json
// @Produce json
// @Param id path int true "Contribution ID"
// @Param status body StatusRequest true "Target status (confirmed or rejected)"
// @Success 200 {object} map[string]string
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /contributions/{id}/status [patch]
// @Security BearerAuth
func (gs *GroupService) UpdateContributionStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	contributionID, err := urlParamInt(r, "id")
	if err != nil {
		SendErrorResponse(w, "Invalid contribution id", http.StatusBadRequest, nil)
		return
	}

	var req StatusRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := gs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if err := gs.ResolveContribution(contributionID, userID, req.Status); err != nil {
		SendServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// UpdateGroupExpenseStatus approves or rejects a pending group expense
// @Summary Resolve a group expense
// @Tags groups
// @Accept json
// @Produce json
// @Param id path int true "Expense ID"
// @Param status body StatusRequest true "Target status (approved or rejected)"
// @Success 200 {object} map[string]string
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /expenses/{id}/status [patch]
// @Security BearerAuth
func (gs *GroupService) UpdateGroupExpenseStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	expenseID, err := urlParamInt(r, "id")
	if err != nil {
		SendErrorResponse(w, "Invalid expense id", http.StatusBadRequest, nil)
		return
	}

	var req StatusRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		SendErrorResponse(w, err.Error(), http.StatusBadRequest, nil)
		return
	}
	if err := gs.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if err := gs.ResolveExpense(expenseID, userID, req.Status); err != nil {
		SendServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": req.Status})
}

// GetGroupBalance returns the pending-inclusive group balance
// @Summary Group balance
// @Description Pending contributions count as available funds
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /groups/{id}/balance [get]
// @Security BearerAuth
func (gs *GroupService) GetGroupBalance(w http.ResponseWriter, r *http.Request) {
	gs.groupBalance(w, r, false)
}

// GetActualGroupBalance returns the confirmed-only group balance
// @Summary Actual group balance
// @Description Only confirmed contributions count
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} ErrorResponse
// @Router /groups/{id}/balance/actual [get]
// @Security BearerAuth
func (gs *GroupService) GetActualGroupBalance(w http.ResponseWriter, r *http.Request) {
	gs.groupBalance(w, r, true)
}

func (gs *GroupService) groupBalance(w http.ResponseWriter, r *http.Request, confirmedOnly bool) {
	userID, ok := callerID(r)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}
	groupID, err := urlParamInt(r, "id")
	if err != nil {
		SendErrorResponse(w, "Invalid group id", http.StatusBadRequest, nil)
		return
	}

	if _, err := gs.store.ActiveMember(groupID, userID); err != nil {
		SendServiceError(w, models.ErrForbidden)
		return
	}

	balance, err := GroupBalance(gs.store, groupID, confirmedOnly)
	if err != nil {
		SendErrorResponse(w, "Failed to compute group balance", http.StatusInternalServerError, nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"group_id":       groupID,
		"balance":        balance,
		"confirmed_only": confirmedOnly,
	})
}
