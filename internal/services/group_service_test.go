package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/groupfund/backend/internal/models"
)

func memberRow(id, groupID, userID int, role string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "group_id", "user_id", "role", "status", "joined_at"}).
		AddRow(id, groupID, userID, role, models.MemberStatusActive, time.Now())
}

func TestGroupService_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	service := NewGroupService(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO groups").
		WithArgs("Trip fund", "summer trip", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(10, time.Now()))
	mock.ExpectQuery("INSERT INTO group_members").
		WithArgs(10, 5, models.MemberRoleAdmin, models.MemberStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id", "joined_at"}).AddRow(1, time.Now()))
	mock.ExpectCommit()

	group, err := service.Create(5, &GroupRequest{Name: "Trip fund", Description: "summer trip"})
	assert.NoError(t, err)
	assert.Equal(t, 10, group.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_Contribute(t *testing.T) {
	groupID, userID := 10, 5

	t.Run("creates fund, contribution, debit and history", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		service := NewGroupService(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM groups WHERE id = \\$1 FOR UPDATE").
			WithArgs(groupID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(groupID))
		mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
			WithArgs(groupID, userID, models.MemberStatusActive).
			WillReturnRows(memberRow(31, groupID, userID, models.MemberRoleMember))
		mock.ExpectQuery("INSERT INTO group_funds").
			WithArgs(groupID, "Rent", "", "", nil).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
		mock.ExpectQuery("INSERT INTO group_contributions").
			WithArgs(8, 31, int64(400), "cash", "april", models.ContributionStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"id", "contributed_at"}).AddRow(55, time.Now()))
		mock.ExpectQuery("INSERT INTO incomes").
			WithArgs(userID, int64(-400), models.SourceGroupContribution, "april",
				sqlmock.AnyArg(), models.IncomeStatusPending, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))
		mock.ExpectQuery("INSERT INTO transaction_history").
			WithArgs(sqlmock.AnyArg(), models.HistoryTypeContribution, int64(400), sqlmock.AnyArg(),
				nil, "april", userID, groupID, models.HistoryStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		contribution, err := service.Contribute(groupID, userID, &ContributionRequest{
			FundName:      "Rent",
			Amount:        400,
			PaymentMethod: "cash",
			Note:          "april",
		})
		assert.NoError(t, err)
		assert.Equal(t, 55, contribution.ID)
		assert.Equal(t, 31, contribution.MemberID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

}

func TestGroupService_ContributeNonMember(t *testing.T) {
	groupID, userID := 10, 6
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	service := NewGroupService(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM groups WHERE id = \\$1 FOR UPDATE").
		WithArgs(groupID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(groupID))
	mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
		WithArgs(groupID, userID, models.MemberStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "user_id", "role", "status", "joined_at"}))
	mock.ExpectRollback()

	_, err = service.Contribute(groupID, userID, &ContributionRequest{FundName: "Rent", Amount: 100})
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_SpendFromFund(t *testing.T) {
	fundID, groupID, userID := 8, 10, 5

	fundRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "group_id", "name", "description", "purpose", "end_date"}).
			AddRow(fundID, groupID, "Rent", "", "", nil)
	}

	t.Run("gated on group-wide available balance", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		service := NewGroupService(db)

		mock.ExpectQuery("SELECT id, group_id, name, description, purpose, end_date").
			WithArgs(fundID).
			WillReturnRows(fundRow())
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM groups WHERE id = \\$1 FOR UPDATE").
			WithArgs(groupID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(groupID))
		mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
			WithArgs(groupID, userID, models.MemberStatusActive).
			WillReturnRows(memberRow(31, groupID, userID, models.MemberRoleMember))
		mock.ExpectQuery("SELECT COALESCE\\(SUM\\(c.amount\\), 0\\)").
			WithArgs(groupID, models.ContributionStatusRejected).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(500))
		mock.ExpectQuery("SELECT COALESCE\\(SUM\\(e.amount\\), 0\\)").
			WithArgs(groupID, models.ApprovalStatusApproved).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(100))
		mock.ExpectQuery("INSERT INTO group_expenses").
			WithArgs(fundID, 31, int64(300), "venue deposit", nil, "", models.ApprovalStatusApproved).
			WillReturnRows(sqlmock.NewRows([]string{"id", "date"}).AddRow(12, time.Now()))
		mock.ExpectQuery("INSERT INTO transaction_history").
			WithArgs(sqlmock.AnyArg(), models.HistoryTypeExpense, int64(300), sqlmock.AnyArg(),
				nil, "venue deposit", userID, groupID, models.HistoryStatusCompleted).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		expense, err := service.SpendFromFund(fundID, userID, &GroupExpenseRequest{
			Amount:      300,
			Description: "venue deposit",
		})
		assert.NoError(t, err)
		assert.Equal(t, models.ApprovalStatusApproved, expense.ApprovalStatus)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects overspend", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		service := NewGroupService(db)

		mock.ExpectQuery("SELECT id, group_id, name, description, purpose, end_date").
			WithArgs(fundID).
			WillReturnRows(fundRow())
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM groups WHERE id = \\$1 FOR UPDATE").
			WithArgs(groupID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(groupID))
		mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
			WithArgs(groupID, userID, models.MemberStatusActive).
			WillReturnRows(memberRow(31, groupID, userID, models.MemberRoleMember))
		mock.ExpectQuery("SELECT COALESCE\\(SUM\\(c.amount\\), 0\\)").
			WithArgs(groupID, models.ContributionStatusRejected).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(500))
		mock.ExpectQuery("SELECT COALESCE\\(SUM\\(e.amount\\), 0\\)").
			WithArgs(groupID, models.ApprovalStatusApproved).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(100))
		mock.ExpectRollback()

		_, err = service.SpendFromFund(fundID, userID, &GroupExpenseRequest{Amount: 600})
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing fund is not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		service := NewGroupService(db)

		mock.ExpectQuery("SELECT id, group_id, name, description, purpose, end_date").
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "name", "description", "purpose", "end_date"}))

		_, err = service.SpendFromFund(99, userID, &GroupExpenseRequest{Amount: 10})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestGroupService_ResolveContribution(t *testing.T) {
	contributionID, groupID, adminID := 55, 10, 5

	t.Run("admin confirms a pending contribution", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		service := NewGroupService(db)

		mock.ExpectQuery("SELECT f.group_id FROM group_contributions").
			WithArgs(contributionID).
			WillReturnRows(sqlmock.NewRows([]string{"group_id"}).AddRow(groupID))
		mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
			WithArgs(groupID, adminID, models.MemberStatusActive).
			WillReturnRows(memberRow(30, groupID, adminID, models.MemberRoleAdmin))
		mock.ExpectExec("UPDATE group_contributions SET status").
			WithArgs(models.ContributionStatusConfirmed, contributionID, models.ContributionStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = service.ResolveContribution(contributionID, adminID, models.ContributionStatusConfirmed)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("terminal states are immutable", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		service := NewGroupService(db)

		mock.ExpectQuery("SELECT f.group_id FROM group_contributions").
			WithArgs(contributionID).
			WillReturnRows(sqlmock.NewRows([]string{"group_id"}).AddRow(groupID))
		mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
			WithArgs(groupID, adminID, models.MemberStatusActive).
			WillReturnRows(memberRow(30, groupID, adminID, models.MemberRoleAdmin))
		mock.ExpectExec("UPDATE group_contributions SET status").
			WithArgs(models.ContributionStatusRejected, contributionID, models.ContributionStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = service.ResolveContribution(contributionID, adminID, models.ContributionStatusRejected)
		assert.ErrorIs(t, err, models.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("plain members cannot resolve", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		service := NewGroupService(db)

		mock.ExpectQuery("SELECT f.group_id FROM group_contributions").
			WithArgs(contributionID).
			WillReturnRows(sqlmock.NewRows([]string{"group_id"}).AddRow(groupID))
		mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
			WithArgs(groupID, 6, models.MemberStatusActive).
			WillReturnRows(memberRow(31, groupID, 6, models.MemberRoleMember))

		err = service.ResolveContribution(contributionID, 6, models.ContributionStatusConfirmed)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("invalid target status", func(t *testing.T) {
		db, _, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		service := NewGroupService(db)

		err = service.ResolveContribution(contributionID, adminID, "completed")
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestGroupService_ResolveExpense(t *testing.T) {
	expenseID, groupID, adminID := 12, 10, 5
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()
	service := NewGroupService(db)

	mock.ExpectQuery("SELECT f.group_id FROM group_expenses").
		WithArgs(expenseID).
		WillReturnRows(sqlmock.NewRows([]string{"group_id"}).AddRow(groupID))
	mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
		WithArgs(groupID, adminID, models.MemberStatusActive).
		WillReturnRows(memberRow(30, groupID, adminID, models.MemberRoleAdmin))
	mock.ExpectExec("UPDATE group_expenses SET approval_status").
		WithArgs(models.ApprovalStatusApproved, expenseID, models.ApprovalStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = service.ResolveExpense(expenseID, adminID, models.ApprovalStatusApproved)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupService_AddMember(t *testing.T) {
	groupID, adminID := 10, 5

	t.Run("admin adds a new member", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		service := NewGroupService(db)

		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM groups").
			WithArgs(groupID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
			WithArgs(groupID, adminID, models.MemberStatusActive).
			WillReturnRows(memberRow(30, groupID, adminID, models.MemberRoleAdmin))
		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM users").
			WithArgs(6).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
			WithArgs(groupID, 6, models.MemberStatusActive).
			WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "user_id", "role", "status", "joined_at"}))
		mock.ExpectQuery("INSERT INTO group_members").
			WithArgs(groupID, 6, models.MemberRoleMember, models.MemberStatusActive).
			WillReturnRows(sqlmock.NewRows([]string{"id", "joined_at"}).AddRow(32, time.Now()))

		member, err := service.AddMember(groupID, adminID, &MemberRequest{UserID: 6})
		assert.NoError(t, err)
		assert.Equal(t, 32, member.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-admin cannot add members", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		service := NewGroupService(db)

		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM groups").
			WithArgs(groupID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
			WithArgs(groupID, 6, models.MemberStatusActive).
			WillReturnRows(memberRow(31, groupID, 6, models.MemberRoleMember))

		_, err = service.AddMember(groupID, 6, &MemberRequest{UserID: 7})
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("missing group is not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		service := NewGroupService(db)

		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM groups").
			WithArgs(99).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err = service.AddMember(99, adminID, &MemberRequest{UserID: 6})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("duplicate membership conflicts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()
		service := NewGroupService(db)

		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM groups").
			WithArgs(groupID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
			WithArgs(groupID, adminID, models.MemberStatusActive).
			WillReturnRows(memberRow(30, groupID, adminID, models.MemberRoleAdmin))
		mock.ExpectQuery("SELECT EXISTS\\(SELECT 1 FROM users").
			WithArgs(6).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT id, group_id, user_id, role, status, joined_at").
			WithArgs(groupID, 6, models.MemberStatusActive).
			WillReturnRows(memberRow(32, groupID, 6, models.MemberRoleMember))

		_, err = service.AddMember(groupID, adminID, &MemberRequest{UserID: 6})
		assert.ErrorIs(t, err, models.ErrConflict)
	})
}
