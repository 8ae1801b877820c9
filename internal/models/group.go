package models

import "time"

// Group member roles and statuses.
const (
	MemberRoleAdmin  = "admin"
	MemberRoleMember = "member"

	MemberStatusActive = "active"
	MemberStatusLeft   = "left"
)

// Contribution statuses. A pending contribution has not been rejected and
// counts as available funds for group balance purposes.
const (
	ContributionStatusPending   = "pending"
	ContributionStatusConfirmed = "confirmed"
	ContributionStatusRejected  = "rejected"
)

// Group expense approval statuses. Only approved expenses count against a
// fund's balance.
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

type Group struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedBy   int       `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// GroupMember joins a user to a group. Financial group records reference
// the membership id, not the user id.
type GroupMember struct {
	ID       int       `json:"id" db:"id"`
	GroupID  int       `json:"group_id" db:"group_id"`
	UserID   int       `json:"user_id" db:"user_id"`
	Role     string    `json:"role" db:"role"`
	Status   string    `json:"status" db:"status"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// GroupFund is a named sub-ledger within a group. Funds are found or
// created lazily by name when a contribution names a previously-unseen
// fund; two funds cannot share a name within a group.
type GroupFund struct {
	ID          int        `json:"id" db:"id"`
	GroupID     int        `json:"group_id" db:"group_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Purpose     string     `json:"purpose" db:"purpose"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
}

type GroupContribution struct {
	ID            int       `json:"id" db:"id"`
	FundID        int       `json:"fund_id" db:"fund_id"`
	MemberID      int       `json:"member_id" db:"member_id"` // membership id, not user id
	Amount        int64     `json:"amount" db:"amount"`       // in cents, >= 0
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	Note          string    `json:"note" db:"note"`
	Status        string    `json:"status" db:"status"`
	ContributedAt time.Time `json:"contributed_at" db:"contributed_at"`
}

// GroupContributionDetail is a contribution joined with its fund name and
// the contributing member's user profile, as served by the group feed.
type GroupContributionDetail struct {
	GroupContribution
	FundName   string `json:"fund_name" db:"fund_name"`
	UserName   string `json:"user_name" db:"user_name"`
	UserAvatar string `json:"user_avatar,omitempty" db:"user_avatar"`
}

type GroupExpense struct {
	ID             int       `json:"id" db:"id"`
	FundID         int       `json:"fund_id" db:"fund_id"`
	MemberID       int       `json:"member_id" db:"member_id"` // membership id, not user id
	Amount         int64     `json:"amount" db:"amount"`       // in cents, >= 0
	Description    string    `json:"description" db:"description"`
	CategoryID     *int      `json:"category_id,omitempty" db:"category_id"`
	Receipt        string    `json:"receipt,omitempty" db:"receipt"`
	ApprovalStatus string    `json:"approval_status" db:"approval_status"`
	Date           time.Time `json:"date" db:"date"`
}

// GroupExpenseDetail is a group expense joined with its fund name and the
// spending member's user profile.
type GroupExpenseDetail struct {
	GroupExpense
	FundName   string `json:"fund_name" db:"fund_name"`
	UserName   string `json:"user_name" db:"user_name"`
	UserAvatar string `json:"user_avatar,omitempty" db:"user_avatar"`
}
