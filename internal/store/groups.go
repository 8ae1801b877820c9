package store

import "github.com/groupfund/backend/internal/models"

func (s *Store) CreateGroup(g *models.Group) error {
	return s.q.QueryRow(`
		INSERT INTO groups (name, description, created_by)
		VALUES ($1, $2, $3) RETURNING id, created_at`,
		g.Name, g.Description, g.CreatedBy).
		Scan(&g.ID, &g.CreatedAt)
}

// LockGroup takes a row lock on the group, serializing balance-mutating
// operations keyed by group id.
func (s *Store) LockGroup(groupID int) error {
	var id int
	return s.q.QueryRow(`SELECT id FROM groups WHERE id = $1 FOR UPDATE`, groupID).Scan(&id)
}

// ListGroupsByUser returns the groups a user is an active member of.
func (s *Store) ListGroupsByUser(userID int) ([]models.Group, error) {
	rows, err := s.q.Query(`
		SELECT g.id, g.name, g.description, g.created_by, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1 AND m.status = $2
		ORDER BY g.created_at DESC, g.id DESC`,
		userID, models.MemberStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (s *Store) GroupExists(groupID int) (bool, error) {
	var exists bool
	err := s.q.QueryRow(`SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`, groupID).Scan(&exists)
	return exists, err
}

// ---- memberships ----

func (s *Store) CreateMember(m *models.GroupMember) error {
	return s.q.QueryRow(`
		INSERT INTO group_members (group_id, user_id, role, status)
		VALUES ($1, $2, $3, $4) RETURNING id, joined_at`,
		m.GroupID, m.UserID, m.Role, m.Status).
		Scan(&m.ID, &m.JoinedAt)
}

// ActiveMember resolves the membership row linking a user to a group.
func (s *Store) ActiveMember(groupID, userID int) (*models.GroupMember, error) {
	var m models.GroupMember
	err := s.q.QueryRow(`
		SELECT id, group_id, user_id, role, status, joined_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2 AND status = $3`,
		groupID, userID, models.MemberStatusActive).
		Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.Status, &m.JoinedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) ListMembers(groupID int) ([]models.GroupMember, error) {
	rows, err := s.q.Query(`
		SELECT id, group_id, user_id, role, status, joined_at
		FROM group_members WHERE group_id = $1
		ORDER BY joined_at, id`,
		groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.Status, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// ---- funds ----

// UpsertFundByName finds or creates the fund named within the group.
// (group_id, name) is unique, so concurrent upserts converge on one row.
func (s *Store) UpsertFundByName(f *models.GroupFund) error {
	return s.q.QueryRow(`
		INSERT INTO group_funds (group_id, name, description, purpose, end_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		f.GroupID, f.Name, f.Description, f.Purpose, f.EndDate).
		Scan(&f.ID)
}

func (s *Store) FundByID(fundID int) (*models.GroupFund, error) {
	var f models.GroupFund
	err := s.q.QueryRow(`
		SELECT id, group_id, name, description, purpose, end_date
		FROM group_funds WHERE id = $1`,
		fundID).
		Scan(&f.ID, &f.GroupID, &f.Name, &f.Description, &f.Purpose, &f.EndDate)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) ListFundsByGroup(groupID int) ([]models.GroupFund, error) {
	rows, err := s.q.Query(`
		SELECT id, group_id, name, description, purpose, end_date
		FROM group_funds WHERE group_id = $1
		ORDER BY name`,
		groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var funds []models.GroupFund
	for rows.Next() {
		var f models.GroupFund
		if err := rows.Scan(&f.ID, &f.GroupID, &f.Name, &f.Description, &f.Purpose, &f.EndDate); err != nil {
			return nil, err
		}
		funds = append(funds, f)
	}
	return funds, rows.Err()
}

// ---- contributions ----

func (s *Store) CreateContribution(c *models.GroupContribution) error {
	return s.q.QueryRow(`
		INSERT INTO group_contributions (fund_id, member_id, amount, payment_method, note, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, contributed_at`,
		c.FundID, c.MemberID, c.Amount, c.PaymentMethod, c.Note, c.Status).
		Scan(&c.ID, &c.ContributedAt)
}

// TransitionContribution moves a pending contribution to a terminal status.
// Returns false if the row was not pending (already transitioned).
func (s *Store) TransitionContribution(id int, status string) (bool, error) {
	res, err := s.q.Exec(`
		UPDATE group_contributions SET status = $1 WHERE id = $2 AND status = $3`,
		status, id, models.ContributionStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) ContributionGroupID(id int) (int, error) {
	var groupID int
	err := s.q.QueryRow(`
		SELECT f.group_id FROM group_contributions c
		JOIN group_funds f ON c.fund_id = f.id
		WHERE c.id = $1`, id).Scan(&groupID)
	return groupID, err
}

// SumFundContributions sums a single fund's contributions that have not
// been rejected.
func (s *Store) SumFundContributions(fundID int) (int64, error) {
	var total int64
	err := s.q.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM group_contributions
		WHERE fund_id = $1 AND status <> $2`,
		fundID, models.ContributionStatusRejected).Scan(&total)
	return total, err
}

// SumGroupContributions aggregates across every fund in the group. With
// confirmedOnly=false, pending (= not rejected) contributions count as
// available funds.
func (s *Store) SumGroupContributions(groupID int, confirmedOnly bool) (int64, error) {
	var total int64
	var err error
	if confirmedOnly {
		err = s.q.QueryRow(`
			SELECT COALESCE(SUM(c.amount), 0)
			FROM group_contributions c
			JOIN group_funds f ON c.fund_id = f.id
			WHERE f.group_id = $1 AND c.status = $2`,
			groupID, models.ContributionStatusConfirmed).Scan(&total)
	} else {
		err = s.q.QueryRow(`
			SELECT COALESCE(SUM(c.amount), 0)
			FROM group_contributions c
			JOIN group_funds f ON c.fund_id = f.id
			WHERE f.group_id = $1 AND c.status <> $2`,
			groupID, models.ContributionStatusRejected).Scan(&total)
	}
	return total, err
}

func (s *Store) ListContributionsByGroup(groupID int) ([]models.GroupContribution, error) {
	rows, err := s.q.Query(`
		SELECT c.id, c.fund_id, c.member_id, c.amount, c.payment_method, c.note, c.status, c.contributed_at
		FROM group_contributions c
		JOIN group_funds f ON c.fund_id = f.id
		WHERE f.group_id = $1
		ORDER BY c.contributed_at DESC, c.id DESC`,
		groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contributions []models.GroupContribution
	for rows.Next() {
		var c models.GroupContribution
		if err := rows.Scan(&c.ID, &c.FundID, &c.MemberID, &c.Amount, &c.PaymentMethod,
			&c.Note, &c.Status, &c.ContributedAt); err != nil {
			return nil, err
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}

// ListContributionDetailsByGroup returns a group's contributions joined
// with the fund name and the contributing user's name and avatar.
func (s *Store) ListContributionDetailsByGroup(groupID int) ([]models.GroupContributionDetail, error) {
	rows, err := s.q.Query(`
		SELECT c.id, c.fund_id, c.member_id, c.amount, c.payment_method, c.note, c.status, c.contributed_at,
		       f.name, u.name, u.avatar
		FROM group_contributions c
		JOIN group_funds f ON c.fund_id = f.id
		JOIN group_members m ON c.member_id = m.id
		JOIN users u ON m.user_id = u.id
		WHERE f.group_id = $1
		ORDER BY c.contributed_at DESC, c.id DESC`,
		groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []models.GroupContributionDetail
	for rows.Next() {
		var d models.GroupContributionDetail
		if err := rows.Scan(&d.ID, &d.FundID, &d.MemberID, &d.Amount, &d.PaymentMethod,
			&d.Note, &d.Status, &d.ContributedAt, &d.FundName, &d.UserName, &d.UserAvatar); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// ---- group expenses ----

func (s *Store) CreateGroupExpense(e *models.GroupExpense) error {
	return s.q.QueryRow(`
		INSERT INTO group_expenses (fund_id, member_id, amount, description, category_id, receipt, approval_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, date`,
		e.FundID, e.MemberID, e.Amount, e.Description, e.CategoryID, e.Receipt, e.ApprovalStatus).
		Scan(&e.ID, &e.Date)
}

// TransitionGroupExpense moves a pending expense to a terminal approval
// status. Returns false if the row was not pending.
func (s *Store) TransitionGroupExpense(id int, status string) (bool, error) {
	res, err := s.q.Exec(`
		UPDATE group_expenses SET approval_status = $1 WHERE id = $2 AND approval_status = $3`,
		status, id, models.ApprovalStatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *Store) GroupExpenseGroupID(id int) (int, error) {
	var groupID int
	err := s.q.QueryRow(`
		SELECT f.group_id FROM group_expenses e
		JOIN group_funds f ON e.fund_id = f.id
		WHERE e.id = $1`, id).Scan(&groupID)
	return groupID, err
}

func (s *Store) SumFundApprovedExpenses(fundID int) (int64, error) {
	var total int64
	err := s.q.QueryRow(`
		SELECT COALESCE(SUM(amount), 0) FROM group_expenses
		WHERE fund_id = $1 AND approval_status = $2`,
		fundID, models.ApprovalStatusApproved).Scan(&total)
	return total, err
}

func (s *Store) SumGroupApprovedExpenses(groupID int) (int64, error) {
	var total int64
	err := s.q.QueryRow(`
		SELECT COALESCE(SUM(e.amount), 0)
		FROM group_expenses e
		JOIN group_funds f ON e.fund_id = f.id
		WHERE f.group_id = $1 AND e.approval_status = $2`,
		groupID, models.ApprovalStatusApproved).Scan(&total)
	return total, err
}

func (s *Store) ListGroupExpensesByGroup(groupID int) ([]models.GroupExpense, error) {
	rows, err := s.q.Query(`
		SELECT e.id, e.fund_id, e.member_id, e.amount, e.description, e.category_id, e.receipt, e.approval_status, e.date
		FROM group_expenses e
		JOIN group_funds f ON e.fund_id = f.id
		WHERE f.group_id = $1
		ORDER BY e.date DESC, e.id DESC`,
		groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []models.GroupExpense
	for rows.Next() {
		var e models.GroupExpense
		if err := rows.Scan(&e.ID, &e.FundID, &e.MemberID, &e.Amount, &e.Description,
			&e.CategoryID, &e.Receipt, &e.ApprovalStatus, &e.Date); err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// ListGroupExpenseDetailsByGroup returns a group's expenses joined with the
// fund name and the spending user's name and avatar.
func (s *Store) ListGroupExpenseDetailsByGroup(groupID int) ([]models.GroupExpenseDetail, error) {
	rows, err := s.q.Query(`
		SELECT e.id, e.fund_id, e.member_id, e.amount, e.description, e.category_id, e.receipt, e.approval_status, e.date,
		       f.name, u.name, u.avatar
		FROM group_expenses e
		JOIN group_funds f ON e.fund_id = f.id
		JOIN group_members m ON e.member_id = m.id
		JOIN users u ON m.user_id = u.id
		WHERE f.group_id = $1
		ORDER BY e.date DESC, e.id DESC`,
		groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []models.GroupExpenseDetail
	for rows.Next() {
		var d models.GroupExpenseDetail
		if err := rows.Scan(&d.ID, &d.FundID, &d.MemberID, &d.Amount, &d.Description,
			&d.CategoryID, &d.Receipt, &d.ApprovalStatus, &d.Date,
			&d.FundName, &d.UserName, &d.UserAvatar); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}
