// Package models defines the domain entities shared by the ledger engine:
// groups, members, accounts, categories, transactions, allocations, split
// templates and import batches.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MemberRole is the role a member holds inside a group.
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// Group is the top-level ownership boundary. Everything else hangs off a
// group id.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Member is a participant in a group. UserID is empty for "ghost" members
// that have no login and exist only to carry shares.
type Member struct {
	ID             string          `json:"id"`
	GroupID        string          `json:"group_id"`
	UserID         string          `json:"user_id,omitempty"`
	Name           string          `json:"name"`
	Role           MemberRole      `json:"role"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CreatedAt      time.Time       `json:"created_at"`
}

// IsGhost reports whether the member has no linked login.
func (m Member) IsGhost() bool {
	return m.UserID == ""
}

// AccountManager grants a non-admin member operating rights on one account.
// The (AccountID, MemberID) pair is unique.
type AccountManager struct {
	AccountID string `json:"account_id"`
	MemberID  string `json:"member_id"`
}

// Account is a money container inside a group. Balance is written once at
// creation; the current balance is derived downstream from transactions
// and never rewritten here.
type Account struct {
	ID                  string          `json:"id"`
	GroupID             string          `json:"group_id"`
	Name                string          `json:"name"`
	Type                string          `json:"type"`
	ResponsibleMemberID string          `json:"responsible_member_id,omitempty"`
	Balance             decimal.Decimal `json:"balance"`
	IsDefault           bool            `json:"is_default"`
	CreatedAt           time.Time       `json:"created_at"`
}

// Category labels transactions within a group. A category with IsLoan set
// forces any transaction assigned to it to type loan.
type Category struct {
	ID      string `json:"id"`
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
	IsLoan  bool   `json:"is_loan"`
}

// SplitTemplate is a reusable named set of per-member weights for
// recurring expense splitting.
type SplitTemplate struct {
	ID          string                `json:"id"`
	GroupID     string                `json:"group_id"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Members     []SplitTemplateMember `json:"members"`
}

// SplitTemplateMember carries one member's weight in a template. Shares
// may be zero to record explicit non-participation.
type SplitTemplateMember struct {
	MemberID string          `json:"member_id"`
	Shares   decimal.Decimal `json:"shares"`
}

// ImportBatch groups the transactions inserted together from one external
// statement, so the whole batch can be reviewed or undone as a unit.
type ImportBatch struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"group_id"`
	Label     string    `json:"label"`
	RowCount  int       `json:"row_count"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
