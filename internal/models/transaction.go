package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a transaction.
type TransactionType string

const (
	TypeExpense  TransactionType = "expense"
	TypeIncome   TransactionType = "income"
	TypeTransfer TransactionType = "transfer"
	TypeLoan     TransactionType = "loan"
)

// PaymentSource says who fronted the money: the account itself or a
// member paying out-of-pocket.
type PaymentSource string

const (
	SourceAccount PaymentSource = "account"
	SourceMember  PaymentSource = "member"
)

// ApprovalStatus tracks admin sign-off on a transaction. Transitions are
// one-directional: pending to approved, never back.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
)

// ReimbursementStatus tracks a member's out-of-pocket claim.
type ReimbursementStatus string

const (
	ReimbursementNone    ReimbursementStatus = "none"
	ReimbursementPending ReimbursementStatus = "pending"
	ReimbursementPaid    ReimbursementStatus = "paid"
)

// Transaction is a single signed movement of money on an account. This is
// not a double-entry model: the amount is one signed decimal at 2-decimal
// precision, and transfers carry the counterpart account instead of a
// category or allocations.
type Transaction struct {
	ID                  string              `json:"id"`
	GroupID             string              `json:"group_id"`
	AccountID           string              `json:"account_id"`
	Date                time.Time           `json:"date"`
	Amount              decimal.Decimal     `json:"amount"`
	Description         string              `json:"description"`
	Notes               string              `json:"notes,omitempty"`
	CategoryID          string              `json:"category_id,omitempty"`
	Type                TransactionType     `json:"type"`
	PaymentSource       PaymentSource       `json:"payment_source"`
	PayerMemberID       string              `json:"payer_member_id,omitempty"`
	ApprovalStatus      ApprovalStatus      `json:"approval_status"`
	ReimbursementStatus ReimbursementStatus `json:"reimbursement_status"`
	ParentTransactionID string              `json:"parent_transaction_id,omitempty"`
	TransferAccountID   string              `json:"transfer_account_id,omitempty"`
	IsProvision         bool                `json:"is_provision"`
	ImportID            string              `json:"import_id,omitempty"`
	CreatedBy           string              `json:"created_by"`
	CreatedAt           time.Time           `json:"created_at"`
}

// IsOrphan reports whether the transaction is an unlinked leaf expense,
// eligible for bottom-up linking under a consolidating parent.
func (t Transaction) IsOrphan() bool {
	return t.Type == TypeExpense && t.ParentTransactionID == ""
}

// Allocation is one member's monetary share of a transaction. Allocations
// are owned by their transaction and replaced wholesale whenever the
// split inputs change.
type Allocation struct {
	TransactionID string          `json:"transaction_id"`
	MemberID      string          `json:"member_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// RoundAmount normalizes a monetary value to the 2-decimal precision used
// at every boundary of the engine.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidTransactionType reports whether s names a known transaction type.
func ValidTransactionType(s string) bool {
	switch TransactionType(s) {
	case TypeExpense, TypeIncome, TypeTransfer, TypeLoan:
		return true
	}
	return false
}

// CheckAmountSign validates that a non-zero amount's sign matches the
// declared type: expenses and loans are negative, income is positive,
// transfers are unconstrained (direction lives in the account pair).
// Imported rows go the other way and derive their type from the sign.
func CheckAmountSign(typ TransactionType, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	switch typ {
	case TypeExpense, TypeLoan:
		if amount.IsPositive() {
			return fmt.Errorf("%s amount must be negative, got %s", typ, amount.StringFixed(2))
		}
	case TypeIncome:
		if amount.IsNegative() {
			return fmt.Errorf("income amount must be positive, got %s", amount.StringFixed(2))
		}
	}
	return nil
}

// TypeFromSign derives the transaction type for an imported row from the
// sign of its amount.
func TypeFromSign(amount decimal.Decimal) TransactionType {
	if amount.IsNegative() {
		return TypeExpense
	}
	return TypeIncome
}
