// Package ledger orchestrates the transaction lifecycle: create, update,
// delete, approve and reimburse, with category-driven type coercion and
// allocation materialization through the split engine.
package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"groupnest/ledger/internal/allocation"
	"groupnest/ledger/internal/ledgererror"
	"groupnest/ledger/internal/models"
	"groupnest/ledger/internal/permission"
	"groupnest/ledger/internal/store"
)

var log = logrus.New()

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// SplitInput describes how a transaction's amount is shared across
// members. A nil SplitInput on a transaction input means the transaction
// carries no allocations.
type SplitInput struct {
	SplitType         allocation.SplitType
	InvolvedMemberIDs []string
	SplitWeights      map[string]decimal.Decimal
}

// TransactionInput carries the caller-supplied fields for Create and
// Update. The acting user id arrives separately; identity resolution is
// the auth collaborator's job.
type TransactionInput struct {
	AccountID            string
	Date                 time.Time
	Amount               decimal.Decimal
	Description          string
	Notes                string
	CategoryID           string
	Type                 models.TransactionType
	PaymentSource        models.PaymentSource
	PayerMemberID        string
	TransferAccountID    string
	IsProvision          bool
	RequestReimbursement bool
	Split                *SplitInput
}

// Ledger is the transaction service. All mutations go through the
// permission gate first; denials abort before any write.
type Ledger struct {
	store store.Store
	gate  *permission.Gate
}

// New builds a ledger over the given store and gate.
func New(s store.Store, gate *permission.Gate) *Ledger {
	return &Ledger{store: s, gate: gate}
}

// normalize applies the type-driven field rules: transfers carry a
// counterpart account and nothing else; non-transfers never carry one;
// the payer member is only meaningful for out-of-pocket payments. The
// amount is pinned to 2 decimals and its sign checked against the type.
func normalize(input *TransactionInput) error {
	if !models.ValidTransactionType(string(input.Type)) {
		return &ledgererror.ValidationError{Field: "type", Reason: "unknown transaction type: " + string(input.Type)}
	}
	if input.Description == "" {
		return &ledgererror.ValidationError{Field: "description", Reason: "required"}
	}
	if input.Date.IsZero() {
		return &ledgererror.ValidationError{Field: "date", Reason: "required"}
	}

	input.Amount = models.RoundAmount(input.Amount)
	if err := models.CheckAmountSign(input.Type, input.Amount); err != nil {
		return &ledgererror.ValidationError{Field: "amount", Reason: err.Error()}
	}

	if input.Type == models.TypeTransfer {
		if input.TransferAccountID == "" {
			return &ledgererror.ValidationError{Field: "transfer_account_id", Reason: "required for transfers"}
		}
		input.CategoryID = ""
		input.PayerMemberID = ""
		input.Split = nil
	} else {
		input.TransferAccountID = ""
	}

	if input.PaymentSource != models.SourceMember {
		input.PayerMemberID = ""
	} else if input.PayerMemberID == "" {
		return &ledgererror.ValidationError{Field: "payer_member_id", Reason: "required when payment source is member"}
	}

	return nil
}

// Create persists a new transaction and materializes its allocations.
// Admin callers get immediate approval; everyone else starts pending.
func (l *Ledger) Create(ctx context.Context, userID string, input TransactionInput) (*models.Transaction, error) {
	if userID == "" {
		return nil, &ledgererror.AuthorizationError{Operation: "transaction create"}
	}
	account, err := l.store.GetAccount(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}
	if !l.gate.CanManageAccount(ctx, account.ID, userID) {
		return nil, &ledgererror.AuthorizationError{UserID: userID, Operation: "transaction create"}
	}
	if err := normalize(&input); err != nil {
		return nil, err
	}

	approval := models.ApprovalPending
	if l.gate.IsGroupAdmin(ctx, account.GroupID, userID) {
		approval = models.ApprovalApproved
	}
	reimbursement := models.ReimbursementNone
	if input.RequestReimbursement {
		reimbursement = models.ReimbursementPending
	}

	tx := &models.Transaction{
		ID:                  uuid.NewString(),
		GroupID:             account.GroupID,
		AccountID:           account.ID,
		Date:                input.Date,
		Amount:              input.Amount,
		Description:         input.Description,
		Notes:               input.Notes,
		CategoryID:          input.CategoryID,
		Type:                input.Type,
		PaymentSource:       input.PaymentSource,
		PayerMemberID:       input.PayerMemberID,
		ApprovalStatus:      approval,
		ReimbursementStatus: reimbursement,
		TransferAccountID:   input.TransferAccountID,
		IsProvision:         input.IsProvision,
		CreatedBy:           userID,
		CreatedAt:           time.Now(),
	}
	if err := l.store.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	if err := l.syncAllocations(ctx, tx, input.Split); err != nil {
		// The row exists but its shares could not be materialized; take
		// the row back out so the caller sees no partial transaction.
		if delErr := l.store.DeleteTransaction(ctx, tx.ID); delErr != nil {
			log.WithError(delErr).WithField("transaction", tx.ID).
				Warn("Compensating delete after allocation failure also failed")
		}
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"transaction": tx.ID,
		"account":     tx.AccountID,
		"amount":      tx.Amount.StringFixed(2),
		"approval":    tx.ApprovalStatus,
	}).Info("Transaction created")
	return tx, nil
}

// Update rewrites the caller-editable fields and rematerializes
// allocations. The approval status is deliberately left untouched: edits
// do not re-trigger the approval workflow.
func (l *Ledger) Update(ctx context.Context, userID, id string, input TransactionInput) (*models.Transaction, error) {
	tx, err := l.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.gate.CanManageAccount(ctx, tx.AccountID, userID) {
		return nil, &ledgererror.AuthorizationError{UserID: userID, Operation: "transaction update"}
	}
	if input.AccountID == "" {
		input.AccountID = tx.AccountID
	}
	if err := normalize(&input); err != nil {
		return nil, err
	}

	tx.Date = input.Date
	tx.Amount = input.Amount
	tx.Description = input.Description
	tx.Notes = input.Notes
	tx.CategoryID = input.CategoryID
	tx.Type = input.Type
	tx.PaymentSource = input.PaymentSource
	tx.PayerMemberID = input.PayerMemberID
	tx.TransferAccountID = input.TransferAccountID
	tx.IsProvision = input.IsProvision
	if input.RequestReimbursement && tx.ReimbursementStatus == models.ReimbursementNone {
		tx.ReimbursementStatus = models.ReimbursementPending
	}

	if err := l.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	if err := l.syncAllocations(ctx, tx, input.Split); err != nil {
		return nil, err
	}

	log.WithField("transaction", tx.ID).Info("Transaction updated")
	return tx, nil
}

// SyncAllocations rematerializes the stored shares of a transaction from
// the given split input. Exposed for callers that recompute shares
// without editing the row itself (template application).
func (l *Ledger) SyncAllocations(ctx context.Context, id string, split *SplitInput) error {
	tx, err := l.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	return l.syncAllocations(ctx, tx, split)
}

// syncAllocations is the single materialize step: transfers are exempt,
// everything else gets its allocation rows deleted and reinserted from a
// fresh split. Replace-not-merge; there is no incremental diffing.
func (l *Ledger) syncAllocations(ctx context.Context, tx *models.Transaction, split *SplitInput) error {
	if tx.Type == models.TypeTransfer {
		return nil
	}
	if err := l.store.DeleteAllocations(ctx, tx.ID); err != nil {
		return err
	}
	if split == nil || len(split.InvolvedMemberIDs) == 0 {
		return nil
	}

	// Stable participant order for reproducible remainder placement.
	participants := make([]string, len(split.InvolvedMemberIDs))
	copy(participants, split.InvolvedMemberIDs)
	sort.Strings(participants)

	return l.materialize(ctx, tx, participants, split.SplitType, split.SplitWeights)
}

// materialize computes shares for the given participant order and writes
// them as the transaction's allocation rows.
func (l *Ledger) materialize(ctx context.Context, tx *models.Transaction, participants []string, mode allocation.SplitType, weights map[string]decimal.Decimal) error {
	shares, err := allocation.Split(tx.Amount, participants, mode, weights)
	if err != nil {
		return err
	}
	for i := range shares {
		shares[i].TransactionID = tx.ID
	}
	if err := l.store.InsertAllocations(ctx, shares); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"transaction": tx.ID,
		"members":     len(shares),
		"mode":        mode,
	}).Debug("Allocations materialized")
	return nil
}

// ApplyWeightedSplit replaces a transaction's allocations with a weighted
// split over the participants in the order given. Unlike SyncAllocations
// it does not sort: template application keeps the template's member
// order, so the template's first member absorbs the rounding remainder.
// The amount parameter overrides the stored transaction amount when
// non-zero, mirroring callers that apply a template while editing.
func (l *Ledger) ApplyWeightedSplit(ctx context.Context, userID, id string, amount decimal.Decimal, participants []string, weights map[string]decimal.Decimal) error {
	tx, err := l.store.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if !l.gate.CanManageAccount(ctx, tx.AccountID, userID) {
		return &ledgererror.AuthorizationError{UserID: userID, Operation: "split apply"}
	}
	if tx.Type == models.TypeTransfer {
		return &ledgererror.ValidationError{Field: "transaction", Reason: "transfers carry no allocations"}
	}
	if amount = models.RoundAmount(amount); !amount.IsZero() && !amount.Equal(tx.Amount) {
		if err := models.CheckAmountSign(tx.Type, amount); err != nil {
			return &ledgererror.ValidationError{Field: "amount", Reason: err.Error()}
		}
		// Keep the stored amount in step so the allocation sum invariant
		// holds against the row, not just the caller's number.
		tx.Amount = amount
		if err := l.store.UpdateTransaction(ctx, tx); err != nil {
			return err
		}
	}
	if err := l.store.DeleteAllocations(ctx, tx.ID); err != nil {
		return err
	}
	return l.materialize(ctx, tx, participants, allocation.SplitWeighted, weights)
}

// requireAdmin loads the transaction and checks group admin rights for
// the admin-only lifecycle operations.
func (l *Ledger) requireAdmin(ctx context.Context, userID, id, op string) (*models.Transaction, error) {
	tx, err := l.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.gate.IsGroupAdmin(ctx, tx.GroupID, userID) {
		return nil, &ledgererror.AuthorizationError{UserID: userID, Operation: op}
	}
	return tx, nil
}

// Delete removes a transaction and, through ownership, its allocations.
// Admin only.
func (l *Ledger) Delete(ctx context.Context, userID, id string) error {
	tx, err := l.requireAdmin(ctx, userID, id, "transaction delete")
	if err != nil {
		return err
	}
	if err := l.store.DeleteTransaction(ctx, tx.ID); err != nil {
		return err
	}
	log.WithField("transaction", tx.ID).Info("Transaction deleted")
	return nil
}

// Approve marks a pending transaction as approved. Admin only; there is
// no way back to pending.
func (l *Ledger) Approve(ctx context.Context, userID, id string) error {
	tx, err := l.requireAdmin(ctx, userID, id, "transaction approve")
	if err != nil {
		return err
	}
	if tx.ApprovalStatus == models.ApprovalApproved {
		return nil
	}
	tx.ApprovalStatus = models.ApprovalApproved
	if err := l.store.UpdateTransaction(ctx, tx); err != nil {
		return err
	}
	log.WithField("transaction", tx.ID).Info("Transaction approved")
	return nil
}

// MarkReimbursed settles a pending reimbursement claim. Admin only.
func (l *Ledger) MarkReimbursed(ctx context.Context, userID, id string) error {
	tx, err := l.requireAdmin(ctx, userID, id, "transaction reimburse")
	if err != nil {
		return err
	}
	tx.ReimbursementStatus = models.ReimbursementPaid
	if err := l.store.UpdateTransaction(ctx, tx); err != nil {
		return err
	}
	log.WithField("transaction", tx.ID).Info("Transaction marked reimbursed")
	return nil
}

// UpdateCategory assigns a category to a transaction. A loan category
// forces the transaction type to loan regardless of what it was before;
// any other category leaves the type alone.
func (l *Ledger) UpdateCategory(ctx context.Context, userID, id, categoryID string) (*models.Transaction, error) {
	tx, err := l.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.gate.CanManageAccount(ctx, tx.AccountID, userID) {
		return nil, &ledgererror.AuthorizationError{UserID: userID, Operation: "category update"}
	}
	if tx.Type == models.TypeTransfer {
		return nil, &ledgererror.ValidationError{Field: "category_id", Reason: "transfers carry no category"}
	}
	category, err := l.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.GroupID != tx.GroupID {
		return nil, &ledgererror.NotFoundError{Entity: "category", ID: categoryID}
	}

	tx.CategoryID = category.ID
	if category.IsLoan && tx.Type != models.TypeLoan {
		log.WithFields(logrus.Fields{
			"transaction": tx.ID,
			"category":    category.Name,
			"from":        tx.Type,
		}).Debug("Loan category forcing transaction type")
		tx.Type = models.TypeLoan
	}
	if err := l.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Get returns a transaction with its allocations. Read-only, no gating:
// visibility control is the caller's concern.
func (l *Ledger) Get(ctx context.Context, id string) (*models.Transaction, []models.Allocation, error) {
	tx, err := l.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	allocations, err := l.store.ListAllocations(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return tx, allocations, nil
}
