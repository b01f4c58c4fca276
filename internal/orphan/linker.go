// Package orphan finds unlinked leaf expenses and folds them under a
// consolidating parent transaction, e.g. grouping card purchases under
// the statement payment that settles them.
package orphan

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

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

// DefaultScanLimit caps how many orphan candidates one scan returns.
const DefaultScanLimit = 50

// Linker scans for orphan expenses and re-parents them.
type Linker struct {
	store store.Store
	gate  *permission.Gate
	limit int
}

// NewLinker builds a linker with the default scan limit.
func NewLinker(s store.Store, gate *permission.Gate) *Linker {
	return &Linker{store: s, gate: gate, limit: DefaultScanLimit}
}

// NewLinkerWithLimit builds a linker with a custom scan limit.
func NewLinkerWithLimit(s store.Store, gate *permission.Gate, limit int) *Linker {
	if limit <= 0 {
		limit = DefaultScanLimit
	}
	return &Linker{store: s, gate: gate, limit: limit}
}

// FindOrphans returns up to the scan limit of unlinked leaf expense
// transactions on the account, dated on/before maxDate, newest first.
// Read-only; the account must belong to the group.
func (l *Linker) FindOrphans(ctx context.Context, groupID, accountID string, maxDate time.Time) ([]models.Transaction, error) {
	account, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.GroupID != groupID {
		return nil, &ledgererror.NotFoundError{Entity: "account", ID: accountID}
	}
	return l.store.ListOrphanTransactions(ctx, accountID, maxDate, l.limit)
}

// LinkToParent re-parents all listed orphans under parentID, one row at a
// time. The batch is not atomic: a failure partway through leaves the
// earlier rows linked, and the returned count says how many were newly
// written. Callers wanting all-or-nothing must retry the remainder;
// rows already linked to this parent are skipped, so a retry of the
// full list is safe.
//
// The parent must itself be a flat transaction (no parent of its own),
// and each orphan must be a leaf: not linked elsewhere and without
// children of its own. The child graph therefore never deepens beyond
// one level, and a parent cannot appear in its own orphan list.
func (l *Linker) LinkToParent(ctx context.Context, userID string, orphanIDs []string, parentID string) (int, error) {
	parent, err := l.store.GetTransaction(ctx, parentID)
	if err != nil {
		return 0, err
	}
	if !l.gate.CanManageAccount(ctx, parent.AccountID, userID) {
		return 0, &ledgererror.AuthorizationError{UserID: userID, Operation: "orphan link"}
	}
	if parent.ParentTransactionID != "" {
		return 0, &ledgererror.ValidationError{Field: "parent_transaction_id", Reason: "parent is itself a child transaction"}
	}
	if len(orphanIDs) == 0 {
		return 0, &ledgererror.ValidationError{Field: "orphan_ids", Reason: "empty orphan list"}
	}

	linked := 0
	for _, id := range orphanIDs {
		if id == parentID {
			return linked, &ledgererror.ValidationError{Field: "orphan_ids", Reason: "transaction cannot be its own parent"}
		}
		orphan, err := l.store.GetTransaction(ctx, id)
		if err != nil {
			return linked, err
		}
		if orphan.GroupID != parent.GroupID {
			return linked, &ledgererror.ValidationError{Field: "orphan_ids", Reason: "orphan " + id + " belongs to another group"}
		}
		if orphan.ParentTransactionID == parentID {
			// Already linked here, e.g. on a retry after partial failure.
			continue
		}
		if orphan.ParentTransactionID != "" {
			return linked, &ledgererror.ValidationError{Field: "orphan_ids", Reason: "orphan " + id + " is already linked to another parent"}
		}
		hasChildren, err := l.store.HasChildTransactions(ctx, id)
		if err != nil {
			return linked, err
		}
		if hasChildren {
			return linked, &ledgererror.ValidationError{Field: "orphan_ids", Reason: "orphan " + id + " is itself a parent"}
		}
		if err := l.store.SetTransactionParent(ctx, id, parentID); err != nil {
			return linked, err
		}
		linked++
	}

	log.WithFields(logrus.Fields{
		"parent": parentID,
		"linked": linked,
	}).Info("Orphan transactions linked")
	return linked, nil
}
