// Package importer bulk-inserts externally sourced transactions as one
// traceable batch, so a bad statement can be undone as a unit.
package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

// Row is one imported statement line. BankBalance is informational
// (the bank's running balance after the movement) and not persisted;
// this engine does not compute balances.
type Row struct {
	Date        time.Time
	Amount      decimal.Decimal
	Description string
	Notes       string
	BankBalance decimal.Decimal
}

// Result reports a finished import.
type Result struct {
	Batch *models.ImportBatch
	Count int
}

// Importer writes statement rows into a group's default account.
type Importer struct {
	store store.Store
	gate  *permission.Gate
}

// New builds an importer over the given store and gate.
func New(s store.Store, gate *permission.Gate) *Importer {
	return &Importer{store: s, gate: gate}
}

// Import inserts all rows as transactions on the group's default (or
// first) account, tagged with a fresh batch id. Each row's type comes
// from the sign of its amount: negative is an expense, anything else
// income. Imported rows arrive pre-cleared, so they are approved
// immediately and sourced from the account.
//
// Batch and rows are not written atomically. If a row insert fails, the
// rows written so far and the batch record are compensated away
// best-effort before the error is returned, and the cleanup is
// idempotent so a crashed compensation can be retried via UndoBatch.
func (i *Importer) Import(ctx context.Context, userID, groupID, label string, rows []Row) (*Result, error) {
	if userID == "" {
		return nil, &ledgererror.AuthorizationError{Operation: "statement import"}
	}
	if len(rows) == 0 {
		return nil, &ledgererror.ValidationError{Field: "rows", Reason: "statement has no rows"}
	}

	account, err := i.store.DefaultAccount(ctx, groupID)
	if err != nil {
		if ledgererror.IsNotFound(err) {
			return nil, &ledgererror.ValidationError{Field: "group", Reason: "group has no account to import into"}
		}
		return nil, err
	}
	if !i.gate.CanManageAccount(ctx, account.ID, userID) {
		return nil, &ledgererror.AuthorizationError{UserID: userID, Operation: "statement import"}
	}

	batch := &models.ImportBatch{
		ID:        uuid.NewString(),
		GroupID:   groupID,
		Label:     label,
		RowCount:  len(rows),
		CreatedBy: userID,
		CreatedAt: time.Now(),
	}
	if err := i.store.CreateImportBatch(ctx, batch); err != nil {
		return nil, err
	}

	for n, row := range rows {
		amount := models.RoundAmount(row.Amount)
		tx := &models.Transaction{
			ID:                  uuid.NewString(),
			GroupID:             groupID,
			AccountID:           account.ID,
			Date:                row.Date,
			Amount:              amount,
			Description:         row.Description,
			Notes:               row.Notes,
			Type:                models.TypeFromSign(amount),
			PaymentSource:       models.SourceAccount,
			ApprovalStatus:      models.ApprovalApproved,
			ReimbursementStatus: models.ReimbursementNone,
			ImportID:            batch.ID,
			CreatedBy:           userID,
			CreatedAt:           time.Now(),
		}
		if err := i.store.CreateTransaction(ctx, tx); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"batch": batch.ID,
				"row":   n,
			}).Error("Row insert failed, rolling back batch")
			i.compensate(ctx, batch.ID)
			return nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"batch":   batch.ID,
		"account": account.ID,
		"rows":    len(rows),
	}).Info("Statement imported")
	return &Result{Batch: batch, Count: len(rows)}, nil
}

// compensate removes whatever the failed import managed to write. Errors
// are logged, not returned: the caller already has the original failure.
func (i *Importer) compensate(ctx context.Context, batchID string) {
	if err := i.store.DeleteTransactionsByImport(ctx, batchID); err != nil {
		log.WithError(err).WithField("batch", batchID).Warn("Compensating transaction delete failed")
	}
	if err := i.store.DeleteImportBatch(ctx, batchID); err != nil {
		log.WithError(err).WithField("batch", batchID).Warn("Compensating batch delete failed")
	}
}

// UndoBatch deletes every transaction the batch created, then the batch
// itself. Admin only. Idempotent: undoing an already undone batch is a
// NotFoundError on the batch row, nothing else.
func (i *Importer) UndoBatch(ctx context.Context, userID, batchID string) error {
	batch, err := i.store.GetImportBatch(ctx, batchID)
	if err != nil {
		return err
	}
	if !i.gate.IsGroupAdmin(ctx, batch.GroupID, userID) {
		return &ledgererror.AuthorizationError{UserID: userID, Operation: "import undo"}
	}
	if err := i.store.DeleteTransactionsByImport(ctx, batchID); err != nil {
		return err
	}
	if err := i.store.DeleteImportBatch(ctx, batchID); err != nil {
		return err
	}
	log.WithField("batch", batchID).Info("Import batch undone")
	return nil
}

// BatchTransactions lists the transactions a batch created, oldest first.
func (i *Importer) BatchTransactions(ctx context.Context, batchID string) ([]models.Transaction, error) {
	if _, err := i.store.GetImportBatch(ctx, batchID); err != nil {
		return nil, err
	}
	return i.store.ListTransactionsByImport(ctx, batchID)
}
