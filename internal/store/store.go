// Package store defines the relational CRUD contract the ledger engine
// runs against, plus its SQLite implementation. The engine never issues
// SQL itself; every service talks to the Store interface so it can be
// backed by any relational database.
package store

import (
	"context"
	"time"

	"groupnest/ledger/internal/models"
)

// Store is the persistence contract for the ledger engine. Implementations
// map "row missing" to ledgererror.NotFoundError and unique-constraint
// violations to ledgererror.ConflictError; everything else surfaces as a
// ledgererror.PersistenceError.
type Store interface {
	// Groups
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	DeleteGroup(ctx context.Context, id string) error

	// Members
	CreateMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, id string) (*models.Member, error)
	// GetMemberByUser resolves the member record linking userID into the
	// group, or NotFoundError when the user is not a member.
	GetMemberByUser(ctx context.Context, groupID, userID string) (*models.Member, error)
	ListMembers(ctx context.Context, groupID string) ([]models.Member, error)

	// Accounts
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	ListAccounts(ctx context.Context, groupID string) ([]models.Account, error)
	// DefaultAccount returns the group's default account, or its first
	// account when none is flagged, or NotFoundError when the group has
	// no accounts at all.
	DefaultAccount(ctx context.Context, groupID string) (*models.Account, error)

	// Account managers
	AddAccountManager(ctx context.Context, accountID, memberID string) error
	RemoveAccountManager(ctx context.Context, accountID, memberID string) error
	IsAccountManager(ctx context.Context, accountID, memberID string) (bool, error)

	// Categories
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context, groupID string) ([]models.Category, error)

	// Transactions
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	// DeleteTransaction removes the row; allocations go with it (owned,
	// cascade).
	DeleteTransaction(ctx context.Context, id string) error
	// ListOrphanTransactions returns unlinked leaf expenses on the
	// account dated on/before maxDate, newest first, capped at limit.
	ListOrphanTransactions(ctx context.Context, accountID string, maxDate time.Time, limit int) ([]models.Transaction, error)
	// SetTransactionParent re-parents a single transaction.
	SetTransactionParent(ctx context.Context, id, parentID string) error
	// HasChildTransactions reports whether any transaction names id as
	// its parent.
	HasChildTransactions(ctx context.Context, id string) (bool, error)

	// Allocations
	DeleteAllocations(ctx context.Context, transactionID string) error
	InsertAllocations(ctx context.Context, allocations []models.Allocation) error
	ListAllocations(ctx context.Context, transactionID string) ([]models.Allocation, error)

	// Split templates
	CreateSplitTemplate(ctx context.Context, template *models.SplitTemplate) error
	GetSplitTemplate(ctx context.Context, id string) (*models.SplitTemplate, error)
	// UpdateSplitTemplate replaces the template row and all of its
	// member rows.
	UpdateSplitTemplate(ctx context.Context, template *models.SplitTemplate) error
	DeleteSplitTemplate(ctx context.Context, id string) error
	ListSplitTemplates(ctx context.Context, groupID string) ([]models.SplitTemplate, error)

	// Import batches
	CreateImportBatch(ctx context.Context, batch *models.ImportBatch) error
	GetImportBatch(ctx context.Context, id string) (*models.ImportBatch, error)
	DeleteImportBatch(ctx context.Context, id string) error
	ListTransactionsByImport(ctx context.Context, importID string) ([]models.Transaction, error)
	// DeleteTransactionsByImport removes every transaction tagged with
	// the batch id, with their allocations. Idempotent: deleting an
	// already-cleaned batch removes nothing and succeeds.
	DeleteTransactionsByImport(ctx context.Context, importID string) error
}
