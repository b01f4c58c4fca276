package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"groupnest/ledger/internal/ledgererror"
	"groupnest/ledger/internal/models"
)

var log = logrus.New()

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// SQLiteStore implements Store on top of database/sql with the pure-Go
// sqlite driver.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and returns a store bound
// to it. SQLite serializes writes anyway, so the pool is pinned to a
// single connection; this also keeps the foreign_keys pragma effective.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// NewSQLiteStore wraps an already opened database handle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Init applies the schema DDL. Safe to call on an existing database.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return &ledgererror.PersistenceError{Operation: "schema init", Err: err}
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const timeLayout = time.RFC3339

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		log.WithField("value", s).Warn("Unparseable timestamp in store, using zero time")
		return time.Time{}
	}
	return t
}

func decodeAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.WithField("value", s).Warn("Unparseable amount in store, using zero")
		return decimal.Zero
	}
	return d
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// storeErr maps a database/sql error onto the ledger error taxonomy.
func storeErr(op, entity, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &ledgererror.NotFoundError{Entity: entity, ID: id}
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return &ledgererror.ConflictError{Entity: entity, Reason: "already exists"}
	}
	return &ledgererror.PersistenceError{Operation: op, Err: err}
}

// --- Groups ---

func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO groups (id, name, currency, owner_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.Currency, group.OwnerID, encodeTime(group.CreatedAt))
	return storeErr("group insert", "group", group.ID, err)
}

func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, currency, owner_id, created_at FROM groups WHERE id = ?`, id)
	var g models.Group
	var createdAt string
	if err := row.Scan(&g.ID, &g.Name, &g.Currency, &g.OwnerID, &createdAt); err != nil {
		return nil, storeErr("group select", "group", id, err)
	}
	g.CreatedAt = decodeTime(createdAt)
	return &g, nil
}

func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	return storeErr("group delete", "group", id, err)
}

// --- Members ---

func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (id, group_id, user_id, name, role, initial_balance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		member.ID, member.GroupID, nullable(member.UserID), member.Name, string(member.Role),
		member.InitialBalance.StringFixed(2), encodeTime(member.CreatedAt))
	return storeErr("member insert", "member", member.ID, err)
}

const memberColumns = `id, group_id, COALESCE(user_id, ''), name, role, initial_balance, created_at`

func scanMember(row interface{ Scan(...any) error }) (*models.Member, error) {
	var m models.Member
	var role, balance, createdAt string
	if err := row.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Name, &role, &balance, &createdAt); err != nil {
		return nil, err
	}
	m.Role = models.MemberRole(role)
	m.InitialBalance = decodeAmount(balance)
	m.CreatedAt = decodeTime(createdAt)
	return &m, nil
}

func (s *SQLiteStore) GetMember(ctx context.Context, id string) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err != nil {
		return nil, storeErr("member select", "member", id, err)
	}
	return m, nil
}

func (s *SQLiteStore) GetMemberByUser(ctx context.Context, groupID, userID string) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE group_id = ? AND user_id = ?`, groupID, userID)
	m, err := scanMember(row)
	if err != nil {
		return nil, storeErr("member select", "member", userID, err)
	}
	return m, nil
}

func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE group_id = ? ORDER BY created_at, id`, groupID)
	if err != nil {
		return nil, storeErr("member list", "member", groupID, err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, storeErr("member scan", "member", groupID, err)
		}
		members = append(members, *m)
	}
	return members, storeErr("member list", "member", groupID, rows.Err())
}

// --- Accounts ---

func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, group_id, name, type, responsible_member_id, balance, is_default, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.GroupID, account.Name, account.Type, nullable(account.ResponsibleMemberID),
		account.Balance.StringFixed(2), boolToInt(account.IsDefault), encodeTime(account.CreatedAt))
	return storeErr("account insert", "account", account.ID, err)
}

const accountColumns = `id, group_id, name, type, COALESCE(responsible_member_id, ''), balance, is_default, created_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	var balance, createdAt string
	var isDefault int
	if err := row.Scan(&a.ID, &a.GroupID, &a.Name, &a.Type, &a.ResponsibleMemberID, &balance, &isDefault, &createdAt); err != nil {
		return nil, err
	}
	a.Balance = decodeAmount(balance)
	a.IsDefault = isDefault == 1
	a.CreatedAt = decodeTime(createdAt)
	return &a, nil
}

func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		return nil, storeErr("account select", "account", id, err)
	}
	return a, nil
}

func (s *SQLiteStore) ListAccounts(ctx context.Context, groupID string) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE group_id = ? ORDER BY created_at, id`, groupID)
	if err != nil {
		return nil, storeErr("account list", "account", groupID, err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, storeErr("account scan", "account", groupID, err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, storeErr("account list", "account", groupID, rows.Err())
}

func (s *SQLiteStore) DefaultAccount(ctx context.Context, groupID string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE group_id = ?
		 ORDER BY is_default DESC, created_at, id LIMIT 1`, groupID)
	a, err := scanAccount(row)
	if err != nil {
		return nil, storeErr("account select", "account", groupID, err)
	}
	return a, nil
}

// --- Account managers ---

func (s *SQLiteStore) AddAccountManager(ctx context.Context, accountID, memberID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account_managers (account_id, member_id) VALUES (?, ?)`, accountID, memberID)
	return storeErr("account manager insert", "account manager", memberID, err)
}

func (s *SQLiteStore) RemoveAccountManager(ctx context.Context, accountID, memberID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM account_managers WHERE account_id = ? AND member_id = ?`, accountID, memberID)
	return storeErr("account manager delete", "account manager", memberID, err)
}

func (s *SQLiteStore) IsAccountManager(ctx context.Context, accountID, memberID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM account_managers WHERE account_id = ? AND member_id = ?`,
		accountID, memberID).Scan(&count)
	if err != nil {
		return false, storeErr("account manager select", "account manager", memberID, err)
	}
	return count > 0, nil
}

// --- Categories ---

func (s *SQLiteStore) CreateCategory(ctx context.Context, category *models.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, group_id, name, is_loan) VALUES (?, ?, ?, ?)`,
		category.ID, category.GroupID, category.Name, boolToInt(category.IsLoan))
	return storeErr("category insert", "category", category.ID, err)
}

func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, name, is_loan FROM categories WHERE id = ?`, id)
	var c models.Category
	var isLoan int
	if err := row.Scan(&c.ID, &c.GroupID, &c.Name, &isLoan); err != nil {
		return nil, storeErr("category select", "category", id, err)
	}
	c.IsLoan = isLoan == 1
	return &c, nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context, groupID string) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, name, is_loan FROM categories WHERE group_id = ? ORDER BY name`, groupID)
	if err != nil {
		return nil, storeErr("category list", "category", groupID, err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		var isLoan int
		if err := rows.Scan(&c.ID, &c.GroupID, &c.Name, &isLoan); err != nil {
			return nil, storeErr("category scan", "category", groupID, err)
		}
		c.IsLoan = isLoan == 1
		categories = append(categories, c)
	}
	return categories, storeErr("category list", "category", groupID, rows.Err())
}

// --- Transactions ---

const transactionColumns = `id, group_id, account_id, date, amount, description, COALESCE(notes, ''),
	COALESCE(category_id, ''), type, payment_source, COALESCE(payer_member_id, ''),
	approval_status, reimbursement_status, COALESCE(parent_transaction_id, ''),
	COALESCE(transfer_account_id, ''), is_provision, COALESCE(import_id, ''), created_by, created_at`

func (s *SQLiteStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, group_id, account_id, date, amount, description, notes,
			category_id, type, payment_source, payer_member_id, approval_status, reimbursement_status,
			parent_transaction_id, transfer_account_id, is_provision, import_id, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.GroupID, tx.AccountID, encodeTime(tx.Date), tx.Amount.StringFixed(2),
		tx.Description, nullable(tx.Notes), nullable(tx.CategoryID), string(tx.Type),
		string(tx.PaymentSource), nullable(tx.PayerMemberID), string(tx.ApprovalStatus),
		string(tx.ReimbursementStatus), nullable(tx.ParentTransactionID),
		nullable(tx.TransferAccountID), boolToInt(tx.IsProvision), nullable(tx.ImportID),
		tx.CreatedBy, encodeTime(tx.CreatedAt))
	return storeErr("transaction insert", "transaction", tx.ID, err)
}

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	var t models.Transaction
	var date, amount, typ, source, approval, reimbursement, createdAt string
	var isProvision int
	if err := row.Scan(&t.ID, &t.GroupID, &t.AccountID, &date, &amount, &t.Description, &t.Notes,
		&t.CategoryID, &typ, &source, &t.PayerMemberID, &approval, &reimbursement,
		&t.ParentTransactionID, &t.TransferAccountID, &isProvision, &t.ImportID,
		&t.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	t.Date = decodeTime(date)
	t.Amount = decodeAmount(amount)
	t.Type = models.TransactionType(typ)
	t.PaymentSource = models.PaymentSource(source)
	t.ApprovalStatus = models.ApprovalStatus(approval)
	t.ReimbursementStatus = models.ReimbursementStatus(reimbursement)
	t.IsProvision = isProvision == 1
	t.CreatedAt = decodeTime(createdAt)
	return &t, nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, storeErr("transaction select", "transaction", id, err)
	}
	return t, nil
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET date = ?, amount = ?, description = ?, notes = ?, category_id = ?,
			type = ?, payment_source = ?, payer_member_id = ?, approval_status = ?,
			reimbursement_status = ?, parent_transaction_id = ?, transfer_account_id = ?,
			is_provision = ?
		 WHERE id = ?`,
		encodeTime(tx.Date), tx.Amount.StringFixed(2), tx.Description, nullable(tx.Notes),
		nullable(tx.CategoryID), string(tx.Type), string(tx.PaymentSource),
		nullable(tx.PayerMemberID), string(tx.ApprovalStatus), string(tx.ReimbursementStatus),
		nullable(tx.ParentTransactionID), nullable(tx.TransferAccountID),
		boolToInt(tx.IsProvision), tx.ID)
	if err != nil {
		return storeErr("transaction update", "transaction", tx.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledgererror.NotFoundError{Entity: "transaction", ID: tx.ID}
	}
	return nil
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	// Allocations are owned by the transaction; remove them explicitly so
	// the cascade holds even on databases opened without foreign_keys.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM allocations WHERE transaction_id = ?`, id); err != nil {
		return storeErr("allocation delete", "allocation", id, err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return storeErr("transaction delete", "transaction", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledgererror.NotFoundError{Entity: "transaction", ID: id}
	}
	return nil
}

func (s *SQLiteStore) ListOrphanTransactions(ctx context.Context, accountID string, maxDate time.Time, limit int) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE account_id = ? AND type = ? AND (parent_transaction_id IS NULL OR parent_transaction_id = '')
		   AND date <= ?
		 ORDER BY date DESC, id DESC LIMIT ?`,
		accountID, string(models.TypeExpense), encodeTime(maxDate), limit)
	if err != nil {
		return nil, storeErr("orphan list", "transaction", accountID, err)
	}
	defer rows.Close()

	var orphans []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, storeErr("orphan scan", "transaction", accountID, err)
		}
		orphans = append(orphans, *t)
	}
	return orphans, storeErr("orphan list", "transaction", accountID, rows.Err())
}

func (s *SQLiteStore) SetTransactionParent(ctx context.Context, id, parentID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET parent_transaction_id = ? WHERE id = ?`, parentID, id)
	if err != nil {
		return storeErr("transaction reparent", "transaction", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledgererror.NotFoundError{Entity: "transaction", ID: id}
	}
	return nil
}

func (s *SQLiteStore) HasChildTransactions(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM transactions WHERE parent_transaction_id = ?`, id).Scan(&count)
	if err != nil {
		return false, storeErr("transaction children select", "transaction", id, err)
	}
	return count > 0, nil
}

// --- Allocations ---

func (s *SQLiteStore) DeleteAllocations(ctx context.Context, transactionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM allocations WHERE transaction_id = ?`, transactionID)
	return storeErr("allocation delete", "allocation", transactionID, err)
}

func (s *SQLiteStore) InsertAllocations(ctx context.Context, allocations []models.Allocation) error {
	for _, a := range allocations {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO allocations (transaction_id, member_id, amount) VALUES (?, ?, ?)`,
			a.TransactionID, a.MemberID, a.Amount.StringFixed(2))
		if err != nil {
			return storeErr("allocation insert", "allocation", a.TransactionID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) ListAllocations(ctx context.Context, transactionID string) ([]models.Allocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT transaction_id, member_id, amount FROM allocations WHERE transaction_id = ? ORDER BY member_id`,
		transactionID)
	if err != nil {
		return nil, storeErr("allocation list", "allocation", transactionID, err)
	}
	defer rows.Close()

	var allocations []models.Allocation
	for rows.Next() {
		var a models.Allocation
		var amount string
		if err := rows.Scan(&a.TransactionID, &a.MemberID, &amount); err != nil {
			return nil, storeErr("allocation scan", "allocation", transactionID, err)
		}
		a.Amount = decodeAmount(amount)
		allocations = append(allocations, a)
	}
	return allocations, storeErr("allocation list", "allocation", transactionID, rows.Err())
}

// --- Split templates ---

func (s *SQLiteStore) CreateSplitTemplate(ctx context.Context, template *models.SplitTemplate) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO split_templates (id, group_id, name, description) VALUES (?, ?, ?, ?)`,
		template.ID, template.GroupID, template.Name, nullable(template.Description))
	if err != nil {
		return storeErr("template insert", "split template", template.ID, err)
	}
	return s.insertTemplateMembers(ctx, template.ID, template.Members)
}

func (s *SQLiteStore) insertTemplateMembers(ctx context.Context, templateID string, members []models.SplitTemplateMember) error {
	for i, m := range members {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO split_template_members (template_id, member_id, shares, position) VALUES (?, ?, ?, ?)`,
			templateID, m.MemberID, m.Shares.String(), i)
		if err != nil {
			return storeErr("template member insert", "split template member", m.MemberID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) GetSplitTemplate(ctx context.Context, id string) (*models.SplitTemplate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, name, COALESCE(description, '') FROM split_templates WHERE id = ?`, id)
	var t models.SplitTemplate
	if err := row.Scan(&t.ID, &t.GroupID, &t.Name, &t.Description); err != nil {
		return nil, storeErr("template select", "split template", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT member_id, shares FROM split_template_members WHERE template_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, storeErr("template member list", "split template", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.SplitTemplateMember
		var shares string
		if err := rows.Scan(&m.MemberID, &shares); err != nil {
			return nil, storeErr("template member scan", "split template", id, err)
		}
		m.Shares = decodeAmount(shares)
		t.Members = append(t.Members, m)
	}
	return &t, storeErr("template member list", "split template", id, rows.Err())
}

func (s *SQLiteStore) UpdateSplitTemplate(ctx context.Context, template *models.SplitTemplate) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE split_templates SET name = ?, description = ? WHERE id = ?`,
		template.Name, nullable(template.Description), template.ID)
	if err != nil {
		return storeErr("template update", "split template", template.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledgererror.NotFoundError{Entity: "split template", ID: template.ID}
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM split_template_members WHERE template_id = ?`, template.ID); err != nil {
		return storeErr("template member delete", "split template", template.ID, err)
	}
	return s.insertTemplateMembers(ctx, template.ID, template.Members)
}

func (s *SQLiteStore) DeleteSplitTemplate(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM split_template_members WHERE template_id = ?`, id); err != nil {
		return storeErr("template member delete", "split template", id, err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM split_templates WHERE id = ?`, id)
	if err != nil {
		return storeErr("template delete", "split template", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &ledgererror.NotFoundError{Entity: "split template", ID: id}
	}
	return nil
}

func (s *SQLiteStore) ListSplitTemplates(ctx context.Context, groupID string) ([]models.SplitTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM split_templates WHERE group_id = ? ORDER BY name`, groupID)
	if err != nil {
		return nil, storeErr("template list", "split template", groupID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("template scan", "split template", groupID, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("template list", "split template", groupID, err)
	}

	templates := make([]models.SplitTemplate, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetSplitTemplate(ctx, id)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, nil
}

// --- Import batches ---

func (s *SQLiteStore) CreateImportBatch(ctx context.Context, batch *models.ImportBatch) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO import_batches (id, group_id, label, row_count, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		batch.ID, batch.GroupID, batch.Label, batch.RowCount, batch.CreatedBy, encodeTime(batch.CreatedAt))
	return storeErr("import batch insert", "import batch", batch.ID, err)
}

func (s *SQLiteStore) GetImportBatch(ctx context.Context, id string) (*models.ImportBatch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, label, row_count, created_by, created_at FROM import_batches WHERE id = ?`, id)
	var b models.ImportBatch
	var createdAt string
	if err := row.Scan(&b.ID, &b.GroupID, &b.Label, &b.RowCount, &b.CreatedBy, &createdAt); err != nil {
		return nil, storeErr("import batch select", "import batch", id, err)
	}
	b.CreatedAt = decodeTime(createdAt)
	return &b, nil
}

func (s *SQLiteStore) DeleteImportBatch(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM import_batches WHERE id = ?`, id)
	return storeErr("import batch delete", "import batch", id, err)
}

func (s *SQLiteStore) ListTransactionsByImport(ctx context.Context, importID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE import_id = ? ORDER BY date, id`, importID)
	if err != nil {
		return nil, storeErr("import transaction list", "transaction", importID, err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, storeErr("import transaction scan", "transaction", importID, err)
		}
		txs = append(txs, *t)
	}
	return txs, storeErr("import transaction list", "transaction", importID, rows.Err())
}

func (s *SQLiteStore) DeleteTransactionsByImport(ctx context.Context, importID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM allocations WHERE transaction_id IN (SELECT id FROM transactions WHERE import_id = ?)`,
		importID); err != nil {
		return storeErr("import allocation delete", "allocation", importID, err)
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE import_id = ?`, importID)
	return storeErr("import transaction delete", "transaction", importID, err)
}

// nullable maps Go's empty string onto SQL NULL for optional columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Store = (*SQLiteStore)(nil)
