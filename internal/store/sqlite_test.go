package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupnest/ledger/internal/ledgererror"
	"groupnest/ledger/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedGroup(t *testing.T, s *SQLiteStore) *models.Group {
	t.Helper()
	g := &models.Group{ID: "g1", Name: "Flat 12", Currency: "EUR", OwnerID: "user-owner", CreatedAt: time.Now()}
	require.NoError(t, s.CreateGroup(context.Background(), g))
	return g
}

func TestGroupRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedGroup(t, s)

	got, err := s.GetGroup(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Flat 12", got.Name)
	assert.Equal(t, "EUR", got.Currency)

	_, err = s.GetGroup(ctx, "missing")
	assert.True(t, ledgererror.IsNotFound(err))
}

func TestMemberLookupByUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedGroup(t, s)

	member := &models.Member{ID: "m1", GroupID: "g1", UserID: "user-1", Name: "Ana", Role: models.RoleAdmin}
	require.NoError(t, s.CreateMember(ctx, member))
	ghost := &models.Member{ID: "m2", GroupID: "g1", Name: "Flatmate", Role: models.RoleMember}
	require.NoError(t, s.CreateMember(ctx, ghost))

	got, err := s.GetMemberByUser(ctx, "g1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.ID)
	assert.Equal(t, models.RoleAdmin, got.Role)

	_, err = s.GetMemberByUser(ctx, "g1", "user-unknown")
	assert.True(t, ledgererror.IsNotFound(err))

	members, err := s.ListMembers(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, members, 2)
	assert.True(t, members[1].IsGhost())
}

func TestDefaultAccountResolution(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedGroup(t, s)

	_, err := s.DefaultAccount(ctx, "g1")
	assert.True(t, ledgererror.IsNotFound(err), "no accounts yet")

	first := &models.Account{ID: "a1", GroupID: "g1", Name: "Joint", Type: "checking",
		Balance: decimal.Zero, CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.CreateAccount(ctx, first))

	got, err := s.DefaultAccount(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID, "first account wins when none is flagged")

	flagged := &models.Account{ID: "a2", GroupID: "g1", Name: "Card", Type: "card",
		Balance: decimal.Zero, IsDefault: true, CreatedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, s.CreateAccount(ctx, flagged))

	got, err = s.DefaultAccount(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "a2", got.ID, "flagged default wins over older account")
}

func TestAccountManagerUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedGroup(t, s)
	require.NoError(t, s.CreateAccount(ctx, &models.Account{ID: "a1", GroupID: "g1", Name: "Joint", Type: "checking", Balance: decimal.Zero, CreatedAt: time.Now()}))
	require.NoError(t, s.CreateMember(ctx, &models.Member{ID: "m1", GroupID: "g1", Name: "Ana", Role: models.RoleMember, CreatedAt: time.Now()}))

	require.NoError(t, s.AddAccountManager(ctx, "a1", "m1"))

	err := s.AddAccountManager(ctx, "a1", "m1")
	assert.True(t, ledgererror.IsConflict(err), "duplicate assignment must conflict")

	ok, err := s.IsAccountManager(ctx, "a1", "m1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.RemoveAccountManager(ctx, "a1", "m1"))
	ok, err = s.IsAccountManager(ctx, "a1", "m1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func seedTransaction(t *testing.T, s *SQLiteStore, id string, amount string, typ models.TransactionType) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{
		ID: id, GroupID: "g1", AccountID: "a1",
		Date:                time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:              decimal.RequireFromString(amount),
		Description:         "groceries",
		Type:                typ,
		PaymentSource:       models.SourceAccount,
		ApprovalStatus:      models.ApprovalApproved,
		ReimbursementStatus: models.ReimbursementNone,
		CreatedBy:           "user-1",
		CreatedAt:           time.Now(),
	}
	require.NoError(t, s.CreateTransaction(context.Background(), tx))
	return tx
}

func TestTransactionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedGroup(t, s)
	require.NoError(t, s.CreateAccount(ctx, &models.Account{ID: "a1", GroupID: "g1", Name: "Joint", Type: "checking", Balance: decimal.Zero, CreatedAt: time.Now()}))
	seedTransaction(t, s, "tx1", "-42.50", models.TypeExpense)

	got, err := s.GetTransaction(ctx, "tx1")
	require.NoError(t, err)
	assert.Equal(t, "-42.50", got.Amount.StringFixed(2))
	assert.Equal(t, models.TypeExpense, got.Type)
	assert.Empty(t, got.CategoryID)
	assert.Empty(t, got.ParentTransactionID)

	got.Description = "weekly groceries"
	got.Notes = "market"
	require.NoError(t, s.UpdateTransaction(ctx, got))

	again, err := s.GetTransaction(ctx, "tx1")
	require.NoError(t, err)
	assert.Equal(t, "weekly groceries", again.Description)
	assert.Equal(t, "market", again.Notes)

	err = s.UpdateTransaction(ctx, &models.Transaction{ID: "missing", Amount: decimal.Zero})
	assert.True(t, ledgererror.IsNotFound(err))
}

func TestDeleteTransactionCascadesAllocations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedGroup(t, s)
	require.NoError(t, s.CreateAccount(ctx, &models.Account{ID: "a1", GroupID: "g1", Name: "Joint", Type: "checking", Balance: decimal.Zero, CreatedAt: time.Now()}))
	seedTransaction(t, s, "tx1", "-30.00", models.TypeExpense)

	require.NoError(t, s.InsertAllocations(ctx, []models.Allocation{
		{TransactionID: "tx1", MemberID: "m1", Amount: decimal.RequireFromString("-15.00")},
		{TransactionID: "tx1", MemberID: "m2", Amount: decimal.RequireFromString("-15.00")},
	}))

	require.NoError(t, s.DeleteTransaction(ctx, "tx1"))

	allocations, err := s.ListAllocations(ctx, "tx1")
	require.NoError(t, err)
	assert.Empty(t, allocations)

	_, err = s.GetTransaction(ctx, "tx1")
	assert.True(t, ledgererror.IsNotFound(err))
}

func TestListOrphanTransactions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedGroup(t, s)
	require.NoError(t, s.CreateAccount(ctx, &models.Account{ID: "a1", GroupID: "g1", Name: "Joint", Type: "checking", Balance: decimal.Zero, CreatedAt: time.Now()}))
	require.NoError(t, s.CreateAccount(ctx, &models.Account{ID: "a2", GroupID: "g1", Name: "Card", Type: "card", Balance: decimal.Zero, CreatedAt: time.Now()}))

	cutoff := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	old := seedTransaction(t, s, "tx-old", "-10.00", models.TypeExpense)
	old.Date = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateTransaction(ctx, old))

	seedTransaction(t, s, "tx-recent", "-20.00", models.TypeExpense)

	late := seedTransaction(t, s, "tx-late", "-5.00", models.TypeExpense)
	late.Date = time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpdateTransaction(ctx, late))

	linked := seedTransaction(t, s, "tx-linked", "-7.00", models.TypeExpense)
	require.NoError(t, s.SetTransactionParent(ctx, linked.ID, "tx-recent"))

	seedTransaction(t, s, "tx-income", "50.00", models.TypeIncome)

	require.NoError(t, s.CreateTransaction(ctx, &models.Transaction{
		ID: "tx-other-acct", GroupID: "g1", AccountID: "a2",
		Date:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount: decimal.RequireFromString("-9.00"), Description: "fuel",
		Type: models.TypeExpense, PaymentSource: models.SourceAccount,
		ApprovalStatus: models.ApprovalApproved, ReimbursementStatus: models.ReimbursementNone,
		CreatedBy: "user-1", CreatedAt: time.Now(),
	}))

	orphans, err := s.ListOrphanTransactions(ctx, "a1", cutoff, 50)
	require.NoError(t, err)

	ids := make([]string, 0, len(orphans))
	for _, o := range orphans {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"tx-recent", "tx-old"}, ids, "newest first, excluding linked/late/income/other-account rows")
}

func TestHasChildTransactions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedGroup(t, s)
	require.NoError(t, s.CreateAccount(ctx, &models.Account{ID: "a1", GroupID: "g1", Name: "Joint", Type: "checking", Balance: decimal.Zero, CreatedAt: time.Now()}))

	seedTransaction(t, s, "tx-parent", "-30.00", models.TypeExpense)
	seedTransaction(t, s, "tx-child", "-12.00", models.TypeExpense)

	has, err := s.HasChildTransactions(ctx, "tx-parent")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, s.SetTransactionParent(ctx, "tx-child", "tx-parent"))

	has, err = s.HasChildTransactions(ctx, "tx-parent")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.HasChildTransactions(ctx, "tx-child")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestSplitTemplateReplaceMembers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedGroup(t, s)

	tpl := &models.SplitTemplate{
		ID: "t1", GroupID: "g1", Name: "Rent",
		Members: []models.SplitTemplateMember{
			{MemberID: "m1", Shares: decimal.RequireFromString("2")},
			{MemberID: "m2", Shares: decimal.RequireFromString("1")},
		},
	}
	require.NoError(t, s.CreateSplitTemplate(ctx, tpl))

	got, err := s.GetSplitTemplate(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, got.Members, 2)
	assert.Equal(t, "m1", got.Members[0].MemberID, "template member order is preserved")

	tpl.Members = []models.SplitTemplateMember{
		{MemberID: "m3", Shares: decimal.RequireFromString("1")},
	}
	require.NoError(t, s.UpdateSplitTemplate(ctx, tpl))

	got, err = s.GetSplitTemplate(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, got.Members, 1)
	assert.Equal(t, "m3", got.Members[0].MemberID)

	require.NoError(t, s.DeleteSplitTemplate(ctx, "t1"))
	_, err = s.GetSplitTemplate(ctx, "t1")
	assert.True(t, ledgererror.IsNotFound(err))
}

func TestImportBatchRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedGroup(t, s)

	batch := &models.ImportBatch{ID: "b1", GroupID: "g1", Label: "march.csv", RowCount: 12, CreatedBy: "user-1", CreatedAt: time.Now()}
	require.NoError(t, s.CreateImportBatch(ctx, batch))

	got, err := s.GetImportBatch(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.RowCount)

	require.NoError(t, s.DeleteImportBatch(ctx, "b1"))
	_, err = s.GetImportBatch(ctx, "b1")
	assert.True(t, ledgererror.IsNotFound(err))
}
