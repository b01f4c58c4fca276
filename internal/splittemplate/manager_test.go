package splittemplate

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupnest/ledger/internal/ledger"
	"groupnest/ledger/internal/ledgererror"
	"groupnest/ledger/internal/models"
	"groupnest/ledger/internal/permission"
	"groupnest/ledger/internal/store"
)

type fixture struct {
	store   *store.SQLiteStore
	ledger  *ledger.Ledger
	manager *Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Init(ctx))
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.CreateGroup(ctx, &models.Group{ID: "g1", Name: "Flat", Currency: "EUR", OwnerID: "user-owner", CreatedAt: time.Now()}))
	require.NoError(t, s.CreateMember(ctx, &models.Member{ID: "m-admin", GroupID: "g1", UserID: "user-admin", Name: "Admin", Role: models.RoleAdmin, CreatedAt: time.Now()}))
	require.NoError(t, s.CreateMember(ctx, &models.Member{ID: "m-plain", GroupID: "g1", UserID: "user-plain", Name: "Plain", Role: models.RoleMember, CreatedAt: time.Now()}))
	require.NoError(t, s.CreateMember(ctx, &models.Member{ID: "m-ghost", GroupID: "g1", Name: "Ghost", Role: models.RoleMember, CreatedAt: time.Now()}))
	require.NoError(t, s.CreateAccount(ctx, &models.Account{ID: "a1", GroupID: "g1", Name: "Joint", Type: "checking", Balance: decimal.Zero, IsDefault: true, CreatedAt: time.Now()}))

	gate := permission.NewGate(s)
	l := ledger.New(s, gate)
	return fixture{store: s, ledger: l, manager: NewManager(s, gate, l)}
}

func (f fixture) seedExpense(t *testing.T, amount string) *models.Transaction {
	t.Helper()
	tx, err := f.ledger.Create(context.Background(), "user-admin", ledger.TransactionInput{
		AccountID:     "a1",
		Date:          time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.RequireFromString(amount),
		Description:   "rent",
		Type:          models.TypeExpense,
		PaymentSource: models.SourceAccount,
	})
	require.NoError(t, err)
	return tx
}

func TestCreateRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.Create(ctx, "user-plain", "g1", "Rent", "", []MemberInput{
		{MemberID: "m-admin", Shares: decimal.NewFromInt(1)},
	})
	assert.True(t, ledgererror.IsAuthorization(err))

	tpl, err := f.manager.Create(ctx, "user-admin", "g1", "Rent", "monthly", []MemberInput{
		{MemberID: "m-admin", Shares: decimal.NewFromInt(2)},
		{MemberID: "m-plain", Shares: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)
	assert.Len(t, tpl.Members, 2)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.Create(ctx, "user-admin", "g1", "", "", nil)
	assert.True(t, ledgererror.IsValidation(err))

	_, err = f.manager.Create(ctx, "user-admin", "g1", "Rent", "", []MemberInput{
		{MemberID: "m-admin", Shares: decimal.NewFromInt(1)},
		{MemberID: "m-admin", Shares: decimal.NewFromInt(2)},
	})
	assert.True(t, ledgererror.IsValidation(err), "duplicate members rejected")

	_, err = f.manager.Create(ctx, "user-admin", "g1", "Rent", "", []MemberInput{
		{MemberID: "m-admin", Shares: decimal.NewFromInt(-1)},
	})
	assert.True(t, ledgererror.IsValidation(err), "negative shares rejected")
}

func TestUpdateReplacesMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.manager.Create(ctx, "user-admin", "g1", "Rent", "", []MemberInput{
		{MemberID: "m-admin", Shares: decimal.NewFromInt(1)},
		{MemberID: "m-plain", Shares: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)

	updated, err := f.manager.Update(ctx, "user-admin", tpl.ID, "Rent 2025", "", []MemberInput{
		{MemberID: "m-ghost", Shares: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rent 2025", updated.Name)
	require.Len(t, updated.Members, 1)
	assert.Equal(t, "m-ghost", updated.Members[0].MemberID)
}

func TestApplyToTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.seedExpense(t, "-90.00")

	tpl, err := f.manager.Create(ctx, "user-admin", "g1", "Rent", "", []MemberInput{
		{MemberID: "m-plain", Shares: decimal.NewFromInt(2)},
		{MemberID: "m-admin", Shares: decimal.NewFromInt(1)},
		{MemberID: "m-ghost", Shares: decimal.Zero}, // explicit non-participation
	})
	require.NoError(t, err)

	require.NoError(t, f.manager.ApplyToTransaction(ctx, "user-admin", tx.ID, tpl.ID, tx.Amount))

	allocations, err := f.store.ListAllocations(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, allocations, 2, "zero-share member gets no allocation row")

	byMember := map[string]string{}
	sum := decimal.Zero
	for _, a := range allocations {
		byMember[a.MemberID] = a.Amount.StringFixed(2)
		sum = sum.Add(a.Amount)
	}
	assert.Equal(t, "-60.00", byMember["m-plain"])
	assert.Equal(t, "-30.00", byMember["m-admin"])
	assert.NotContains(t, byMember, "m-ghost")
	assert.True(t, sum.Equal(tx.Amount))
}

func TestApplyAllZeroSharesFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.seedExpense(t, "-50.00")

	tpl, err := f.manager.Create(ctx, "user-admin", "g1", "Nobody", "", []MemberInput{
		{MemberID: "m-admin", Shares: decimal.Zero},
		{MemberID: "m-plain", Shares: decimal.Zero},
	})
	require.NoError(t, err)

	err = f.manager.ApplyToTransaction(ctx, "user-admin", tx.ID, tpl.ID, tx.Amount)
	assert.True(t, ledgererror.IsValidation(err))

	allocations, listErr := f.store.ListAllocations(ctx, tx.ID)
	require.NoError(t, listErr)
	assert.Empty(t, allocations, "failed apply leaves no allocation rows")
}

func TestApplyForeignGroupTemplate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.seedExpense(t, "-30.00")

	require.NoError(t, f.store.CreateGroup(ctx, &models.Group{ID: "g2", Name: "Other", Currency: "EUR", OwnerID: "user-other", CreatedAt: time.Now()}))
	require.NoError(t, f.store.CreateMember(ctx, &models.Member{ID: "m-g2", GroupID: "g2", UserID: "user-other", Name: "Other", Role: models.RoleAdmin, CreatedAt: time.Now()}))
	require.NoError(t, f.store.CreateSplitTemplate(ctx, &models.SplitTemplate{
		ID: "tpl-g2", GroupID: "g2", Name: "Theirs",
		Members: []models.SplitTemplateMember{{MemberID: "m-g2", Shares: decimal.NewFromInt(1)}},
	}))

	err := f.manager.ApplyToTransaction(ctx, "user-admin", tx.ID, "tpl-g2", tx.Amount)
	assert.True(t, ledgererror.IsNotFound(err), "another group's template is invisible")

	allocations, listErr := f.store.ListAllocations(ctx, tx.ID)
	require.NoError(t, listErr)
	assert.Empty(t, allocations, "no rows for members of the foreign group")
}

func TestApplyMissingTemplate(t *testing.T) {
	f := newFixture(t)
	tx := f.seedExpense(t, "-10.00")

	err := f.manager.ApplyToTransaction(context.Background(), "user-admin", tx.ID, "t-missing", tx.Amount)
	assert.True(t, ledgererror.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.manager.Create(ctx, "user-admin", "g1", "Rent", "", []MemberInput{
		{MemberID: "m-admin", Shares: decimal.NewFromInt(1)},
	})
	require.NoError(t, err)

	err = f.manager.Delete(ctx, "user-plain", tpl.ID)
	assert.True(t, ledgererror.IsAuthorization(err))

	require.NoError(t, f.manager.Delete(ctx, "user-admin", tpl.ID))
	templates, err := f.manager.List(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, templates)
}
