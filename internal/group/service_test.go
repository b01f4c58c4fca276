package group

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groupnest/ledger/internal/ledgererror"
	"groupnest/ledger/internal/models"
	"groupnest/ledger/internal/permission"
	"groupnest/ledger/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Init(ctx))
	t.Cleanup(func() { _ = s.Close() })

	return NewService(s, permission.NewGate(s)), s
}

func seedGroup(t *testing.T, svc *Service) *models.Group {
	t.Helper()
	grp, err := svc.CreateGroup(context.Background(), CreateGroupInput{
		Name:        "Flat",
		Currency:    "EUR",
		OwnerUserID: "user-owner",
		OwnerName:   "Owner",
	})
	require.NoError(t, err)
	return grp
}

func TestCreateGroupBootstrap(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	grp := seedGroup(t, svc)
	assert.Equal(t, "EUR", grp.Currency)
	assert.Equal(t, "user-owner", grp.OwnerID)

	members, err := s.ListMembers(ctx, grp.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, models.RoleAdmin, members[0].Role)
	assert.Equal(t, "user-owner", members[0].UserID)

	account, err := s.DefaultAccount(ctx, grp.ID)
	require.NoError(t, err)
	assert.True(t, account.IsDefault)
	assert.Equal(t, members[0].ID, account.ResponsibleMemberID)
}

func TestCreateGroupValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateGroup(ctx, CreateGroupInput{OwnerUserID: "user-owner"})
	assert.True(t, ledgererror.IsValidation(err))

	_, err = svc.CreateGroup(ctx, CreateGroupInput{Name: "Flat"})
	assert.True(t, ledgererror.IsValidation(err))
}

func TestAddMember(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	grp := seedGroup(t, svc)

	member, err := svc.AddMember(ctx, "user-owner", grp.ID, MemberInput{
		UserID:         "user-anna",
		Name:           "Anna",
		InitialBalance: decimal.RequireFromString("10.005"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, member.Role)
	assert.Equal(t, "10.01", member.InitialBalance.StringFixed(2))

	ghost, err := svc.AddMember(ctx, "user-owner", grp.ID, MemberInput{Name: "Grandma"})
	require.NoError(t, err)
	assert.True(t, ghost.IsGhost())

	// ghost members cannot hold the admin role
	_, err = svc.AddMember(ctx, "user-owner", grp.ID, MemberInput{Name: "Boss", Role: models.RoleAdmin})
	assert.True(t, ledgererror.IsValidation(err))

	// non-admins cannot add members
	_, err = svc.AddMember(ctx, "user-anna", grp.ID, MemberInput{Name: "Uninvited"})
	assert.True(t, ledgererror.IsAuthorization(err))
}

func TestAddAccountWriteOnceBalance(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	grp := seedGroup(t, svc)

	account, err := svc.AddAccount(ctx, "user-owner", grp.ID, AccountInput{
		Name:    "Savings",
		Type:    "savings",
		Balance: decimal.RequireFromString("250.00"),
	})
	require.NoError(t, err)

	stored, err := s.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "250.00", stored.Balance.StringFixed(2))
	assert.False(t, stored.IsDefault)
}

func TestAccountManagerAssignment(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	grp := seedGroup(t, svc)

	member, err := svc.AddMember(ctx, "user-owner", grp.ID, MemberInput{UserID: "user-anna", Name: "Anna"})
	require.NoError(t, err)
	account, err := s.DefaultAccount(ctx, grp.ID)
	require.NoError(t, err)

	require.NoError(t, svc.AssignAccountManager(ctx, "user-owner", account.ID, member.ID))
	managing, err := s.IsAccountManager(ctx, account.ID, member.ID)
	require.NoError(t, err)
	assert.True(t, managing)

	// duplicate grant is a conflict
	err = svc.AssignAccountManager(ctx, "user-owner", account.ID, member.ID)
	assert.True(t, ledgererror.IsConflict(err))

	// member of another group is rejected
	other := seedGroupNamed(t, svc, "Other", "user-other")
	stranger, err := svc.AddMember(ctx, "user-other", other.ID, MemberInput{Name: "Stranger"})
	require.NoError(t, err)
	err = svc.AssignAccountManager(ctx, "user-owner", account.ID, stranger.ID)
	assert.True(t, ledgererror.IsValidation(err))

	require.NoError(t, svc.RemoveAccountManager(ctx, "user-owner", account.ID, member.ID))
	managing, err = s.IsAccountManager(ctx, account.ID, member.ID)
	require.NoError(t, err)
	assert.False(t, managing)
}

func seedGroupNamed(t *testing.T, svc *Service, name, owner string) *models.Group {
	t.Helper()
	grp, err := svc.CreateGroup(context.Background(), CreateGroupInput{Name: name, OwnerUserID: owner})
	require.NoError(t, err)
	return grp
}

func TestAddCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	grp := seedGroup(t, svc)

	category, err := svc.AddCategory(ctx, "user-owner", grp.ID, "Loans", true)
	require.NoError(t, err)
	assert.True(t, category.IsLoan)

	_, err = svc.AddCategory(ctx, "user-owner", grp.ID, "", false)
	assert.True(t, ledgererror.IsValidation(err))

	_, err = svc.AddCategory(ctx, "nobody", grp.ID, "Food", false)
	assert.True(t, ledgererror.IsAuthorization(err))
}

func TestSeedCategories(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	grp := seedGroup(t, svc)

	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"categories:\n"+
			"  - name: Groceries\n"+
			"  - name: Rent\n"+
			"  - name: Loans\n"+
			"    is_loan: true\n"), 0o644))

	created, err := svc.SeedCategories(ctx, "user-owner", grp.ID, path)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	categories, err := svc.ListCategories(ctx, grp.ID)
	require.NoError(t, err)
	require.Len(t, categories, 3)

	var loanCount int
	for _, c := range categories {
		if c.IsLoan {
			loanCount++
		}
	}
	assert.Equal(t, 1, loanCount)

	// reseeding skips what already exists
	created, err = svc.SeedCategories(ctx, "user-owner", grp.ID, path)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestLoadSeedCategoriesBareList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"- name: Groceries\n- name: Rent\n"), 0o644))

	seeds, err := LoadSeedCategories(path)
	require.NoError(t, err)
	assert.Len(t, seeds, 2)
}

func TestCreateGroupStampTime(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	before := time.Now().UTC().Add(-time.Minute)
	grp := seedGroup(t, svc)
	stored, err := s.GetGroup(ctx, grp.ID)
	require.NoError(t, err)
	assert.True(t, stored.CreatedAt.After(before))
}
