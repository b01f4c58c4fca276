// Package group manages the structural entities the ledger engine runs
// on top of: groups with their members, accounts, account-manager grants
// and categories. Transaction-level behavior lives in the other packages;
// this one only sets the stage.
package group

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

// Service creates and maintains groups and their structure.
type Service struct {
	store store.Store
	gate  *permission.Gate
}

// NewService creates a group service backed by the given store.
func NewService(s store.Store, gate *permission.Gate) *Service {
	return &Service{store: s, gate: gate}
}

// CreateGroupInput carries what the creator chooses; everything else is
// bootstrapped with defaults.
type CreateGroupInput struct {
	Name        string
	Currency    string
	OwnerUserID string
	OwnerName   string
	AccountName string
}

// CreateGroup bootstraps a new group: the group row, an admin member for
// the creator, and a default account. If a later step fails the earlier
// rows are removed again so no half-built group is left behind.
func (s *Service) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.Group, error) {
	if in.Name == "" {
		return nil, &ledgererror.ValidationError{Field: "name", Reason: "group name is required"}
	}
	if in.OwnerUserID == "" {
		return nil, &ledgererror.ValidationError{Field: "owner_user_id", Reason: "group owner is required"}
	}
	if in.Currency == "" {
		in.Currency = "CHF"
	}
	if in.OwnerName == "" {
		in.OwnerName = in.OwnerUserID
	}
	if in.AccountName == "" {
		in.AccountName = "Main account"
	}

	now := time.Now().UTC()
	grp := &models.Group{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Currency:  in.Currency,
		OwnerID:   in.OwnerUserID,
		CreatedAt: now,
	}
	if err := s.store.CreateGroup(ctx, grp); err != nil {
		return nil, err
	}

	owner := &models.Member{
		ID:        uuid.New().String(),
		GroupID:   grp.ID,
		UserID:    in.OwnerUserID,
		Name:      in.OwnerName,
		Role:      models.RoleAdmin,
		CreatedAt: now,
	}
	if err := s.store.CreateMember(ctx, owner); err != nil {
		s.rollbackGroup(ctx, grp.ID)
		return nil, err
	}

	account := &models.Account{
		ID:                  uuid.New().String(),
		GroupID:             grp.ID,
		Name:                in.AccountName,
		Type:                "bank",
		ResponsibleMemberID: owner.ID,
		IsDefault:           true,
		CreatedAt:           now,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		s.rollbackGroup(ctx, grp.ID)
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"group": grp.ID,
		"name":  grp.Name,
	}).Info("Created group")
	return grp, nil
}

// rollbackGroup undoes a partially bootstrapped group. Best effort: the
// failure that triggered it is the error worth reporting.
func (s *Service) rollbackGroup(ctx context.Context, groupID string) {
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		log.WithError(err).WithField("group", groupID).Warn("Failed to roll back group bootstrap")
	}
}

// MemberInput describes a member to add. An empty UserID creates a ghost
// member that carries shares but cannot log in.
type MemberInput struct {
	UserID         string
	Name           string
	Role           models.MemberRole
	InitialBalance decimal.Decimal
}

// AddMember adds a member to the group. Admin only.
func (s *Service) AddMember(ctx context.Context, userID, groupID string, in MemberInput) (*models.Member, error) {
	if err := s.requireAdmin(ctx, groupID, userID, "add member"); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, &ledgererror.ValidationError{Field: "name", Reason: "member name is required"}
	}
	switch in.Role {
	case "":
		in.Role = models.RoleMember
	case models.RoleAdmin, models.RoleMember:
	default:
		return nil, &ledgererror.ValidationError{Field: "role", Reason: "unknown role: " + string(in.Role)}
	}
	if in.Role == models.RoleAdmin && in.UserID == "" {
		return nil, &ledgererror.ValidationError{Field: "role", Reason: "a ghost member cannot be an admin"}
	}

	member := &models.Member{
		ID:             uuid.New().String(),
		GroupID:        groupID,
		UserID:         in.UserID,
		Name:           in.Name,
		Role:           in.Role,
		InitialBalance: models.RoundAmount(in.InitialBalance),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// ListMembers returns all members of the group.
func (s *Service) ListMembers(ctx context.Context, groupID string) ([]models.Member, error) {
	return s.store.ListMembers(ctx, groupID)
}

// AccountInput describes an account to create. Balance is an opening
// balance, written once here and never updated afterwards.
type AccountInput struct {
	Name                string
	Type                string
	ResponsibleMemberID string
	Balance             decimal.Decimal
	IsDefault           bool
}

// AddAccount creates an account in the group. Admin only.
func (s *Service) AddAccount(ctx context.Context, userID, groupID string, in AccountInput) (*models.Account, error) {
	if err := s.requireAdmin(ctx, groupID, userID, "add account"); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, &ledgererror.ValidationError{Field: "name", Reason: "account name is required"}
	}
	if in.Type == "" {
		in.Type = "bank"
	}

	account := &models.Account{
		ID:                  uuid.New().String(),
		GroupID:             groupID,
		Name:                in.Name,
		Type:                in.Type,
		ResponsibleMemberID: in.ResponsibleMemberID,
		Balance:             models.RoundAmount(in.Balance),
		IsDefault:           in.IsDefault,
		CreatedAt:           time.Now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns all accounts of the group.
func (s *Service) ListAccounts(ctx context.Context, groupID string) ([]models.Account, error) {
	return s.store.ListAccounts(ctx, groupID)
}

// AssignAccountManager grants a member operating rights on an account.
// Admin only; assigning the same member twice is a conflict.
func (s *Service) AssignAccountManager(ctx context.Context, userID, accountID, memberID string) error {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, account.GroupID, userID, "assign account manager"); err != nil {
		return err
	}
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return err
	}
	if member.GroupID != account.GroupID {
		return &ledgererror.ValidationError{Field: "member_id", Reason: "member belongs to another group"}
	}
	return s.store.AddAccountManager(ctx, accountID, memberID)
}

// RemoveAccountManager revokes a member's operating rights on an account.
// Admin only.
func (s *Service) RemoveAccountManager(ctx context.Context, userID, accountID, memberID string) error {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.requireAdmin(ctx, account.GroupID, userID, "remove account manager"); err != nil {
		return err
	}
	return s.store.RemoveAccountManager(ctx, accountID, memberID)
}

// AddCategory creates a category in the group. Admin only.
func (s *Service) AddCategory(ctx context.Context, userID, groupID, name string, isLoan bool) (*models.Category, error) {
	if err := s.requireAdmin(ctx, groupID, userID, "add category"); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, &ledgererror.ValidationError{Field: "name", Reason: "category name is required"}
	}
	category := &models.Category{
		ID:      uuid.New().String(),
		GroupID: groupID,
		Name:    name,
		IsLoan:  isLoan,
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories returns all categories of the group.
func (s *Service) ListCategories(ctx context.Context, groupID string) ([]models.Category, error) {
	return s.store.ListCategories(ctx, groupID)
}

func (s *Service) requireAdmin(ctx context.Context, groupID, userID, operation string) error {
	if !s.gate.IsGroupAdmin(ctx, groupID, userID) {
		return &ledgererror.AuthorizationError{UserID: userID, Operation: operation}
	}
	return nil
}
