// Package splittemplate manages reusable weighted-split definitions and
// their application to existing transactions.
package splittemplate

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"groupnest/ledger/internal/ledger"
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

// MemberInput is one member's weight in a template. Zero shares are
// allowed and record explicit non-participation.
type MemberInput struct {
	MemberID string
	Shares   decimal.Decimal
}

// Manager owns the split-template lifecycle. Template definitions are
// group-level configuration, so create/update/delete are admin-gated;
// applying one to a transaction needs manager rights on that
// transaction's account.
type Manager struct {
	store  store.Store
	gate   *permission.Gate
	ledger *ledger.Ledger
}

// NewManager builds a manager over the given collaborators.
func NewManager(s store.Store, gate *permission.Gate, l *ledger.Ledger) *Manager {
	return &Manager{store: s, gate: gate, ledger: l}
}

func validateMembers(members []MemberInput) ([]models.SplitTemplateMember, error) {
	if len(members) == 0 {
		return nil, &ledgererror.ValidationError{Field: "members", Reason: "template needs at least one member"}
	}
	out := make([]models.SplitTemplateMember, 0, len(members))
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m.MemberID == "" {
			return nil, &ledgererror.ValidationError{Field: "members", Reason: "member id is required"}
		}
		if seen[m.MemberID] {
			return nil, &ledgererror.ValidationError{Field: "members", Reason: "duplicate member: " + m.MemberID}
		}
		if m.Shares.IsNegative() {
			return nil, &ledgererror.ValidationError{Field: "shares", Reason: "shares must not be negative"}
		}
		seen[m.MemberID] = true
		out = append(out, models.SplitTemplateMember{MemberID: m.MemberID, Shares: m.Shares})
	}
	return out, nil
}

// Create stores a new template with its ordered member weights.
func (m *Manager) Create(ctx context.Context, userID, groupID, name, description string, members []MemberInput) (*models.SplitTemplate, error) {
	if !m.gate.IsGroupAdmin(ctx, groupID, userID) {
		return nil, &ledgererror.AuthorizationError{UserID: userID, Operation: "template create"}
	}
	if name == "" {
		return nil, &ledgererror.ValidationError{Field: "name", Reason: "required"}
	}
	templateMembers, err := validateMembers(members)
	if err != nil {
		return nil, err
	}

	template := &models.SplitTemplate{
		ID:          uuid.NewString(),
		GroupID:     groupID,
		Name:        name,
		Description: description,
		Members:     templateMembers,
	}
	if err := m.store.CreateSplitTemplate(ctx, template); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"template": template.ID, "members": len(templateMembers)}).
		Info("Split template created")
	return template, nil
}

// Update replaces the template's name, description and full member set,
// mirroring the ledger's replace-not-merge allocation strategy.
func (m *Manager) Update(ctx context.Context, userID, templateID, name, description string, members []MemberInput) (*models.SplitTemplate, error) {
	template, err := m.store.GetSplitTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !m.gate.IsGroupAdmin(ctx, template.GroupID, userID) {
		return nil, &ledgererror.AuthorizationError{UserID: userID, Operation: "template update"}
	}
	if name == "" {
		return nil, &ledgererror.ValidationError{Field: "name", Reason: "required"}
	}
	templateMembers, err := validateMembers(members)
	if err != nil {
		return nil, err
	}

	template.Name = name
	template.Description = description
	template.Members = templateMembers
	if err := m.store.UpdateSplitTemplate(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

// Delete removes a template. Transactions that were split with it keep
// their allocations; templates are an input, not a dependency.
func (m *Manager) Delete(ctx context.Context, userID, templateID string) error {
	template, err := m.store.GetSplitTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if !m.gate.IsGroupAdmin(ctx, template.GroupID, userID) {
		return &ledgererror.AuthorizationError{UserID: userID, Operation: "template delete"}
	}
	return m.store.DeleteSplitTemplate(ctx, templateID)
}

// List returns the group's templates.
func (m *Manager) List(ctx context.Context, groupID string) ([]models.SplitTemplate, error) {
	return m.store.ListSplitTemplates(ctx, groupID)
}

// ApplyToTransaction replaces the transaction's allocations with a
// weighted split taken from the template. Members with zero shares get no
// allocation row at all; their non-participation is recorded by omission.
// Template member order is preserved, so the template's first weighted
// member absorbs the rounding remainder. A template whose shares sum to
// zero is unusable and rejected, and a template from another group is
// treated as missing.
func (m *Manager) ApplyToTransaction(ctx context.Context, userID, transactionID, templateID string, totalAmount decimal.Decimal) error {
	template, err := m.store.GetSplitTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	tx, err := m.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return err
	}
	// Another group's template is invisible here, like its categories.
	if template.GroupID != tx.GroupID {
		return &ledgererror.NotFoundError{Entity: "split template", ID: templateID}
	}

	participants := make([]string, 0, len(template.Members))
	weights := make(map[string]decimal.Decimal, len(template.Members))
	for _, member := range template.Members {
		if member.Shares.IsZero() {
			continue
		}
		participants = append(participants, member.MemberID)
		weights[member.MemberID] = member.Shares
	}
	if len(participants) == 0 {
		return &ledgererror.ValidationError{Field: "template", Reason: "total shares across the template is zero"}
	}

	if err := m.ledger.ApplyWeightedSplit(ctx, userID, transactionID, totalAmount, participants, weights); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"template":    templateID,
		"transaction": transactionID,
		"members":     len(participants),
	}).Info("Split template applied")
	return nil
}
