// Package permission resolves what an acting user may do inside a group.
// The gate is read-only: it answers capability questions and never writes.
// Every mutating service consults it before touching the store.
package permission

import (
	"context"

	"github.com/sirupsen/logrus"

	"groupnest/ledger/internal/models"
	"groupnest/ledger/internal/store"
)

var log = logrus.New()

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Gate answers the two capability questions the engine needs: group-wide
// admin rights and per-account manager rights. Any missing linkage (group,
// account or member not found) is a uniform "false" rather than an error,
// so callers treat false as the single denial signal.
type Gate struct {
	store store.Store
}

// NewGate builds a gate over the given store.
func NewGate(s store.Store) *Gate {
	return &Gate{store: s}
}

// IsGroupAdmin reports whether userID owns the group or is a member with
// the admin role.
func (g *Gate) IsGroupAdmin(ctx context.Context, groupID, userID string) bool {
	if userID == "" {
		return false
	}
	group, err := g.store.GetGroup(ctx, groupID)
	if err != nil {
		log.WithFields(logrus.Fields{"group": groupID, "user": userID}).
			Debug("Admin check: group lookup failed, denying")
		return false
	}
	if group.OwnerID == userID {
		return true
	}
	member, err := g.store.GetMemberByUser(ctx, groupID, userID)
	if err != nil {
		return false
	}
	return member.Role == models.RoleAdmin
}

// CanManageAccount reports whether userID is a group admin for the
// account's group, or has an explicit account-manager grant on it.
func (g *Gate) CanManageAccount(ctx context.Context, accountID, userID string) bool {
	if userID == "" {
		return false
	}
	account, err := g.store.GetAccount(ctx, accountID)
	if err != nil {
		log.WithFields(logrus.Fields{"account": accountID, "user": userID}).
			Debug("Manager check: account lookup failed, denying")
		return false
	}
	if g.IsGroupAdmin(ctx, account.GroupID, userID) {
		return true
	}
	member, err := g.store.GetMemberByUser(ctx, account.GroupID, userID)
	if err != nil {
		return false
	}
	ok, err := g.store.IsAccountManager(ctx, accountID, member.ID)
	if err != nil {
		return false
	}
	return ok
}
