// Package initdb handles database initialization and group bootstrap
package initdb

import (
	"context"

	"github.com/spf13/cobra"

	"groupnest/ledger/cmd/root"
	"groupnest/ledger/internal/group"
	"groupnest/ledger/internal/permission"
)

var (
	groupName   string
	currency    string
	ownerName   string
	accountName string
)

// Cmd represents the initdb command
var Cmd = &cobra.Command{
	Use:   "initdb",
	Short: "Initialize the ledger database",
	Long: `Initialize the ledger database: create the schema and, when a group
name is given, bootstrap a first group with its admin member and default
account.`,
	Run: initdbFunc,
}

func init() {
	Cmd.Flags().StringVar(&groupName, "group-name", "", "Bootstrap a group with this name")
	Cmd.Flags().StringVar(&currency, "currency", "CHF", "Currency for the bootstrapped group")
	Cmd.Flags().StringVar(&ownerName, "owner-name", "", "Display name for the owner member")
	Cmd.Flags().StringVar(&accountName, "account-name", "", "Name for the default account")
}

func initdbFunc(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	s, err := root.OpenStore()
	if err != nil {
		root.Log.Fatalf("Error opening database: %v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			root.Log.Warnf("Failed to close database: %v", err)
		}
	}()

	if err := s.Init(ctx); err != nil {
		root.Log.Fatalf("Error initializing schema: %v", err)
	}
	root.Log.Info("Database schema initialized")

	if groupName == "" {
		return
	}
	if root.SharedFlags.User == "" {
		root.Log.Fatal("Bootstrapping a group requires --user (the owner)")
	}

	svc := group.NewService(s, permission.NewGate(s))
	grp, err := svc.CreateGroup(ctx, group.CreateGroupInput{
		Name:        groupName,
		Currency:    currency,
		OwnerUserID: root.SharedFlags.User,
		OwnerName:   ownerName,
		AccountName: accountName,
	})
	if err != nil {
		root.Log.Fatalf("Error creating group: %v", err)
	}
	root.Log.Infof("Created group %s (%s)", grp.Name, grp.ID)
}
