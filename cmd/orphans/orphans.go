// Package orphans handles scanning and linking of unsettled card expenses
package orphans

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"groupnest/ledger/cmd/root"
	"groupnest/ledger/internal/orphan"
	"groupnest/ledger/internal/permission"
)

var (
	accountID string
	beforeStr string
	parentID  string
)

// Cmd represents the orphans command
var Cmd = &cobra.Command{
	Use:   "orphans",
	Short: "List unlinked expenses, or link them to a settlement",
	Long: `List the account's unlinked expenses dated on or before a cutoff, newest
first. With --parent the expenses given as arguments are linked to that
settlement transaction instead.`,
	Run: orphansFunc,
}

func init() {
	Cmd.Flags().StringVarP(&accountID, "account", "a", "", "Account to scan")
	Cmd.Flags().StringVar(&beforeStr, "before", "", "Cutoff date (YYYY-MM-DD, default today)")
	Cmd.Flags().StringVar(&parentID, "parent", "", "Link the given transaction ids to this parent")
}

func orphansFunc(cmd *cobra.Command, args []string) {
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

	linker := orphan.NewLinker(s, permission.NewGate(s))
	if root.Cfg != nil && root.Cfg.Orphan.ScanLimit > 0 {
		linker = orphan.NewLinkerWithLimit(s, permission.NewGate(s), root.Cfg.Orphan.ScanLimit)
	}

	if parentID != "" {
		if root.SharedFlags.User == "" {
			root.Log.Fatal("Linking requires --user")
		}
		if len(args) == 0 {
			root.Log.Fatal("Linking requires the orphan transaction ids as arguments")
		}
		linked, err := linker.LinkToParent(ctx, root.SharedFlags.User, args, parentID)
		if linked > 0 {
			root.Log.Infof("Linked %d of %d transactions to %s", linked, len(args), parentID)
		}
		if err != nil {
			root.Log.Fatalf("Error linking transactions: %v", err)
		}
		return
	}

	if root.SharedFlags.Group == "" || accountID == "" {
		root.Log.Fatal("Scanning requires --group and --account")
	}

	maxDate := time.Now().UTC()
	if beforeStr != "" {
		maxDate, err = time.Parse("2006-01-02", beforeStr)
		if err != nil {
			root.Log.Fatalf("Invalid --before date: %v", err)
		}
	}

	found, err := linker.FindOrphans(ctx, root.SharedFlags.Group, accountID, maxDate)
	if err != nil {
		root.Log.Fatalf("Error scanning for orphans: %v", err)
	}
	if len(found) == 0 {
		root.Log.Info("No unlinked expenses found")
		return
	}
	for _, tx := range found {
		root.Log.Infof("%s  %s  %s  %s", tx.ID, tx.Date.Format("2006-01-02"), tx.Amount.StringFixed(2), tx.Description)
	}
}
