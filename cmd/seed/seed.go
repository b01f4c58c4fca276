// Package seed handles category seeding from YAML files
package seed

import (
	"context"

	"github.com/spf13/cobra"

	"groupnest/ledger/cmd/root"
	"groupnest/ledger/internal/group"
	"groupnest/ledger/internal/permission"
)

var seedFile string

// Cmd represents the seed command
var Cmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a group's categories from a YAML file",
	Long: `Seed a group's categories from a YAML file. Categories already present
by name are skipped, so reseeding is safe.`,
	Run: seedFunc,
}

func init() {
	Cmd.Flags().StringVarP(&seedFile, "file", "f", "", "Category seed file (defaults to the configured one)")
}

func seedFunc(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	if root.SharedFlags.Group == "" || root.SharedFlags.User == "" {
		root.Log.Fatal("Seeding requires --group and --user")
	}

	path := seedFile
	if path == "" && root.Cfg != nil {
		path = root.Cfg.Categories.SeedFile
	}
	if path == "" {
		root.Log.Fatal("No seed file given and none configured")
	}

	s, err := root.OpenStore()
	if err != nil {
		root.Log.Fatalf("Error opening database: %v", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			root.Log.Warnf("Failed to close database: %v", err)
		}
	}()

	svc := group.NewService(s, permission.NewGate(s))
	created, err := svc.SeedCategories(ctx, root.SharedFlags.User, root.SharedFlags.Group, path)
	if err != nil {
		root.Log.Fatalf("Error seeding categories: %v", err)
	}
	root.Log.Infof("Seeded %d categories from %s", created, path)
}
