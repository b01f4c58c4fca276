// Package importcmd handles bank statement import commands
package importcmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"groupnest/ledger/cmd/root"
	"groupnest/ledger/internal/importer"
	"groupnest/ledger/internal/permission"
	"groupnest/ledger/internal/statement"
)

var (
	inputFile string
	label     string
	undoBatch string
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import a bank statement into the group's default account",
	Long: `Import a bank statement (CSV or CAMT.053 XML) into the group's default
account as one batch. Every row lands approved with its type inferred from
the amount sign. A batch can be undone again with --undo.`,
	Run: importFunc,
}

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Statement file to import")
	Cmd.Flags().StringVarP(&label, "label", "l", "", "Label for the batch (defaults to the file name)")
	Cmd.Flags().StringVar(&undoBatch, "undo", "", "Undo the batch with this id instead of importing")
}

func importFunc(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	if root.SharedFlags.User == "" {
		root.Log.Fatal("Importing requires --user")
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

	imp := importer.New(s, permission.NewGate(s))

	if undoBatch != "" {
		if err := imp.UndoBatch(ctx, root.SharedFlags.User, undoBatch); err != nil {
			root.Log.Fatalf("Error undoing batch: %v", err)
		}
		root.Log.Infof("Undid import batch %s", undoBatch)
		return
	}

	if root.SharedFlags.Group == "" || inputFile == "" {
		root.Log.Fatal("Importing requires --group and --input")
	}

	rows, err := statement.ReadFile(inputFile)
	if err != nil {
		root.Log.Fatalf("Error reading statement: %v", err)
	}

	batchLabel := label
	if batchLabel == "" {
		batchLabel = filepath.Base(inputFile)
	}

	result, err := imp.Import(ctx, root.SharedFlags.User, root.SharedFlags.Group, batchLabel, rows)
	if err != nil {
		root.Log.Fatalf("Error importing statement: %v", err)
	}
	root.Log.Infof("Imported %d transactions as batch %s", result.Count, result.Batch.ID)
}
