// Package root contains the root command for the application
package root

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"groupnest/ledger/internal/config"
	"groupnest/ledger/internal/group"
	"groupnest/ledger/internal/importer"
	"groupnest/ledger/internal/ledger"
	"groupnest/ledger/internal/logging"
	"groupnest/ledger/internal/orphan"
	"groupnest/ledger/internal/permission"
	"groupnest/ledger/internal/splittemplate"
	"groupnest/ledger/internal/statement"
	"groupnest/ledger/internal/store"
)

// CommonFlags represents the flags shared by multiple commands
type CommonFlags struct {
	Group string
	User  string
}

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cfg is the loaded application configuration
	Cfg *config.Config

	// SharedFlags are common flags accessible to all commands
	SharedFlags = CommonFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "groupnest-ledger",
		Short: "A shared-expense ledger for groups: accounts, splits, imports and approvals.",
		Long: `groupnest-ledger keeps a group's shared finances in one SQLite ledger.
It records transactions with per-member allocations, imports bank statements
(CSV and CAMT.053) as undoable batches, and links stray card expenses to the
settlement that paid for them.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to groupnest-ledger!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.Fatalf("Invalid configuration: %v", err)
			}
			Cfg = cfg

			Log = config.ConfigureLoggingFromConfig(cfg)
			logging.SetAllLogLevels(Log.GetLevel())

			// Fan the configured logger out to every package
			store.SetLogger(Log)
			permission.SetLogger(Log)
			ledger.SetLogger(Log)
			splittemplate.SetLogger(Log)
			orphan.SetLogger(Log)
			importer.SetLogger(Log)
			statement.SetLogger(Log)
			group.SetLogger(Log)

			if delim := cfg.Statement.CSVDelimiter; delim != "" && delim != "," {
				Log.WithField("delimiter", delim).Debug("Setting CSV delimiter from configuration")
				statement.SetDelimiter([]rune(delim)[0])
			}
		},
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Group, "group", "g", "", "Group id")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.User, "user", "u", "", "Acting user id")
}

// OpenStore opens the configured SQLite database.
func OpenStore() (*store.SQLiteStore, error) {
	path := "ledger.db"
	if Cfg != nil && Cfg.Database.Path != "" {
		path = Cfg.Database.Path
	}
	return store.Open(path)
}
