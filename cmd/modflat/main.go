package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gabssanto/modflat/internal/logging"
	"github.com/gabssanto/modflat/internal/migrate"
)

// Version is set at build time via ldflags
var Version = "dev"

// cli holds the flag values and the logger shared by all commands
type cli struct {
	config      migrate.Config
	dryRun      bool
	interactive bool
	reportPath  string
	journalPath string
	verbose     bool
	quiet       bool
	jsonLogs    bool

	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "modflat [flags] <target>",
		Short: "Flatten foo/mod.rs modules into foo.rs",
		Long: `modflat moves every foo/mod.rs below <target> to foo.rs next to the
foo directory, then deletes foo if nothing else is left in it.

Modules directly inside a directory named tests are left alone unless
--no-special-treatment-for-tests-dir is given.

Files are copied and then deleted, so an interrupted run can leave both
copies behind. An existing foo.rs is overwritten.`,
		Example: `  modflat ./my-crate                 Flatten all modules in my-crate
  modflat --dry-run ./my-crate       Show what would move
  modflat -i ./my-crate              Pick modules interactively
  modflat --report out.yaml .        Write a YAML report of the run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(logging.Options{Verbose: c.verbose, Quiet: c.quiet, JSON: c.jsonLogs})
			if err != nil {
				return err
			}
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.logger.Sync()
		},
		RunE: c.handleMigrate,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.config.FollowSymlinks, "follow-symlinks", "f", false,
		"follow symlinks as if they were directories (symlink cycles are not detected)")
	pf.BoolVarP(&c.config.NoSpecialTreatmentForTestsDir, "no-special-treatment-for-tests-dir", "n", false,
		"also flatten modules directly inside directories named tests")
	pf.StringVar(&c.journalPath, "journal", "", "SQLite journal file to record runs in")
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "log every directory listed and every file moved")
	pf.BoolVarP(&c.quiet, "quiet", "q", false, "only print errors")
	pf.BoolVar(&c.jsonLogs, "log-json", false, "write logs as JSON lines")

	f := root.Flags()
	f.BoolVarP(&c.config.LeaveEmptyDirs, "leave-empty-dirs", "l", false,
		"keep directories that end up empty after their mod.rs moved")
	f.BoolVar(&c.dryRun, "dry-run", false, "show what would be moved without changing anything")
	f.BoolVarP(&c.interactive, "interactive", "i", false, "choose which modules to flatten")
	f.StringVar(&c.reportPath, "report", "", "write a YAML report of the run to this file")

	root.AddCommand(
		c.newScanCmd(),
		c.newHistoryCmd(),
		newCompletionsCmd(root),
		newVersionCmd(),
	)

	return root
}
