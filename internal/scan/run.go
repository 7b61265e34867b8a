package scan

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gabssanto/modflat/internal/db"
	"github.com/gabssanto/modflat/internal/fsys"
	"github.com/gabssanto/modflat/internal/journal"
	"github.com/gabssanto/modflat/internal/migrate"
)

// Run orchestrates the entire migration: scan, summary, optional selection,
// migration (or plan), journal and report
func Run(opts Options, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	root, err := ResolveRoot(opts.Root)
	if err != nil {
		return nil, err
	}

	fs := fsys.NewOSFS()
	prog := newProgress(opts.Progress)

	// Step 1: Scan for marker files
	fmt.Fprintf(out, "Scanning %s for %s files...\n\n", root, migrate.MarkerName)
	logger.Info("scanning", zap.String("root", root), zap.Bool("follow_symlinks", opts.Config.FollowSymlinks))

	markers, err := migrate.NewScanner(fs, opts.Config,
		migrate.WithLogger(logger), migrate.WithObserver(prog)).Scan(root)
	prog.finish()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	result := &Result{Root: root, Markers: markers, DryRun: opts.DryRun}

	if len(markers) == 0 {
		fmt.Fprintf(out, "No %s files found.\n", migrate.MarkerName)
		return result, writeReport(opts, result, nil)
	}

	migrator := migrate.NewMigrator(fs, opts.Config,
		migrate.WithLogger(logger), migrate.WithObserver(prog))

	// Step 2: Show summary
	planned, err := migrator.Plan(markers)
	if err != nil {
		return result, fmt.Errorf("migration failed: %w", err)
	}
	ShowScanSummary(out, root, planned)

	// Step 3: Interactive selection
	if opts.Interactive {
		markers, err = SelectMarkers(root, planned)
		if err != nil {
			return result, err
		}
		if len(markers) == 0 {
			fmt.Fprintln(out, "No modules selected. Nothing to migrate.")
			return result, writeReport(opts, result, nil)
		}
		planned, err = migrator.Plan(markers)
		if err != nil {
			return result, fmt.Errorf("migration failed: %w", err)
		}
	}

	if opts.DryRun {
		result.Moves = planned
		fmt.Fprintln(out, "Dry run: no files were changed.")
		return result, writeReport(opts, result, nil)
	}

	// Step 4: Migrate
	prog.total = len(markers)
	moves, runErr := migrator.Migrate(markers)
	prog.finish()
	result.Moves = moves
	if runErr != nil {
		runErr = fmt.Errorf("migration failed: %w", runErr)
		logger.Error("migration aborted", zap.Int("completed", len(moves)), zap.Error(runErr))
	}

	if err := recordJournal(opts, result, runErr); err != nil {
		if runErr != nil {
			logger.Error("failed to write journal", zap.Error(err))
			return result, runErr
		}
		return result, err
	}

	if err := writeReport(opts, result, runErr); err != nil {
		if runErr != nil {
			logger.Error("failed to write report", zap.Error(err))
			return result, runErr
		}
		return result, err
	}

	if runErr != nil {
		return result, runErr
	}

	moved, skipped, removed := result.Counts()
	fmt.Fprintf(out, "\nMoved %d modules (%d kept in %s/, %d empty directories removed).\n",
		moved, skipped, migrate.TestsDirName, removed)
	return result, nil
}

func writeReport(opts Options, result *Result, runErr error) error {
	if opts.ReportPath == "" {
		return nil
	}
	return WriteReport(opts.ReportPath, NewReport(result, opts.Config, runErr))
}

// recordJournal appends the run and its moves to the journal database
func recordJournal(opts Options, result *Result, runErr error) error {
	if opts.JournalPath == "" {
		return nil
	}

	if err := db.InitDB(opts.JournalPath); err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() { _ = db.Close() }()

	runID, err := journal.StartRun(result.Root, opts.Config)
	if err != nil {
		return err
	}
	for _, m := range result.Moves {
		if err := journal.RecordMove(runID, m); err != nil {
			return err
		}
	}
	if err := journal.FinishRun(runID, runErr); err != nil {
		return err
	}

	result.RunID = runID
	return nil
}
