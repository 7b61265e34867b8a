package main

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gabssanto/modflat/internal/completions"
	"github.com/gabssanto/modflat/internal/db"
	"github.com/gabssanto/modflat/internal/fsys"
	"github.com/gabssanto/modflat/internal/journal"
	"github.com/gabssanto/modflat/internal/migrate"
	"github.com/gabssanto/modflat/internal/scan"
)

func (c *cli) handleMigrate(cmd *cobra.Command, args []string) error {
	opts := scan.Options{
		Root:        args[0],
		Config:      c.config,
		DryRun:      c.dryRun,
		Interactive: c.interactive,
		ReportPath:  c.reportPath,
		JournalPath: c.journalPath,
		Out:         cmd.OutOrStdout(),
	}
	if !c.quiet {
		opts.Progress = cmd.ErrOrStderr()
	}

	_, err := scan.Run(opts, c.logger)
	return err
}

func (c *cli) newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <target>",
		Short: "List mod.rs files without moving anything",
		Long: `Prints the path of every mod.rs below <target>, one per line, in
discovery order. The order is not sorted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := scan.ResolveRoot(args[0])
			if err != nil {
				return err
			}

			markers, err := migrate.NewScanner(fsys.NewOSFS(), c.config, migrate.WithLogger(c.logger)).Scan(root)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, m := range markers {
				fmt.Fprintln(out, m)
			}
			return nil
		},
	}
}

func (c *cli) newHistoryCmd() *cobra.Command {
	history := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show runs recorded in a journal",
		Long: `Without arguments, lists the runs recorded in the --journal file, newest
first. With a run id, lists what happened to each mod.rs in that run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.openJournal(); err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if len(args) == 1 {
				runID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid run id: %s", args[0])
				}
				return showMoves(cmd, runID)
			}
			return showRuns(cmd)
		},
	}

	var keep int
	var dryRun bool
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs from a journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.openJournal(); err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			result, err := journal.Prune(keep, dryRun)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.RemovedCount == 0 {
				fmt.Fprintln(out, "Nothing to prune.")
				return nil
			}
			if dryRun {
				fmt.Fprintf(out, "Would remove %d run(s): %v\n", result.RemovedCount, result.RemovedRuns)
			} else {
				fmt.Fprintf(out, "Removed %d run(s): %v\n", result.RemovedCount, result.RemovedRuns)
			}
			return nil
		},
	}
	prune.Flags().IntVar(&keep, "keep", 10, "number of newest runs to keep")
	prune.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "show what would be removed")

	history.AddCommand(prune)
	return history
}

func (c *cli) openJournal() error {
	if c.journalPath == "" {
		return fmt.Errorf("no journal given, use --journal <file>")
	}
	if err := db.InitDB(c.journalPath); err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	return nil
}

func showRuns(cmd *cobra.Command) error {
	runs, err := journal.ListRuns()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	for _, r := range runs {
		status := "ok"
		switch {
		case r.FinishedAt.IsZero():
			status = "unfinished"
		case r.Error != "":
			status = "failed: " + r.Error
		}
		fmt.Fprintf(out, "%4d  %s  %-40s  %d files  %s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Root, r.MoveCount, status)
	}
	fmt.Fprintf(out, "\nTotal: %d runs\n", len(runs))
	return nil
}

func showMoves(cmd *cobra.Command, runID int64) error {
	moves, err := journal.ListMoves(runID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(moves) == 0 {
		fmt.Fprintf(out, "Run %d moved nothing.\n", runID)
		return nil
	}

	for _, m := range moves {
		switch m.Action {
		case migrate.ActionSkipTestsDir:
			fmt.Fprintf(out, "  kept   %s\n", m.Marker)
		default:
			suffix := ""
			if m.DirRemoved {
				suffix = " (directory removed)"
			}
			fmt.Fprintf(out, "  moved  %s -> %s%s\n", m.Marker, m.Destination, suffix)
		}
	}
	return nil
}

func newCompletionsCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:       "completions <shell>",
		Short:     "Generate shell completions (bash/zsh/fish/powershell)",
		Long:      "Add to your shell profile, e.g. for bash: eval \"$(modflat completions bash)\"",
		Args:      cobra.ExactArgs(1),
		ValidArgs: completions.Shells,
		RunE: func(cmd *cobra.Command, args []string) error {
			return completions.Generate(root, args[0], cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "modflat version %s (%s/%s, %s)\n",
				Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
		},
	}
}
