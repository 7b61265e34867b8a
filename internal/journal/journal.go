package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gabssanto/modflat/internal/db"
	"github.com/gabssanto/modflat/internal/migrate"
)

// Run is a recorded migration run
type Run struct {
	ID         int64
	Root       string
	Config     migrate.Config
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time // zero if the run never finished
	MoveCount  int
}

// MoveRecord is a recorded marker outcome
type MoveRecord struct {
	Marker      string
	Destination string
	Action      migrate.Action
	DirRemoved  bool
	CreatedAt   time.Time
}

// PruneResult holds the result of a prune operation
type PruneResult struct {
	RemovedRuns  []int64
	RemovedCount int
}

func getDB() (*sql.DB, error) {
	database := db.GetDB()
	if database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return database, nil
}

// StartRun records the start of a run and returns its id
func StartRun(root string, cfg migrate.Config) (int64, error) {
	database, err := getDB()
	if err != nil {
		return 0, err
	}

	result, err := database.Exec(`
		INSERT INTO runs (root, follow_symlinks, leave_empty_dirs, no_tests_exemption, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, root, cfg.FollowSymlinks, cfg.LeaveEmptyDirs, cfg.NoSpecialTreatmentForTestsDir, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}
	return runID, nil
}

// RecordMove records what happened to one marker during a run
func RecordMove(runID int64, m migrate.Move) error {
	database, err := getDB()
	if err != nil {
		return err
	}

	_, err = database.Exec(`
		INSERT INTO moves (run_id, marker, destination, action, dir_removed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, m.Marker, m.Destination, string(m.Action), m.DirRemoved, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to insert move: %w", err)
	}
	return nil
}

// FinishRun marks a run as finished, storing runErr if it failed
func FinishRun(runID int64, runErr error) error {
	database, err := getDB()
	if err != nil {
		return err
	}

	message := ""
	if runErr != nil {
		message = runErr.Error()
	}

	result, err := database.Exec("UPDATE runs SET error = ?, finished_at = ? WHERE id = ?",
		message, time.Now().Unix(), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %d", runID)
	}
	return nil
}

// ListRuns returns all runs, newest first
func ListRuns() ([]Run, error) {
	database, err := getDB()
	if err != nil {
		return nil, err
	}

	rows, err := database.Query(`
		SELECT r.id, r.root, r.follow_symlinks, r.leave_empty_dirs, r.no_tests_exemption,
			r.error, r.started_at, r.finished_at, COUNT(m.id)
		FROM runs r
		LEFT JOIN moves m ON m.run_id = r.id
		GROUP BY r.id
		ORDER BY r.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  int64
			finished sql.NullInt64
		)
		if err := rows.Scan(&run.ID, &run.Root, &run.Config.FollowSymlinks, &run.Config.LeaveEmptyDirs,
			&run.Config.NoSpecialTreatmentForTestsDir, &run.Error, &started, &finished, &run.MoveCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt = time.Unix(started, 0)
		if finished.Valid {
			run.FinishedAt = time.Unix(finished.Int64, 0)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ListMoves returns the moves recorded for a run in the order they happened
func ListMoves(runID int64) ([]MoveRecord, error) {
	database, err := getDB()
	if err != nil {
		return nil, err
	}

	var exists int
	if err := database.QueryRow("SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("run not found: %d", runID)
	}

	rows, err := database.Query(`
		SELECT marker, destination, action, dir_removed, created_at
		FROM moves
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query moves: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var moves []MoveRecord
	for rows.Next() {
		var (
			m       MoveRecord
			action  string
			created int64
		)
		if err := rows.Scan(&m.Marker, &m.Destination, &action, &m.DirRemoved, &created); err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		m.Action = migrate.Action(action)
		m.CreatedAt = time.Unix(created, 0)
		moves = append(moves, m)
	}

	return moves, rows.Err()
}

// Prune removes all but the newest keep runs. Their moves go with them.
func Prune(keep int, dryRun bool) (*PruneResult, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative: %d", keep)
	}

	database, err := getDB()
	if err != nil {
		return nil, err
	}

	rows, err := database.Query("SELECT id FROM runs ORDER BY id DESC LIMIT -1 OFFSET ?", keep)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	var toRemove []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		toRemove = append(toRemove, id)
	}
	_ = rows.Close()

	result := &PruneResult{
		RemovedRuns: make([]int64, 0, len(toRemove)),
	}

	if dryRun {
		result.RemovedRuns = append(result.RemovedRuns, toRemove...)
		result.RemovedCount = len(toRemove)
		return result, nil
	}

	for _, id := range toRemove {
		if _, err := database.Exec("DELETE FROM runs WHERE id = ?", id); err != nil {
			return nil, fmt.Errorf("failed to delete run %d: %w", id, err)
		}
		result.RemovedRuns = append(result.RemovedRuns, id)
	}
	result.RemovedCount = len(toRemove)

	return result, nil
}
