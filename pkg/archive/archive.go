// Package archive persists finished optimization runs to SQLite so they can
// be listed and inspected later. Only the CLI writes here; the optimization
// loop itself keeps no state between runs.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/promptopt-go/pkg/core"
	errs "github.com/XiaoConstantine/promptopt-go/pkg/errors"
	"github.com/XiaoConstantine/promptopt-go/pkg/optimizer"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	task TEXT NOT NULL,
	context TEXT NOT NULL,
	rounds INTEGER NOT NULL,
	cancelled INTEGER NOT NULL,
	best_prompt TEXT NOT NULL,
	best_output TEXT NOT NULL,
	report TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_rounds (
	run_id TEXT NOT NULL REFERENCES runs(id),
	round INTEGER NOT NULL,
	winner_name TEXT NOT NULL,
	decisive INTEGER NOT NULL,
	record TEXT NOT NULL,
	PRIMARY KEY (run_id, round)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Archive stores finished runs in a SQLite database.
type Archive struct {
	db *sql.DB
}

// RunSummary is one row of List output.
type RunSummary struct {
	ID         string
	Task       string
	Rounds     int
	Cancelled  bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// Run is a stored run with its full round history.
type Run struct {
	RunSummary
	Context    string
	BestPrompt string
	BestOutput string
	Report     string
	History    []core.RoundRecord
}

// Open opens (creating if needed) the archive database at path and ensures
// the schema exists.
func Open(path string) (*Archive, error) {
	if path == "" {
		return nil, errs.New(errs.InvalidInput, "archive path must not be empty")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errs.WithFields(
			errs.Wrap(err, errs.ArchiveFailed, "failed to open archive database"),
			errs.Fields{"path": path})
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errs.WithFields(
			errs.Wrap(err, errs.ArchiveFailed, "failed to enable WAL mode"),
			errs.Fields{"path": path})
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errs.Wrap(err, errs.ArchiveFailed, "failed to initialize archive schema")
	}

	return &Archive{db: db}, nil
}

// Save stores a finished run and its rendered report. Saving the same run ID
// again replaces the stored rows.
func (a *Archive) Save(ctx context.Context, result *optimizer.RunResult, report string) error {
	if result == nil {
		return errs.New(errs.InvalidInput, "result must not be nil")
	}

	var bestPrompt, bestOutput string
	if final, ok := result.FinalRound(); ok {
		best := final.BestResult()
		bestPrompt = best.PromptSent
		bestOutput = best.OutputText
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(err, errs.ArchiveFailed, "failed to begin transaction")
	}

	var committed bool
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, task, context, rounds, cancelled, best_prompt, best_output, report, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.RunID, result.Task, result.Context, len(result.History), result.Cancelled,
		bestPrompt, bestOutput, report, result.StartedAt.UnixNano(), result.FinishedAt.UnixNano())
	if err != nil {
		return errs.WithFields(
			errs.Wrap(err, errs.ArchiveFailed, "failed to insert run"),
			errs.Fields{"run_id": result.RunID})
	}

	// Drop rounds from any earlier save of this run so a shorter history
	// does not leave stale rows behind.
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_rounds WHERE run_id = ?`, result.RunID); err != nil {
		return errs.WithFields(
			errs.Wrap(err, errs.ArchiveFailed, "failed to clear prior rounds"),
			errs.Fields{"run_id": result.RunID})
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO run_rounds (run_id, round, winner_name, decisive, record)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return errs.Wrap(err, errs.ArchiveFailed, "failed to prepare round statement")
	}
	defer stmt.Close()

	for _, record := range result.History {
		encoded, err := json.Marshal(record)
		if err != nil {
			return errs.WithFields(
				errs.Wrap(err, errs.ArchiveFailed, "failed to encode round record"),
				errs.Fields{"run_id": result.RunID, "round": record.Round})
		}
		winner := record.BestResult()
		if _, err := stmt.ExecContext(ctx, result.RunID, record.Round, winner.VariantName,
			record.Verdict.PromptWasDecisive, string(encoded)); err != nil {
			return errs.WithFields(
				errs.Wrap(err, errs.ArchiveFailed, "failed to insert round"),
				errs.Fields{"run_id": result.RunID, "round": record.Round})
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.Wrap(err, errs.ArchiveFailed, "failed to commit run")
	}
	committed = true

	return nil
}

// List returns summaries of all stored runs, newest first.
func (a *Archive) List(ctx context.Context) ([]RunSummary, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, task, rounds, cancelled, started_at, finished_at
		FROM runs ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, errs.Wrap(err, errs.ArchiveFailed, "failed to list runs")
	}
	defer rows.Close()

	summaries := make([]RunSummary, 0)
	for rows.Next() {
		var s RunSummary
		var startedAt, finishedAt int64
		if err := rows.Scan(&s.ID, &s.Task, &s.Rounds, &s.Cancelled, &startedAt, &finishedAt); err != nil {
			return nil, errs.Wrap(err, errs.ArchiveFailed, "failed to scan run summary")
		}
		s.StartedAt = time.Unix(0, startedAt)
		s.FinishedAt = time.Unix(0, finishedAt)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.ArchiveFailed, "failed to read run summaries")
	}

	return summaries, nil
}

// Get loads a stored run by ID, including its round history.
func (a *Archive) Get(ctx context.Context, runID string) (*Run, error) {
	var run Run
	var startedAt, finishedAt int64

	err := a.db.QueryRowContext(ctx, `
		SELECT id, task, context, rounds, cancelled, best_prompt, best_output, report, started_at, finished_at
		FROM runs WHERE id = ?
	`, runID).Scan(&run.ID, &run.Task, &run.Context, &run.Rounds, &run.Cancelled,
		&run.BestPrompt, &run.BestOutput, &run.Report, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, errs.WithFields(
			errs.New(errs.ArchiveFailed, "run not found"),
			errs.Fields{"run_id": runID})
	}
	if err != nil {
		return nil, errs.Wrap(err, errs.ArchiveFailed, "failed to load run")
	}
	run.StartedAt = time.Unix(0, startedAt)
	run.FinishedAt = time.Unix(0, finishedAt)

	rows, err := a.db.QueryContext(ctx, `SELECT record FROM run_rounds WHERE run_id = ? ORDER BY round`, runID)
	if err != nil {
		return nil, errs.Wrap(err, errs.ArchiveFailed, "failed to load rounds")
	}
	defer rows.Close()

	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, errs.Wrap(err, errs.ArchiveFailed, "failed to scan round")
		}
		var record core.RoundRecord
		if err := json.Unmarshal([]byte(encoded), &record); err != nil {
			return nil, errs.WithFields(
				errs.Wrap(err, errs.ArchiveFailed, "failed to decode round record"),
				errs.Fields{"run_id": runID})
		}
		run.History = append(run.History, record)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, errs.ArchiveFailed, "failed to read rounds")
	}

	return &run, nil
}

// Close releases the underlying database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}
