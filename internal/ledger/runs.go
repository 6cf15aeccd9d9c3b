package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = `id, kind, source_ref, identifier, status, started_at, updated_at, error_message`

// StartRun inserts a new run with status "start" and returns its id. Ids are
// assigned by SQLite in strictly increasing insert order.
func (s *Store) StartRun(ctx context.Context, kind Kind, sourceRef, identifier string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO runs (kind, source_ref, identifier, status, started_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		kind,
		sourceRef,
		identifier,
		StatusStart,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// UpdateStatus rewrites a run's status and updated_at, plus the error message
// when one is supplied. Transition legality is the caller's responsibility.
func (s *Store) UpdateStatus(ctx context.Context, runID int64, status Status, errorMessage string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	var err error
	if errorMessage != "" {
		_, err = s.execWithRetry(
			ctx,
			`UPDATE runs SET status = ?, updated_at = ?, error_message = ? WHERE id = ?`,
			status, now, errorMessage, runID,
		)
	} else {
		_, err = s.execWithRetry(
			ctx,
			`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
			status, now, runID,
		)
	}
	if err != nil {
		return fmt.Errorf("update run %d: %w", runID, err)
	}
	return nil
}

// GetRun fetches a run by id, or nil when no such run exists.
func (s *Store) GetRun(ctx context.Context, runID int64) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// FailedRuns returns failed runs newest first. A non-positive limit returns
// all of them.
func (s *Store) FailedRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE status = ? ORDER BY started_at DESC, id DESC`
	args := []any{StatusFailed}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Stats aggregates run counts by status and by kind.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	stats := Stats{
		ByStatus: make(map[Status]int),
		ByKind:   make(map[Kind]int),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM runs GROUP BY status`)
	if err != nil {
		return Stats{}, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Stats{}, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	kindRows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM runs GROUP BY kind`)
	if err != nil {
		return Stats{}, fmt.Errorf("count by kind: %w", err)
	}
	defer kindRows.Close()
	for kindRows.Next() {
		var kind Kind
		var count int
		if err := kindRows.Scan(&kind, &count); err != nil {
			return Stats{}, fmt.Errorf("scan kind count: %w", err)
		}
		stats.ByKind[kind] = count
	}
	return stats, kindRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(scanner rowScanner) (*Run, error) {
	var (
		run        Run
		startedAt  string
		updatedAt  string
		errMessage sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Kind,
		&run.SourceRef,
		&run.Identifier,
		&run.Status,
		&startedAt,
		&updatedAt,
		&errMessage,
	); err != nil {
		return nil, err
	}

	var err error
	if run.StartedAt, err = parseTimestamp(startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	run.ErrorMessage = errMessage.String
	return &run, nil
}

func parseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
