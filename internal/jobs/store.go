package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the job registry. It is the single piece of mutable shared
// state in the system; see the package comment for the consistency
// model.
type Store struct {
	db *sql.DB
}

// Open initializes an in-memory store and applies the schema.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection: the database is connection-private and every
	// operation is serialized through it.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a job with one pending FileEntry per name, in order.
// It fails with ErrDuplicateJob when the id is taken and with
// ErrDuplicateFileName when a name repeats within the submission.
func (s *Store) Create(ctx context.Context, id string, fileNames []string) (*Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("job id required")
	}
	if len(fileNames) == 0 {
		return nil, errors.New("job requires at least one file")
	}
	seen := make(map[string]struct{}, len(fileNames))
	for _, name := range fileNames {
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("file name required")
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFileName, name)
		}
		seen[name] = struct{}{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM jobs WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check job id: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateJob, id)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO jobs (id, status, created_at) VALUES (?, ?, ?)`,
		id, StatusPending, now.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	for i, name := range fileNames {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO job_files (job_id, position, name, status) VALUES (?, ?, ?, ?)`,
			id, i, name, FilePending,
		); err != nil {
			return nil, fmt.Errorf("insert job file %q: %w", name, err)
		}
	}

	job, err := getJobTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}
	return job, nil
}

// Get returns a consistent snapshot of the job and its files.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin get: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	job, err := getJobTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit get: %w", err)
	}
	return job, nil
}

// List returns snapshots of every job, newest first, optionally filtered
// by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin list: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `SELECT id FROM jobs`
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += ` WHERE status IN (` + strings.Join(placeholders, ", ") + `)`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*Job, 0, len(ids))
	for _, id := range ids {
		job, err := getJobTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit list: %w", err)
	}
	return out, nil
}

// Delete removes the job and its file rows. Deleting an absent job is
// not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	return nil
}

// UpdateFile merges the given fields into the named FileEntry and
// recomputes the job's aggregate counters in the same transaction.
//
// A missing job or file name is a no-op: an update racing a deletion
// must not resurrect state, and a caller bug must not crash the store.
func (s *Store) UpdateFile(ctx context.Context, jobID, name string, update FileUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin file update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	sets := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if update.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *update.Status)
	}
	if update.PackageDir != nil {
		sets = append(sets, "package_dir = ?")
		args = append(args, *update.PackageDir)
	}
	if update.SegmentCount != nil {
		sets = append(sets, "segment_count = ?")
		args = append(args, *update.SegmentCount)
	}
	if update.ErrorMessage != nil {
		sets = append(sets, "error_message = ?")
		args = append(args, *update.ErrorMessage)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, jobID, name)

	res, err := tx.ExecContext(ctx,
		`UPDATE job_files SET `+strings.Join(sets, ", ")+` WHERE job_id = ? AND name = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("update job file: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job file: %w", err)
	}
	if affected == 0 {
		return nil
	}

	if err := recountTx(ctx, tx, jobID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit file update: %w", err)
	}
	return nil
}

// MarkProcessing moves a pending job into processing. Jobs already past
// pending are left untouched.
func (s *Store) MarkProcessing(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ? WHERE id = ? AND status = ?`,
		StatusProcessing, id, StatusPending,
	); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	return nil
}

// Finish settles the job into a terminal status, recording the
// completion time and, for success states, the archive path. Terminal
// states are final: finishing an already-finished or deleted job is a
// no-op.
func (s *Store) Finish(ctx context.Context, id string, status Status, archivePath, errorMessage string) error {
	if !status.Terminal() {
		return fmt.Errorf("finish requires a terminal status, got %q", status)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, completed_at = ?, archive_path = ?, error_message = ?
         WHERE id = ? AND status IN (?, ?)`,
		status, now, archivePath, errorMessage, id, StatusPending, StatusProcessing,
	); err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// Sweep deletes every job created before the cutoff and returns their
// final snapshots so the caller can remove on-disk artifacts and cancel
// in-flight work. Age is measured from creation, regardless of status.
func (s *Store) Sweep(ctx context.Context, maxAge time.Duration) ([]*Job, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin sweep: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx, `SELECT id, created_at FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("sweep scan: %w", err)
	}
	var expired []string
	for rows.Next() {
		var id, createdAt string
		if err := rows.Scan(&id, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("parse created_at for %s: %w", id, err)
		}
		if created.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	removed := make([]*Job, 0, len(expired))
	for _, id := range expired {
		job, err := getJobTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("sweep delete %s: %w", id, err)
		}
		removed = append(removed, job)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit sweep: %w", err)
	}
	return removed, nil
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// recountTx recomputes aggregate counters from file rows. Counters are
// never incremented in place, so they cannot drift from the per-file
// statuses.
func recountTx(ctx context.Context, tx *sql.Tx, jobID string) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE jobs SET
            completed_files = (SELECT COUNT(1) FROM job_files WHERE job_id = ?1 AND status = ?2),
            failed_files    = (SELECT COUNT(1) FROM job_files WHERE job_id = ?1 AND status = ?3)
         WHERE id = ?1`,
		jobID, FileCompleted, FileFailed,
	); err != nil {
		return fmt.Errorf("recount job %s: %w", jobID, err)
	}
	return nil
}

func getJobTx(ctx context.Context, tx *sql.Tx, id string) (*Job, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, status, created_at, completed_at, completed_files, failed_files, archive_path, error_message
         FROM jobs WHERE id = ?`, id)

	var job Job
	var createdAt string
	var completedAt sql.NullString
	if err := row.Scan(&job.ID, &job.Status, &createdAt, &completedAt,
		&job.CompletedFiles, &job.FailedFiles, &job.ArchivePath, &job.ErrorMessage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}

	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	job.CreatedAt = created
	if completedAt.Valid && completedAt.String != "" {
		completed, err := time.Parse(time.RFC3339Nano, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		job.CompletedAt = &completed
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT name, status, package_dir, segment_count, error_message
         FROM job_files WHERE job_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("scan job files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry FileEntry
		if err := rows.Scan(&entry.Name, &entry.Status, &entry.PackageDir,
			&entry.SegmentCount, &entry.ErrorMessage); err != nil {
			return nil, err
		}
		job.Files = append(job.Files, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &job, nil
}
