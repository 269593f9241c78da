package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"sitehours/report"

	_ "modernc.org/sqlite"
)

// Timestamps are stored as fixed-width UTC text so lexical order equals time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite caps bound parameters per statement; lookups are chunked below it.
const lookupChunkSize = 500

type SQLiteStore struct {
	db *sql.DB
}

var (
	ErrReportNotFound = errors.New("report not found")
	ErrInvalidReport  = errors.New("invalid report")
)

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS sites (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS workers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	position TEXT NOT NULL DEFAULT '',
	hourly_rate REAL NOT NULL DEFAULT 0 CHECK(hourly_rate >= 0),
	updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	occurred_at TEXT NOT NULL,
	site_id TEXT NOT NULL DEFAULT '',
	site_name TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	hours REAL NOT NULL CHECK(hours >= 0),
	media_ref TEXT NOT NULL DEFAULT '',
	transcript TEXT NOT NULL DEFAULT '',
	comment TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_reports_occurred_at ON reports(occurred_at);
CREATE INDEX IF NOT EXISTS idx_reports_site_occurred_at ON reports(site_id, occurred_at);

CREATE TABLE IF NOT EXISTS report_workers (
	report_id TEXT NOT NULL,
	worker_id TEXT NOT NULL,
	worker_name TEXT NOT NULL DEFAULT '',
	ordinal INTEGER NOT NULL,
	PRIMARY KEY (report_id, worker_id)
);

CREATE INDEX IF NOT EXISTS idx_report_workers_worker ON report_workers(worker_id, report_id);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// FindByWorkerAndRange returns every report crediting workerID with a
// timestamp in [from, to), ordered by timestamp then id.
func (s *SQLiteStore) FindByWorkerAndRange(ctx context.Context, workerID string, from, to time.Time) ([]report.Record, error) {
	const query = `
SELECT
	r.id,
	r.occurred_at,
	r.site_id,
	r.site_name,
	r.description,
	r.hours,
	r.media_ref,
	r.transcript,
	r.comment,
	rw.worker_id,
	rw.worker_name
FROM reports r
LEFT JOIN report_workers rw ON rw.report_id = r.id
WHERE r.occurred_at >= ? AND r.occurred_at < ?
	AND EXISTS (
		SELECT 1 FROM report_workers own
		WHERE own.report_id = r.id AND own.worker_id = ?
	)
ORDER BY r.occurred_at, r.id, rw.ordinal;
`
	records, err := s.queryReports(ctx, query, formatTimestamp(from), formatTimestamp(to), workerID)
	if err != nil {
		return nil, fmt.Errorf("query reports for worker %s: %w", workerID, err)
	}
	return records, nil
}

// FindBySiteAndRange returns every report tagged with siteID with a timestamp
// in [from, to), ordered by timestamp then id. Reports without workers are
// included.
func (s *SQLiteStore) FindBySiteAndRange(ctx context.Context, siteID string, from, to time.Time) ([]report.Record, error) {
	const query = `
SELECT
	r.id,
	r.occurred_at,
	r.site_id,
	COALESCE(NULLIF(r.site_name, ''), s.name, ''),
	r.description,
	r.hours,
	r.media_ref,
	r.transcript,
	r.comment,
	rw.worker_id,
	rw.worker_name
FROM reports r
LEFT JOIN sites s ON s.id = r.site_id
LEFT JOIN report_workers rw ON rw.report_id = r.id
WHERE r.site_id = ? AND r.occurred_at >= ? AND r.occurred_at < ?
ORDER BY r.occurred_at, r.id, rw.ordinal;
`
	if strings.TrimSpace(siteID) == "" {
		return []report.Record{}, nil
	}
	records, err := s.queryReports(ctx, query, siteID, formatTimestamp(from), formatTimestamp(to))
	if err != nil {
		return nil, fmt.Errorf("query reports for site %s: %w", siteID, err)
	}
	return records, nil
}

// queryReports folds one row per (report, worker) into records. Rows of one
// report must be adjacent.
func (s *SQLiteStore) queryReports(ctx context.Context, query string, args ...any) ([]report.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]report.Record, 0, 64)
	for rows.Next() {
		var (
			record     report.Record
			occurred   string
			workerID   sql.NullString
			workerName sql.NullString
		)
		if err := rows.Scan(
			&record.ID,
			&occurred,
			&record.SiteID,
			&record.SiteName,
			&record.Description,
			&record.Hours,
			&record.MediaRef,
			&record.Transcript,
			&record.Comment,
			&workerID,
			&workerName,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}

		if n := len(records); n == 0 || records[n-1].ID != record.ID {
			record.Timestamp, err = parseTimestamp(occurred)
			if err != nil {
				return nil, err
			}
			record.Workers = []report.Worker{}
			records = append(records, record)
		}
		if workerID.Valid {
			last := &records[len(records)-1]
			last.Workers = append(last.Workers, report.Worker{ID: workerID.String, Name: workerName.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}

	return records, nil
}

// LookupWorkers resolves directory profiles for ids. Unknown ids are absent
// from the result.
func (s *SQLiteStore) LookupWorkers(ctx context.Context, ids []string) (map[string]report.Profile, error) {
	out := make(map[string]report.Profile, len(ids))
	for start := 0; start < len(ids); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(ids))
		chunk := ids[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		query := `SELECT id, name, position, hourly_rate FROM workers WHERE id IN (` + placeholders + `);`
		args := make([]any, 0, len(chunk))
		for _, id := range chunk {
			args = append(args, id)
		}

		if err := s.scanProfiles(ctx, out, query, args...); err != nil {
			return nil, fmt.Errorf("lookup workers: %w", err)
		}
	}
	return out, nil
}

// ListWorkers returns the whole directory ordered by name.
func (s *SQLiteStore) ListWorkers(ctx context.Context) ([]report.Profile, error) {
	const query = `SELECT id, name, position, hourly_rate FROM workers ORDER BY name, id;`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query workers: %w", err)
	}
	defer rows.Close()

	profiles := make([]report.Profile, 0, 32)
	for rows.Next() {
		var profile report.Profile
		if err := rows.Scan(&profile.WorkerID, &profile.Name, &profile.Position, &profile.HourlyRate); err != nil {
			return nil, fmt.Errorf("scan worker: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workers: %w", err)
	}
	return profiles, nil
}

func (s *SQLiteStore) scanProfiles(ctx context.Context, out map[string]report.Profile, query string, args ...any) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var profile report.Profile
		if err := rows.Scan(&profile.WorkerID, &profile.Name, &profile.Position, &profile.HourlyRate); err != nil {
			return fmt.Errorf("scan worker: %w", err)
		}
		out[profile.WorkerID] = profile
	}
	return rows.Err()
}

// UpsertWorker inserts or replaces one directory entry.
func (s *SQLiteStore) UpsertWorker(ctx context.Context, profile report.Profile) error {
	if strings.TrimSpace(profile.WorkerID) == "" {
		return fmt.Errorf("worker id is required")
	}
	if profile.HourlyRate < 0 {
		return fmt.Errorf("hourly rate must be >= 0")
	}

	const upsertStmt = `
INSERT INTO workers (id, name, position, hourly_rate, updated_at)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
	name = excluded.name,
	position = excluded.position,
	hourly_rate = excluded.hourly_rate,
	updated_at = CURRENT_TIMESTAMP;`

	if _, err := s.db.ExecContext(ctx, upsertStmt, profile.WorkerID, profile.Name, profile.Position, profile.HourlyRate); err != nil {
		return fmt.Errorf("upsert worker %s: %w", profile.WorkerID, err)
	}
	return nil
}

// UpsertSite inserts or renames one site.
func (s *SQLiteStore) UpsertSite(ctx context.Context, site report.Site) error {
	if strings.TrimSpace(site.ID) == "" {
		return fmt.Errorf("site id is required")
	}

	const upsertStmt = `
INSERT INTO sites (id, name) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET name = excluded.name;`

	if _, err := s.db.ExecContext(ctx, upsertStmt, site.ID, site.Name); err != nil {
		return fmt.Errorf("upsert site %s: %w", site.ID, err)
	}
	return nil
}

// GetSite returns one site by id.
func (s *SQLiteStore) GetSite(ctx context.Context, id string) (report.Site, bool, error) {
	var site report.Site
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM sites WHERE id = ?;`, id).Scan(&site.ID, &site.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return report.Site{}, false, nil
		}
		return report.Site{}, false, fmt.Errorf("query site %s: %w", id, err)
	}
	return site, true, nil
}

// InsertReports stores records with their worker lists. Records whose id
// already exists are ignored. The returned count is the number of new reports.
func (s *SQLiteStore) InsertReports(ctx context.Context, records []report.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	const insertReport = `
INSERT OR IGNORE INTO reports (
	id,
	occurred_at,
	site_id,
	site_name,
	description,
	hours,
	media_ref,
	transcript,
	comment
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`

	const insertWorker = `
INSERT OR IGNORE INTO report_workers (report_id, worker_id, worker_name, ordinal)
VALUES (?, ?, ?, ?);`

	reportStmt, err := tx.PrepareContext(ctx, insertReport)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare report insert: %w", err)
	}
	defer reportStmt.Close()

	workerStmt, err := tx.PrepareContext(ctx, insertWorker)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare report worker insert: %w", err)
	}
	defer workerStmt.Close()

	inserted := 0
	for _, record := range records {
		if err := validateRecord(record); err != nil {
			_ = tx.Rollback()
			return 0, err
		}

		res, err := reportStmt.ExecContext(ctx,
			record.ID,
			formatTimestamp(record.Timestamp),
			record.SiteID,
			record.SiteName,
			record.Description,
			record.Hours,
			record.MediaRef,
			record.Transcript,
			record.Comment,
		)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert report %s: %w", record.ID, err)
		}
		rows, err := res.RowsAffected()
		if err != nil || rows == 0 {
			continue
		}
		inserted++

		for ordinal, worker := range record.Workers {
			if _, err := workerStmt.ExecContext(ctx, record.ID, worker.ID, worker.Name, ordinal); err != nil {
				_ = tx.Rollback()
				return 0, fmt.Errorf("insert worker %s for report %s: %w", worker.ID, record.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return inserted, nil
}

// DeleteReport removes one report and its worker links.
func (s *SQLiteStore) DeleteReport(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM report_workers WHERE report_id = ?;`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete report workers %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE id = ?;`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("read deleted row count: %w", err)
	}
	if rows == 0 {
		_ = tx.Rollback()
		return ErrReportNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteAllReports(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM report_workers;`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete report workers: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM reports;`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("delete reports: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("read deleted row count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return rows, nil
}

func validateRecord(record report.Record) error {
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidReport)
	}
	if record.Timestamp.IsZero() {
		return fmt.Errorf("%w: report %s has no timestamp", ErrInvalidReport, record.ID)
	}
	if record.Hours < 0 {
		return fmt.Errorf("%w: report %s has negative hours", ErrInvalidReport, record.ID)
	}
	return nil
}

func formatTimestamp(value time.Time) string {
	return value.UTC().Format(timestampLayout)
}

func parseTimestamp(raw string) (time.Time, error) {
	parsed, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	return parsed, nil
}
