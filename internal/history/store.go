package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/imgfetcher/internal/model"
)

// DatabaseFile is the name of the history database inside its directory.
const DatabaseFile = "history.db"

var (
	// ErrRunNotFound is returned when no run with the requested ID exists.
	ErrRunNotFound = errors.New("run not found")

	// ErrNoHistory is returned by Open when the database does not exist
	// and CreateIfNotExists is false.
	ErrNoHistory = errors.New("no history database")
)

// Store provides SQLite-based storage for run history.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, DatabaseFile)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNoHistory, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the path of the database file.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		digest TEXT NOT NULL,
		output_dir TEXT NOT NULL,
		interrupted INTEGER NOT NULL DEFAULT 0,
		total INTEGER NOT NULL DEFAULT 0,
		saved INTEGER NOT NULL DEFAULT 0,
		saved_bytes INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		url TEXT NOT NULL,
		kind TEXT NOT NULL,
		filename TEXT,
		path TEXT,
		content_type TEXT,
		digest TEXT,
		size INTEGER,
		overwrote INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		metadata TEXT,
		UNIQUE(run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_run ON fetches(run_id);
	CREATE INDEX IF NOT EXISTS idx_fetches_digest ON fetches(digest);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is a stored run without its results.
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Digest      string
	OutputDir   string
	Interrupted bool
	Total       int
	Saved       int
	SavedBytes  int64
}

// FetchRecord is a stored per-URL result.
type FetchRecord struct {
	Position    int
	URL         string
	Kind        model.Kind
	Filename    string
	Path        string
	ContentType string
	Digest      string
	Size        int64
	Overwrote   bool
	Error       string
	Metadata    *model.ImageMetadata
}

// SaveRun stores run and all of its results in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *model.Run) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, started_at, finished_at, digest, output_dir, interrupted, total, saved, saved_bytes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		run.Digest,
		run.OutputDir,
		run.Interrupted,
		len(run.Results),
		run.Count(model.KindSaved),
		run.SavedBytes(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO fetches (run_id, position, url, kind, filename, path, content_type, digest, size, overwrote, error, metadata)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, res := range run.Results {
		var meta sql.NullString
		if res.Metadata != nil {
			data, mErr := json.Marshal(res.Metadata)
			if mErr != nil {
				return fmt.Errorf("failed to serialize metadata: %w", mErr)
			}
			meta = sql.NullString{String: string(data), Valid: true}
		}

		if _, err = stmt.ExecContext(ctx,
			run.ID,
			i,
			res.URL,
			res.Kind.String(),
			res.Filename,
			res.Path,
			res.ContentType,
			res.Digest,
			res.Size,
			res.Overwrote,
			res.Error,
			meta,
		); err != nil {
			return fmt.Errorf("failed to insert fetch %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
// A limit of zero or less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, started_at, finished_at, digest, output_dir, interrupted, total, saved, saved_bytes
	FROM runs
	ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *rec)
	}
	return runs, rows.Err()
}

// GetRun returns a single run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT id, started_at, finished_at, digest, output_dir, interrupted, total, saved, saved_bytes
	FROM runs
	WHERE id = ?`, id)

	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return rec, err
}

// GetRunFetches returns the results of a run in list order.
func (s *Store) GetRunFetches(ctx context.Context, runID string) ([]FetchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT position, url, kind, filename, path, content_type, digest, size, overwrote, error, metadata
	FROM fetches
	WHERE run_id = ?
	ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetches: %w", err)
	}
	defer rows.Close()

	var fetches []FetchRecord
	for rows.Next() {
		var (
			f                                            FetchRecord
			kind                                         string
			filename, path, contentType, digest, errText sql.NullString
			meta                                         sql.NullString
			size                                         sql.NullInt64
		)
		if err := rows.Scan(&f.Position, &f.URL, &kind, &filename, &path, &contentType, &digest, &size, &f.Overwrote, &errText, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan fetch: %w", err)
		}

		if f.Kind, err = model.ParseKind(kind); err != nil {
			return nil, err
		}
		f.Filename = filename.String
		f.Path = path.String
		f.ContentType = contentType.String
		f.Digest = digest.String
		f.Size = size.Int64
		f.Error = errText.String

		if meta.Valid && meta.String != "" {
			var m model.ImageMetadata
			if err := json.Unmarshal([]byte(meta.String), &m); err != nil {
				return nil, fmt.Errorf("failed to parse metadata: %w", err)
			}
			f.Metadata = &m
		}

		fetches = append(fetches, f)
	}
	return fetches, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*RunRecord, error) {
	var (
		rec               RunRecord
		started, finished sql.NullString
	)
	if err := sc.Scan(&rec.ID, &started, &finished, &rec.Digest, &rec.OutputDir,
		&rec.Interrupted, &rec.Total, &rec.Saved, &rec.SavedBytes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	rec.StartedAt = parseTimestamp(started.String)
	rec.FinishedAt = parseTimestamp(finished.String)
	return &rec, nil
}

// timestampLayout is fixed width so that stored times sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// formatTimestamp stores times in UTC.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
