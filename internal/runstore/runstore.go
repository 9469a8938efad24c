// Package runstore keeps a SQLite history of pipeline runs.
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/YuminosukeSato/scorecast/metrics"
	"github.com/YuminosukeSato/scorecast/pkg/errors"
)

// ErrNotFound is returned when no run matches a lookup.
var ErrNotFound = errors.New("run not found")

// Run is one recorded pipeline execution.
type Run struct {
	ID          string
	CreatedAt   time.Time
	ModelKind   string
	Degree      int
	Fingerprint string
	DataPath    string
	Features    []string
	Target      string
	TrainRows   int
	TestRows    int
	Metrics     metrics.Report
	ModelPath   string
}

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and initialises the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create run store directory")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open run store")
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "connect to run store")
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize run store schema")
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		model_kind TEXT NOT NULL,
		degree INTEGER NOT NULL DEFAULT 0,
		fingerprint TEXT NOT NULL,
		data_path TEXT NOT NULL,
		features TEXT NOT NULL,
		target TEXT NOT NULL,
		train_rows INTEGER NOT NULL,
		test_rows INTEGER NOT NULL,
		mae REAL NOT NULL,
		mse REAL NOT NULL,
		rmse REAL NOT NULL,
		r2 REAL NOT NULL,
		model_path TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_kind_created ON runs(model_kind, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save inserts a run.
func (s *Store) Save(ctx context.Context, r Run) error {
	features, err := json.Marshal(r.Features)
	if err != nil {
		return errors.Wrap(err, "encode features")
	}

	query := `
		INSERT INTO runs (id, created_at, model_kind, degree, fingerprint, data_path, features, target,
			train_rows, test_rows, mae, mse, rmse, r2, model_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var modelPath any
	if r.ModelPath != "" {
		modelPath = r.ModelPath
	}
	_, err = s.db.ExecContext(ctx, query,
		r.ID, r.CreatedAt.UTC(), r.ModelKind, r.Degree, r.Fingerprint, r.DataPath, string(features), r.Target,
		r.TrainRows, r.TestRows, r.Metrics.MAE, r.Metrics.MSE, r.Metrics.RMSE, r.Metrics.R2, modelPath,
	)
	if err != nil {
		return errors.Wrapf(err, "save run %s", r.ID)
	}
	return nil
}

const selectColumns = `id, created_at, model_kind, degree, fingerprint, data_path, features, target,
	train_rows, test_rows, mae, mse, rmse, r2, model_path`

// Get returns the run with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// Latest returns the most recent run of the given model kind. When
// fingerprint is non-empty only runs over that dataset are considered.
func (s *Store) Latest(ctx context.Context, kind, fingerprint string) (*Run, error) {
	query := `SELECT ` + selectColumns + ` FROM runs WHERE model_kind = ?`
	args := []any{kind}
	if fingerprint != "" {
		query += ` AND fingerprint = ?`
		args = append(args, fingerprint)
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT 1`
	return scanRun(s.db.QueryRowContext(ctx, query, args...))
}

// List returns up to limit runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, errors.Wrap(rows.Err(), "list runs")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r         Run
		features  string
		modelPath sql.NullString
	)
	err := sc.Scan(&r.ID, &r.CreatedAt, &r.ModelKind, &r.Degree, &r.Fingerprint, &r.DataPath, &features, &r.Target,
		&r.TrainRows, &r.TestRows, &r.Metrics.MAE, &r.Metrics.MSE, &r.Metrics.RMSE, &r.Metrics.R2, &modelPath)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "scan run")
	}
	if err := json.Unmarshal([]byte(features), &r.Features); err != nil {
		return nil, errors.Wrap(err, "decode features")
	}
	r.ModelPath = modelPath.String
	return &r, nil
}
