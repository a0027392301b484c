package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/san-kum/waddington/internal/logging"
)

// DBName is the ledger file created inside the data directory.
const DBName = "runs.db"

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var ErrNotFound = errors.New("storage: run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              TEXT PRIMARY KEY,
	created_at      TEXT NOT NULL,
	source          TEXT NOT NULL,
	mode            TEXT NOT NULL,
	width           REAL NOT NULL,
	depth           REAL NOT NULL,
	noise           REAL NOT NULL,
	quartic         REAL NOT NULL,
	dt              REAL NOT NULL,
	steps           INTEGER NOT NULL,
	seed            INTEGER NOT NULL,
	start_json      TEXT NOT NULL,
	mean_deviation  REAL NOT NULL,
	max_excursion   REAL NOT NULL,
	band            TEXT NOT NULL,
	diverged        INTEGER NOT NULL,
	interpretation  TEXT,
	metrics_json    TEXT
);

CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

// Record is the summary of one saved run. Trajectories are not stored.
type Record struct {
	ID             string             `json:"id"`
	CreatedAt      time.Time          `json:"created_at"`
	Source         string             `json:"source"`
	Mode           string             `json:"mode"`
	Width          float64            `json:"width"`
	Depth          float64            `json:"depth"`
	Noise          float64            `json:"noise"`
	Quartic        float64            `json:"quartic"`
	Dt             float64            `json:"dt"`
	Steps          int                `json:"steps"`
	Seed           int64              `json:"seed"`
	Start          []float64          `json:"start"`
	MeanDeviation  float64            `json:"mean_deviation"`
	MaxExcursion   float64            `json:"max_excursion"`
	Band           string             `json:"band"`
	Diverged       bool               `json:"diverged"`
	Interpretation string             `json:"interpretation,omitempty"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

// Store is the run ledger, backed by SQLite.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates dir if needed and opens the ledger inside it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return OpenFile(filepath.Join(dir, DBName))
}

func OpenFile(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, log: logging.New("storage")}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts rec, filling in ID and CreatedAt when empty, and returns the id.
func (s *Store) Save(rec Record) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	startJSON, err := json.Marshal(rec.Start)
	if err != nil {
		return "", fmt.Errorf("marshal start: %w", err)
	}
	var metricsJSON sql.NullString
	if len(rec.Metrics) > 0 {
		b, err := json.Marshal(rec.Metrics)
		if err != nil {
			return "", fmt.Errorf("marshal metrics: %w", err)
		}
		metricsJSON = sql.NullString{String: string(b), Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, created_at, source, mode, width, depth, noise, quartic, dt, steps, seed,
		 start_json, mean_deviation, max_excursion, band, diverged, interpretation, metrics_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(timeLayout), rec.Source, rec.Mode,
		rec.Width, rec.Depth, rec.Noise, rec.Quartic, rec.Dt, rec.Steps, rec.Seed,
		string(startJSON), rec.MeanDeviation, rec.MaxExcursion, rec.Band, rec.Diverged,
		rec.Interpretation, metricsJSON,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	s.log.Debug("run saved", "id", rec.ID, "band", rec.Band)
	return rec.ID, nil
}

const selectCols = `SELECT id, created_at, source, mode, width, depth, noise, quartic, dt, steps, seed,
	start_json, mean_deviation, max_excursion, band, diverged, interpretation, metrics_json FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	var created, startJSON string
	var interp, metricsJSON sql.NullString

	err := row.Scan(&rec.ID, &created, &rec.Source, &rec.Mode, &rec.Width, &rec.Depth, &rec.Noise,
		&rec.Quartic, &rec.Dt, &rec.Steps, &rec.Seed, &startJSON, &rec.MeanDeviation,
		&rec.MaxExcursion, &rec.Band, &rec.Diverged, &interp, &metricsJSON)
	if err != nil {
		return Record{}, err
	}

	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	if err := json.Unmarshal([]byte(startJSON), &rec.Start); err != nil {
		return Record{}, fmt.Errorf("unmarshal start: %w", err)
	}
	if interp.Valid {
		rec.Interpretation = interp.String
	}
	if metricsJSON.Valid {
		if err := json.Unmarshal([]byte(metricsJSON.String), &rec.Metrics); err != nil {
			return Record{}, fmt.Errorf("unmarshal metrics: %w", err)
		}
	}
	return rec, nil
}

func (s *Store) Load(id string) (Record, error) {
	rec, err := scanRecord(s.db.QueryRow(selectCols+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load run %s: %w", id, err)
	}
	return rec, nil
}

// List returns the most recent runs first. A limit <= 0 returns all.
func (s *Store) List(limit int) ([]Record, error) {
	query := selectCols + ` ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
