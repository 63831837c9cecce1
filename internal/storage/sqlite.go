// Package storage provides SQLite-based persistence for the local profile:
// the autosave slot, cross-session stats and the finished-run table.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/doomcycle/internal/core"
)

// ErrNotFound is returned when a profile has no saved record.
var ErrNotFound = errors.New("storage: not found")

const timestampLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for profile persistence.
type Store struct {
	db *sql.DB
}

// SaveEntry is a stored save record.
type SaveEntry struct {
	Profile string
	Version int
	Record  []byte
	SavedAt time.Time
}

// RunEntry is one row of the finished-run table.
type RunEntry struct {
	ID              int64
	RunID           string
	Profile         string
	DeviceID        string
	Outcome         core.Phase
	Months          int
	Budget          int64
	DoomLevel       float64
	ComplianceLevel float64
	CreatedAt       time.Time
}

// DeviceSummary aggregates the finished runs of one device.
type DeviceSummary struct {
	DeviceID   string
	Runs       int
	Wins       int
	BestMonths int
	AvgDoom    float64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS saves (
			profile TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			record BLOB NOT NULL,
			saved_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS stats (
			profile TEXT PRIMARY KEY,
			record BLOB NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL UNIQUE,
			profile TEXT NOT NULL,
			device_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			months INTEGER NOT NULL,
			budget INTEGER NOT NULL,
			doom_level REAL NOT NULL,
			compliance_level REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_profile ON runs(profile);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(months DESC, doom_level ASC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveGame writes the autosave slot of a profile, replacing any previous one.
func (s *Store) SaveGame(profile string, version int, record []byte, savedAt time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO saves (profile, version, record, saved_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(profile) DO UPDATE SET
		   version = excluded.version,
		   record = excluded.record,
		   saved_at = excluded.saved_at`,
		profile, version, record, formatTimestamp(savedAt),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save game: %w", err)
	}
	return nil
}

// LoadGame reads the autosave slot of a profile.
func (s *Store) LoadGame(profile string) (SaveEntry, error) {
	entry := SaveEntry{Profile: profile}
	var savedAt any
	err := s.db.QueryRow(
		"SELECT version, record, saved_at FROM saves WHERE profile = ?",
		profile,
	).Scan(&entry.Version, &entry.Record, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return SaveEntry{}, ErrNotFound
	}
	if err != nil {
		return SaveEntry{}, fmt.Errorf("storage: cannot load game: %w", err)
	}
	entry.SavedAt = parseTimestamp(savedAt)
	return entry, nil
}

// DeleteGame clears the autosave slot of a profile.
func (s *Store) DeleteGame(profile string) error {
	if _, err := s.db.Exec("DELETE FROM saves WHERE profile = ?", profile); err != nil {
		return fmt.Errorf("storage: cannot delete game: %w", err)
	}
	return nil
}

// SaveStats writes the cross-session stats of a profile.
func (s *Store) SaveStats(profile string, stats core.GameStats) error {
	record, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("storage: cannot encode stats: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO stats (profile, record, updated_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(profile) DO UPDATE SET
		   record = excluded.record,
		   updated_at = excluded.updated_at`,
		profile, record,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save stats: %w", err)
	}
	return nil
}

// LoadStats reads the cross-session stats of a profile. Collections are
// never nil in the result and duplicate ids are dropped.
func (s *Store) LoadStats(profile string) (core.GameStats, error) {
	var record []byte
	err := s.db.QueryRow("SELECT record FROM stats WHERE profile = ?", profile).Scan(&record)
	if errors.Is(err, sql.ErrNoRows) {
		return core.NewGameStats(), ErrNotFound
	}
	if err != nil {
		return core.NewGameStats(), fmt.Errorf("storage: cannot load stats: %w", err)
	}

	stats := core.NewGameStats()
	if err := json.Unmarshal(record, &stats); err != nil {
		return core.NewGameStats(), fmt.Errorf("storage: cannot decode stats: %w", err)
	}
	return stats.Normalized(), nil
}

// RecordRun inserts a finished run. A run id that is already stored is
// ignored and reported with inserted == false.
func (s *Store) RecordRun(profile string, run core.RunRecord) (inserted bool, err error) {
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO runs
		 (run_id, profile, device_id, outcome, months, budget, doom_level, compliance_level, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, profile, run.DeviceID, string(run.Outcome), run.Months,
		run.Budget, run.DoomLevel, run.ComplianceLevel, formatTimestamp(finished),
	)
	if err != nil {
		return false, fmt.Errorf("storage: cannot record run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	return n > 0, nil
}

// TopRuns returns the longest-lived runs, lowest doom first on ties.
// An empty profile returns runs of every profile.
func (s *Store) TopRuns(profile string, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, run_id, profile, device_id, outcome, months, budget, doom_level, compliance_level, created_at
		 FROM runs
		 WHERE ? = '' OR profile = ?
		 ORDER BY months DESC, doom_level ASC, id ASC
		 LIMIT ?`,
		profile, profile, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var outcome string
		var createdAt any
		if err := rows.Scan(&e.ID, &e.RunID, &e.Profile, &e.DeviceID, &outcome, &e.Months,
			&e.Budget, &e.DoomLevel, &e.ComplianceLevel, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Outcome = core.Phase(outcome)
		e.CreatedAt = parseTimestamp(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// DeviceSummaries aggregates finished runs per device, most played first.
// An empty profile aggregates every profile.
func (s *Store) DeviceSummaries(profile string) ([]DeviceSummary, error) {
	rows, err := s.db.Query(
		`SELECT device_id, COUNT(*),
		        SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
		        MAX(months), AVG(doom_level), MAX(created_at)
		 FROM runs
		 WHERE ? = '' OR profile = ?
		 GROUP BY device_id
		 ORDER BY COUNT(*) DESC, device_id ASC`,
		string(core.PhaseVictory), profile, profile,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get device summaries: %w", err)
	}
	defer rows.Close()

	var out []DeviceSummary
	for rows.Next() {
		var d DeviceSummary
		var lastPlayed any
		if err := rows.Scan(&d.DeviceID, &d.Runs, &d.Wins, &d.BestMonths, &d.AvgDoom, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan summary row: %w", err)
		}
		d.LastPlayed = parseTimestamp(lastPlayed)
		out = append(out, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp handles both time.Time and string datetime values.
func parseTimestamp(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v
	case string:
		if parsed, err := time.Parse(timestampLayout, v); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
