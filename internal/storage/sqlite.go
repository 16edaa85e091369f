// Package storage records play and verification outcomes in SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for result persistence.
type Store struct {
	db *sql.DB
}

// Result statuses. FAULT marks runs aborted by an engine fault rather
// than finished by play.
const (
	StatusSolved  = "SOLVED"
	StatusFailed  = "FAILED"
	StatusSkipped = "SKIPPED"
	StatusFault   = "FAULT"
)

// Result modes.
const (
	ModePlay   = "play"
	ModeVerify = "verify"
)

// Result is one recorded play or verification outcome for a level.
type Result struct {
	ID        int64
	Game      string
	Level     int
	Status    string
	Mode      string
	Turns     int
	Duration  time.Duration
	CreatedAt time.Time
}

// Summary aggregates the recorded results of one game.
type Summary struct {
	Game      string
	Runs      int
	Solved    int
	Faults    int
	BestTurns int // fewest turns among solved runs, 0 when none solved
	LastRun   time.Time
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

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			game TEXT NOT NULL,
			level INTEGER NOT NULL,
			status TEXT NOT NULL,
			mode TEXT NOT NULL,
			turns INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_results_game ON results(game);
		CREATE INDEX IF NOT EXISTS idx_results_game_level ON results(game, level);
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

// RecordResult stores one outcome and returns the ID of the inserted row.
func (s *Store) RecordResult(r Result) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO results (game, level, status, mode, turns, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.Game, r.Level, r.Status, r.Mode, r.Turns, r.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot record result: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// Results retrieves the most recent results, newest first. With a game
// name the listing is restricted to that game.
func (s *Store) Results(game string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, game, level, status, mode, turns, duration_ms, created_at
		 FROM results %s ORDER BY created_at DESC, id DESC LIMIT ?`
	var rows *sql.Rows
	var err error
	if game == "" {
		rows, err = s.db.Query(fmt.Sprintf(query, ""), limit)
	} else {
		rows, err = s.db.Query(fmt.Sprintf(query, "WHERE game = ?"), game, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var ms int64
		var createdAt any
		if err := rows.Scan(&r.ID, &r.Game, &r.Level, &r.Status, &r.Mode, &r.Turns, &ms, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		r.CreatedAt = parseTimestamp(createdAt)
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return results, nil
}

// GameSummary aggregates the recorded results of one game.
func (s *Store) GameSummary(game string) (*Summary, error) {
	sum := &Summary{Game: game}

	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
		        SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
		        COALESCE(MIN(CASE WHEN status = ? THEN turns END), 0)
		 FROM results WHERE game = ?`,
		StatusSolved, StatusFault, StatusSolved, game,
	).Scan(&sum.Runs, &nullableInt{&sum.Solved}, &nullableInt{&sum.Faults}, &sum.BestTurns)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get game summary: %w", err)
	}

	var lastRun any
	err = s.db.QueryRow(
		`SELECT created_at FROM results WHERE game = ? ORDER BY created_at DESC LIMIT 1`,
		game,
	).Scan(&lastRun)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get last run: %w", err)
	}
	if err == nil {
		sum.LastRun = parseTimestamp(lastRun)
	}

	return sum, nil
}

// AllSummaries aggregates results per game, ordered by game name.
func (s *Store) AllSummaries() ([]Summary, error) {
	rows, err := s.db.Query(
		`SELECT game, COUNT(*),
		        SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
		        SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
		        COALESCE(MIN(CASE WHEN status = ? THEN turns END), 0),
		        MAX(created_at)
		 FROM results
		 GROUP BY game
		 ORDER BY game`,
		StatusSolved, StatusFault, StatusSolved,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get summaries: %w", err)
	}
	defer rows.Close()

	var sums []Summary
	for rows.Next() {
		var sum Summary
		var lastRun any
		if err := rows.Scan(&sum.Game, &sum.Runs, &sum.Solved, &sum.Faults, &sum.BestTurns, &lastRun); err != nil {
			return nil, fmt.Errorf("storage: cannot scan summary row: %w", err)
		}
		sum.LastRun = parseTimestamp(lastRun)
		sums = append(sums, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return sums, nil
}

// ClearResults deletes all recorded results for the given game.
func (s *Store) ClearResults(game string) error {
	_, err := s.db.Exec("DELETE FROM results WHERE game = ?", game)
	if err != nil {
		return fmt.Errorf("storage: cannot clear results: %w", err)
	}
	return nil
}

// parseTimestamp handles both representations the driver returns.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// nullableInt scans a SUM that is NULL on empty tables as zero.
type nullableInt struct {
	dst *int
}

func (n *nullableInt) Scan(v any) error {
	if v == nil {
		*n.dst = 0
		return nil
	}
	switch t := v.(type) {
	case int64:
		*n.dst = int(t)
	case int:
		*n.dst = t
	default:
		return fmt.Errorf("storage: unexpected count type %T", v)
	}
	return nil
}
