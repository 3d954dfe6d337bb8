// Package progress persists which sections a learner has visited and run,
// so the next invocation can mark them in the outline and resume where the
// last one left off. Failures here are never fatal to the caller; a broken
// state directory degrades to a tutor without memory.
package progress

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/tutor/pkg/config"
	"github.com/vanderheijden86/tutor/pkg/outline"
)

// Schema version for tracking migrations
const schemaVersion = 1

// Store records tutorial progress in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens the progress database at path, creating it and its parent
// directory as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("opening progress database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		// Non-fatal; the database works without them.
		_, _ = db.Exec(pragma)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

// OpenDefault opens the progress database in the state directory.
func OpenDefault() (*Store, error) {
	dir := config.StateDir()
	if dir == "" {
		return nil, fmt.Errorf("no state directory available")
	}
	return Open(filepath.Join(dir, "progress.db"))
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

func createSchema(db *sql.DB) error {
	visitsSQL := `
		CREATE TABLE IF NOT EXISTS visits (
			root TEXT NOT NULL,
			section TEXT NOT NULL,
			visits INTEGER NOT NULL DEFAULT 0,
			runs INTEGER NOT NULL DEFAULT 0,
			failures INTEGER NOT NULL DEFAULT 0,
			last_visited TEXT NOT NULL,
			PRIMARY KEY (root, section)
		)
	`
	if _, err := db.Exec(visitsSQL); err != nil {
		return fmt.Errorf("create visits table: %w", err)
	}

	resumeSQL := `
		CREATE TABLE IF NOT EXISTS resume (
			root TEXT PRIMARY KEY,
			section TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`
	if _, err := db.Exec(resumeSQL); err != nil {
		return fmt.Errorf("create resume table: %w", err)
	}

	metaSQL := `
		CREATE TABLE IF NOT EXISTS progress_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return fmt.Errorf("create progress_meta table: %w", err)
	}

	indexSQL := `CREATE INDEX IF NOT EXISTS idx_visits_root ON visits(root)`
	if _, err := db.Exec(indexSQL); err != nil {
		return fmt.Errorf("create visits index: %w", err)
	}

	versionSQL := `INSERT OR REPLACE INTO progress_meta (key, value) VALUES ('schema_version', ?)`
	if _, err := db.Exec(versionSQL, strconv.Itoa(schemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return nil
}

// Key identifies a section by its title path below the outline root, the
// same slash form Section.Find accepts. The root itself maps to "".
func Key(sec *outline.Section) string {
	if sec == nil {
		return ""
	}
	var parts []string
	for s := sec; s.Parent() != nil; s = s.Parent() {
		parts = append(parts, s.Title)
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

// Visit bumps the visit counter for sec and moves the resume point of root
// to it.
func (s *Store) Visit(root string, sec *outline.Section) error {
	key := Key(sec)
	now := time.Now().UTC().Format(time.RFC3339)

	visitSQL := `
		INSERT INTO visits (root, section, visits, last_visited)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(root, section) DO UPDATE SET
			visits = visits + 1,
			last_visited = excluded.last_visited
	`
	if _, err := s.db.Exec(visitSQL, root, key, now); err != nil {
		return fmt.Errorf("recording visit: %w", err)
	}

	resumeSQL := `
		INSERT INTO resume (root, section, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(root) DO UPDATE SET
			section = excluded.section,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(resumeSQL, root, key, now); err != nil {
		return fmt.Errorf("recording resume point: %w", err)
	}

	return nil
}

// RecordRun tallies one snippet run for sec under root.
func (s *Store) RecordRun(root string, sec *outline.Section, failed bool) error {
	key := Key(sec)
	now := time.Now().UTC().Format(time.RFC3339)
	failures := 0
	if failed {
		failures = 1
	}

	runSQL := `
		INSERT INTO visits (root, section, visits, runs, failures, last_visited)
		VALUES (?, ?, 0, 1, ?, ?)
		ON CONFLICT(root, section) DO UPDATE SET
			runs = runs + 1,
			failures = failures + excluded.failures,
			last_visited = excluded.last_visited
	`
	if _, err := s.db.Exec(runSQL, root, key, failures, now); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Visited returns the keys of every section visited under root.
func (s *Store) Visited(root string) (map[string]bool, error) {
	rows, err := s.db.Query(`SELECT section FROM visits WHERE root = ? AND visits > 0`, root)
	if err != nil {
		return nil, fmt.Errorf("loading visits: %w", err)
	}
	defer rows.Close()

	visited := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			continue
		}
		visited[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading visits: %w", err)
	}
	return visited, nil
}

// LastVisited returns the resume point for root. ok is false when the root
// was never visited.
func (s *Store) LastVisited(root string) (key string, ok bool, err error) {
	err = s.db.QueryRow(`SELECT section FROM resume WHERE root = ?`, root).Scan(&key)
	switch {
	case err == sql.ErrNoRows:
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("loading resume point: %w", err)
	}
	return key, true, nil
}

// Stats summarizes the recorded activity for one section.
type Stats struct {
	Visits      int
	Runs        int
	Failures    int
	LastVisited time.Time
}

// Get returns the stats for sec under root. Unknown sections return zero
// stats without error.
func (s *Store) Get(root string, sec *outline.Section) (Stats, error) {
	var stats Stats
	var last string
	err := s.db.QueryRow(
		`SELECT visits, runs, failures, last_visited FROM visits WHERE root = ? AND section = ?`,
		root, Key(sec),
	).Scan(&stats.Visits, &stats.Runs, &stats.Failures, &last)
	switch {
	case err == sql.ErrNoRows:
		return Stats{}, nil
	case err != nil:
		return Stats{}, fmt.Errorf("loading stats: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, last); err == nil {
		stats.LastVisited = t
	}
	return stats, nil
}
