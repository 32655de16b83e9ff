// Package store persists assignments in a sqlite database keyed by year.
// It replaces the original per-year save files with one database and also
// builds the history index the matcher uses to exclude repeats.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/iZac85/SecretSanta/internal/match"
)

// ErrNotFound is returned when no assignment is stored for a year.
var ErrNotFound = errors.New("no assignment stored for year")

// ErrYearExists is returned by Save when the year already has an
// assignment and replace was not requested.
var ErrYearExists = errors.New("assignment already stored for year")

// Store manages the assignment database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// New creates or opens the assignment store at dbPath. The parent
// directory is created if needed. ":memory:" is accepted for tests.
func New(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// initSchema creates the database schema.
func (s *Store) initSchema() error {
	schema := `
	-- One row per giver/receiver pair; position preserves input order.
	CREATE TABLE IF NOT EXISTS assignments (
		year INTEGER NOT NULL,
		position INTEGER NOT NULL,
		giver TEXT NOT NULL,
		receiver TEXT NOT NULL,
		PRIMARY KEY (year, position)
	);
	CREATE INDEX IF NOT EXISTS idx_assignments_year ON assignments(year);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save stores the assignment under year. It fails with ErrYearExists if
// the year is already stored and replace is false; with replace true the
// stored year is overwritten atomically.
func (s *Store) Save(year int, assignment match.Assignment, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRow("SELECT COUNT(*) FROM assignments WHERE year = ?", year).Scan(&count); err != nil {
		return fmt.Errorf("failed to check year %d: %w", year, err)
	}
	if count > 0 {
		if !replace {
			return fmt.Errorf("year %d: %w", year, ErrYearExists)
		}
		if _, err := tx.Exec("DELETE FROM assignments WHERE year = ?", year); err != nil {
			return fmt.Errorf("failed to clear year %d: %w", year, err)
		}
	}

	stmt, err := tx.Prepare("INSERT INTO assignments (year, position, giver, receiver) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, pair := range assignment {
		if _, err := stmt.Exec(year, i, pair.Giver, pair.Receiver); err != nil {
			return fmt.Errorf("failed to insert pair %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Load returns the assignment stored for year, in its original order, or
// ErrNotFound.
func (s *Store) Load(year int) (match.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT giver, receiver FROM assignments WHERE year = ? ORDER BY position", year)
	if err != nil {
		return nil, fmt.Errorf("failed to query year %d: %w", year, err)
	}
	defer rows.Close()

	var assignment match.Assignment
	for rows.Next() {
		var pair match.Pair
		if err := rows.Scan(&pair.Giver, &pair.Receiver); err != nil {
			return nil, fmt.Errorf("failed to scan pair: %w", err)
		}
		assignment = append(assignment, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(assignment) == 0 {
		return nil, fmt.Errorf("year %d: %w", year, ErrNotFound)
	}
	return assignment, nil
}

// History merges the assignments of the nYears years before year into a
// history index. Years with nothing stored are skipped; the second return
// value is how many years contributed.
func (s *Store) History(year, nYears int) (match.HistoryIndex, int, error) {
	history := make(match.HistoryIndex)
	found := 0
	for i := 1; i <= nYears; i++ {
		assignment, err := s.Load(year - i)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		for _, pair := range assignment {
			history.Add(pair.Giver, pair.Receiver)
		}
		found++
	}
	return history, found, nil
}

// Delete removes the assignment stored for year, if any.
func (s *Store) Delete(year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM assignments WHERE year = ?", year); err != nil {
		return fmt.Errorf("failed to delete year %d: %w", year, err)
	}
	return nil
}

// Years lists every year with a stored assignment, newest first.
func (s *Store) Years() ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT DISTINCT year FROM assignments ORDER BY year DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}
