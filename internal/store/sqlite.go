package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-user write serialization
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db, locks: make(map[string]*sync.Mutex)}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS turns (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
        content TEXT NOT NULL,
        timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE INDEX IF NOT EXISTS idx_turns_user ON turns (user_id, position);
    `
	_, err := s.db.Exec(schema)
	return err
}

// userLock returns the mutex serializing writes for a single user. Two
// devices logged in under the same name must not interleave SaveHistory
// transactions.
func (s *SQLiteStore) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// LoadHistory returns the persisted turn sequence for a user, oldest first.
// A user with no history yields an empty slice, not an error.
func (s *SQLiteStore) LoadHistory(userID string) ([]Turn, error) {
	rows, err := s.db.Query("SELECT role, content, timestamp FROM turns WHERE user_id = ? ORDER BY position ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan turn row: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// SaveHistory replaces the persisted record for a user with the given full
// sequence. The delete and inserts run in one transaction so a crash cannot
// leave a partially written history behind.
func (s *SQLiteStore) SaveHistory(userID string, turns []Turn) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM turns WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear turns: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO turns (user_id, position, role, content, timestamp) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare turn insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range turns {
		ts := t.Timestamp
		if ts.IsZero() {
			ts = time.Now()
		}
		if _, err := stmt.Exec(userID, i, t.Role, t.Content, ts); err != nil {
			return fmt.Errorf("failed to insert turn %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history: %w", err)
	}
	return nil
}
