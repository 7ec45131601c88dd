package rental

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Durable storage keys. All four are written together on establish and
// removed together on logout.
const (
	keyToken = "token"
	keyName  = "nombre"
	keyRole  = "rol"
	keyEmail = "email"
)

// sessionDB persists the session fields in a small SQLite file so the
// identity survives restarts and is shared by concurrently running consoles.
type sessionDB struct {
	db *sql.DB

	getStmt *sql.Stmt
}

// openSessionDB opens (or creates) the session database at dbPath and applies
// schema migrations.
func openSessionDB(dbPath string) (*sessionDB, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applySessionMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &sessionDB{db: db}
	if s.getStmt, err = db.Prepare(`SELECT value FROM session WHERE key=?`); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sessionDB) Close() error {
	if s.getStmt != nil {
		s.getStmt.Close()
	}
	return s.db.Close()
}

const sessionSchemaVersion = 1

func applySessionMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= sessionSchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS session (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL
    );`); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, sessionSchemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// get returns the stored value for key, or "" when absent.
func (s *sessionDB) get(key string) (string, error) {
	var v string
	err := s.getStmt.QueryRow(key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// load reads every stored field.
func (s *sessionDB) load() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM session`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vals := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		vals[k] = v
	}
	return vals, rows.Err()
}

// replace swaps the whole stored session in one transaction so no reader
// ever observes a partial write.
func (s *sessionDB) replace(vals map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM session`); err != nil {
		return err
	}
	for k, v := range vals {
		if _, err := tx.Exec(`INSERT INTO session(key,value) VALUES(?,?)`, k, v); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// clear removes every stored field in one transaction.
func (s *sessionDB) clear() error {
	_, err := s.db.Exec(`DELETE FROM session`)
	return err
}
