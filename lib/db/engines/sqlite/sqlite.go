package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/ValentinKolb/nsKV/lib/db"
	"github.com/lni/dragonboat/v4/logger"
	_ "modernc.org/sqlite"
)

var log = logger.GetLogger("db")

const schema = `CREATE TABLE IF NOT EXISTS entries (
	key   TEXT PRIMARY KEY NOT NULL,
	value TEXT NOT NULL
) WITHOUT ROWID`

// keySnapshot is the sorted key set read at generation gen while the
// database reported dataVersion
type keySnapshot struct {
	gen         uint64
	dataVersion int64
	keys        []string
}

// sqliteImpl implements db.KVDB with a single SQLite table.
// Keys are enumerated in ascending key order.
//
// Len and Key are served from a key snapshot. It is rebuilt after a write
// through this handle (gen) or a commit of another connection (PRAGMA data_version).
type sqliteImpl struct {
	sqlDB *sql.DB
	path  string

	gen      atomic.Uint64
	snapshot atomic.Pointer[keySnapshot]
}

// Open opens (or creates) a SQLite database at path and ensures the entries table exists.
// The special path ":memory:" opens a private in-memory database.
func Open(path string) (db.KVDB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := ":memory:"
	if path != ":memory:" {
		path = filepath.Clean(path)
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single connection serializes writers (no SQLITE_BUSY) and keeps
	// ":memory:" pointing at one database
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &sqliteImpl{sqlDB: sqlDB, path: path}, nil
}

func (s *sqliteImpl) Set(key string, value string) error {
	_, err := s.sqlDB.Exec(
		`INSERT INTO entries (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set entry: %w", err)
	}
	// the upsert does not tell inserts from updates
	s.gen.Add(1)
	return nil
}

func (s *sqliteImpl) Delete(key string) error {
	res, err := s.sqlDB.Exec(`DELETE FROM entries WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		s.gen.Add(1)
	}
	return nil
}

func (s *sqliteImpl) Get(key string) (string, bool, error) {
	var value string
	err := s.sqlDB.QueryRow(`SELECT value FROM entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get entry: %w", err)
	}
	return value, true, nil
}

func (s *sqliteImpl) Len() (int, error) {
	keys, err := s.sortedKeys()
	return len(keys), err
}

func (s *sqliteImpl) Key(index int) (string, bool, error) {
	keys, err := s.sortedKeys()
	if err != nil {
		return "", false, err
	}
	if index < 0 || index >= len(keys) {
		return "", false, nil
	}
	return keys[index], true, nil
}

// sortedKeys returns the cached key snapshot if neither this handle nor
// another connection changed the table since it was read.
func (s *sqliteImpl) sortedKeys() ([]string, error) {
	gen := s.gen.Load()
	var dataVersion int64
	if err := s.sqlDB.QueryRow(`PRAGMA data_version`).Scan(&dataVersion); err != nil {
		return nil, fmt.Errorf("data version: %w", err)
	}
	if snap := s.snapshot.Load(); snap != nil && snap.gen == gen && snap.dataVersion == dataVersion {
		return snap.keys, nil
	}

	rows, err := s.sqlDB.Query(`SELECT key FROM entries ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("list keys: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	s.snapshot.Store(&keySnapshot{gen: gen, dataVersion: dataVersion, keys: keys})
	return keys, nil
}

func (s *sqliteImpl) GetInfo() db.DatabaseInfo {
	n, err := s.Len()
	if err != nil {
		log.Warningf("counting entries of %s failed: %v", s.path, err)
	}
	return db.DatabaseInfo{
		Entries:  n,
		DbType:   db.ImplSQLite,
		Location: s.path,
	}
}

func (s *sqliteImpl) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
