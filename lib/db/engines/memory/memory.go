package memory

import (
	"sort"
	"sync/atomic"

	"github.com/ValentinKolb/nsKV/lib/db"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Core memory database structure
// --------------------------------------------------------------------------

// keySnapshot is a sorted copy of the key set taken at generation gen
type keySnapshot struct {
	gen  uint64
	keys []string
}

// memoryImpl implements db.KVDB on top of a concurrent map
type memoryImpl struct {
	data *xsync.MapOf[string, string]

	// gen is bumped whenever a key is added or removed,
	// a cached snapshot is only valid for the generation it was taken at
	gen      atomic.Uint64
	snapshot atomic.Pointer[keySnapshot]
}

// NewMemoryDB creates a new, empty in-memory database.
func NewMemoryDB() db.KVDB {
	return &memoryImpl{
		data: xsync.NewMapOf[string, string](),
	}
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) Set(key string, value string) error {
	if _, loaded := m.data.LoadAndStore(key, value); !loaded {
		m.gen.Add(1)
	}
	return nil
}

// Delete removes an entry. Deleting a missing key is a no-op.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) Delete(key string) error {
	if _, loaded := m.data.LoadAndDelete(key); loaded {
		m.gen.Add(1)
	}
	return nil
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Get retrieves the value for a key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) Get(key string) (string, bool, error) {
	value, ok := m.data.Load(key)
	return value, ok, nil
}

// Len returns the number of stored entries.
func (m *memoryImpl) Len() (int, error) {
	return m.data.Size(), nil
}

// Key returns the key at position index in lexicographic order.
//
// Thread-safety: This method is thread-safe. Under concurrent writes the
// position of a key may shift between calls.
func (m *memoryImpl) Key(index int) (string, bool, error) {
	keys := m.sortedKeys()
	if index < 0 || index >= len(keys) {
		return "", false, nil
	}
	return keys[index], true, nil
}

// sortedKeys returns the cached key snapshot or rebuilds it if a key was added
// or removed since it was taken.
func (m *memoryImpl) sortedKeys() []string {
	gen := m.gen.Load()
	if s := m.snapshot.Load(); s != nil && s.gen == gen {
		return s.keys
	}

	keys := make([]string, 0, m.data.Size())
	m.data.Range(func(key string, _ string) bool {
		keys = append(keys, key)
		return true
	})
	sort.Strings(keys)

	// a snapshot taken while the generation moved is stored with the old
	// generation and therefore never served again
	m.snapshot.Store(&keySnapshot{gen: gen, keys: keys})
	return keys
}

// --------------------------------------------------------------------------
// Misc
// --------------------------------------------------------------------------

func (m *memoryImpl) GetInfo() db.DatabaseInfo {
	return db.DatabaseInfo{
		Entries: m.data.Size(),
		DbType:  db.ImplMemory,
	}
}

// Close drops all entries.
func (m *memoryImpl) Close() error {
	m.data.Clear()
	m.gen.Add(1)
	return nil
}
