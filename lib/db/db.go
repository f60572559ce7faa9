package db

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMemory Implementation = "memory"
	ImplBolt   Implementation = "bolt"
	ImplSQLite Implementation = "sqlite"
)

// ParseImplementation returns the Implementation matching the given name.
// The boolean is false if the name is unknown.
func ParseImplementation(name string) (Implementation, bool) {
	switch Implementation(name) {
	case ImplMemory, ImplBolt, ImplSQLite:
		return Implementation(name), true
	default:
		return "", false
	}
}

type DatabaseInfo struct {
	Entries  int            `json:"entries"`
	DbType   Implementation `json:"db_type"`
	Location string         `json:"location,omitempty"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines the backend a namespaced store writes to.
// Keys and values are plain text. Keys can be enumerated by position, the order
// is defined by the implementation and must be stable as long as no key is added or removed.
// Implementations must be safe for concurrent use.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates the entry for key.
	// If the key already exists, the old value is overwritten.
	Set(key string, value string) (err error)

	// Delete removes the entry for key.
	// Deleting a key that does not exist is not an error.
	Delete(key string) (err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether an entry for the key was found.
	Get(key string) (value string, loaded bool, err error)

	// --------------------------------------------------------------------------
	// Enumeration
	// --------------------------------------------------------------------------

	// Len returns the number of entries currently stored.
	Len() (n int, err error)

	// Key returns the key at position index (0 <= index < Len()).
	// The boolean is false if index is out of range.
	Key(index int) (key string, loaded bool, err error)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close closes the database.
	Close() (err error)
}
