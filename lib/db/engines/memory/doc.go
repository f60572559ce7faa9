// Package memory implements an in-process db.KVDB backed by a concurrent map
// (xsync.MapOf). Data is not persisted between process restarts.
//
// Key enumeration is served from a sorted snapshot of the key set. The snapshot
// is cached and rebuilt lazily after a key was added or removed, so repeated
// positional scans (Len followed by Key(0..n-1)) cost a single sort.
//
// Usage Example:
//
//	database := memory.NewMemoryDB()
//	defer database.Close()
//
//	_ = database.Set("theme::v1::settings", `"dark"`)
//	value, ok, _ := database.Get("theme::v1::settings")
//
// The memory database is intended for tests and short lived processes. Use the
// bolt or sqlite engines when entries must survive a restart.
package memory
