// Package sqlite implements db.KVDB with a single SQLite table using the pure
// Go modernc.org/sqlite driver. Keys are enumerated in ascending key order from
// a cached key list that is read again after any write (PRAGMA data_version
// covers writes of other connections).
package sqlite
