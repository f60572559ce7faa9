// Package db provides a standardized interface for the key-value backends a
// namespaced store writes to. It defines the KVDB interface that allows for
// consistent interaction with various storage backends while abstracting
// implementation details.
//
// The package focuses on:
//   - A unified interface for plain text key-value operations
//   - Positional key enumeration, so callers can scan the whole key space
//   - Standardized metadata reporting
//
// Key Components:
//
//   - KVDB Interface: The core interface that all backends must satisfy.
//     It provides methods for basic operations (Set, Get, Delete),
//     enumeration (Len, Key), metadata retrieval (GetInfo) and Close.
//
//   - Implementation Identifiers: The Implementation type provides string constants
//     for the different backends ("memory", "bolt", "sqlite").
//
//   - Database Information: The DatabaseInfo structure reports the number of
//     entries, the implementation type and the location of file backed databases.
//
// Note on Enumeration:
//   - Key(i) addresses keys by position in an implementation defined order.
//     Removing a key shifts the position of the keys after it, so callers that
//     remove while scanning must first collect the keys and remove them afterwards.
//
// Related Packages:
//
// The engines/memory package (github.com/ValentinKolb/nsKV/lib/db/engines/memory) keeps
// all entries in a concurrent in-process map. It is intended for tests and short lived
// processes.
//
// The engines/bolt package (github.com/ValentinKolb/nsKV/lib/db/engines/bolt) persists
// entries in a single bbolt bucket.
//
// The engines/sqlite package (github.com/ValentinKolb/nsKV/lib/db/engines/sqlite) persists
// entries in a SQLite table.
//
// The testing package (github.com/ValentinKolb/nsKV/lib/db/testing) provides
// standardized tests for implementations that satisfy the db.KVDB interface.
//   - RunKVDBTests: Runs a standardized test suite to validate implementations
package db
