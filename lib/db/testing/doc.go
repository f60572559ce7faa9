// Package testing provides standardised tests for database implementations
// that satisfy the db.KVDB interface.
//
// The package contains:
//   - testing: A test suite for validating conformance to the KVDB interface contract
//   - benchmark: Performance tests for measuring throughput of common operations
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() db.KVDB {
//		return NewMyDatabase()
//	}
//
//	// Running the standard test suite
//	dbtesting.RunKVDBTests(t, "MyDatabase", factory)
//
//	// Running performance benchmarks
//	dbtesting.RunKVDBBenchmarks(b, "MyDatabase", factory)
package testing
