package testing

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/ValentinKolb/nsKV/lib/db"
)

// DBFactory is a function that creates a new, empty instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Len", func(t *testing.T) {
			testLen(t, factory())
		})

		t.Run("Key", func(t *testing.T) {
			testKey(t, factory())
		})

		t.Run("ScanThenDelete", func(t *testing.T) {
			testScanThenDelete(t, factory())
		})

		t.Run("KeyAfterWrites", func(t *testing.T) {
			testKeyAfterWrites(t, factory())
		})

		t.Run("ScanLarge", func(t *testing.T) {
			testScanLarge(t, factory())
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("Concurrent", func(t *testing.T) {
			testConcurrent(t, factory())
		})

		t.Run("Info", func(t *testing.T) {
			testInfo(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func mustSet(t testing.TB, database db.KVDB, key, value string) {
	t.Helper()
	if err := database.Set(key, value); err != nil {
		t.Fatalf("Set(%q) failed: %v", key, err)
	}
}

func mustLen(t testing.TB, database db.KVDB) int {
	t.Helper()
	n, err := database.Len()
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	return n
}

// allKeys enumerates the database by position
func allKeys(t testing.TB, database db.KVDB) []string {
	t.Helper()
	n := mustLen(t, database)
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		key, ok, err := database.Key(i)
		if err != nil {
			t.Fatalf("Key(%d) failed: %v", i, err)
		}
		if !ok {
			t.Fatalf("Key(%d) should be in range (len=%d)", i, n)
		}
		keys = append(keys, key)
	}
	return keys
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	testKey := "test-key"

	mustSet(t, database, testKey, "test-value1")

	result, exists, err := database.Get(testKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if result != "test-value1" {
		t.Errorf("Expected value %s, got %s", "test-value1", result)
	}

	mustSet(t, database, testKey, "test-value2")

	result, exists, _ = database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after overwrite", testKey)
	}
	if result != "test-value2" {
		t.Errorf("Expected value %s, got %s", "test-value2", result)
	}

	_, exists, err = database.Get("nonexistent-key")
	if err != nil {
		t.Fatalf("Get of a missing key should not fail: %v", err)
	}
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	testKey := "delete-test-key"
	mustSet(t, database, testKey, "delete-test-value")

	if err := database.Delete(testKey); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, exists, _ := database.Get(testKey)
	if exists {
		t.Errorf("Expected key %s to not exist after Delete", testKey)
	}

	// deleting twice or deleting an unknown key is not an error
	if err := database.Delete(testKey); err != nil {
		t.Errorf("Second Delete should be a no-op, got %v", err)
	}
	if err := database.Delete("nonexistent-key"); err != nil {
		t.Errorf("Delete of a missing key should be a no-op, got %v", err)
	}
}

func testLen(t *testing.T, database db.KVDB) {
	defer database.Close()

	if n := mustLen(t, database); n != 0 {
		t.Fatalf("Expected empty database, got len=%d", n)
	}

	for i := 0; i < 10; i++ {
		mustSet(t, database, fmt.Sprintf("len-key-%d", i), "v")
	}
	if n := mustLen(t, database); n != 10 {
		t.Errorf("Expected len=10, got %d", n)
	}

	// overwrite does not change the length
	mustSet(t, database, "len-key-0", "other")
	if n := mustLen(t, database); n != 10 {
		t.Errorf("Expected len=10 after overwrite, got %d", n)
	}

	_ = database.Delete("len-key-0")
	if n := mustLen(t, database); n != 9 {
		t.Errorf("Expected len=9 after delete, got %d", n)
	}
}

func testKey(t *testing.T, database db.KVDB) {
	defer database.Close()

	expected := []string{"a", "b::v1::ns", "c::v2::ns", "z"}
	for _, k := range expected {
		mustSet(t, database, k, "1")
	}

	keys := allKeys(t, database)
	sort.Strings(keys)
	if fmt.Sprint(keys) != fmt.Sprint(expected) {
		t.Errorf("Expected keys %v, got %v", expected, keys)
	}

	if _, ok, err := database.Key(len(expected)); err != nil || ok {
		t.Errorf("Key(len) should be out of range, got ok=%v err=%v", ok, err)
	}
	if _, ok, err := database.Key(-1); err != nil || ok {
		t.Errorf("Key(-1) should be out of range, got ok=%v err=%v", ok, err)
	}
}

func testScanThenDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	for i := 0; i < 50; i++ {
		mustSet(t, database, fmt.Sprintf("scan-%02d", i), "v")
	}

	// collect first, then remove
	keys := allKeys(t, database)
	for _, k := range keys {
		if err := database.Delete(k); err != nil {
			t.Fatalf("Delete(%q) failed: %v", k, err)
		}
	}

	if n := mustLen(t, database); n != 0 {
		t.Errorf("Expected empty database after removing every scanned key, got len=%d", n)
	}
}

func testKeyAfterWrites(t *testing.T, database db.KVDB) {
	defer database.Close()

	mustSet(t, database, "b", "1")
	mustSet(t, database, "d", "1")
	if keys := allKeys(t, database); fmt.Sprint(keys) != "[b d]" {
		t.Fatalf("Expected [b d], got %v", keys)
	}

	// positions have to follow inserts, deletes and overwrites
	mustSet(t, database, "a", "1")
	mustSet(t, database, "c", "1")
	if keys := allKeys(t, database); fmt.Sprint(keys) != "[a b c d]" {
		t.Errorf("Expected [a b c d] after insert, got %v", keys)
	}

	if err := database.Delete("b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if keys := allKeys(t, database); fmt.Sprint(keys) != "[a c d]" {
		t.Errorf("Expected [a c d] after delete, got %v", keys)
	}

	mustSet(t, database, "c", "2")
	if keys := allKeys(t, database); fmt.Sprint(keys) != "[a c d]" {
		t.Errorf("Expected [a c d] after overwrite, got %v", keys)
	}

	if err := database.Delete("missing"); err != nil {
		t.Fatalf("Delete of missing key failed: %v", err)
	}
	if n := mustLen(t, database); n != 3 {
		t.Errorf("Expected len=3, got %d", n)
	}
	if _, ok, _ := database.Key(3); ok {
		t.Errorf("Expected Key(3) to be out of range")
	}
}

// testScanLarge enumerates and removes a few thousand entries the way a
// namespace clear does.
func testScanLarge(t *testing.T, database db.KVDB) {
	defer database.Close()

	const n = 2000
	for i := 0; i < n; i++ {
		mustSet(t, database, fmt.Sprintf("key-%05d::v1::other", i), "1")
	}

	keys := allKeys(t, database)
	if len(keys) != n {
		t.Fatalf("Expected %d keys, got %d", n, len(keys))
	}
	if !sort.StringsAreSorted(keys) {
		t.Errorf("Expected keys in ascending order")
	}

	for _, k := range keys {
		if err := database.Delete(k); err != nil {
			t.Fatalf("Delete(%q) failed: %v", k, err)
		}
	}
	if n := mustLen(t, database); n != 0 {
		t.Errorf("Expected empty database, got len=%d", n)
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	// empty value
	mustSet(t, database, "empty-value", "")
	value, exists, _ := database.Get("empty-value")
	if !exists {
		t.Errorf("Expected key with empty value to exist")
	}
	if value != "" {
		t.Errorf("Expected empty value, got %q", value)
	}

	// empty key
	mustSet(t, database, "", "empty-key-value")
	value, exists, _ = database.Get("")
	if !exists || value != "empty-key-value" {
		t.Errorf("Expected empty key to be stored, got exists=%v value=%q", exists, value)
	}

	// unicode and separators
	unicodeKey := "ключ::v1::名前空間"
	mustSet(t, database, unicodeKey, `{"a":"ü"}`)
	value, exists, _ = database.Get(unicodeKey)
	if !exists || value != `{"a":"ü"}` {
		t.Errorf("Expected unicode key to round-trip, got exists=%v value=%q", exists, value)
	}

	// large value
	large := make([]byte, 256*1024)
	for i := range large {
		large[i] = 'a' + byte(i%26)
	}
	mustSet(t, database, "large", string(large))
	value, _, _ = database.Get("large")
	if value != string(large) {
		t.Errorf("Large value did not round-trip (len=%d)", len(value))
	}
}

func testConcurrent(t *testing.T, database db.KVDB) {
	defer database.Close()

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := fmt.Sprintf("worker-%d-%d", w, i)
				if err := database.Set(key, key); err != nil {
					t.Errorf("Set(%q) failed: %v", key, err)
					return
				}
				if v, ok, err := database.Get(key); err != nil || !ok || v != key {
					t.Errorf("Get(%q) = %q, %v, %v", key, v, ok, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	if n := mustLen(t, database); n != workers*perWorker {
		t.Errorf("Expected len=%d, got %d", workers*perWorker, n)
	}
}

func testInfo(t *testing.T, database db.KVDB) {
	defer database.Close()

	mustSet(t, database, "info-1", "a")
	mustSet(t, database, "info-2", "b")

	info := database.GetInfo()
	if info.DbType == "" {
		t.Errorf("Expected DbType to be set")
	}
	if info.Entries != 2 {
		t.Errorf("Expected 2 entries in info, got %d", info.Entries)
	}
}
