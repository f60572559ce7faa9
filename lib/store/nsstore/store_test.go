package nsstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/nsKV/lib/db"
	"github.com/ValentinKolb/nsKV/lib/db/engines/bolt"
	"github.com/ValentinKolb/nsKV/lib/db/engines/memory"
	"github.com/ValentinKolb/nsKV/lib/db/engines/sqlite"
	"github.com/ValentinKolb/nsKV/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, database db.KVDB, namespace, version string) store.IStore {
	t.Helper()
	s, err := NewNamespacedStore(database, namespace, version)
	require.NoError(t, err)
	return s
}

// engines opens a fresh database per engine, closed when the test ends
var engines = map[string]func(t *testing.T) db.KVDB{
	"memory": func(t *testing.T) db.KVDB {
		database := memory.NewMemoryDB()
		t.Cleanup(func() { _ = database.Close() })
		return database
	},
	"bolt": func(t *testing.T) db.KVDB {
		database, err := bolt.Open(filepath.Join(t.TempDir(), "bolt.db"), nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = database.Close() })
		return database
	},
	"sqlite": func(t *testing.T) db.KVDB {
		database, err := sqlite.Open(filepath.Join(t.TempDir(), "sqlite.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = database.Close() })
		return database
	},
}

func TestNewNamespacedStore_Validation(t *testing.T) {
	database := memory.NewMemoryDB()
	defer database.Close()

	tests := []struct {
		name      string
		database  db.KVDB
		namespace string
		version   string
		param     string
	}{
		{"empty namespace", database, "", "v1", "namespace"},
		{"empty version", database, "ns", "", "version"},
		{"namespace with separator", database, "a::b", "v1", "namespace"},
		{"namespace with colon", database, "a:b", "v1", "namespace"},
		{"version with colon", database, "ns", "1:2", "version"},
		{"nil database", nil, "ns", "v1", "database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewNamespacedStore(tt.database, tt.namespace, tt.version)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.ErrorIs(t, err, store.ErrInvalidArgument)
			assert.Contains(t, err.Error(), "`"+tt.param+"`")

			var storeErr *store.Error
			require.ErrorAs(t, err, &storeErr)
			assert.Equal(t, store.RetCInvalidArgument, storeErr.Code)
		})
	}

	s, err := NewNamespacedStore(database, "ns", "v1")
	require.NoError(t, err)
	assert.Equal(t, "ns", s.Namespace())
	assert.Equal(t, "v1", s.Version())
}

func TestConstructionDoesNotTouchDatabase(t *testing.T) {
	database := &failingDB{err: errors.New("backend unavailable")}
	_, err := NewNamespacedStore(database, "ns", "v1")
	require.NoError(t, err)
	assert.Zero(t, database.calls)
}

func TestRoundTrip(t *testing.T) {
	type nested struct {
		Name  string         `json:"name"`
		Tags  []string       `json:"tags"`
		Inner map[string]int `json:"inner"`
	}

	for name, open := range engines {
		t.Run(name, func(t *testing.T) {
			s := newStore(t, open(t), "app", "v1")

			require.NoError(t, s.SetItem("string", "hello"))
			str, ok, err := store.Get[string](s, "string")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "hello", str)

			require.NoError(t, s.SetItem("number", 42.5))
			num, ok, err := store.Get[float64](s, "number")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 42.5, num)

			require.NoError(t, s.SetItem("array", []int{1, 2, 3}))
			arr, ok, err := store.Get[[]int](s, "array")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []int{1, 2, 3}, arr)

			in := nested{Name: "alice", Tags: []string{"a", "b"}, Inner: map[string]int{"x": 1}}
			require.NoError(t, s.SetItem("object", in))
			out, ok, err := store.Get[nested](s, "object")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, in, out)

			// untyped decode yields generic JSON values
			var anyValue any
			ok, err = s.GetItem("object", &anyValue)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, map[string]any{
				"name":  "alice",
				"tags":  []any{"a", "b"},
				"inner": map[string]any{"x": float64(1)},
			}, anyValue)
		})
	}
}

func TestZeroLikeValuesAreStored(t *testing.T) {
	s := newStore(t, memory.NewMemoryDB(), "app", "v1")

	for key, value := range map[string]any{"zero": 0, "false": false, "empty": "", "null": nil} {
		require.NoError(t, s.SetItem(key, value))
		ok, err := s.HasItem(key)
		require.NoError(t, err)
		assert.True(t, ok, "value %v for %s should be found", value, key)
	}

	n := 7
	ok, err := s.GetItem("zero", &n)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, n)
}

func TestOverwrite(t *testing.T) {
	s := newStore(t, memory.NewMemoryDB(), "app", "v1")

	require.NoError(t, s.SetItem("x", 1))
	require.NoError(t, s.SetItem("x", "two"))

	v, ok, err := store.Get[string](s, "x")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
}

func TestNamespaceIsolation(t *testing.T) {
	database := memory.NewMemoryDB()
	defer database.Close()

	a := newStore(t, database, "app1", "v1")
	b := newStore(t, database, "app2", "v1")

	require.NoError(t, a.SetItem("x", 1))

	var v int
	ok, err := b.GetItem("x", &v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestVersionIsolation(t *testing.T) {
	database := memory.NewMemoryDB()
	defer database.Close()

	a := newStore(t, database, "app", "v1")
	b := newStore(t, database, "app", "v2")

	require.NoError(t, a.SetItem("x", 1))

	_, ok, err := store.Get[int](b, "x")
	require.NoError(t, err)
	assert.False(t, ok)

	// the old version's entry is orphaned, not migrated
	_, ok, err = store.Get[int](a, "x")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMissingKey(t *testing.T) {
	s := newStore(t, memory.NewMemoryDB(), "app", "v1")

	v, ok, err := store.Get[map[string]any](s, "never-set")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestEmptyEntryIsNotParsed(t *testing.T) {
	database := memory.NewMemoryDB()
	defer database.Close()

	require.NoError(t, database.Set(EncodeKey("blank", "v1", "app"), ""))
	s := newStore(t, database, "app", "v1")

	var v any = "untouched"
	ok, err := s.GetItem("blank", &v)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "untouched", v)

	has, err := s.HasItem("blank")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRemoveItemIdempotent(t *testing.T) {
	s := newStore(t, memory.NewMemoryDB(), "app", "v1")

	require.NoError(t, s.SetItem("k", "v"))
	require.NoError(t, s.RemoveItem("k"))
	require.NoError(t, s.RemoveItem("k"))
	require.NoError(t, s.RemoveItem("never-set"))

	_, ok, err := store.Get[string](s, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.Get[string](s, "never-set")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClearScope(t *testing.T) {
	for name, open := range engines {
		t.Run(name, func(t *testing.T) {
			database := open(t)

			a := newStore(t, database, "app", "v1")
			a2 := newStore(t, database, "app", "v2")
			b := newStore(t, database, "other", "v1")
			suffix := newStore(t, database, "myapp", "v1")

			require.NoError(t, a.SetItem("x", 1))
			require.NoError(t, a2.SetItem("y", 2))
			require.NoError(t, b.SetItem("z", 3))
			require.NoError(t, suffix.SetItem("w", 4))
			// keys that contain the separator themselves
			require.NoError(t, a.SetItem("nested::v9::other", 5))
			require.NoError(t, database.Set("unrelated", "1"))

			require.NoError(t, a.Clear())

			for _, check := range []struct {
				s    store.IStore
				key  string
				want bool
			}{
				{a, "x", false},
				{a2, "y", false},
				{a, "nested::v9::other", false},
				{b, "z", true},
				{suffix, "w", true},
			} {
				ok, err := check.s.HasItem(check.key)
				require.NoError(t, err)
				assert.Equal(t, check.want, ok, "%s/%s %s", check.s.Namespace(), check.s.Version(), check.key)
			}

			_, ok, err := database.Get("unrelated")
			require.NoError(t, err)
			assert.True(t, ok)

			n, err := database.Len()
			require.NoError(t, err)
			assert.Equal(t, 3, n)
		})
	}
}

func TestClearManyEntries(t *testing.T) {
	const n = 1500

	for name, open := range engines {
		t.Run(name, func(t *testing.T) {
			database := open(t)
			a := newStore(t, database, "app", "v1")
			b := newStore(t, database, "keep", "v1")
			for i := 0; i < n; i++ {
				require.NoError(t, a.SetItem(fmt.Sprintf("k%05d", i), i))
				require.NoError(t, b.SetItem(fmt.Sprintf("k%05d", i), i))
			}

			require.NoError(t, a.Clear())

			keys, err := a.Keys()
			require.NoError(t, err)
			assert.Empty(t, keys)

			keys, err = b.Keys()
			require.NoError(t, err)
			assert.Len(t, keys, n)

			size, err := database.Len()
			require.NoError(t, err)
			assert.Equal(t, n, size)
		})
	}
}

func TestKeys(t *testing.T) {
	database := memory.NewMemoryDB()
	defer database.Close()

	a := newStore(t, database, "app", "v2")
	old := newStore(t, database, "app", "v1")
	other := newStore(t, database, "other", "v2")

	require.NoError(t, a.SetItem("b", 1))
	require.NoError(t, a.SetItem("a", 1))
	require.NoError(t, a.SetItem("with::sep", 1))
	require.NoError(t, old.SetItem("old", 1))
	require.NoError(t, other.SetItem("foreign", 1))

	keys, err := a.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "with::sep"}, keys)
}

func TestMalformedData(t *testing.T) {
	database := memory.NewMemoryDB()
	defer database.Close()

	require.NoError(t, database.Set(EncodeKey("broken", "v1", "app"), "{not json"))
	s := newStore(t, database, "app", "v1")

	var v any
	ok, err := s.GetItem("broken", &v)
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, store.ErrMalformedData)

	var syntaxErr *json.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestDecodeTargetErrors(t *testing.T) {
	s := newStore(t, memory.NewMemoryDB(), "app", "v1")
	require.NoError(t, s.SetItem("name", "alice"))

	// valid JSON that does not fit the target
	_, ok, err := store.Get[int](s, "name")
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, store.ErrMalformedData)
	assert.NotContains(t, err.Error(), "not valid JSON")
	var typeErr *json.UnmarshalTypeError
	assert.ErrorAs(t, err, &typeErr)

	// the target has to be a pointer
	var n int
	ok, err = s.GetItem("name", n)
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, store.ErrInvalidArgument)
	var targetErr *json.InvalidUnmarshalError
	assert.ErrorAs(t, err, &targetErr)

	ok, err = s.GetItem("name", nil)
	assert.ErrorIs(t, err, store.ErrInvalidArgument)
	assert.False(t, ok)
}

func TestNotSerializable(t *testing.T) {
	type node struct {
		Next *node
	}
	cycle := &node{}
	cycle.Next = cycle

	s := newStore(t, memory.NewMemoryDB(), "app", "v1")

	for name, value := range map[string]any{
		"func":    func() {},
		"channel": make(chan int),
		"cycle":   cycle,
	} {
		t.Run(name, func(t *testing.T) {
			err := s.SetItem(name, value)
			require.Error(t, err)
			assert.ErrorIs(t, err, store.ErrNotSerializable)

			ok, err := s.HasItem(name)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestDatabaseErrorsPropagate(t *testing.T) {
	backendErr := errors.New("quota exceeded")
	database := &failingDB{err: backendErr}
	s := newStore(t, database, "app", "v1")

	var v any
	_, err := s.GetItem("k", &v)
	assert.Same(t, backendErr, err)

	assert.Same(t, backendErr, s.SetItem("k", 1))
	assert.Same(t, backendErr, s.RemoveItem("k"))
	assert.Same(t, backendErr, s.Clear())

	_, err = s.HasItem("k")
	assert.Same(t, backendErr, err)
	_, err = s.Keys()
	assert.Same(t, backendErr, err)
}

func TestKeyEncodingDeterministic(t *testing.T) {
	assert.Equal(t, EncodeKey("k", "v1", "ns"), EncodeKey("k", "v1", "ns"))
	assert.Equal(t, "k::v1::ns", EncodeKey("k", "v1", "ns"))

	s := newStore(t, memory.NewMemoryDB(), "ns", "v1").(*storeImpl)
	assert.Equal(t, EncodeKey("k", "v1", "ns"), s.key("k"))
}

func TestMetrics(t *testing.T) {
	s := newStore(t, memory.NewMemoryDB(), "metrics-test", "v1")

	sets := metrics.GetOrCreateCounter(`nskv_store_ops_total{op="set",namespace="metrics-test"}`)
	cleared := metrics.GetOrCreateCounter(`nskv_store_cleared_entries_total{namespace="metrics-test"}`)
	setsBefore, clearedBefore := sets.Get(), cleared.Get()

	require.NoError(t, s.SetItem("a", 1))
	require.NoError(t, s.SetItem("b", 2))
	require.NoError(t, s.Clear())

	assert.Equal(t, setsBefore+2, sets.Get())
	assert.Equal(t, clearedBefore+2, cleared.Get())
}

func TestMetricsPerNamespace(t *testing.T) {
	spaced := newStore(t, memory.NewMemoryDB(), "metrics a b", "v1")
	underscored := newStore(t, memory.NewMemoryDB(), "metrics_a_b", "v1")
	quoted := newStore(t, memory.NewMemoryDB(), `metrics "q" \ x`, "v1")

	spacedSets := metrics.GetOrCreateCounter(`nskv_store_ops_total{op="set",namespace="metrics a b"}`)
	underscoredSets := metrics.GetOrCreateCounter(`nskv_store_ops_total{op="set",namespace="metrics_a_b"}`)
	quotedSets := metrics.GetOrCreateCounter(fmt.Sprintf(`nskv_store_ops_total{op="set",namespace=%q}`, `metrics "q" \ x`))
	spacedBefore, underscoredBefore, quotedBefore := spacedSets.Get(), underscoredSets.Get(), quotedSets.Get()

	require.NoError(t, spaced.SetItem("k", 1))
	require.NoError(t, underscored.SetItem("k", 1))
	require.NoError(t, underscored.SetItem("k", 2))
	require.NoError(t, quoted.SetItem("k", 1))

	assert.Equal(t, spacedBefore+1, spacedSets.Get())
	assert.Equal(t, underscoredBefore+2, underscoredSets.Get())
	assert.Equal(t, quotedBefore+1, quotedSets.Get())
}

func TestWithLogger(t *testing.T) {
	rec := &recordingLogger{}
	database := memory.NewMemoryDB()
	defer database.Close()

	s, err := NewNamespacedStore(database, "logged", "v1", WithLogger(rec))
	require.NoError(t, err)

	require.NoError(t, s.SetItem("a", 1))
	require.NoError(t, s.Clear())
	assert.Contains(t, rec.lines, "INFO Cleared 1 entries of namespace logged")

	require.NoError(t, database.Set(EncodeKey("broken", "v1", "logged"), "{"))
	var v any
	_, err = s.GetItem("broken", &v)
	require.Error(t, err)
	require.NotEmpty(t, rec.lines)
	assert.Contains(t, rec.lines[len(rec.lines)-1], "ERROR GetItem broken in logged/v1 failed")

	// a nil logger keeps the package logger
	s, err = NewNamespacedStore(database, "logged", "v1", WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, log, s.(*storeImpl).log)
}

// --------------------------------------------------------------------------
// Test doubles
// --------------------------------------------------------------------------

// failingDB fails every operation with err
type failingDB struct {
	err   error
	calls int
}

func (f *failingDB) Set(string, string) error {
	f.calls++
	return f.err
}

func (f *failingDB) Delete(string) error {
	f.calls++
	return f.err
}

func (f *failingDB) Get(string) (string, bool, error) {
	f.calls++
	return "", false, f.err
}

func (f *failingDB) Len() (int, error) {
	f.calls++
	return 0, f.err
}

func (f *failingDB) Key(int) (string, bool, error) {
	f.calls++
	return "", false, f.err
}

func (f *failingDB) GetInfo() db.DatabaseInfo {
	return db.DatabaseInfo{DbType: "failing"}
}

func (f *failingDB) Close() error {
	return nil
}

// recordingLogger keeps every formatted message prefixed with its level
type recordingLogger struct {
	lines []string
}

func (r *recordingLogger) record(level, format string, args ...interface{}) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func (r *recordingLogger) SetLevel(logger.LogLevel) {}

func (r *recordingLogger) Debugf(format string, args ...interface{}) {
	r.record("DEBUG", format, args...)
}

func (r *recordingLogger) Infof(format string, args ...interface{}) {
	r.record("INFO", format, args...)
}

func (r *recordingLogger) Warningf(format string, args ...interface{}) {
	r.record("WARN", format, args...)
}

func (r *recordingLogger) Errorf(format string, args ...interface{}) {
	r.record("ERROR", format, args...)
}

func (r *recordingLogger) Panicf(format string, args ...interface{}) {
	r.record("PANIC", format, args...)
	panic(fmt.Sprintf(format, args...))
}
