package nsstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ValentinKolb/nsKV/lib/db"
	"github.com/ValentinKolb/nsKV/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var log = logger.GetLogger("nsstore")

// Option customizes a namespaced store.
type Option func(*storeImpl)

// WithLogger replaces the package logger for a single store.
func WithLogger(l logger.ILogger) Option {
	return func(s *storeImpl) {
		if l != nil {
			s.log = l
		}
	}
}

type storeImpl struct {
	db        db.KVDB
	namespace string
	version   string

	// pre-formatted "::<namespace>" and "::<version>::<namespace>"
	nsSuffix   string
	itemSuffix string

	log     logger.ILogger
	metrics *storeMetrics
}

// NewNamespacedStore creates a store that keeps its items in database under
// keys of the form "<key>::<version>::<namespace>".
// The database is not owned by the store and is never closed by it.
//
// namespace and version must be non-empty and must not contain ':',
// otherwise an error with code store.RetCInvalidArgument is returned.
// The database is not accessed during construction.
func NewNamespacedStore(database db.KVDB, namespace, version string, opts ...Option) (store.IStore, error) {
	if database == nil {
		return nil, store.NewError(store.RetCInvalidArgument, "`database` must not be nil")
	}
	if !validComponent(namespace) {
		return nil, store.NewError(store.RetCInvalidArgument, "`namespace` must be a non-empty string without ':'")
	}
	if !validComponent(version) {
		return nil, store.NewError(store.RetCInvalidArgument, "`version` must be a non-empty string without ':'")
	}

	s := &storeImpl{
		db:         database,
		namespace:  namespace,
		version:    version,
		nsSuffix:   Separator + namespace,
		itemSuffix: Separator + version + Separator + namespace,
		log:        log,
		metrics:    newStoreMetrics(namespace),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *storeImpl) key(k string) string {
	return k + s.itemSuffix
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) GetItem(key string, value any) (bool, error) {
	s.metrics.gets.Inc()

	raw, ok, err := s.db.Get(s.key(key))
	if err != nil {
		s.failed("GetItem", key, err)
		return false, err
	}

	// empty text is never written by SetItem, it is treated like a missing entry
	if !ok || raw == "" {
		s.log.Debugf("GetItem %s in %s/%s: not found", key, s.namespace, s.version)
		return false, nil
	}

	if err := json.Unmarshal([]byte(raw), value); err != nil {
		s.failed("GetItem", key, err)
		var targetErr *json.InvalidUnmarshalError
		if errors.As(err, &targetErr) {
			return false, store.WrapError(store.RetCInvalidArgument, fmt.Sprintf("cannot decode %q into %T, a non-nil pointer is required", key, value), err)
		}
		return false, store.WrapError(store.RetCMalformedData, fmt.Sprintf("value for %q cannot be decoded", key), err)
	}
	return true, nil
}

func (s *storeImpl) SetItem(key string, value any) error {
	s.metrics.sets.Inc()

	data, err := json.Marshal(value)
	if err != nil {
		s.failed("SetItem", key, err)
		return store.WrapError(store.RetCNotSerializable, fmt.Sprintf("value for %q cannot be encoded as JSON", key), err)
	}

	if err := s.db.Set(s.key(key), string(data)); err != nil {
		s.failed("SetItem", key, err)
		return err
	}
	s.log.Debugf("SetItem %s in %s/%s (%d bytes)", key, s.namespace, s.version, len(data))
	return nil
}

func (s *storeImpl) RemoveItem(key string) error {
	s.metrics.removes.Inc()

	if err := s.db.Delete(s.key(key)); err != nil {
		s.failed("RemoveItem", key, err)
		return err
	}
	return nil
}

func (s *storeImpl) HasItem(key string) (bool, error) {
	raw, ok, err := s.db.Get(s.key(key))
	if err != nil {
		s.failed("HasItem", key, err)
		return false, err
	}
	return ok && raw != "", nil
}

func (s *storeImpl) Keys() ([]string, error) {
	encoded, err := s.scan(func(k string) bool {
		_, ok := decodeKey(k, s.itemSuffix)
		return ok
	})
	if err != nil {
		s.failed("Keys", "", err)
		return nil, err
	}

	keys := make([]string, 0, len(encoded))
	for _, k := range encoded {
		key, _ := decodeKey(k, s.itemSuffix)
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear collects all keys of the namespace first and removes them afterwards.
// Removing while scanning by position would shift the keys not yet visited.
func (s *storeImpl) Clear() error {
	s.metrics.clears.Inc()

	itemsToRemove, err := s.scan(func(k string) bool {
		return inNamespace(k, s.nsSuffix)
	})
	if err != nil {
		s.failed("Clear", "", err)
		return err
	}

	for _, k := range itemsToRemove {
		if err := s.db.Delete(k); err != nil {
			s.failed("Clear", k, err)
			return err
		}
		s.metrics.cleared.Inc()
	}

	s.log.Infof("Cleared %d entries of namespace %s", len(itemsToRemove), s.namespace)
	return nil
}

func (s *storeImpl) Namespace() string {
	return s.namespace
}

func (s *storeImpl) Version() string {
	return s.version
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// scan enumerates every key of the database by position and returns the ones
// accepted by match.
func (s *storeImpl) scan(match func(key string) bool) ([]string, error) {
	n, err := s.db.Len()
	if err != nil {
		return nil, err
	}

	var matched []string
	for i := 0; i < n; i++ {
		k, ok, err := s.db.Key(i)
		if err != nil {
			return nil, err
		}
		if !ok {
			// the database shrank while scanning
			break
		}
		if match(k) {
			matched = append(matched, k)
		}
	}
	return matched, nil
}

func (s *storeImpl) failed(op, key string, err error) {
	s.metrics.errors.Inc()
	s.log.Errorf("%s %s in %s/%s failed: %v", op, key, s.namespace, s.version, err)
}
