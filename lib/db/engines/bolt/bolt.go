package bolt

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/nsKV/lib/db"
	"github.com/lni/dragonboat/v4/logger"
	bolt "go.etcd.io/bbolt"
)

var log = logger.GetLogger("db")

// DefaultBucket is the bucket entries are stored in if no bucket is configured.
const DefaultBucket = "nskv"

// DBOptions configures the bolt database
type DBOptions struct {
	Bucket  string        // Bucket holding the entries ("" = DefaultBucket)
	Timeout time.Duration // How long to wait for the file lock (0 = 1 sec)
}

// keySnapshot is the sorted key set of the bucket taken at generation gen
type keySnapshot struct {
	gen  uint64
	keys []string
}

// boltImpl implements db.KVDB using bbolt (embedded B+ tree).
// All entries live in a single bucket, keys are enumerated in byte order.
//
// bbolt holds an exclusive file lock, so every write goes through this handle
// and the key snapshot only has to follow the generation counter.
type boltImpl struct {
	db     *bolt.DB
	path   string
	bucket []byte

	// gen is bumped after a commit added or removed a key
	gen      atomic.Uint64
	snapshot atomic.Pointer[keySnapshot]
}

// Open creates or opens a bbolt database at the given path.
func Open(path string, opts *DBOptions) (db.KVDB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if opts == nil {
		opts = &DBOptions{}
	}
	bucket := opts.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}

	cleanPath := filepath.Clean(path)
	handle, err := bolt.Open(cleanPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	b := &boltImpl{db: handle, path: cleanPath, bucket: []byte(bucket)}
	if err := handle.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(b.bucket)
		return err
	}); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return b, nil
}

func (b *boltImpl) Set(key string, value string) error {
	var added bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(b.bucket)
		k := keyBytes(key)
		added = bkt.Get(k) == nil
		return bkt.Put(k, []byte(value))
	})
	if err == nil && added {
		b.gen.Add(1)
	}
	return err
}

func (b *boltImpl) Delete(key string) error {
	var removed bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(b.bucket)
		k := keyBytes(key)
		removed = bkt.Get(k) != nil
		return bkt.Delete(k)
	})
	if err == nil && removed {
		b.gen.Add(1)
	}
	return err
}

func (b *boltImpl) Get(key string) (string, bool, error) {
	var (
		val string
		ok  bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(b.bucket).Get(keyBytes(key))
		if v != nil {
			// string() copies, v is only valid inside the transaction
			val, ok = string(v), true
		}
		return nil
	})
	return val, ok, err
}

func (b *boltImpl) Len() (int, error) {
	keys, err := b.sortedKeys()
	return len(keys), err
}

// Key returns the key at position index in byte order.
func (b *boltImpl) Key(index int) (string, bool, error) {
	keys, err := b.sortedKeys()
	if err != nil {
		return "", false, err
	}
	if index < 0 || index >= len(keys) {
		return "", false, nil
	}
	return keys[index], true, nil
}

// sortedKeys returns the cached key snapshot or reads all keys of the bucket
// in one transaction if a key was added or removed since it was taken.
func (b *boltImpl) sortedKeys() ([]string, error) {
	gen := b.gen.Load()
	if s := b.snapshot.Load(); s != nil && s.gen == gen {
		return s.keys, nil
	}

	var keys []string
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, fromKeyBytes(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("reading keys: %w", err)
	}

	// keyBytes preserves the order, the keys are sorted already
	b.snapshot.Store(&keySnapshot{gen: gen, keys: keys})
	return keys, nil
}

func (b *boltImpl) GetInfo() db.DatabaseInfo {
	n, err := b.Len()
	if err != nil {
		log.Warningf("counting entries of %s failed: %v", b.path, err)
	}
	return db.DatabaseInfo{
		Entries:  n,
		DbType:   db.ImplBolt,
		Location: b.path,
	}
}

func (b *boltImpl) Close() error {
	// drop the snapshot, reads after Close have to fail
	b.gen.Add(1)
	return b.db.Close()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// bbolt rejects zero length keys, the empty key is stored as a single NUL byte
// and every key that starts with NUL gets one more NUL prepended.
func keyBytes(key string) []byte {
	if key == "" || key[0] == 0 {
		return append([]byte{0}, key...)
	}
	return []byte(key)
}

func fromKeyBytes(k []byte) string {
	if len(k) > 0 && k[0] == 0 {
		return string(k[1:])
	}
	return string(k)
}
