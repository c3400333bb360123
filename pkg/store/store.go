package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/mirelabs/desktr/pkg/slog"
)

var log, chk = slog.New(os.Stderr)

var (
	// ErrInit - the store could not be opened at the given path.
	ErrInit = errors.New("failed to initialize store")
	// ErrNotFound - the key has no value in the namespace. Expected, callers
	// branch on it.
	ErrNotFound = errors.New("value not found")
	// ErrSerialization - a record could not be encoded or decoded; indicates
	// version skew or a corrupt record. Callers may treat a corrupt record
	// as absent and re-fetch from the network.
	ErrSerialization = errors.New("failed to serialize/deserialize")
	// ErrWrite - an I/O problem during a put or batch. The caller should
	// retry the whole operation rather than partially apply it.
	ErrWrite = errors.New("failed to write")
	// ErrNamespace - the namespace was not registered at Open.
	ErrNamespace = errors.New("unknown namespace")
)

// T is a namespaced key-value store on a badger database. Namespaces are
// isolated keyspaces registered at Open, implemented as single byte key
// prefixes assigned in registration order - the registration order is part
// of the on-disk format.
//
// The struct is cheap to copy and safe to share; badger serializes writers
// per transaction and supports many concurrent readers.
type T struct {
	DB       *badger.DB
	Path     string
	names    []string
	prefixes map[string]byte
}

// Open creates or opens a persistent store at path with the given
// namespaces. Namespaces not already present are created implicitly (a
// prefix with no keys). Returns ErrInit if the path is inaccessible or the
// database is corrupt beyond recovery.
func Open(path string, namespaces []string) (s *T, err error) {
	log.I.Ln("opening store at", path)
	opts := badger.DefaultOptions(path)
	opts.Compression = options.ZSTD
	opts.CompactL0OnClose = true
	opts.Logger = nil
	var db *badger.DB
	if db, err = badger.Open(opts); chk.E(err) {
		err = fmt.Errorf("%w: %s: %s", ErrInit, path, err)
		return
	}
	s = &T{
		DB:       db,
		Path:     path,
		names:    append([]string(nil), namespaces...),
		prefixes: make(map[string]byte, len(namespaces)),
	}
	for i, name := range namespaces {
		if _, ok := s.prefixes[name]; ok {
			err = fmt.Errorf("%w: duplicate namespace %s", ErrInit, name)
			return
		}
		s.prefixes[name] = byte(i + 1)
	}
	return
}

// Close releases the underlying database.
func (s *T) Close() (err error) { return s.DB.Close() }

// Namespaces returns the registered namespace names in prefix order.
func (s *T) Namespaces() (names []string) {
	return append([]string(nil), s.names...)
}

func (s *T) key(ns string, k []byte) (key []byte, err error) {
	p, ok := s.prefixes[ns]
	if !ok {
		err = fmt.Errorf("%w: %s", ErrNamespace, ns)
		return
	}
	key = make([]byte, 1+len(k))
	key[0] = p
	copy(key[1:], k)
	return
}

// Put stores a raw value under a key in a namespace.
func (s *T) Put(ns string, k, v []byte) (err error) {
	return s.Batch(func(b *Batch) error { return b.Put(ns, k, v) })
}

// Get reads the raw value of a key. Returns ErrNotFound for a missing key,
// distinguished from an I/O failure.
func (s *T) Get(ns string, k []byte) (v []byte, err error) {
	var key []byte
	if key, err = s.key(ns, k); err != nil {
		return
	}
	err = s.DB.View(func(txn *badger.Txn) (err error) {
		var item *badger.Item
		if item, err = txn.Get(key); err != nil {
			return
		}
		v, err = item.ValueCopy(nil)
		return
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		v, err = nil, ErrNotFound
	}
	return
}

// Has reports whether a key exists without reading its value.
func (s *T) Has(ns string, k []byte) (has bool, err error) {
	var key []byte
	if key, err = s.key(ns, k); err != nil {
		return
	}
	err = s.DB.View(func(txn *badger.Txn) (err error) {
		_, err = txn.Get(key)
		return
	})
	switch {
	case err == nil:
		has = true
	case errors.Is(err, badger.ErrKeyNotFound):
		err = nil
	}
	return
}

// Delete removes a key. Deleting an absent key is a no-op.
func (s *T) Delete(ns string, k []byte) (err error) {
	return s.Batch(func(b *Batch) error { return b.Delete(ns, k) })
}

// PutJSON stores the JSON encoding of v under a key.
func (s *T) PutJSON(ns string, k []byte, v interface{}) (err error) {
	return s.Batch(func(b *Batch) error { return b.PutJSON(ns, k, v) })
}

// GetJSON reads a key and decodes its JSON value into out. A record that
// does not decode returns ErrSerialization, distinct from ErrNotFound and
// from I/O failures.
func (s *T) GetJSON(ns string, k []byte, out interface{}) (err error) {
	var v []byte
	if v, err = s.Get(ns, k); err != nil {
		return
	}
	if err = json.Unmarshal(v, out); err != nil {
		err = fmt.Errorf("%w: %s", ErrSerialization, err)
	}
	return
}

// Flush forces durability of all pending writes to stable storage and lets
// the value log garbage collector run a pass. Safe to call at any time;
// concurrent reads are unaffected.
func (s *T) Flush() {
	if err := s.DB.Sync(); err != nil {
		log.E.F("store sync failed: %s", err)
	}
	if err := s.DB.RunValueLogGC(0.5); err != nil &&
		!errors.Is(err, badger.ErrNoRewrite) {
		log.D.F("value log GC: %s", err)
	}
}
