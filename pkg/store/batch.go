package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Batch collects puts and deletes, possibly across namespaces, applied in a
// single transaction: either every operation becomes visible or none do,
// including under concurrent readers.
type Batch struct {
	s   *T
	txn *badger.Txn
}

// Batch runs fn with a Batch whose operations commit atomically when fn
// returns nil, and are discarded entirely when fn returns an error.
func (s *T) Batch(fn func(b *Batch) error) (err error) {
	err = s.DB.Update(func(txn *badger.Txn) error {
		return fn(&Batch{s: s, txn: txn})
	})
	if err == nil || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSerialization) || errors.Is(err, ErrNamespace) {
		return
	}
	err = fmt.Errorf("%w: %s", ErrWrite, err)
	return
}

// Put stores a raw value under a key in a namespace.
func (b *Batch) Put(ns string, k, v []byte) (err error) {
	var key []byte
	if key, err = b.s.key(ns, k); err != nil {
		return
	}
	return b.txn.Set(key, v)
}

// PutJSON stores the JSON encoding of v under a key.
func (b *Batch) PutJSON(ns string, k []byte, v interface{}) (err error) {
	var enc []byte
	if enc, err = json.Marshal(v); err != nil {
		return fmt.Errorf("%w: %s", ErrSerialization, err)
	}
	return b.Put(ns, k, enc)
}

// Delete removes a key.
func (b *Batch) Delete(ns string, k []byte) (err error) {
	var key []byte
	if key, err = b.s.key(ns, k); err != nil {
		return
	}
	return b.txn.Delete(key)
}

// Get reads a key inside the transaction, seeing the batch's own writes.
func (b *Batch) Get(ns string, k []byte) (v []byte, err error) {
	var key []byte
	if key, err = b.s.key(ns, k); err != nil {
		return
	}
	var item *badger.Item
	if item, err = b.txn.Get(key); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			err = ErrNotFound
		}
		return
	}
	v, err = item.ValueCopy(nil)
	return
}
