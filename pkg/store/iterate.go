package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// maxKeyPad is appended to a namespace prefix to seek to its end for
// reverse iteration; no stored key is longer.
var maxKeyPad = bytes.Repeat([]byte{0xff}, 64)

// Iterate walks a namespace in key byte order, ascending, or descending
// when reverse is set. fn receives the key without its namespace prefix and
// the raw value; returning false stops the walk.
func (s *T) Iterate(ns string, reverse bool,
	fn func(k, v []byte) bool) (err error) {

	return s.iterate(ns, reverse, true, func(k, v []byte) bool {
		return fn(k, v)
	})
}

// IterateKeys is the key-only projection of Iterate: values are neither
// fetched nor decoded.
func (s *T) IterateKeys(ns string, reverse bool,
	fn func(k []byte) bool) (err error) {

	return s.iterate(ns, reverse, false, func(k, _ []byte) bool {
		return fn(k)
	})
}

// IterateValues is the value-only projection of Iterate.
func (s *T) IterateValues(ns string, reverse bool,
	fn func(v []byte) bool) (err error) {

	return s.iterate(ns, reverse, true, func(_, v []byte) bool {
		return fn(v)
	})
}

// IterateJSON decodes each value in a namespace into a fresh instance
// produced by newv and hands it to fn. Records that fail to decode are
// logged and skipped - a corrupt record never aborts the scan.
func (s *T) IterateJSON(ns string, reverse bool, newv func() interface{},
	fn func(k []byte, v interface{}) bool) (err error) {

	return s.iterate(ns, reverse, true, func(k, raw []byte) bool {
		v := newv()
		if e := json.Unmarshal(raw, v); e != nil {
			log.W.F("skipping corrupt record in %s (%x): %s", ns, k, e)
			return true
		}
		return fn(k, v)
	})
}

func (s *T) iterate(ns string, reverse, values bool,
	fn func(k, v []byte) bool) (err error) {

	p, ok := s.prefixes[ns]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNamespace, ns)
	}
	prefix := []byte{p}
	return s.DB.View(func(txn *badger.Txn) (err error) {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = reverse
		opts.PrefetchValues = values
		it := txn.NewIterator(opts)
		defer it.Close()
		seek := prefix
		if reverse {
			seek = append(prefix, maxKeyPad...)
		}
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			k := item.KeyCopy(nil)[1:]
			var v []byte
			if values {
				if v, err = item.ValueCopy(nil); err != nil {
					return
				}
			}
			if !fn(k, v) {
				return
			}
		}
		return
	})
}
