package db

import (
	"github.com/mirelabs/desktr/pkg/store"
)

// SetAuthor records a pubkey in the author set. Existence-only: the key is
// the pubkey, the value empty, so repeats are naturally idempotent.
func (d *T) SetAuthor(pubkey string) (err error) {
	err = d.Put(AuthorNS, []byte(pubkey), nil)
	chk.E(err)
	return
}

// SetAuthors batch-inserts pubkeys into the author set; duplicates are
// no-ops.
func (d *T) SetAuthors(pubkeys []string) (err error) {
	err = d.Batch(func(b *store.Batch) (err error) {
		for _, pk := range pubkeys {
			if err = b.Put(AuthorNS, []byte(pk), nil); err != nil {
				return
			}
		}
		return
	})
	chk.E(err)
	return
}

// GetAuthors returns every pubkey ever observed, in key order. The author
// set grows monotonically; nothing removes entries within a session.
func (d *T) GetAuthors() (pubkeys []string, err error) {
	err = d.IterateKeys(AuthorNS, false, func(k []byte) bool {
		pubkeys = append(pubkeys, string(k))
		return true
	})
	chk.E(err)
	return
}

// AuthorSet returns the author set as a map for order-insensitive
// comparison.
func (d *T) AuthorSet() (set map[string]struct{}, err error) {
	set = make(map[string]struct{})
	err = d.IterateKeys(AuthorNS, false, func(k []byte) bool {
		set[string(k)] = struct{}{}
		return true
	})
	chk.E(err)
	return
}
