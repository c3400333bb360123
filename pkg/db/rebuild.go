package db

import (
	"github.com/mirelabs/desktr/pkg/nostr/event"
	"github.com/mirelabs/desktr/pkg/store"
)

// RebuildIndexes reconstructs the author set and the feed index by
// replaying the primary event namespace. Every derived namespace must be
// recoverable this way; it is the repair path after index corruption and
// the ground truth the index maintenance is tested against.
//
// Profile and contact rows are not rebuilt here: they derive from the same
// replay via the classifier, which owns the kind dispatch.
func (d *T) RebuildIndexes() (err error) {
	for _, ns := range []string{AuthorNS, FeedNS} {
		var stale [][]byte
		if err = d.IterateKeys(ns, false, func(k []byte) bool {
			stale = append(stale, k)
			return true
		}); chk.E(err) {
			return
		}
		if err = d.Batch(func(b *store.Batch) (err error) {
			for _, k := range stale {
				if err = b.Delete(ns, k); err != nil {
					return
				}
			}
			return
		}); chk.E(err) {
			return
		}
	}
	count := 0
	var replayErr error
	err = d.IterateJSON(EventNS, false,
		func() interface{} { return &event.T{} },
		func(k []byte, v interface{}) bool {
			ev := v.(*event.T)
			pfx := append([]byte(nil), k...)
			replayErr = d.Batch(func(b *store.Batch) (err error) {
				if err = b.Put(AuthorNS, []byte(ev.PubKey), nil); err != nil {
					return
				}
				if ev.Kind.IsFeed() {
					return b.Put(FeedNS, feedKey(ev.CreatedAt, pfx), nil)
				}
				return
			})
			if chk.E(replayErr) {
				return false
			}
			count++
			return true
		})
	if err == nil {
		err = replayErr
	}
	log.I.F("rebuilt indexes from %d events", count)
	return
}
