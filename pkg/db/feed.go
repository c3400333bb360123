package db

import (
	"github.com/mirelabs/desktr/pkg/nostr/event"
	"github.com/mirelabs/desktr/pkg/nostr/eventid"
	"github.com/mirelabs/desktr/pkg/nostr/timestamp"
)

// feedKey builds the composite feed index key: big-endian created_at
// followed by the event id prefix. Byte order equals chronological order,
// the id prefix makes keys naturally unique so re-insertion of the same
// event lands on the same key.
func feedKey(at timestamp.T, idPfx []byte) (k []byte) {
	k = make([]byte, timestamp.Len+eventid.PrefixLen)
	copy(k, at.Bytes())
	copy(k[timestamp.Len:], idPfx)
	return
}

// GetFeed returns one page of the chronological feed, newest first, in
// strictly descending (created_at, id prefix) order. Pages are disjoint:
// page 0 is the most recent limit entries, page 1 the next, and so on.
// Index entries whose event record is missing or corrupt are skipped.
func (d *T) GetFeed(limit, page int) (evs []*event.T, err error) {
	if limit <= 0 {
		return
	}
	skip := limit * page
	seen := 0
	err = d.IterateKeys(FeedNS, true, func(k []byte) bool {
		if len(k) != timestamp.Len+eventid.PrefixLen {
			log.W.F("malformed feed index key %x", k)
			return true
		}
		if seen += 1; seen <= skip {
			return true
		}
		if ev := d.getEventByPrefix(k[timestamp.Len:]); ev != nil {
			evs = append(evs, ev)
		}
		return seen < skip+limit
	})
	chk.E(err)
	return
}
