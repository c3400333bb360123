package db

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mirelabs/desktr/pkg/nostr/event"
	"github.com/mirelabs/desktr/pkg/nostr/eventid"
	"github.com/mirelabs/desktr/pkg/nostr/kind"
	"github.com/mirelabs/desktr/pkg/store"
)

// SaveEvent upserts an event into the primary namespace keyed by its 8 byte
// id prefix. Re-delivery of an already stored id is a no-op and reports
// stored=false. Feed-index maintenance for feed kinds happens in the same
// batch as the event write, so a crash leaves either both or neither.
//
// Events whose id is malformed (not a 32 byte hash) are rejected; ids are
// otherwise trusted, verification happens upstream.
func (d *T) SaveEvent(ev *event.T) (stored bool, err error) {
	var pfx []byte
	if pfx, err = ev.ID.Prefix(); err != nil {
		err = fmt.Errorf("rejecting event with malformed id: %w", err)
		return
	}
	var has bool
	if has, err = d.Has(EventNS, pfx); chk.E(err) {
		return
	}
	if has {
		log.T.F("duplicate event %s", ev.ID)
		return
	}
	err = d.Batch(func(b *store.Batch) (err error) {
		if err = b.PutJSON(EventNS, pfx, ev); err != nil {
			return
		}
		if ev.Kind.IsFeed() {
			return b.Put(FeedNS, feedKey(ev.CreatedAt, pfx), nil)
		}
		return
	})
	if chk.E(err) {
		return
	}
	stored = true
	return
}

// GetEvent retrieves an event by id. Returns store.ErrNotFound when absent.
func (d *T) GetEvent(id eventid.T) (ev *event.T, err error) {
	var pfx []byte
	if pfx, err = id.Prefix(); err != nil {
		return
	}
	ev = &event.T{}
	if err = d.GetJSON(EventNS, pfx, ev); err != nil {
		ev = nil
	}
	return
}

// EventsByKind scans the primary namespace for events of one kind, newest
// first. Linear, acceptable for low-volume kinds like direct messages; a
// per-conversation index is the upgrade path if that changes.
func (d *T) EventsByKind(ki kind.T) (evs []*event.T, err error) {
	err = d.IterateJSON(EventNS, false,
		func() interface{} { return &event.T{} },
		func(k []byte, v interface{}) bool {
			ev := v.(*event.T)
			if ev.Kind == ki {
				evs = append(evs, ev)
			}
			return true
		})
	if err != nil {
		return
	}
	sort.Sort(event.Descending(evs))
	return
}

// getEventByPrefix hydrates an event from a raw id prefix key. A missing or
// corrupt record returns nil.
func (d *T) getEventByPrefix(pfx []byte) (ev *event.T) {
	ev = &event.T{}
	err := d.GetJSON(EventNS, pfx, ev)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		ev = nil
	case errors.Is(err, store.ErrSerialization):
		// corrupt record: treat as absent, it will be re-fetched from the
		// network on a future subscription
		log.W.F("corrupt event record %x: %s", pfx, err)
		ev = nil
	default:
		chk.E(err)
		ev = nil
	}
	return
}
