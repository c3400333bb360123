package db

import (
	"errors"
	"sort"

	"github.com/mirelabs/desktr/pkg/nostr/contact"
	"github.com/mirelabs/desktr/pkg/nostr/profile"
	"github.com/mirelabs/desktr/pkg/store"
)

// SetContacts replaces the entire local contact set with the given list. A
// contact list event is an authoritative, total snapshot, never a delta:
// previously followed pubkeys missing from the new list are flagged
// IsContact=false rather than deleted, so their cached metadata survives.
// Listed pubkeys get a profile row created or flagged, seeded with the
// petname when no metadata has been seen yet, and all of them join the
// author set. The whole replacement is one atomic batch.
func (d *T) SetContacts(list []contact.T) (err error) {
	listed := make(map[string]contact.T, len(list))
	for _, c := range list {
		listed[c.PubKey] = c
	}
	var existing []*profile.T
	if existing, err = d.Profiles(); chk.E(err) {
		return
	}
	var oldKeys [][]byte
	err = d.IterateKeys(ContactNS, false, func(k []byte) bool {
		oldKeys = append(oldKeys, k)
		return true
	})
	if chk.E(err) {
		return
	}
	known := make(map[string]*profile.T, len(existing))
	for _, p := range existing {
		known[p.PubKey] = p
	}
	err = d.Batch(func(b *store.Batch) (err error) {
		for _, k := range oldKeys {
			if err = b.Delete(ContactNS, k); err != nil {
				return
			}
		}
		// unfollow what the new snapshot no longer names
		for _, p := range existing {
			if _, ok := listed[p.PubKey]; !ok && p.IsContact {
				p.IsContact = false
				if err = b.PutJSON(ProfileNS, []byte(p.PubKey),
					p); err != nil {
					return
				}
			}
		}
		for _, c := range list {
			if err = b.PutJSON(ContactNS, []byte(c.PubKey), c); err != nil {
				return
			}
			p, ok := known[c.PubKey]
			if !ok {
				p = &profile.T{PubKey: c.PubKey, Name: c.Alias}
			}
			p.IsContact = true
			if err = b.PutJSON(ProfileNS, []byte(p.PubKey), p); err != nil {
				return
			}
			if err = b.Put(AuthorNS, []byte(c.PubKey), nil); err != nil {
				return
			}
		}
		return
	})
	chk.E(err)
	return
}

// GetContacts returns the profiles of everyone currently followed, sorted
// by display label.
func (d *T) GetContacts() (pp []*profile.T, err error) {
	var all []*profile.T
	if all, err = d.Profiles(); chk.E(err) {
		return
	}
	for _, p := range all {
		if p.IsContact {
			pp = append(pp, p)
		}
	}
	sort.Slice(pp, func(i, j int) bool {
		return pp[i].ShortName() < pp[j].ShortName()
	})
	return
}

// ContactEntries returns the raw contact rows as stored (pubkey, relay
// hint, petname).
func (d *T) ContactEntries() (list []contact.T, err error) {
	err = d.IterateJSON(ContactNS, false,
		func() interface{} { return &contact.T{} },
		func(_ []byte, v interface{}) bool {
			list = append(list, *v.(*contact.T))
			return true
		})
	chk.E(err)
	return
}

// IsContact reports whether a pubkey is currently followed.
func (d *T) IsContact(pubkey string) (is bool, err error) {
	var p *profile.T
	if p, err = d.GetProfile(pubkey); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = nil
		}
		return
	}
	is = p.IsContact
	return
}
