package db

import (
	"errors"

	"github.com/mirelabs/desktr/pkg/nostr/profile"
	"github.com/mirelabs/desktr/pkg/store"
)

// SetProfile upserts a profile row, enforcing the freshness invariant: an
// incoming snapshot older than or equal to the stored MetadataAt is
// discarded (stale=true), ties favor what is already stored. The IsContact
// flag is local state not carried in metadata events, so it is preserved
// across overwrites.
func (d *T) SetProfile(p *profile.T) (stale bool, err error) {
	var existing *profile.T
	if existing, err = d.GetProfile(p.PubKey); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return
		}
		err = nil
	}
	if existing != nil {
		if existing.MetadataAt >= p.MetadataAt {
			log.D.F("discarding stale metadata for %s (%d <= %d)",
				p.PubKey, p.MetadataAt, existing.MetadataAt)
			stale = true
			return
		}
		p.IsContact = existing.IsContact
	}
	err = d.PutJSON(ProfileNS, []byte(p.PubKey), p)
	chk.E(err)
	return
}

// GetProfile returns the profile row for a pubkey, store.ErrNotFound when
// none exists. A corrupt row is deleted and reported as not found so the
// subscription machinery re-fetches it.
func (d *T) GetProfile(pubkey string) (p *profile.T, err error) {
	p = &profile.T{}
	err = d.GetJSON(ProfileNS, []byte(pubkey), p)
	switch {
	case err == nil:
		return
	case errors.Is(err, store.ErrSerialization):
		log.W.F("deleting corrupt profile record for %s: %s", pubkey, err)
		chk.E(d.Delete(ProfileNS, []byte(pubkey)))
		p, err = nil, store.ErrNotFound
	default:
		p = nil
	}
	return
}

// Profiles returns every stored profile row.
func (d *T) Profiles() (pp []*profile.T, err error) {
	err = d.IterateJSON(ProfileNS, false,
		func() interface{} { return &profile.T{} },
		func(_ []byte, v interface{}) bool {
			pp = append(pp, v.(*profile.T))
			return true
		})
	chk.E(err)
	return
}
