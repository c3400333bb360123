package relaypool

import (
	"github.com/mirelabs/desktr/pkg/nostr/event"
	"github.com/mirelabs/desktr/pkg/nostr/eventid"
	"github.com/mirelabs/desktr/pkg/nostr/filter"
	"github.com/mirelabs/desktr/pkg/nostr/filters"
	"github.com/mirelabs/desktr/pkg/nostr/kind"
	"github.com/mirelabs/desktr/pkg/nostr/tag"
	"github.com/mirelabs/desktr/pkg/nostr/tags"
	"github.com/mirelabs/desktr/pkg/nostr/timestamp"
	"github.com/nbd-wtf/go-nostr"
)

// eventFromWire converts a transport event into the local form.
func eventFromWire(ev *nostr.Event) (out *event.T) {
	tt := make(tags.T, 0, len(ev.Tags))
	for _, t := range ev.Tags {
		tt = append(tt, tag.T(t))
	}
	return &event.T{
		ID:        eventid.T(ev.ID),
		PubKey:    ev.PubKey,
		CreatedAt: timestamp.T(ev.CreatedAt),
		Kind:      kind.T(ev.Kind),
		Tags:      tt,
		Content:   ev.Content,
		Sig:       ev.Sig,
	}
}

// eventToWire converts a local event into the transport form.
func eventToWire(ev *event.T) (out nostr.Event) {
	tt := make(nostr.Tags, 0, len(ev.Tags))
	for _, t := range ev.Tags {
		tt = append(tt, nostr.Tag(t))
	}
	return nostr.Event{
		ID:        ev.ID.String(),
		PubKey:    ev.PubKey,
		CreatedAt: nostr.Timestamp(ev.CreatedAt),
		Kind:      int(ev.Kind),
		Tags:      tt,
		Content:   ev.Content,
		Sig:       ev.Sig,
	}
}

// filterToWire converts one local filter into the transport form.
func filterToWire(f *filter.T) (out nostr.Filter) {
	out = nostr.Filter{
		IDs:     append([]string{}, f.IDs...),
		Kinds:   f.Kinds.ToIntSlice(),
		Authors: append([]string{}, f.Authors...),
		Limit:   f.Limit,
	}
	if len(f.PTags) > 0 {
		out.Tags = nostr.TagMap{"p": append([]string{}, f.PTags...)}
	}
	if f.Since != nil {
		since := nostr.Timestamp(*f.Since)
		out.Since = &since
	}
	if f.Until != nil {
		until := nostr.Timestamp(*f.Until)
		out.Until = &until
	}
	return
}

// filtersToWire converts a local filter set into the transport form.
func filtersToWire(ff filters.T) (out nostr.Filters) {
	out = make(nostr.Filters, 0, len(ff))
	for _, f := range ff {
		out = append(out, filterToWire(f))
	}
	return
}
