package filter

import (
	"github.com/mirelabs/desktr/pkg/nostr/kinds"
	"github.com/mirelabs/desktr/pkg/nostr/timestamp"
)

// T is a query where one or all elements can be filled in, passed to relays
// to select the subset of events a subscription wants.
//
// The tag filters (`#p` etc) are collapsed here to the single pubkey-mention
// filter this client uses; transport implementations expand it to the wire
// form.
type T struct {
	IDs     []string     `json:"ids,omitempty"`
	Kinds   kinds.T      `json:"kinds,omitempty"`
	Authors []string     `json:"authors,omitempty"`
	PTags   []string     `json:"#p,omitempty"`
	Since   *timestamp.T `json:"since,omitempty"`
	Until   *timestamp.T `json:"until,omitempty"`
	Limit   int          `json:"limit,omitempty"`
}

// Clone deep copies a filter.
func (f *T) Clone() (c *T) {
	c = &T{
		IDs:     append([]string(nil), f.IDs...),
		Kinds:   f.Kinds.Clone(),
		Authors: append([]string(nil), f.Authors...),
		PTags:   append([]string(nil), f.PTags...),
		Limit:   f.Limit,
	}
	if f.Since != nil {
		s := *f.Since
		c.Since = &s
	}
	if f.Until != nil {
		u := *f.Until
		c.Until = &u
	}
	return
}

// Equal compares two filters for equivalence. Authors and PTags are compared
// as sets so a filter rebuilt from a differently ordered author set does not
// register as changed.
func (f *T) Equal(g *T) bool {
	if f == nil || g == nil {
		return f == g
	}
	if !f.Kinds.Equals(g.Kinds) || f.Limit != g.Limit {
		return false
	}
	if !sameSet(f.IDs, g.IDs) || !sameSet(f.Authors, g.Authors) ||
		!sameSet(f.PTags, g.PTags) {
		return false
	}
	if (f.Since == nil) != (g.Since == nil) ||
		(f.Until == nil) != (g.Until == nil) {
		return false
	}
	if f.Since != nil && *f.Since != *g.Since {
		return false
	}
	if f.Until != nil && *f.Until != *g.Until {
		return false
	}
	return true
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	m := make(map[string]struct{}, len(a))
	for _, s := range a {
		m[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := m[s]; !ok {
			return false
		}
	}
	return true
}
