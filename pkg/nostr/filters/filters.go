package filters

import (
	"github.com/mirelabs/desktr/pkg/nostr/filter"
)

// T is a set of filters that together define a subscription's scope.
type T []*filter.T

// Clone deep copies the filter set.
func (ff T) Clone() (c T) {
	c = make(T, len(ff))
	for i := range ff {
		c[i] = ff[i].Clone()
	}
	return
}

// Equal compares two filter sets element for element (order matters between
// filters, not inside their author sets).
func (ff T) Equal(gg T) bool {
	if len(ff) != len(gg) {
		return false
	}
	for i := range ff {
		if !ff[i].Equal(gg[i]) {
			return false
		}
	}
	return true
}
