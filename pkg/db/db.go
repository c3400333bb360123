package db

import (
	"os"

	"github.com/mirelabs/desktr/pkg/slog"
	"github.com/mirelabs/desktr/pkg/store"
)

var log, chk = slog.New(os.Stderr)

// Namespace names. These and the key encodings (big-endian timestamps,
// 8 byte id prefixes) are load-bearing for index sort order and on-disk
// compatibility.
const (
	EventNS   = "event"
	AuthorNS  = "author"
	ContactNS = "contact"
	ProfileNS = "profile"
	FeedNS    = "textnote_by_timestamp"
)

var namespaces = []string{EventNS, AuthorNS, ContactNS, ProfileNS, FeedNS}

// T is the typed client database: the primary event namespace plus the
// derived projections (author set, contact list, profile rows, feed index)
// kept consistent with it on every write.
//
// T is the single source of truth; anything cached above it must be
// rebuildable from it.
type T struct {
	*store.T
}

// Open creates or opens the client database at path.
func Open(path string) (d *T, err error) {
	var s *store.T
	if s, err = store.Open(path, namespaces); chk.E(err) {
		return
	}
	d = &T{T: s}
	return
}
