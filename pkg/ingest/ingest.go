package ingest

import (
	"os"

	"github.com/mirelabs/desktr/pkg/db"
	"github.com/mirelabs/desktr/pkg/nostr/contact"
	"github.com/mirelabs/desktr/pkg/nostr/event"
	"github.com/mirelabs/desktr/pkg/nostr/kind"
	"github.com/mirelabs/desktr/pkg/nostr/profile"
	"github.com/mirelabs/desktr/pkg/slog"
)

var log, chk = slog.New(os.Stderr)

// T classifies incoming events and applies the kind-specific update
// strategy to the database. Stateless per event, so interleaved delivery
// from multiple relays cannot corrupt anything: the event upsert is
// idempotent and the profile overwrite is guarded by its timestamp.
type T struct {
	DB *db.T
	// Self is the local user's pubkey in hex. Only Self's contact list is
	// authoritative for the local contact set; foreign lists only
	// contribute to the author set.
	Self string
}

func New(d *db.T, self string) *T { return &T{DB: d, Self: self} }

// ProcessEvent runs the ingestion pipeline for one event:
//
//  1. upsert into the primary event namespace (idempotent on re-delivery)
//  2. dispatch the kind-specific strategy
//  3. record the author
//
// Parse failures inside a kind handler are logged and skipped, never
// aborting the event. A storage write failure propagates so the caller can
// retry the whole event; nothing is partially applied outside the failed
// batch.
func (in *T) ProcessEvent(ev *event.T) (stored bool, err error) {
	if stored, err = in.DB.SaveEvent(ev); err != nil {
		return
	}
	switch ev.Kind {
	case kind.SetMetadata:
		in.processMetadata(ev)
	case kind.ContactList:
		if err = in.processContactList(ev); err != nil {
			return
		}
	case kind.EncryptedDirectMessage:
		// stored in the primary namespace only; the chat view reads these
		// through a kind-filtered scan
	default:
		// unknown and uninterpreted kinds are stored and passed through,
		// forward compatible by default
	}
	err = in.DB.SetAuthor(ev.PubKey)
	return
}

func (in *T) processMetadata(ev *event.T) {
	p, err := profile.ParseMetadata(ev)
	if err != nil {
		// malformed metadata content: the event itself stays stored
		log.W.F("unparseable metadata from %s: %s", ev.PubKey, err)
		return
	}
	var stale bool
	if stale, err = in.DB.SetProfile(p); chk.E(err) {
		return
	}
	if !stale {
		log.D.F("profile updated for %s (%s)", p.PubKey, p.ShortName())
	}
}

func (in *T) processContactList(ev *event.T) (err error) {
	list := contact.FromTags(ev.Tags)
	pks := make([]string, 0, len(list))
	for _, c := range list {
		pks = append(pks, c.PubKey)
	}
	if in.Self != "" && ev.PubKey != in.Self {
		// someone else's follow list: not authoritative here, but every
		// referenced pubkey still joins the author set
		return in.DB.SetAuthors(pks)
	}
	if err = in.DB.SetContacts(list); chk.E(err) {
		return
	}
	log.I.F("contact list replaced, %d entries", len(list))
	return
}
