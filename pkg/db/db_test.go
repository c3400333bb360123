package db

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/mirelabs/desktr/pkg/nostr/contact"
	"github.com/mirelabs/desktr/pkg/nostr/event"
	"github.com/mirelabs/desktr/pkg/nostr/kind"
	"github.com/mirelabs/desktr/pkg/nostr/profile"
	"github.com/mirelabs/desktr/pkg/nostr/tags"
	"github.com/mirelabs/desktr/pkg/nostr/timestamp"
	"github.com/mirelabs/desktr/pkg/store"
	"lukechampine.com/frand"
)

func openDB(t *testing.T) (d *T) {
	t.Helper()
	var err error
	if d, err = Open(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Error(err)
		}
	})
	return
}

func fakePubkey(src *frand.RNG) string {
	return hex.EncodeToString(src.Bytes(32))
}

// makeEvent builds an event at an exact timestamp; ids are content hashes so
// distinct content gives distinct ids.
func makeEvent(pubkey string, ki kind.T, at timestamp.T, content string) (ev *event.T) {
	ev = &event.T{
		PubKey:    pubkey,
		CreatedAt: at,
		Kind:      ki,
		Tags:      tags.T{},
		Content:   content,
	}
	ev.ID = ev.GetID()
	return
}

var src = frand.NewCustom(make([]byte, 32), 128, 20)

func TestSaveEventIdempotent(t *testing.T) {
	d := openDB(t)
	ev := makeEvent(fakePubkey(src), kind.TextNote, 1000, "hello")
	stored, err := d.SaveEvent(ev)
	if err != nil {
		t.Fatal(err)
	}
	if !stored {
		t.Fatal("first save should store")
	}
	if stored, err = d.SaveEvent(ev); err != nil {
		t.Fatal(err)
	}
	if stored {
		t.Fatal("re-delivery must be a no-op")
	}
	got, err := d.GetEvent(ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != ev.Content || got.PubKey != ev.PubKey {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSaveEventMalformedID(t *testing.T) {
	d := openDB(t)
	ev := makeEvent(fakePubkey(src), kind.TextNote, 1000, "x")
	ev.ID = "zzzz"
	if _, err := d.SaveEvent(ev); err == nil {
		t.Fatal("expected malformed id to be rejected")
	}
}

func TestGetEventMissing(t *testing.T) {
	d := openDB(t)
	ev := makeEvent(fakePubkey(src), kind.TextNote, 1, "ghost")
	if _, err := d.GetEvent(ev.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFeedOrderAndPagination(t *testing.T) {
	d := openDB(t)
	pk := fakePubkey(src)
	const n = 10
	for i := 0; i < n; i++ {
		ev := makeEvent(pk, kind.TextNote, timestamp.T(1000+i), "note")
		if _, err := d.SaveEvent(ev); err != nil {
			t.Fatal(err)
		}
	}
	// a reaction at the newest timestamp must not appear in the feed
	if _, err := d.SaveEvent(makeEvent(pk, kind.Reaction, 2000, "+")); err != nil {
		t.Fatal(err)
	}
	const limit = 3
	seen := make(map[string]bool)
	last := timestamp.T(1 << 62)
	total := 0
	for page := 0; ; page++ {
		evs, err := d.GetFeed(limit, page)
		if err != nil {
			t.Fatal(err)
		}
		if len(evs) == 0 {
			break
		}
		for _, ev := range evs {
			if ev.Kind != kind.TextNote {
				t.Fatalf("non-note kind %d in feed", ev.Kind)
			}
			if ev.CreatedAt > last {
				t.Fatalf("feed not descending: %d after %d",
					ev.CreatedAt, last)
			}
			last = ev.CreatedAt
			if seen[ev.ID.String()] {
				t.Fatalf("event %s appears on two pages", ev.ID)
			}
			seen[ev.ID.String()] = true
			total++
		}
	}
	if total != n {
		t.Fatalf("paged through %d events, want %d", total, n)
	}
	// page 0 must start at the newest note
	evs, err := d.GetFeed(limit, 0)
	if err != nil {
		t.Fatal(err)
	}
	if evs[0].CreatedAt != 1009 {
		t.Fatalf("page 0 starts at %d, want 1009", evs[0].CreatedAt)
	}
}

func TestFeedSameTimestamp(t *testing.T) {
	d := openDB(t)
	pk := fakePubkey(src)
	for i := 0; i < 5; i++ {
		ev := makeEvent(pk, kind.TextNote, 500, hex.EncodeToString(src.Bytes(6)))
		if _, err := d.SaveEvent(ev); err != nil {
			t.Fatal(err)
		}
	}
	evs, err := d.GetFeed(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 5 {
		t.Fatalf("got %d events at shared timestamp, want 5", len(evs))
	}
}

func TestProfileFreshness(t *testing.T) {
	d := openDB(t)
	pk := fakePubkey(src)
	p := &profile.T{PubKey: pk, Name: "alice", MetadataAt: 100}
	stale, err := d.SetProfile(p)
	if err != nil {
		t.Fatal(err)
	}
	if stale {
		t.Fatal("first write cannot be stale")
	}
	// an older snapshot arriving late is dropped
	stale, err = d.SetProfile(&profile.T{PubKey: pk, Name: "old", MetadataAt: 50})
	if err != nil {
		t.Fatal(err)
	}
	if !stale {
		t.Fatal("older snapshot must be stale")
	}
	// equal timestamps keep what is stored
	stale, err = d.SetProfile(&profile.T{PubKey: pk, Name: "tie", MetadataAt: 100})
	if err != nil {
		t.Fatal(err)
	}
	if !stale {
		t.Fatal("tie must favor the stored row")
	}
	got, err := d.GetProfile(pk)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "alice" {
		t.Fatalf("stored name %q, want alice", got.Name)
	}
	// a genuinely newer snapshot wins
	if stale, err = d.SetProfile(&profile.T{PubKey: pk, Name: "alice2",
		MetadataAt: 150}); err != nil || stale {
		t.Fatalf("newer snapshot rejected: stale=%v err=%v", stale, err)
	}
}

func TestProfilePreservesContactFlag(t *testing.T) {
	d := openDB(t)
	pk := fakePubkey(src)
	if err := d.SetContacts([]contact.T{{PubKey: pk, Alias: "bob"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.SetProfile(&profile.T{PubKey: pk, Name: "bob",
		MetadataAt: 10}); err != nil {
		t.Fatal(err)
	}
	is, err := d.IsContact(pk)
	if err != nil {
		t.Fatal(err)
	}
	if !is {
		t.Fatal("metadata overwrite dropped the contact flag")
	}
}

func TestSetContactsReplacement(t *testing.T) {
	d := openDB(t)
	a, b, c := fakePubkey(src), fakePubkey(src), fakePubkey(src)
	err := d.SetContacts([]contact.T{
		{PubKey: a, Alias: "alice"},
		{PubKey: b, Alias: "bob"},
	})
	if err != nil {
		t.Fatal(err)
	}
	pp, err := d.GetContacts()
	if err != nil {
		t.Fatal(err)
	}
	if len(pp) != 2 {
		t.Fatalf("got %d contacts, want 2", len(pp))
	}
	// zero-metadata rows are seeded with the petname
	pa, err := d.GetProfile(a)
	if err != nil {
		t.Fatal(err)
	}
	if pa.Name != "alice" {
		t.Fatalf("petname seeding failed: %q", pa.Name)
	}
	// replacement snapshot: a disappears, c appears
	err = d.SetContacts([]contact.T{
		{PubKey: b, Alias: "bob"},
		{PubKey: c, Alias: "carol"},
	})
	if err != nil {
		t.Fatal(err)
	}
	// a is unfollowed but its profile row survives
	if pa, err = d.GetProfile(a); err != nil {
		t.Fatal(err)
	}
	if pa.IsContact {
		t.Fatal("unlisted contact still flagged")
	}
	is, err := d.IsContact(c)
	if err != nil {
		t.Fatal(err)
	}
	if !is {
		t.Fatal("new contact not flagged")
	}
	list, err := d.ContactEntries()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d contact rows, want 2", len(list))
	}
	// all three pubkeys are in the author set for good
	set, err := d.AuthorSet()
	if err != nil {
		t.Fatal(err)
	}
	for _, pk := range []string{a, b, c} {
		if _, ok := set[pk]; !ok {
			t.Fatalf("pubkey %s missing from author set", pk[:8])
		}
	}
}

func TestAuthorsMonotonic(t *testing.T) {
	d := openDB(t)
	a, b := fakePubkey(src), fakePubkey(src)
	if err := d.SetAuthor(a); err != nil {
		t.Fatal(err)
	}
	if err := d.SetAuthors([]string{a, b}); err != nil {
		t.Fatal(err)
	}
	pks, err := d.GetAuthors()
	if err != nil {
		t.Fatal(err)
	}
	if len(pks) != 2 {
		t.Fatalf("got %d authors, want 2", len(pks))
	}
}

func TestEventsByKind(t *testing.T) {
	d := openDB(t)
	pk := fakePubkey(src)
	for i := 0; i < 4; i++ {
		ev := makeEvent(pk, kind.EncryptedDirectMessage,
			timestamp.T(10+i), hex.EncodeToString(src.Bytes(4)))
		if _, err := d.SaveEvent(ev); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := d.SaveEvent(makeEvent(pk, kind.TextNote, 99, "no")); err != nil {
		t.Fatal(err)
	}
	evs, err := d.EventsByKind(kind.EncryptedDirectMessage)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 4 {
		t.Fatalf("got %d DMs, want 4", len(evs))
	}
	for i := 1; i < len(evs); i++ {
		if evs[i].CreatedAt > evs[i-1].CreatedAt {
			t.Fatal("not sorted newest first")
		}
	}
}

func TestEventAndFeedIndexSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	d, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	ev := makeEvent(fakePubkey(src), kind.TextNote, 777, "durable")
	if _, err = d.SaveEvent(ev); err != nil {
		t.Fatal(err)
	}
	d.Flush()
	if err = d.Close(); err != nil {
		t.Fatal(err)
	}
	if d, err = Open(dir); err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	// the event write and its feed index entry land together or not at all
	if _, err = d.GetEvent(ev.ID); err != nil {
		t.Fatalf("event lost across reopen: %v", err)
	}
	evs, err := d.GetFeed(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].ID != ev.ID {
		t.Fatalf("feed index diverged from event namespace: %v", evs)
	}
}

func TestRebuildIndexes(t *testing.T) {
	d := openDB(t)
	pks := []string{fakePubkey(src), fakePubkey(src)}
	for i := 0; i < 6; i++ {
		ev := makeEvent(pks[i%2], kind.TextNote, timestamp.T(100+i), hex.EncodeToString(src.Bytes(3)))
		if _, err := d.SaveEvent(ev); err != nil {
			t.Fatal(err)
		}
	}
	before, err := d.GetFeed(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	// poison the derived namespaces
	if err = d.Put(AuthorNS, []byte("bogus"), nil); err != nil {
		t.Fatal(err)
	}
	if err = d.Put(FeedNS, []byte("garbage-key"), nil); err != nil {
		t.Fatal(err)
	}
	if err = d.RebuildIndexes(); err != nil {
		t.Fatal(err)
	}
	after, err := d.GetFeed(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Fatalf("rebuild changed feed length: %d != %d",
			len(after), len(before))
	}
	for i := range before {
		if before[i].ID != after[i].ID {
			t.Fatalf("feed diverges at %d after rebuild", i)
		}
	}
	set, err := d.AuthorSet()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := set["bogus"]; ok {
		t.Fatal("rebuild kept a poisoned author key")
	}
	for _, pk := range pks {
		if _, ok := set[pk]; !ok {
			t.Fatalf("rebuild lost author %s", pk[:8])
		}
	}
}
