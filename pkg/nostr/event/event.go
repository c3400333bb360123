package event

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"github.com/mirelabs/desktr/pkg/nostr/eventid"
	"github.com/mirelabs/desktr/pkg/nostr/kind"
	"github.com/mirelabs/desktr/pkg/nostr/tags"
	"github.com/mirelabs/desktr/pkg/nostr/timestamp"
	"github.com/minio/sha256-simd"
)

func Hash(in []byte) (out []byte) {
	h := sha256.Sum256(in)
	return h[:]
}

// T is the primary datatype of nostr. This is the form of the structure that
// defines its JSON string based format.
//
// Signatures are created and verified upstream of this client core; the Sig
// field is stored verbatim and never re-checked here.
type T struct {

	// ID is the SHA256 hash of the canonical encoding of the event
	ID eventid.T `json:"id"`

	// PubKey is the public key of the event creator in *hexadecimal* format
	PubKey string `json:"pubkey"`

	// CreatedAt is the UNIX timestamp of the event according to the event
	// creator (never trust a timestamp!)
	CreatedAt timestamp.T `json:"created_at"`

	// Kind is the nostr protocol code for the type of event. See kind.T
	Kind kind.T `json:"kind"`

	// Tags are a list of tags, which are a list of strings usually structured
	// as a 3 layer scheme indicating specific features of an event.
	Tags tags.T `json:"tags"`

	// Content is an arbitrary string that can contain anything, but usually
	// conforming to a specification relating to the Kind and the Tags.
	Content string `json:"content"`

	// Sig is the signature on the ID hash that validates as coming from the
	// Pubkey.
	Sig string `json:"sig"`
}

// New composes an unsigned event with its ID filled in, for handing to an
// upstream signer before publishing.
func New(pubkey string, ki kind.T, tt tags.T, content string) (ev *T) {
	ev = &T{
		PubKey:    pubkey,
		CreatedAt: timestamp.Now(),
		Kind:      ki,
		Tags:      tt,
		Content:   content,
	}
	if ev.Tags == nil {
		ev.Tags = tags.T{}
	}
	ev.ID = ev.GetID()
	return
}

// Serialize returns the event encoded as standard nostr JSON.
func (ev *T) Serialize() (b []byte) {
	b, _ = json.Marshal(ev)
	return
}

// ToCanonical returns the JSON encoded canonical form of the event, the
// preimage of the ID hash. The canonical form keeps <, > and & literal, so
// the default marshaller's HTML escaping must be switched off or the hash
// diverges from what relays compute.
func (ev *T) ToCanonical() (b []byte) {
	tt := ev.Tags
	if tt == nil {
		tt = tags.T{}
	}
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode([]interface{}{
		0, ev.PubKey, ev.CreatedAt, ev.Kind, tt, ev.Content,
	})
	return bytes.TrimRight(buf.Bytes(), "\n")
}

// GetIDBytes returns the raw SHA256 hash of the canonical form of the event.
func (ev *T) GetIDBytes() []byte { return Hash(ev.ToCanonical()) }

// GetID serializes and returns the event ID as a hexadecimal string.
func (ev *T) GetID() eventid.T {
	return eventid.T(hex.EncodeToString(ev.GetIDBytes()))
}

// Ascending is a slice of events that sorts in ascending chronological order
type Ascending []*T

func (ev Ascending) Len() int           { return len(ev) }
func (ev Ascending) Less(i, j int) bool { return ev[i].CreatedAt < ev[j].CreatedAt }
func (ev Ascending) Swap(i, j int)      { ev[i], ev[j] = ev[j], ev[i] }

// Descending sorts a slice of events in reverse chronological order (newest
// first)
type Descending []*T

func (e Descending) Len() int           { return len(e) }
func (e Descending) Less(i, j int) bool { return e[i].CreatedAt > e[j].CreatedAt }
func (e Descending) Swap(i, j int)      { e[i], e[j] = e[j], e[i] }
