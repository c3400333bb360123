package profile

import (
	"encoding/json"
	"fmt"

	"github.com/mirelabs/desktr/pkg/nostr/event"
	"github.com/mirelabs/desktr/pkg/nostr/kind"
	"github.com/mirelabs/desktr/pkg/nostr/timestamp"
)

// T is the stored profile row for a pubkey: the latest metadata snapshot
// merged with local state (the contact flag, which is not carried in
// metadata events).
//
// MetadataAt only moves forward; an older or equal metadata event must not
// overwrite a newer snapshot.
type T struct {
	PubKey      string      `json:"pubkey"`
	Name        string      `json:"name,omitempty"`
	DisplayName string      `json:"display_name,omitempty"`
	About       string      `json:"about,omitempty"`
	Website     string      `json:"website,omitempty"`
	Picture     string      `json:"picture,omitempty"`
	Banner      string      `json:"banner,omitempty"`
	NIP05       string      `json:"nip05,omitempty"`
	LUD06       string      `json:"lud06,omitempty"`
	LUD16       string      `json:"lud16,omitempty"`
	IsContact   bool        `json:"is_contact"`
	MetadataAt  timestamp.T `json:"metadata_at"`
}

// Metadata is the kind-0 content schema. Every field may be empty.
type Metadata struct {
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	About       string `json:"about,omitempty"`
	Website     string `json:"website,omitempty"`
	Picture     string `json:"picture,omitempty"`
	Banner      string `json:"banner,omitempty"`
	NIP05       string `json:"nip05,omitempty"`
	LUD06       string `json:"lud06,omitempty"`
	LUD16       string `json:"lud16,omitempty"`
}

// ParseMetadata decodes the content of a kind-0 event into a profile row
// stamped with the event's timestamp.
func ParseMetadata(ev *event.T) (p *T, err error) {
	if ev.Kind != kind.SetMetadata {
		err = fmt.Errorf("event %s is kind %d, not %d", ev.ID, ev.Kind,
			kind.SetMetadata)
		return
	}
	var m Metadata
	if err = json.Unmarshal([]byte(ev.Content), &m); err != nil {
		cont := ev.Content
		if len(cont) > 100 {
			cont = cont[:99]
		}
		err = fmt.Errorf("failed to parse metadata (%s) from event %s: %w",
			cont, ev.ID, err)
		return
	}
	p = &T{
		PubKey:      ev.PubKey,
		Name:        m.Name,
		DisplayName: m.DisplayName,
		About:       m.About,
		Website:     m.Website,
		Picture:     m.Picture,
		Banner:      m.Banner,
		NIP05:       m.NIP05,
		LUD06:       m.LUD06,
		LUD16:       m.LUD16,
		MetadataAt:  ev.CreatedAt,
	}
	return
}

// ShortName returns the best human label available for the profile.
func (p *T) ShortName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if len(p.PubKey) > 16 {
		return p.PubKey[:8] + "…" + p.PubKey[len(p.PubKey)-8:]
	}
	return p.PubKey
}
