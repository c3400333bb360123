package contact

import (
	"encoding/hex"
	"os"

	"github.com/mirelabs/desktr/pkg/nostr/tags"
	"github.com/mirelabs/desktr/pkg/slog"
)

var log, _ = slog.New(os.Stderr)

// T is one edge of the local user's contact graph, parsed from a p tag of a
// kind-3 contact list: the followed pubkey plus optional relay hint and
// petname.
type T struct {
	PubKey string `json:"pubkey"`
	Relay  string `json:"relay,omitempty"`
	Alias  string `json:"alias,omitempty"`
}

// FromTags extracts every well formed p tag into a contact. Malformed
// entries (not a 32 byte hex pubkey) are logged and skipped; one bad tag
// never discards the rest of the list.
func FromTags(tt tags.T) (list []T) {
	for _, t := range tt.GetAll("p") {
		pk := t.Value()
		if !validPubKey(pk) {
			log.D.F("skipping malformed p tag entry '%s'", pk)
			continue
		}
		list = append(list, T{
			PubKey: pk,
			Relay:  t.Relay(),
			Alias:  t.Alias(),
		})
	}
	return
}

func validPubKey(pk string) bool {
	if len(pk) != 64 {
		return false
	}
	_, err := hex.DecodeString(pk)
	return err == nil
}
