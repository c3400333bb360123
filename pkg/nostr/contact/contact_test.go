package contact

import (
	"encoding/hex"
	"testing"

	"github.com/mirelabs/desktr/pkg/nostr/tag"
	"github.com/mirelabs/desktr/pkg/nostr/tags"
	"lukechampine.com/frand"
)

func TestFromTags(t *testing.T) {
	a := hex.EncodeToString(frand.Bytes(32))
	b := hex.EncodeToString(frand.Bytes(32))
	tt := tags.T{
		tag.T{"p", a, "wss://relay.one", "alice"},
		tag.T{"p", b},
		tag.T{"p", "tooshort"},
		tag.T{"p"},
		tag.T{"e", a},
	}
	list := FromTags(tt)
	if len(list) != 2 {
		t.Fatalf("got %d contacts, want 2", len(list))
	}
	if list[0].PubKey != a || list[0].Relay != "wss://relay.one" ||
		list[0].Alias != "alice" {
		t.Fatalf("first contact wrong: %+v", list[0])
	}
	if list[1].PubKey != b || list[1].Relay != "" || list[1].Alias != "" {
		t.Fatalf("bare p tag wrong: %+v", list[1])
	}
}
