package filter

import (
	"testing"

	"github.com/mirelabs/desktr/pkg/nostr/kind"
	"github.com/mirelabs/desktr/pkg/nostr/kinds"
	"github.com/mirelabs/desktr/pkg/nostr/timestamp"
)

func TestEqualIsOrderInsensitive(t *testing.T) {
	a := &T{
		Kinds:   kinds.T{kind.TextNote},
		Authors: []string{"x", "y", "z"},
		Limit:   10,
	}
	b := a.Clone()
	b.Authors = []string{"z", "x", "y"}
	if !a.Equal(b) {
		t.Fatal("author order should not matter")
	}
	b.Authors = []string{"z", "x"}
	if a.Equal(b) {
		t.Fatal("different author sets compare equal")
	}
}

func TestEqualTimestamps(t *testing.T) {
	since := timestamp.T(100)
	a := &T{Since: &since}
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone not equal")
	}
	other := timestamp.T(200)
	b.Since = &other
	if a.Equal(b) {
		t.Fatal("different since compares equal")
	}
	b.Since = nil
	if a.Equal(b) {
		t.Fatal("nil since compares equal to set since")
	}
}

func TestCloneIsDeep(t *testing.T) {
	a := &T{Authors: []string{"x"}, PTags: []string{"p"}}
	b := a.Clone()
	b.Authors[0] = "mutated"
	if a.Authors[0] != "x" {
		t.Fatal("clone shares author backing array")
	}
}
