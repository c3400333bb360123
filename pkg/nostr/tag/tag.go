package tag

import (
	"bytes"
	"fmt"
)

// The tag position meanings so they are clear when reading.
const (
	Key = iota
	Value
	Relay
	Alias
)

// T is a list of strings with a literal ordering.
//
// Not a set, there can be repeating elements.
type T []string

// Clone makes a new tag with the same members.
func (t T) Clone() (c T) {
	c = make(T, len(t))
	copy(c, t)
	return
}

// Key returns the first element of the tag.
func (t T) Key() string {
	if len(t) > Key {
		return t[Key]
	}
	return ""
}

// Value returns the second element of the tag.
func (t T) Value() string {
	if len(t) > Value {
		return t[Value]
	}
	return ""
}

// Relay returns the third element of e and p tags, which by convention is a
// relay URL hint.
func (t T) Relay() string {
	if (t.Key() == "e" || t.Key() == "p") && len(t) > Relay {
		return t[Relay]
	}
	return ""
}

// Alias returns the fourth element of a p tag, which by convention is a
// petname for the referenced pubkey.
func (t T) Alias() string {
	if t.Key() == "p" && len(t) > Alias {
		return t[Alias]
	}
	return ""
}

func (t T) String() string {
	buf := new(bytes.Buffer)
	buf.WriteByte('[')
	last := len(t) - 1
	for i := range t {
		buf.WriteByte('"')
		_, _ = fmt.Fprint(buf, t[i])
		buf.WriteByte('"')
		if i < last {
			buf.WriteByte(',')
		}
	}
	buf.WriteByte(']')
	return buf.String()
}
