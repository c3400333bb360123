package tags

import (
	"bytes"
	"fmt"

	"github.com/mirelabs/desktr/pkg/nostr/tag"
)

// T is a list of tag.T - which are lists of string elements with ordering
// and no uniqueness constraint (not a set).
type T []tag.T

// GetFirst gets the first tag in tags that has the given key.
func (t T) GetFirst(key string) *tag.T {
	for _, v := range t {
		if v.Key() == key {
			return &v
		}
	}
	return nil
}

// GetLast gets the last tag in tags that has the given key.
func (t T) GetLast(key string) *tag.T {
	for i := len(t) - 1; i >= 0; i-- {
		v := t[i]
		if v.Key() == key {
			return &v
		}
	}
	return nil
}

// GetAll gets all the tags with the given key.
func (t T) GetAll(key string) T {
	result := make(T, 0, len(t))
	for _, v := range t {
		if v.Key() == key {
			result = append(result, v)
		}
	}
	return result
}

// AppendUnique appends a tag if no tag with the same key and value exists
// yet, otherwise does nothing.
func (t T) AppendUnique(tg tag.T) T {
	for _, v := range t {
		if v.Key() == tg.Key() && v.Value() == tg.Value() {
			return t
		}
	}
	return append(t, tg)
}

// ContainsAny returns true if any of the strings given in `values` matches
// the value of any tag with the given key.
func (t T) ContainsAny(key string, values ...string) bool {
	for _, v := range t {
		if len(v) < 2 {
			continue
		}
		if v.Key() != key {
			continue
		}
		for _, candidate := range values {
			if v.Value() == candidate {
				return true
			}
		}
	}
	return false
}

// PubKeys collects the values of every p tag, in order, duplicates kept.
func (t T) PubKeys() (pks []string) {
	for _, v := range t {
		if v.Key() == "p" && v.Value() != "" {
			pks = append(pks, v.Value())
		}
	}
	return
}

func (t T) String() string {
	buf := new(bytes.Buffer)
	buf.WriteByte('[')
	last := len(t) - 1
	for i := range t {
		_, _ = fmt.Fprint(buf, t[i])
		if i < last {
			buf.WriteByte(',')
		}
	}
	buf.WriteByte(']')
	return buf.String()
}
