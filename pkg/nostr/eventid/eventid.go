package eventid

import (
	"encoding/hex"
	"fmt"
)

// PrefixLen is the length of the prefix trimmed out of the 256 bit SHA256
// hash that is the "id" field of an event, used as a fixed-width sortable
// storage key. The full id remains inside the serialized event record.
const PrefixLen = 8

// T is the SHA256 hash in hexadecimal of the canonical form of an event.
type T string

func (ei T) String() string { return string(ei) }

// Bytes decodes the hexadecimal string to the raw 32 byte hash.
func (ei T) Bytes() (b []byte, err error) {
	if b, err = hex.DecodeString(string(ei)); err != nil {
		return
	}
	return
}

// Prefix returns the fixed width truncation of the id used as a primary
// storage key. Errors if the id is not a well formed 32 byte hash.
func (ei T) Prefix() (b []byte, err error) {
	if err = ei.Validate(); err != nil {
		return
	}
	if b, err = hex.DecodeString(string(ei[:PrefixLen*2])); err != nil {
		return
	}
	return
}

// New inspects a string and ensures it is a valid, 64 character long
// hexadecimal string, returns the string coerced to the type.
func New(s string) (ei T, err error) {
	ei = T(s)
	if err = ei.Validate(); err != nil {
		ei = ei[:0]
		return
	}
	return
}

// Validate checks the T string is valid hex and 64 characters long.
func (ei T) Validate() (err error) {
	if _, err = hex.DecodeString(string(ei)); err != nil {
		return
	}
	if len(ei) != 64 {
		return fmt.Errorf("event ID invalid length: got %d expect 64",
			len(ei))
	}
	return
}
