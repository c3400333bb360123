package kinds

import (
	"github.com/mirelabs/desktr/pkg/nostr/kind"
)

type T []kind.T

// ToIntSlice flattens to []int for interfaces that speak raw kind numbers.
func (ar T) ToIntSlice() (is []int) {
	is = make([]int, len(ar))
	for i := range ar {
		is[i] = ar[i].ToInt()
	}
	return
}

func FromIntSlice(is []int) (k T) {
	for i := range is {
		k = append(k, kind.T(is[i]))
	}
	return
}

// Clone makes a new kinds.T with the same members.
func (ar T) Clone() (c T) {
	c = make(T, len(ar))
	copy(c, ar)
	return
}

// Contains returns true if the provided element is found in the kinds.T.
func (ar T) Contains(s kind.T) bool {
	for i := range ar {
		if ar[i] == s {
			return true
		}
	}
	return false
}

// Equals checks that the provided kinds.T matches element for element.
func (ar T) Equals(t1 T) bool {
	if len(ar) != len(t1) {
		return false
	}
	for i := range ar {
		if ar[i] != t1[i] {
			return false
		}
	}
	return true
}
