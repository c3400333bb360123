package store

import (
	"bytes"
	"errors"
	"testing"

	"lukechampine.com/frand"
)

var testNamespaces = []string{"event", "profile", "contact"}

func openTest(t *testing.T) (s *T) {
	t.Helper()
	var err error
	if s, err = Open(t.TempDir(), testNamespaces); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Error(err)
		}
	})
	return
}

func TestPutGet(t *testing.T) {
	s := openTest(t)
	k, v := frand.Bytes(16), frand.Bytes(64)
	if err := s.Put("event", k, v); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("event", k)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, v) {
		t.Fatalf("got %x, want %x", got, v)
	}
	has, err := s.Has("event", k)
	if err != nil {
		t.Fatal(err)
	}
	if !has {
		t.Fatal("expected key to exist")
	}
}

func TestGetMissing(t *testing.T) {
	s := openTest(t)
	if _, err := s.Get("event", []byte("nope")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	has, err := s.Has("event", []byte("nope"))
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Fatal("expected key to be absent")
	}
}

func TestNamespaceIsolation(t *testing.T) {
	s := openTest(t)
	k := []byte("shared")
	if err := s.Put("event", k, []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put("profile", k, []byte("b")); err != nil {
		t.Fatal(err)
	}
	va, err := s.Get("event", k)
	if err != nil {
		t.Fatal(err)
	}
	vb, err := s.Get("profile", k)
	if err != nil {
		t.Fatal(err)
	}
	if string(va) != "a" || string(vb) != "b" {
		t.Fatalf("namespaces bleed: %q %q", va, vb)
	}
	if _, err = s.Get("contact", k); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound in third namespace, got %v", err)
	}
}

func TestUnknownNamespace(t *testing.T) {
	s := openTest(t)
	if err := s.Put("bogus", []byte("k"), []byte("v")); !errors.Is(err, ErrNamespace) {
		t.Fatalf("expected ErrNamespace, got %v", err)
	}
	if _, err := s.Get("bogus", []byte("k")); !errors.Is(err, ErrNamespace) {
		t.Fatalf("expected ErrNamespace, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := openTest(t)
	k := []byte("doomed")
	if err := s.Put("event", k, []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("event", k); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("event", k); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// deleting again is a no-op
	if err := s.Delete("event", k); err != nil {
		t.Fatal(err)
	}
}

type testRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONRoundTrip(t *testing.T) {
	s := openTest(t)
	in := testRecord{Name: "fiatjaf", Count: 3}
	if err := s.PutJSON("profile", []byte("r"), &in); err != nil {
		t.Fatal(err)
	}
	var out testRecord
	if err := s.GetJSON("profile", []byte("r"), &out); err != nil {
		t.Fatal(err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestCorruptJSON(t *testing.T) {
	s := openTest(t)
	if err := s.Put("profile", []byte("bad"), []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	var out testRecord
	if err := s.GetJSON("profile", []byte("bad"), &out); !errors.Is(err, ErrSerialization) {
		t.Fatalf("expected ErrSerialization, got %v", err)
	}
}

func TestBatchAtomicity(t *testing.T) {
	s := openTest(t)
	boom := errors.New("boom")
	err := s.Batch(func(b *Batch) (err error) {
		if err = b.Put("event", []byte("one"), []byte("1")); err != nil {
			return
		}
		if err = b.Put("event", []byte("two"), []byte("2")); err != nil {
			return
		}
		return boom
	})
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite wrap, got %v", err)
	}
	for _, k := range []string{"one", "two"} {
		if _, err = s.Get("event", []byte(k)); !errors.Is(err, ErrNotFound) {
			t.Fatalf("key %s leaked from aborted batch: %v", k, err)
		}
	}
}

func TestBatchReadsOwnWrites(t *testing.T) {
	s := openTest(t)
	err := s.Batch(func(b *Batch) (err error) {
		if err = b.Put("event", []byte("k"), []byte("v")); err != nil {
			return
		}
		var v []byte
		if v, err = b.Get("event", []byte("k")); err != nil {
			return
		}
		if string(v) != "v" {
			t.Fatal("batch does not see its own writes")
		}
		return
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestIterateOrder(t *testing.T) {
	s := openTest(t)
	keys := []string{"a", "b", "c", "d"}
	for _, k := range keys {
		if err := s.Put("event", []byte(k), []byte("v"+k)); err != nil {
			t.Fatal(err)
		}
	}
	// a decoy in another namespace must not show up
	if err := s.Put("profile", []byte("x"), []byte("decoy")); err != nil {
		t.Fatal(err)
	}
	var fwd []string
	err := s.IterateKeys("event", false, func(k []byte) bool {
		fwd = append(fwd, string(k))
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(fwd) != len(keys) {
		t.Fatalf("got %d keys, want %d", len(fwd), len(keys))
	}
	for i, k := range keys {
		if fwd[i] != k {
			t.Fatalf("forward order wrong at %d: %s", i, fwd[i])
		}
	}
	var rev []string
	err = s.IterateKeys("event", true, func(k []byte) bool {
		rev = append(rev, string(k))
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := range keys {
		if rev[i] != keys[len(keys)-1-i] {
			t.Fatalf("reverse order wrong at %d: %s", i, rev[i])
		}
	}
}

func TestIterateEarlyStop(t *testing.T) {
	s := openTest(t)
	for _, k := range []string{"a", "b", "c"} {
		if err := s.Put("event", []byte(k), []byte(k)); err != nil {
			t.Fatal(err)
		}
	}
	var n int
	err := s.IterateKeys("event", false, func(k []byte) bool {
		n++
		return n < 2
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("visited %d keys, want 2", n)
	}
}

func TestReopenPersistence(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, testNamespaces)
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Put("event", []byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	s.Flush()
	if err = s.Close(); err != nil {
		t.Fatal(err)
	}
	if s, err = Open(dir, testNamespaces); err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	v, err := s.Get("event", []byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if string(v) != "v" {
		t.Fatalf("got %q after reopen", v)
	}
}
