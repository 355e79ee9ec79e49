package disk

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newStore(t *testing.T, root string, c *clock, maxEntries int) *Store {
	t.Helper()
	s, err := New(Config{Root: root, TTL: time.Hour, MaxEntries: maxEntries, Now: c.Now})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestStoreExpiresAfterTTL(t *testing.T) {
	c := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newStore(t, t.TempDir(), c, 10)
	ctx := context.Background()

	if err := s.Set(ctx, "remote:Native/NeoToken.cs", []byte("class NeoToken {}")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := s.Get(ctx, "remote:Native/NeoToken.cs")
	if err != nil || !ok {
		t.Fatalf("get before expiry: ok=%v err=%v", ok, err)
	}
	if string(got) != "class NeoToken {}" {
		t.Fatalf("body=%q", got)
	}

	c.now = c.now.Add(2 * time.Hour)
	if _, ok, err := s.Get(ctx, "remote:Native/NeoToken.cs"); err != nil || ok {
		t.Fatalf("get after expiry: ok=%v err=%v", ok, err)
	}
	if s.Len() != 0 {
		t.Fatalf("len=%d after expiry", s.Len())
	}
}

func TestStoreEvictsLeastRecentlyRead(t *testing.T) {
	c := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := newStore(t, t.TempDir(), c, 2)
	ctx := context.Background()

	step := func() { c.now = c.now.Add(time.Second) }
	if err := s.Set(ctx, "a", []byte("aa")); err != nil {
		t.Fatalf("set a: %v", err)
	}
	step()
	if err := s.Set(ctx, "b", []byte("bb")); err != nil {
		t.Fatalf("set b: %v", err)
	}
	step()
	if _, ok, _ := s.Get(ctx, "a"); !ok {
		t.Fatalf("touch a missed")
	}
	step()
	if err := s.Set(ctx, "c", []byte("cc")); err != nil {
		t.Fatalf("set c: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if _, ok, _ := s.Get(ctx, "a"); !ok {
		t.Fatalf("expected a to remain")
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	root := t.TempDir()
	c := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	s := newStore(t, root, c, 10)
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}

	reopened := newStore(t, root, c, 10)
	got, ok, err := reopened.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("reopened get: %q ok=%v err=%v", got, ok, err)
	}
}

func TestStoreDropsEntriesWithMissingBody(t *testing.T) {
	root := t.TempDir()
	c := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	ctx := context.Background()
	s := newStore(t, root, c, 10)
	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := os.Remove(filepath.Join(root, "sources", fileName("k"))); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	c := &clock{now: time.Now()}
	s := newStore(t, t.TempDir(), c, 1)
	if err := s.Set(context.Background(), " ", nil); err != ErrEmptyKey {
		t.Fatalf("err=%v", err)
	}
}
