package filesystem_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/worrybox/internal/adapters/filesystem"
)

func TestKeyValueStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := filesystem.NewKeyValueStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()

	// Missing key
	if _, ok, err := store.Get(ctx, "worries"); err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v; want false, nil", ok, err)
	}

	if err := store.Set(ctx, "worries", []byte(`[{"id":"w-1"}]`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, ok, err := store.Get(ctx, "worries")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if string(value) != `[{"id":"w-1"}]` {
		t.Errorf("unexpected value %s", value)
	}

	// File lives at <dir>/<key>.json and no temp files are left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "worries.json" {
		t.Errorf("unexpected directory contents: %v", entries)
	}

	if err := store.Remove(ctx, "worries"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "worries"); ok {
		t.Error("expected key to be gone after Remove")
	}
	if err := store.Remove(ctx, "worries"); err != nil {
		t.Errorf("Remove(missing) error = %v, want nil", err)
	}
}

func TestKeyValueStore_Overwrite(t *testing.T) {
	store, err := filesystem.NewKeyValueStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()

	for _, v := range []string{`{"a":1}`, `{"a":2}`} {
		if err := store.Set(ctx, "stats", []byte(v)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	value, _, _ := store.Get(ctx, "stats")
	if string(value) != `{"a":2}` {
		t.Errorf("expected last write to win, got %s", value)
	}
}

func TestKeyValueStore_InvalidKey(t *testing.T) {
	store, err := filesystem.NewKeyValueStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	for _, key := range []string{"", "../escape", "Upper", "a/b"} {
		if err := store.Set(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("Set(%q) expected error", key)
		}
	}
}

func TestNewKeyValueStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	if _, err := filesystem.NewKeyValueStore(dir); err != nil {
		t.Fatalf("NewKeyValueStore failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory %s to exist", dir)
	}
}
