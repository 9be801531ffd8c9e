package memory_test

import (
	"context"
	"testing"

	"github.com/example/worrybox/internal/adapters/memory"
)

func TestKeyValueStore(t *testing.T) {
	store := memory.NewKeyValueStore()
	ctx := context.Background()

	value := []byte("abc")
	if err := store.Set(ctx, "k", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[0] = 'x'

	got, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if string(got) != "abc" {
		t.Errorf("expected stored copy abc, got %s", got)
	}
	got[0] = 'y'
	if again, _, _ := store.Get(ctx, "k"); string(again) != "abc" {
		t.Errorf("Get returned shared slice, now %s", again)
	}

	if err := store.Remove(ctx, "k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("expected key to be gone")
	}
}
