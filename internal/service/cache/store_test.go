package cache

import (
	"context"
	"testing"
)

func TestNopStoreAlwaysMisses(t *testing.T) {
	var store Store = NopStore{}
	ctx := context.Background()
	if err := store.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found, err := store.Get(ctx, "k", nil); found || err != nil {
		t.Fatalf("expected miss, found=%v err=%v", found, err)
	}
}
