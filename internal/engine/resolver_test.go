package engine_test

import (
	"context"
	"testing"

	"github.com/doorro/gatekeeper/internal/engine"
)

func TestResolver_CachesFoundID(t *testing.T) {
	fs := newFakeStore()
	fs.doors["front"] = 7
	r := engine.NewDoorResolver(fs, nil)
	ctx := context.Background()

	first, err := r.Resolve(ctx, "front")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := r.Resolve(ctx, "front")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if first == nil || second == nil || *first != 7 || *second != 7 {
		t.Fatalf("expected 7 both times, got %v and %v", first, second)
	}
	if fs.doorCalls != 1 {
		t.Errorf("expected exactly one store lookup, got %d", fs.doorCalls)
	}
}

func TestResolver_CachesConfirmedMiss(t *testing.T) {
	fs := newFakeStore()
	r := engine.NewDoorResolver(fs, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id, err := r.Resolve(ctx, "ghost")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if id != nil {
			t.Fatalf("expected nil for unknown key, got %v", id)
		}
	}

	if fs.doorCalls != 1 {
		t.Errorf("confirmed miss must be cached, got %d lookups", fs.doorCalls)
	}
}

func TestResolver_EmptyKeyUsesDefault(t *testing.T) {
	defaultDoor := int64(3)
	fs := newFakeStore()
	r := engine.NewDoorResolver(fs, &defaultDoor)

	id, err := r.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id == nil || *id != 3 {
		t.Fatalf("expected default door 3, got %v", id)
	}
	if fs.doorCalls != 0 {
		t.Errorf("default door must not hit the store, got %d lookups", fs.doorCalls)
	}
}

func TestResolver_EmptyKeyNoDefault(t *testing.T) {
	fs := newFakeStore()
	r := engine.NewDoorResolver(fs, nil)

	id, err := r.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != nil {
		t.Fatalf("expected nil with no default configured, got %v", id)
	}
}

func TestResolver_InvalidateForcesRequery(t *testing.T) {
	fs := newFakeStore()
	r := engine.NewDoorResolver(fs, nil)
	ctx := context.Background()

	if id, _ := r.Resolve(ctx, "front"); id != nil {
		t.Fatalf("expected miss before door exists, got %v", id)
	}

	// Admin creates the door and fires the invalidation hook.
	fs.doors["front"] = 7
	r.Invalidate("front")

	id, err := r.Resolve(ctx, "front")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id == nil || *id != 7 {
		t.Fatalf("expected 7 after invalidation, got %v", id)
	}
	if fs.doorCalls != 2 {
		t.Errorf("expected requery after invalidation, got %d lookups", fs.doorCalls)
	}
}

func TestResolver_InvalidateAll(t *testing.T) {
	fs := newFakeStore()
	fs.doors["a"] = 1
	fs.doors["b"] = 2
	r := engine.NewDoorResolver(fs, nil)
	ctx := context.Background()

	r.Resolve(ctx, "a")
	r.Resolve(ctx, "b")
	r.InvalidateAll()
	r.Resolve(ctx, "a")
	r.Resolve(ctx, "b")

	if fs.doorCalls != 4 {
		t.Errorf("expected 4 lookups across a full flush, got %d", fs.doorCalls)
	}
}
