package engine

import (
	"context"
	"sync"
)

// DoorFinder is the single store lookup the resolver needs.
type DoorFinder interface {
	FindActiveDoorID(ctx context.Context, doorKey string) (*int64, error)
}

// DoorResolver maps external door keys to internal door ids through a
// process-owned cache. Confirmed-missing keys are cached as nil, so a flood
// of events from an unknown reader costs one query, not one per event. The
// admin layer fires Invalidate on door mutations; until then a cached value
// is authoritative.
type DoorResolver struct {
	store         DoorFinder
	defaultDoorID *int64

	mu    sync.RWMutex
	cache map[string]*int64
}

func NewDoorResolver(store DoorFinder, defaultDoorID *int64) *DoorResolver {
	return &DoorResolver{
		store:         store,
		defaultDoorID: defaultDoorID,
		cache:         make(map[string]*int64),
	}
}

// Resolve returns the internal door id for doorKey, or the configured default
// when doorKey is empty. Lookup errors are returned uncached so a transient
// database failure does not poison the key.
func (r *DoorResolver) Resolve(ctx context.Context, doorKey string) (*int64, error) {
	if doorKey == "" {
		return r.defaultDoorID, nil
	}

	r.mu.RLock()
	id, ok := r.cache[doorKey]
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	id, err := r.store.FindActiveDoorID(ctx, doorKey)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[doorKey] = id
	r.mu.Unlock()

	return id, nil
}

func (r *DoorResolver) Invalidate(doorKey string) {
	r.mu.Lock()
	delete(r.cache, doorKey)
	r.mu.Unlock()
}

func (r *DoorResolver) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[string]*int64)
	r.mu.Unlock()
}
