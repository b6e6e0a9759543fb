package runtime

import (
	"slices"
	"sync"
)

type lockEntry struct {
	mu      sync.Mutex
	holders int
}

// LockRegistry hands out one mutex per key so that mutations touching the
// same user or pair are serialized while unrelated ones proceed in parallel.
type LockRegistry struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

func NewLockRegistry() *LockRegistry {
	return &LockRegistry{
		locks: make(map[string]*lockEntry),
	}
}

// Lock blocks until the caller owns key and returns the matching unlock.
// Entries are reference counted and removed once nobody holds or waits on
// them, so the map does not grow with the number of pairs ever seen.
func (r *LockRegistry) Lock(key string) (unlock func()) {
	r.mu.Lock()
	entry, ok := r.locks[key]
	if !ok {
		entry = &lockEntry{}
		r.locks[key] = entry
	}
	entry.holders++
	r.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			r.mu.Lock()
			defer r.mu.Unlock()
			entry.holders--
			if entry.holders == 0 {
				delete(r.locks, key)
			}
		})
	}
}

// LockAll takes every distinct key in sorted order and returns a single
// unlock releasing them in reverse. Callers locking overlapping sets cannot
// deadlock each other.
func (r *LockRegistry) LockAll(keys ...string) (unlock func()) {
	sorted := slices.Compact(slices.Sorted(slices.Values(keys)))
	unlocks := make([]func(), 0, len(sorted))
	for _, key := range sorted {
		unlocks = append(unlocks, r.Lock(key))
	}
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

// Size returns the number of keys currently held or awaited.
func (r *LockRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
