package runtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockRegistry_SerializesSameKey(t *testing.T) {
	req := require.New(t)
	registry := NewLockRegistry()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := registry.Lock("alice|bob")
			defer unlock()
			// Unprotected read-modify-write, safe only under the key lock
			current := counter
			time.Sleep(time.Microsecond)
			counter = current + 1
		}()
	}
	wg.Wait()

	req.Equal(200, counter)
	req.Equal(0, registry.Size())
}

func TestLockRegistry_DistinctKeysDoNotBlock(t *testing.T) {
	req := require.New(t)
	registry := NewLockRegistry()

	unlockA := registry.Lock("a|b")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := registry.Lock("c|d")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("lock on an unrelated key should not wait")
	}
	req.Equal(1, registry.Size())
}

func TestLockRegistry_UnlockIsIdempotent(t *testing.T) {
	req := require.New(t)
	registry := NewLockRegistry()

	unlock := registry.Lock("k")
	unlock()
	unlock()
	req.Equal(0, registry.Size())

	// The key can be taken again
	registry.Lock("k")()
}

func TestLockRegistry_LockAllOverlappingSets(t *testing.T) {
	req := require.New(t)
	registry := NewLockRegistry()

	// Opposite argument orders would deadlock without a canonical order
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.LockAll("user:a", "user:b")()
		}()
		go func() {
			defer wg.Done()
			registry.LockAll("user:b", "user:a")()
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		req.Fail("overlapping LockAll calls deadlocked")
	}
	req.Equal(0, registry.Size())
}

func TestLockRegistry_LockAllDuplicateKeys(t *testing.T) {
	req := require.New(t)
	registry := NewLockRegistry()

	unlock := registry.LockAll("user:a", "user:a")
	req.Equal(1, registry.Size())
	unlock()
	req.Equal(0, registry.Size())
}
