package runtime

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonotonicClock_NeverGoesBackwards(t *testing.T) {
	req := require.New(t)
	wall := []time.Time{
		time.Unix(100, 0),
		time.Unix(100, 0),
		time.Unix(99, 0), // NTP step back
		time.Unix(101, 0),
	}
	i := 0
	clock := NewMonotonicClockFrom(func() time.Time {
		t := wall[i]
		i++
		return t
	})

	t1 := clock.Now()
	t2 := clock.Now()
	t3 := clock.Now()
	t4 := clock.Now()

	req.True(t2.After(t1))
	req.True(t3.After(t2))
	req.Equal(time.Unix(101, 0).UTC(), t4)
}

func TestMonotonicClock_Concurrent(t *testing.T) {
	req := require.New(t)
	clock := NewMonotonicClockFrom(func() time.Time { return time.Unix(42, 0) })

	var mu sync.Mutex
	seen := make(map[time.Time]struct{})
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			now := clock.Now()
			mu.Lock()
			seen[now] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	req.Len(seen, 100)
}
