package repositories

import (
	"alumni-net/domain"
	"alumni-net/errors"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnectionRepository_ConnectIsSymmetricAndIdempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUserRepository(store)
	repo := NewConnectionRepository(store)
	seedUser(t, users, "alice")
	seedUser(t, users, "bob")

	changed, err := repo.Connect(ctx, "alice", "bob")
	req.NoError(err)
	req.True(changed)

	changed, err = repo.Connect(ctx, "bob", "alice")
	req.NoError(err)
	req.False(changed)

	aliceSide, err := repo.Connections(ctx, "alice")
	req.NoError(err)
	bobSide, err := repo.Connections(ctx, "bob")
	req.NoError(err)
	req.Equal([]domain.UserID{"bob"}, aliceSide.Sorted())
	req.Equal([]domain.UserID{"alice"}, bobSide.Sorted())
}

func TestConnectionRepository_Disconnect(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUserRepository(store)
	repo := NewConnectionRepository(store)
	seedUser(t, users, "alice")
	seedUser(t, users, "bob")

	changed, err := repo.Disconnect(ctx, "alice", "bob")
	req.NoError(err)
	req.False(changed)

	_, err = repo.Connect(ctx, "alice", "bob")
	req.NoError(err)
	changed, err = repo.Disconnect(ctx, "bob", "alice")
	req.NoError(err)
	req.True(changed)

	aliceSide, err := repo.Connections(ctx, "alice")
	req.NoError(err)
	req.Empty(aliceSide)
	bobSide, err := repo.Connections(ctx, "bob")
	req.NoError(err)
	req.Empty(bobSide)
}

func TestConnectionRepository_UnknownUserLeavesNoHalfEdge(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUserRepository(store)
	repo := NewConnectionRepository(store)
	seedUser(t, users, "alice")

	_, err := repo.Connect(ctx, "alice", "ghost")
	req.ErrorIs(err, errors.ErrNotFound)

	aliceSide, err := repo.Connections(ctx, "alice")
	req.NoError(err)
	req.Empty(aliceSide)
}

func TestConnectionRepository_ConcurrentConnectsKeepSymmetry(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newTestStore(t)
	users := NewUserRepository(store)
	repo := NewConnectionRepository(store)
	hub := domain.UserID("hub")
	seedUser(t, users, hub)
	spokes := []domain.UserID{"s1", "s2", "s3", "s4", "s5", "s6"}
	for _, s := range spokes {
		seedUser(t, users, s)
	}

	// Every connect rewrites the hub record, so transactions conflict and retry
	store.retries = 100
	var wg sync.WaitGroup
	errs := make(chan error, len(spokes))
	for _, s := range spokes {
		wg.Add(1)
		go func(s domain.UserID) {
			defer wg.Done()
			_, err := repo.Connect(ctx, hub, s)
			errs <- err
		}(s)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		req.NoError(err)
	}

	hubSide, err := repo.Connections(ctx, hub)
	req.NoError(err)
	req.Equal(spokes, hubSide.Sorted())
	for _, s := range spokes {
		side, err := repo.Connections(ctx, s)
		req.NoError(err)
		req.True(side.Has(hub))
	}
}
