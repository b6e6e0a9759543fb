package services

import (
	"alumni-net/domain"
	"alumni-net/moderation"
	"alumni-net/repositories"
	"alumni-net/runtime"
	"alumni-net/search"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// testEnv wires the services on a real badger store in a temp dir.
type testEnv struct {
	store       *repositories.Store
	users       *repositories.UserRepository
	messages    *repositories.MessageRepository
	connections *ConnectionService
	profiles    *ProfileService
	messaging   *MessagingService
	wall        *time.Time
}

func newTestEnv(t *testing.T, mode domain.UnreadMode, clock runtime.Clock) *testEnv {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelError)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	store, err := repositories.NewStore(db, log, 5)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
		_ = db.Close()
	})

	directory, err := search.OpenDirectory("", 10, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = directory.Close() })
	moderator, err := moderation.NewModerator([]string{"scam"}, '*', log)
	require.NoError(t, err)

	env := &testEnv{store: store}
	if clock == nil {
		wall := time.Unix(0, 0).UTC()
		env.wall = &wall
		clock = runtime.NewMonotonicClockFrom(func() time.Time { return *env.wall })
	}
	locks := runtime.NewLockRegistry()
	env.users = repositories.NewUserRepository(store)
	env.messages = repositories.NewMessageRepository(store, log)
	env.connections = NewConnectionService(env.users, repositories.NewConnectionRepository(store), locks, log)
	env.profiles = NewProfileService(env.users, directory, clock, locks, log)
	env.messaging = NewMessagingService(env.users, env.messages, &moderator, clock, locks,
		MessagingConfig{MaxContentLength: 50, UnreadMode: mode}, log)
	return env
}

// at moves the test wall clock.
func (e *testEnv) at(unix int64) {
	*e.wall = time.Unix(unix, 0).UTC()
}

func (e *testEnv) seed(t *testing.T, ids ...domain.UserID) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, e.users.CreateUser(context.Background(), repositories.User{
			ID:    id,
			Email: string(id) + "@alumni.test",
			Roles: []string{"user"},
			Profile: domain.Profile{
				ID:      id,
				Name:    string(id),
				Details: domain.AlumniDetails{GraduationYear: 2019},
			},
			Connections: domain.NewConnections(),
		}))
	}
}
