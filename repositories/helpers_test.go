package repositories

import (
	"alumni-net/domain"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T, dir string) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	return db
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := openTestDB(t, t.TempDir())
	store, err := NewStore(db, logs.GetLoggerFromLevel(slog.LevelError), 5)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
		_ = db.Close()
	})
	return store
}

func seedUser(t *testing.T, repo *UserRepository, id domain.UserID) User {
	t.Helper()
	user := User{
		ID:           id,
		Email:        string(id) + "@alumni.test",
		PasswordHash: "hash",
		Roles:        []string{"user"},
		Profile: domain.Profile{
			ID:      id,
			Name:    string(id),
			Email:   string(id) + "@alumni.test",
			Details: domain.StudentDetails{Program: "CS", GraduationYear: 2027},
		},
		Connections: domain.NewConnections(),
		CreatedAt:   time.Now().UTC().Round(0),
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func newMessage(from, to domain.UserID, content string, at time.Time) domain.Message {
	return domain.Message{
		ID:         uuid.New(),
		SenderID:   from,
		ReceiverID: to,
		Content:    content,
		At:         at,
	}
}
