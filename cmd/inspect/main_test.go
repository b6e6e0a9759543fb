package main

import (
	"alumni-net/domain"
	"alumni-net/repositories"
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// writeStore creates users in a fresh badger directory and closes it, the
// inspector then reopens it read-only.
func writeStore(t *testing.T, users ...repositories.User) string {
	t.Helper()
	dir := t.TempDir()
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	store, err := repositories.NewStore(db, logs.GetLoggerFromLevel(slog.LevelError), 5)
	require.NoError(t, err)

	repo := repositories.NewUserRepository(store)
	for _, u := range users {
		require.NoError(t, repo.CreateUser(context.Background(), u))
	}
	require.NoError(t, store.Close())
	require.NoError(t, db.Close())
	return dir
}

func user(id domain.UserID, connections ...domain.UserID) repositories.User {
	return repositories.User{
		ID:          id,
		Email:       string(id) + "@alumni.test",
		Roles:       []string{"user"},
		Profile:     domain.Profile{ID: id, Name: string(id), Details: domain.AlumniDetails{GraduationYear: 2015}},
		Connections: domain.NewConnections(connections...),
	}
}

func TestCheckGraph_FailsOnHalfEdge(t *testing.T) {
	req := require.New(t)
	// carol lists alice, alice does not list carol
	dir := writeStore(t, user("alice"), user("carol", "alice"))

	var stdout, stderr bytes.Buffer
	code := run([]string{"check-graph", "--db", dir}, &stdout, &stderr)

	req.Equal(1, code)
	req.Contains(stderr.String(), "1 one-sided edges")
}

func TestCheckGraph_SymmetricGraph(t *testing.T) {
	req := require.New(t)
	dir := writeStore(t, user("alice", "bob"), user("bob", "alice"), user("carol"))

	var stdout, stderr bytes.Buffer
	code := run([]string{"check-graph", "--db", dir}, &stdout, &stderr)

	req.Equal(0, code, stderr.String())
	req.Empty(stderr.String())
}

func TestRun_Errors(t *testing.T) {
	req := require.New(t)

	var stdout, stderr bytes.Buffer
	req.Equal(1, run([]string{"check-graph", "--db", ""}, &stdout, &stderr))
	req.Contains(stderr.String(), "no database path")

	stderr.Reset()
	req.Equal(1, run([]string{"check-graph", "--db", t.TempDir(), "--unread-mode", "sideways"}, &stdout, &stderr))

	stderr.Reset()
	req.Equal(1, run([]string{"users", "extra"}, &stdout, &stderr))
}

func TestUsers_ListsStoredUsers(t *testing.T) {
	req := require.New(t)
	dir := writeStore(t, user("alice", "bob"), user("bob", "alice"))

	var stdout, stderr bytes.Buffer
	req.Equal(0, run([]string{"users", "--db", dir}, &stdout, &stderr), stderr.String())
	req.Contains(stdout.String(), "alice@alumni.test")
	req.Contains(stdout.String(), "bob@alumni.test")
}
