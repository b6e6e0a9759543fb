//go:generate go run go.uber.org/mock/mockgen -source=connection.go -destination=../mocks/mock_connection_repository.go -package=mocks
package repositories

import (
	"alumni-net/domain"
	"context"

	"github.com/dgraph-io/badger/v4"
)

type IConnectionRepository interface {
	Connect(ctx context.Context, a, b domain.UserID) (bool, error)
	Disconnect(ctx context.Context, a, b domain.UserID) (bool, error)
	Connections(ctx context.Context, id domain.UserID) (domain.Connections, error)
}

// ConnectionRepository stores the connection graph as one adjacency set per
// user record. Both endpoints are always written in the same transaction.
type ConnectionRepository struct {
	store *Store
}

func NewConnectionRepository(store *Store) *ConnectionRepository {
	return &ConnectionRepository{store: store}
}

// Connect adds the edge on both sides and reports whether anything changed.
// A half edge left by older data is completed rather than rejected.
func (c ConnectionRepository) Connect(ctx context.Context, a, b domain.UserID) (bool, error) {
	return c.mutateEdge(ctx, a, b, domain.Connections.Add)
}

// Disconnect removes the edge on both sides and reports whether anything changed.
func (c ConnectionRepository) Disconnect(ctx context.Context, a, b domain.UserID) (bool, error) {
	return c.mutateEdge(ctx, a, b, domain.Connections.Remove)
}

func (c ConnectionRepository) Connections(ctx context.Context, id domain.UserID) (domain.Connections, error) {
	var connections domain.Connections
	err := c.store.view(ctx, func(txn *badger.Txn) error {
		user, err := loadUser(txn, id)
		if err != nil {
			return err
		}
		connections = user.Connections
		return nil
	})
	return connections, err
}

func (c ConnectionRepository) mutateEdge(ctx context.Context, a, b domain.UserID,
	op func(domain.Connections, domain.UserID) bool) (bool, error) {
	var changed bool
	err := c.store.update(ctx, func(txn *badger.Txn) error {
		changed = false
		userA, err := loadUser(txn, a)
		if err != nil {
			return err
		}
		userB, err := loadUser(txn, b)
		if err != nil {
			return err
		}
		changedA := op(userA.Connections, b)
		changedB := op(userB.Connections, a)
		if changedA {
			if err = setRecord(txn, userKey(a), fromUser(userA)); err != nil {
				return err
			}
		}
		if changedB {
			if err = setRecord(txn, userKey(b), fromUser(userB)); err != nil {
				return err
			}
		}
		changed = changedA || changedB
		return nil
	})
	return changed, err
}
