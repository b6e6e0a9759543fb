package services

import (
	"alumni-net/domain"
	"alumni-net/errors"
	"alumni-net/repositories"
	"alumni-net/runtime"
	"context"
	"fmt"
	"log/slog"
)

type IConnectionService interface {
	Connect(ctx context.Context, userID, otherID domain.UserID) error
	Disconnect(ctx context.Context, userID, otherID domain.UserID) error
	AreConnected(ctx context.Context, userID, otherID domain.UserID) (bool, error)
	ConnectionsOf(ctx context.Context, userID domain.UserID) ([]domain.UserID, error)
	ConnectionProfiles(ctx context.Context, userID domain.UserID) ([]domain.Profile, error)
	CheckSymmetry(ctx context.Context, userID, otherID domain.UserID) error
	CheckGraph(ctx context.Context) ([]Asymmetry, error)
}

// Asymmetry is a half edge: From lists To but To does not list From.
type Asymmetry struct {
	From domain.UserID
	To   domain.UserID
}

// ConnectionService manages the symmetric connection graph.
// A mutation holds the locks of both endpoint users, taken in id order, so
// edges sharing a user are applied one at a time instead of racing into
// store conflicts. The store transaction makes each one atomic across both
// endpoints.
type ConnectionService struct {
	userRepository       repositories.IUserRepository
	connectionRepository repositories.IConnectionRepository
	locks                *runtime.LockRegistry
	log                  *slog.Logger
}

func NewConnectionService(users repositories.IUserRepository, connections repositories.IConnectionRepository,
	locks *runtime.LockRegistry, log *slog.Logger) *ConnectionService {
	return &ConnectionService{userRepository: users, connectionRepository: connections, locks: locks, log: log}
}

func (s *ConnectionService) Connect(ctx context.Context, userID, otherID domain.UserID) error {
	if err := validatePair(userID, otherID); err != nil {
		return err
	}
	unlock := s.locks.LockAll(userLockKey(userID), userLockKey(otherID))
	defer unlock()

	changed, err := s.connectionRepository.Connect(ctx, userID, otherID)
	if err != nil {
		return err
	}
	if changed {
		s.log.Debug("Users connected", "user_id", userID, "other_id", otherID)
	}
	return nil
}

func (s *ConnectionService) Disconnect(ctx context.Context, userID, otherID domain.UserID) error {
	if err := validatePair(userID, otherID); err != nil {
		return err
	}
	unlock := s.locks.LockAll(userLockKey(userID), userLockKey(otherID))
	defer unlock()

	changed, err := s.connectionRepository.Disconnect(ctx, userID, otherID)
	if err != nil {
		return err
	}
	if changed {
		s.log.Debug("Users disconnected", "user_id", userID, "other_id", otherID)
	}
	return nil
}

// AreConnected checks userID's side only, edges being symmetric.
func (s *ConnectionService) AreConnected(ctx context.Context, userID, otherID domain.UserID) (bool, error) {
	connections, err := s.connectionRepository.Connections(ctx, userID)
	if err != nil {
		return false, err
	}
	return connections.Has(otherID), nil
}

// ConnectionsOf returns the sorted neighbours of userID, never nil.
func (s *ConnectionService) ConnectionsOf(ctx context.Context, userID domain.UserID) ([]domain.UserID, error) {
	connections, err := s.connectionRepository.Connections(ctx, userID)
	if err != nil {
		return nil, err
	}
	return connections.Sorted(), nil
}

func (s *ConnectionService) ConnectionProfiles(ctx context.Context, userID domain.UserID) ([]domain.Profile, error) {
	ids, err := s.ConnectionsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.Profile, 0, len(ids))
	for _, id := range ids {
		user, err := s.userRepository.GetUser(ctx, id)
		if errors.Is(err, errors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s lists unknown connection %s", errors.ErrConsistency, userID, id)
		}
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, user.Profile)
	}
	return profiles, nil
}

// CheckSymmetry verifies both endpoints agree on the edge.
func (s *ConnectionService) CheckSymmetry(ctx context.Context, userID, otherID domain.UserID) error {
	forward, err := s.AreConnected(ctx, userID, otherID)
	if err != nil {
		return err
	}
	backward, err := s.AreConnected(ctx, otherID, userID)
	if err != nil {
		return err
	}
	if forward != backward {
		return fmt.Errorf("%w: edge %s-%s is one-sided", errors.ErrConsistency, userID, otherID)
	}
	return nil
}

// CheckGraph scans every user and reports the half edges and self loops.
func (s *ConnectionService) CheckGraph(ctx context.Context) ([]Asymmetry, error) {
	users, err := s.userRepository.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	adjacency := make(map[domain.UserID]domain.Connections, len(users))
	for _, u := range users {
		adjacency[u.ID] = u.Connections
	}

	var broken []Asymmetry
	for _, u := range users {
		for _, other := range u.Connections.Sorted() {
			if !adjacency[other].Has(u.ID) || other == u.ID {
				broken = append(broken, Asymmetry{From: u.ID, To: other})
			}
		}
	}
	return broken, nil
}

func validatePair(userID, otherID domain.UserID) error {
	if _, err := domain.ParseUserID(string(userID)); err != nil {
		return err
	}
	if _, err := domain.ParseUserID(string(otherID)); err != nil {
		return err
	}
	if userID == otherID {
		return fmt.Errorf("%w: %s cannot pair with itself", errors.ErrInvalidArgument, userID)
	}
	return nil
}

// userLockKey guards writes to one user record.
func userLockKey(id domain.UserID) string {
	return "user:" + string(id)
}
