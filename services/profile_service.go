package services

import (
	"alumni-net/auth"
	"alumni-net/domain"
	"alumni-net/errors"
	"alumni-net/repositories"
	"alumni-net/runtime"
	"alumni-net/search"
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

type IProfileService interface {
	ResolveIdentity(ctx context.Context, id domain.UserID) (domain.Profile, error)
	GetProfile(ctx context.Context, id domain.UserID) (domain.Profile, error)
	UpdateProfile(ctx context.Context, id domain.UserID, patch domain.ProfilePatch) (domain.Profile, error)
	SearchProfiles(ctx context.Context, query string, limit int) ([]domain.Profile, error)
	ListProfiles(ctx context.Context, caller domain.UserID, role domain.Role) ([]domain.Profile, error)
	Reindex(ctx context.Context) (int, error)
}

type ProfileService struct {
	userRepository repositories.IUserRepository
	directory      search.IDirectory
	clock          runtime.Clock
	locks          *runtime.LockRegistry
	log            *slog.Logger
}

// NewProfileService shares locks with the connection service, both write
// user records.
func NewProfileService(repo repositories.IUserRepository, directory search.IDirectory,
	clock runtime.Clock, locks *runtime.LockRegistry, log *slog.Logger) *ProfileService {
	return &ProfileService{userRepository: repo, directory: directory, clock: clock, locks: locks, log: log}
}

// ResolveIdentity is the lookup every other component goes through to turn
// an id into a profile.
func (s *ProfileService) ResolveIdentity(ctx context.Context, id domain.UserID) (domain.Profile, error) {
	user, err := s.userRepository.GetUser(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, id domain.UserID) (domain.Profile, error) {
	if _, err := domain.ParseUserID(string(id)); err != nil {
		return domain.Profile{}, err
	}
	return s.ResolveIdentity(ctx, id)
}

// UpdateProfile applies patch and refreshes the search document.
func (s *ProfileService) UpdateProfile(ctx context.Context, id domain.UserID, patch domain.ProfilePatch) (domain.Profile, error) {
	if patch.Details != nil {
		if err := auth.ValidateStruct(patch.Details); err != nil {
			return domain.Profile{}, err
		}
	}
	unlock := s.locks.Lock(userLockKey(id))
	profile, err := s.userRepository.UpdateProfile(ctx, id, patch, s.clock.Now())
	unlock()
	if err != nil {
		return domain.Profile{}, err
	}
	if err = s.directory.Index(profile); err != nil {
		s.log.Warn("Profile not reindexed", "user_id", id, "error", err)
	}
	return profile, nil
}

// SearchProfiles resolves the directory hits. Hits whose user vanished from
// the store are skipped.
func (s *ProfileService) SearchProfiles(ctx context.Context, query string, limit int) ([]domain.Profile, error) {
	ids, err := s.directory.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.Profile, 0, len(ids))
	for _, id := range ids {
		profile, err := s.ResolveIdentity(ctx, id)
		if errors.Is(err, errors.ErrNotFound) {
			s.log.Warn("Stale search hit", "user_id", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// ListProfiles is the admin listing. An empty role lists everybody.
func (s *ProfileService) ListProfiles(ctx context.Context, caller domain.UserID, role domain.Role) ([]domain.Profile, error) {
	admin, err := s.userRepository.GetUser(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !lo.Contains(admin.Roles, string(domain.RoleAdmin)) {
		return nil, fmt.Errorf("%w: %s is not an admin", errors.ErrForbidden, caller)
	}
	if role != "" {
		if _, err = domain.ParseRole(string(role)); err != nil {
			return nil, err
		}
	}

	users, err := s.userRepository.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(users, func(u repositories.User, _ int) (domain.Profile, bool) {
		return u.Profile, role == "" || u.Profile.Role() == role
	}), nil
}

// Reindex feeds every stored profile to the directory. It is run at startup
// when the index lives in memory.
func (s *ProfileService) Reindex(ctx context.Context) (int, error) {
	users, err := s.userRepository.ListUsers(ctx)
	if err != nil {
		return 0, err
	}
	for _, u := range users {
		if err = s.directory.Index(u.Profile); err != nil {
			return 0, err
		}
	}
	s.log.Info("Profile directory rebuilt", "profiles", len(users))
	return len(users), nil
}
