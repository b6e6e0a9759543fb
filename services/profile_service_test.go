package services

import (
	"alumni-net/domain"
	"alumni-net/errors"
	"alumni-net/mocks"
	"alumni-net/repositories"
	"alumni-net/runtime"
	"context"
	"log/slog"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newProfileService(t *testing.T) (*ProfileService, *mocks.MockIUserRepository, *mocks.MockIDirectory) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	directory := mocks.NewMockIDirectory(ctrl)
	return NewProfileService(users, directory, runtime.NewMonotonicClock(), runtime.NewLockRegistry(), slog.Default()), users, directory
}

func TestProfileService_UpdateProfileReindexes(t *testing.T) {
	req := require.New(t)
	svc, users, directory := newProfileService(t)
	ctx := context.Background()

	headline := "Staff engineer"
	patch := domain.ProfilePatch{Headline: &headline}
	updated := domain.Profile{ID: "alice", Name: "Alice", Headline: headline}

	users.EXPECT().UpdateProfile(gomock.Any(), domain.UserID("alice"), patch, gomock.Any()).Return(updated, nil)
	directory.EXPECT().Index(updated).Return(nil)

	profile, err := svc.UpdateProfile(ctx, "alice", patch)
	req.NoError(err)
	req.Equal(updated, profile)
}

func TestProfileService_UpdateProfileRejectsInvalidDetails(t *testing.T) {
	req := require.New(t)
	svc, users, _ := newProfileService(t)

	users.EXPECT().UpdateProfile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.UpdateProfile(context.Background(), "alice", domain.ProfilePatch{
		Details: domain.AlumniDetails{GraduationYear: 1500},
	})
	req.ErrorIs(err, errors.ErrInvalidArgument)
}

func TestProfileService_SearchProfilesSkipsStaleHits(t *testing.T) {
	req := require.New(t)
	svc, users, directory := newProfileService(t)
	ctx := context.Background()

	directory.EXPECT().Search(gomock.Any(), "golang", 5).Return([]domain.UserID{"alice", "gone"}, nil)
	users.EXPECT().GetUser(gomock.Any(), domain.UserID("alice")).
		Return(repositories.User{ID: "alice", Profile: domain.Profile{ID: "alice", Name: "Alice"}}, nil)
	users.EXPECT().GetUser(gomock.Any(), domain.UserID("gone")).Return(repositories.User{}, errors.ErrNotFound)

	profiles, err := svc.SearchProfiles(ctx, "golang", 5)
	req.NoError(err)
	req.Len(profiles, 1)
	req.Equal(domain.UserID("alice"), profiles[0].ID)
}

func TestProfileService_ListProfiles(t *testing.T) {
	svc, users, _ := newProfileService(t)
	ctx := context.Background()
	all := []repositories.User{
		{ID: "admin", Roles: []string{"user", "admin"}, Profile: domain.Profile{ID: "admin", Details: domain.AdminDetails{Department: "IT"}}},
		{ID: "alice", Roles: []string{"user"}, Profile: domain.Profile{ID: "alice", Details: domain.AlumniDetails{GraduationYear: 2012}}},
		{ID: "bob", Roles: []string{"user"}, Profile: domain.Profile{ID: "bob", Details: domain.StudentDetails{Program: "Law", GraduationYear: 2026}}},
	}

	t.Run("admin filters by role", func(t *testing.T) {
		req := require.New(t)
		users.EXPECT().GetUser(gomock.Any(), domain.UserID("admin")).Return(all[0], nil)
		users.EXPECT().ListUsers(gomock.Any()).Return(all, nil)

		profiles, err := svc.ListProfiles(ctx, "admin", domain.RoleAlumni)
		req.NoError(err)
		req.Equal([]domain.UserID{"alice"}, lo.Map(profiles, func(p domain.Profile, _ int) domain.UserID { return p.ID }))
	})

	t.Run("admin lists everybody without filter", func(t *testing.T) {
		req := require.New(t)
		users.EXPECT().GetUser(gomock.Any(), domain.UserID("admin")).Return(all[0], nil)
		users.EXPECT().ListUsers(gomock.Any()).Return(all, nil)

		profiles, err := svc.ListProfiles(ctx, "admin", "")
		req.NoError(err)
		req.Len(profiles, 3)
	})

	t.Run("non admin is forbidden", func(t *testing.T) {
		req := require.New(t)
		users.EXPECT().GetUser(gomock.Any(), domain.UserID("bob")).Return(all[2], nil)
		users.EXPECT().ListUsers(gomock.Any()).Times(0)

		_, err := svc.ListProfiles(ctx, "bob", "")
		req.ErrorIs(err, errors.ErrForbidden)
	})

	t.Run("unknown role filter", func(t *testing.T) {
		req := require.New(t)
		users.EXPECT().GetUser(gomock.Any(), domain.UserID("admin")).Return(all[0], nil)

		_, err := svc.ListProfiles(ctx, "admin", "professor")
		req.ErrorIs(err, errors.ErrInvalidArgument)
	})
}

func TestProfileService_GetProfile(t *testing.T) {
	req := require.New(t)
	svc, users, _ := newProfileService(t)
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, "bad:id")
	req.ErrorIs(err, errors.ErrInvalidArgument)

	users.EXPECT().GetUser(gomock.Any(), domain.UserID("nobody")).Return(repositories.User{}, errors.ErrNotFound)
	_, err = svc.GetProfile(ctx, "nobody")
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestProfileService_Reindex(t *testing.T) {
	req := require.New(t)
	svc, users, directory := newProfileService(t)

	users.EXPECT().ListUsers(gomock.Any()).Return([]repositories.User{{ID: "a"}, {ID: "b"}}, nil)
	directory.EXPECT().Index(gomock.Any()).Return(nil).Times(2)

	count, err := svc.Reindex(context.Background())
	req.NoError(err)
	req.Equal(2, count)
}
