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
	"strings"

	"github.com/google/uuid"
)

type IAuthService interface {
	Register(ctx context.Context, cmd RegisterCommand) (Token, error)
	Login(ctx context.Context, email, password string) (Token, error)
}

type Token string

func (t Token) String() string {
	return string(t)
}

// RegisterCommand carries a sign-up form. Details must match Role.
type RegisterCommand struct {
	Name     string
	Email    string
	Password string
	Role     string
	Details  domain.RoleDetails
}

type AuthService struct {
	userRepository repositories.IUserRepository
	directory      search.IDirectory
	issuer         *auth.TokenIssuer
	clock          runtime.Clock
	log            *slog.Logger
}

func NewAuthService(repo repositories.IUserRepository, directory search.IDirectory,
	issuer *auth.TokenIssuer, clock runtime.Clock, log *slog.Logger) *AuthService {
	return &AuthService{userRepository: repo, directory: directory, issuer: issuer, clock: clock, log: log}
}

// Register is the self sign-up path. Only students and alumni may register
// this way.
func (s *AuthService) Register(ctx context.Context, cmd RegisterCommand) (Token, error) {
	return s.register(ctx, cmd, auth.ValidateRegister)
}

// RegisterAdmin creates an administrator account. It is reachable from
// operator tooling only, never from the HTTP API.
func (s *AuthService) RegisterAdmin(ctx context.Context, cmd RegisterCommand) (Token, error) {
	if cmd.Role != string(domain.RoleAdmin) {
		return "", fmt.Errorf("%w: role must be admin", errors.ErrInvalidArgument)
	}
	return s.register(ctx, cmd, auth.ValidateAdminRegister)
}

func (s *AuthService) register(ctx context.Context, cmd RegisterCommand, validate func(auth.RegisterRequest) error) (Token, error) {
	email := normalizeEmail(cmd.Email)

	// 1. Validate business rules before any expensive cryptographic operation.
	if err := validate(auth.RegisterRequest{
		Name:     strings.TrimSpace(cmd.Name),
		Email:    email,
		Password: cmd.Password,
		Role:     cmd.Role,
	}); err != nil {
		return "", err
	}
	role, err := domain.ParseRole(cmd.Role)
	if err != nil {
		return "", err
	}
	if cmd.Details == nil || cmd.Details.Role() != role {
		return "", fmt.Errorf("%w: %s registration requires %s details", errors.ErrInvalidArgument, role, role)
	}
	if err = auth.ValidateStruct(cmd.Details); err != nil {
		return "", err
	}

	// 2. Hash in the service layer so the repository never sees plain passwords.
	hashedPassword, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist
	now := s.clock.Now()
	id := domain.UserID(uuid.NewString())
	user := repositories.User{
		ID:           id,
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        rolesFor(role),
		Profile: domain.Profile{
			ID:        id,
			Name:      strings.TrimSpace(cmd.Name),
			Email:     email,
			Details:   cmd.Details,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Connections: domain.NewConnections(),
		CreatedAt:   now,
	}
	if err = s.userRepository.CreateUser(ctx, user); err != nil {
		return "", err
	}
	if err = s.directory.Index(user.Profile); err != nil {
		s.log.Warn("Profile not indexed", "user_id", id, "error", err)
	}
	s.log.Info("User registered", "user_id", id, "role", role)

	// 4. Initial session token
	token, err := s.issuer.GenerateToken(string(id), user.Roles)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Token, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.issuer.GenerateToken(string(user.ID), user.Roles)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// rolesFor builds the token roles. Every account is a "user", admins also
// carry their profile role.
func rolesFor(role domain.Role) []string {
	roles := []string{"user"}
	if role == domain.RoleAdmin {
		roles = append(roles, string(domain.RoleAdmin))
	}
	return roles
}
