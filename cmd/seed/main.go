package main

import (
	"alumni-net/auth"
	"alumni-net/domain"
	"alumni-net/errors"
	"alumni-net/internal"
	"alumni-net/moderation"
	"alumni-net/repositories"
	"alumni-net/runtime"
	"alumni-net/search"
	"alumni-net/services"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const demoPassword = "Alumni-Demo-2024!"

type demoUser struct {
	name     string
	email    string
	headline string
	skills   []string
	details  domain.RoleDetails
}

var demoUsers = []demoUser{
	{"Ada Moreau", "ada@demo.alumni", "Backend engineer", []string{"go", "postgres"},
		domain.AlumniDetails{GraduationYear: 2016, Company: "Qonto", JobTitle: "Staff Engineer"}},
	{"Bilal Haddad", "bilal@demo.alumni", "Data scientist", []string{"python", "statistics"},
		domain.AlumniDetails{GraduationYear: 2019, Company: "Doctolib", JobTitle: "Data Scientist"}},
	{"Chloé Martin", "chloe@demo.alumni", "Looking for an internship", []string{"react", "typescript"},
		domain.StudentDetails{Program: "Computer Science", GraduationYear: 2026}},
	{"Diego Alvarez", "diego@demo.alumni", "Security enthusiast", []string{"networking", "rust"},
		domain.StudentDetails{Program: "Cybersecurity", GraduationYear: 2027}},
	{"Emma Schulz", "emma@demo.alumni", "Product manager", []string{"product", "ux"},
		domain.AlumniDetails{GraduationYear: 2012, Company: "Criteo", JobTitle: "Group PM"}},
	{"Farid Benali", "farid@demo.alumni", "Alumni relations", nil,
		domain.AdminDetails{Department: "Alumni Office"}},
}

var demoLines = []string{
	"Hi! Thanks for connecting.",
	"Would you have time for a quick call next week?",
	"Sure, Tuesday works for me.",
	"Great, I'll send an invite.",
	"Do you know anyone hiring interns this summer?",
	"Let me ask around my team.",
}

func main() {
	_ = godotenv.Load()

	var randomSeed uint64
	cmd := &cobra.Command{
		Use:   "alumni-seed",
		Short: "Populate an alumni-net store with a demo network",
		Long: `alumni-seed registers demo users, connects them and exchanges a few messages
through the same services as the server. The server must be stopped, badger
holds an exclusive lock on its directory.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return seed(cmd.Context(), randomSeed)
		},
	}
	cmd.Flags().Uint64Var(&randomSeed, "seed", 42, "Seed of the pseudo-random connection graph")
	cmd.AddCommand(adminCmd())

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// stack is the service graph shared by the seed commands.
type stack struct {
	logger            *slog.Logger
	users             *repositories.UserRepository
	authService       *services.AuthService
	profileService    *services.ProfileService
	connectionService *services.ConnectionService
	messagingService  *services.MessagingService
	close             func()
}

func openStack() (*stack, error) {
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("database opening failed: %w", err)
	}
	store, err := repositories.NewStore(db, logger, config.TxnRetries)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	directory, err := search.OpenDirectory(config.BlugeFilepath, config.SearchLimit, logger)
	if err != nil {
		_ = store.Close()
		_ = db.Close()
		return nil, err
	}
	closeAll := func() {
		_ = directory.Close()
		_ = store.Close()
		_ = db.Close()
	}
	// Demo content is clean, an empty dictionary keeps it untouched
	moderator, err := moderation.NewModerator(nil, '*', logger)
	if err != nil {
		closeAll()
		return nil, err
	}

	clock := runtime.NewMonotonicClock()
	locks := runtime.NewLockRegistry()
	users := repositories.NewUserRepository(store)
	return &stack{
		logger:            logger,
		users:             users,
		authService:       services.NewAuthService(users, directory, auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration), clock, logger),
		profileService:    services.NewProfileService(users, directory, clock, locks, logger),
		connectionService: services.NewConnectionService(users, repositories.NewConnectionRepository(store), locks, logger),
		messagingService: services.NewMessagingService(users, repositories.NewMessageRepository(store, logger), &moderator,
			clock, locks, services.MessagingConfig{MaxContentLength: config.MaxContentLength, UnreadMode: domain.UnreadShared}, logger),
		close: closeAll,
	}, nil
}

// register picks the admin path for admin accounts, public sign-up refuses them.
func (s *stack) register(ctx context.Context, cmd services.RegisterCommand) error {
	var err error
	if cmd.Role == string(domain.RoleAdmin) {
		_, err = s.authService.RegisterAdmin(ctx, cmd)
	} else {
		_, err = s.authService.Register(ctx, cmd)
	}
	return err
}

func adminCmd() *cobra.Command {
	var name, email, password, department string
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create an administrator account",
		Long: `admin creates an account with the admin role. The HTTP API only signs up
students and alumni, this command is the way to bootstrap administrators.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openStack()
			if err != nil {
				return err
			}
			defer s.close()
			if err = s.register(cmd.Context(), services.RegisterCommand{
				Name: name, Email: email, Password: password,
				Role: string(domain.RoleAdmin), Details: domain.AdminDetails{Department: department},
			}); err != nil {
				return fmt.Errorf("register %s: %w", email, err)
			}
			color.Green.Printf("• %s registered as admin\n", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().StringVar(&department, "department", "Administration", "Department shown on the profile")
	for _, flag := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(flag)
	}
	return cmd
}

func seed(ctx context.Context, randomSeed uint64) error {
	s, err := openStack()
	if err != nil {
		return err
	}
	defer s.close()
	logger := s.logger
	users, profileService := s.users, s.profileService
	connectionService, messagingService := s.connectionService, s.messagingService

	// 1. Users
	ids := make([]domain.UserID, 0, len(demoUsers))
	created := 0
	for _, u := range demoUsers {
		err = s.register(ctx, services.RegisterCommand{
			Name: u.name, Email: u.email, Password: demoPassword,
			Role: string(u.details.Role()), Details: u.details,
		})
		switch {
		case errors.Is(err, errors.ErrUserAlreadyExists):
			color.Yellow.Printf("• %s already registered\n", u.email)
		case err != nil:
			return fmt.Errorf("register %s: %w", u.email, err)
		default:
			created++
			color.Green.Printf("• %s registered\n", u.email)
		}
		user, err := users.GetUserByEmail(ctx, u.email)
		if err != nil {
			return err
		}
		headline := u.headline
		if _, err = profileService.UpdateProfile(ctx, user.ID, domain.ProfilePatch{
			Headline: &headline,
			Skills:   lo.ToPtr(u.skills),
		}); err != nil {
			return fmt.Errorf("profile %s: %w", u.email, err)
		}
		ids = append(ids, user.ID)
	}
	if created == 0 {
		color.Yellow.Println("Store already seeded, skipping connections and messages")
		return nil
	}

	// 2. Connections: a ring so nobody is isolated, plus random chords
	rng := rand.New(rand.NewPCG(randomSeed, randomSeed))
	pairs := map[domain.PairKey][2]domain.UserID{}
	for i := range ids {
		a, b := ids[i], ids[(i+1)%len(ids)]
		pairs[domain.NewPairKey(a, b)] = [2]domain.UserID{a, b}
	}
	for range len(ids) {
		a, b := ids[rng.IntN(len(ids))], ids[rng.IntN(len(ids))]
		if a != b {
			pairs[domain.NewPairKey(a, b)] = [2]domain.UserID{a, b}
		}
	}
	for _, pair := range pairs {
		if err = connectionService.Connect(ctx, pair[0], pair[1]); err != nil {
			return fmt.Errorf("connect: %w", err)
		}
	}
	color.Green.Printf("• %d connections\n", len(pairs))

	// 3. Messages, alternating senders
	sent := 0
	for _, pair := range pairs {
		for i, line := range demoLines[:2+rng.IntN(len(demoLines)-1)] {
			from, to := pair[i%2], pair[(i+1)%2]
			if _, err = messagingService.SendMessage(ctx, from, to, line); err != nil {
				return fmt.Errorf("send: %w", err)
			}
			sent++
		}
	}
	color.Green.Printf("• %d messages\n", sent)

	logger.Info("Demo network ready", "users", len(ids), "password", demoPassword, slog.Int("connections", len(pairs)))
	return nil
}
