package main

import (
	"alumni-net/auth"
	"alumni-net/domain"
	"alumni-net/infrastructure/http/server"
	"alumni-net/internal"
	"alumni-net/moderation"
	"alumni-net/repositories"
	"alumni-net/runtime"
	"alumni-net/runtime/workers"
	"alumni-net/search"
	"alumni-net/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and owns their lifecycle so that deferred
// cleanups (badger, bluge) execute before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	unreadMode, err := domain.ParseUnreadMode(config.UnreadMode)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Store (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	if logger.Enabled(ctx, slog.LevelDebug) {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, StoreMapper)
	}

	store, err := repositories.NewStore(db, logger, config.TxnRetries)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		_ = store.Close()
	}()

	// 3. Profile directory (Bluge)
	directory, err := search.OpenDirectory(config.BlugeFilepath, config.SearchLimit, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = directory.Close()
	}()

	words, err := loadWordList(config)
	if err != nil {
		return exitConfig, fmt.Errorf("censored words: %w", err)
	}
	logger.Info("Censored words loaded", "count", len(words.Words), "languages", words.Languages)
	moderator, err := moderation.NewModerator(words.Words, charReplacement, logger)
	if err != nil {
		return exitConfig, fmt.Errorf("moderator: %w", err)
	}

	// 4. Services
	clock := runtime.NewMonotonicClock()
	locks := runtime.NewLockRegistry()
	issuer := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	userRepository := repositories.NewUserRepository(store)
	messageRepository := repositories.NewMessageRepository(store, logger)

	authService := services.NewAuthService(userRepository, directory, issuer, clock, logger)
	profileService := services.NewProfileService(userRepository, directory, clock, locks, logger)
	connectionService := services.NewConnectionService(userRepository,
		repositories.NewConnectionRepository(store), locks, logger)
	messagingService := services.NewMessagingService(userRepository, messageRepository, &moderator, clock, locks,
		services.MessagingConfig{MaxContentLength: config.MaxContentLength, UnreadMode: unreadMode}, logger)

	// An in-memory directory starts empty
	if config.BlugeFilepath == "" {
		if _, err = profileService.Reindex(ctx); err != nil {
			return exitRuntime, fmt.Errorf("reindex failed: %w", err)
		}
	}
	if config.RebuildOnStart {
		if _, err = messagingService.RebuildConversations(ctx); err != nil {
			return exitRuntime, fmt.Errorf("conversation rebuild failed: %w", err)
		}
	}

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background workers
	supervisorDone := make(chan struct{})
	supervisor := workers.NewSupervisor(logger)
	if config.GraphAuditEvery > 0 {
		supervisor.Add(workers.NewGraphAuditWorker(logger, connectionService, config.GraphAuditEvery, config.GraphAuditRepair))
	}
	workersCtx, stopWorkers := context.WithCancel(ctx)
	go func() {
		supervisor.Run(workersCtx)
		close(supervisorDone)
	}()
	defer func() {
		stopWorkers()
		<-supervisorDone
	}()

	// 6. HTTP Server
	gin.SetMode(config.GinMode)
	api := server.NewServer(logger, issuer, config.SearchLimit,
		authService, profileService, connectionService, messagingService)
	httpServer := &http.Server{
		Addr:    config.Address(),
		Handler: api.Router(),
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", config.Address(), "unread_mode", unreadMode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 8. Graceful Shutdown, in-flight requests finish before the store closes.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}

	return options
}

// StoreMapper renders the decoded records in the debug inspector.
func StoreMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	kind, detail, err := repositories.Describe(key, val)
	if err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	row.Type = kind
	if detail != "" {
		row.Detail = detail
	}
	return row
}

// loadWordList reads CENSORED_WORDS_DIR when set, the embedded dictionaries
// otherwise, then adds the CENSORED_WORDS entries.
func loadWordList(config internal.Config) (moderation.WordList, error) {
	var list moderation.WordList
	var err error
	if config.CensoredWordsDir != "" {
		list, err = moderation.LoadWordList(os.DirFS(config.CensoredWordsDir), ".")
	} else {
		list, err = moderation.DefaultWordList()
	}
	if err != nil {
		return moderation.WordList{}, err
	}
	return list.Merge(config.CensoredWordList()...), nil
}
