package main

import (
	"alumni-net/domain"
	"alumni-net/moderation"
	"alumni-net/repositories"
	"alumni-net/runtime"
	"alumni-net/services"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

type options struct {
	dbPath     string
	unreadMode string
}

// inspector holds the read-only services a command needs.
type inspector struct {
	db          *badger.DB
	store       *repositories.Store
	users       *repositories.UserRepository
	connections *services.ConnectionService
	messaging   *services.MessagingService
}

func openInspector(opts *options) (*inspector, error) {
	if opts.dbPath == "" {
		return nil, fmt.Errorf("no database path, use --db or BADGER_FILEPATH")
	}
	mode, err := domain.ParseUnreadMode(opts.unreadMode)
	if err != nil {
		return nil, err
	}

	// BypassLockGuard allows opening while the server holds the lock
	db, err := badger.Open(badger.DefaultOptions(opts.dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log := logs.GetLoggerFromLevel(slog.LevelWarn)
	store, err := repositories.NewStore(db, log, 0)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	moderator, err := moderation.NewModerator(nil, '*', log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	locks := runtime.NewLockRegistry()
	users := repositories.NewUserRepository(store)
	return &inspector{
		db:          db,
		store:       store,
		users:       users,
		connections: services.NewConnectionService(users, repositories.NewConnectionRepository(store), locks, log),
		messaging: services.NewMessagingService(users, repositories.NewMessageRepository(store, log), &moderator,
			runtime.NewMonotonicClock(), locks, services.MessagingConfig{UnreadMode: mode}, log),
	}, nil
}

func (i *inspector) Close() error {
	_ = i.store.Close()
	return i.db.Close()
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
