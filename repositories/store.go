package repositories

import (
	"alumni-net/errors"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

var errReadOnly = stderrors.New("store opened read-only")

const (
	messageSequenceKey = "seq:msg"
	sequenceBandwidth  = 128
)

// Store owns the badger handle shared by every repository.
// Each mutation is a single serializable transaction, persisted on commit.
// Conflicting transactions are retried up to retries times.
type Store struct {
	db      *badger.DB
	log     *slog.Logger
	seq     *badger.Sequence
	retries int
}

// NewStore leases the message sequence, except on a read-only handle where
// appending is refused anyway.
func NewStore(db *badger.DB, log *slog.Logger, retries int) (*Store, error) {
	if retries < 0 {
		retries = 0
	}
	store := &Store{db: db, log: log, retries: retries}
	if db.Opts().ReadOnly {
		return store, nil
	}
	seq, err := db.GetSequence([]byte(messageSequenceKey), sequenceBandwidth)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	store.seq = seq
	return store, nil
}

// Close releases the leased sequence range. The badger handle stays open,
// its owner closes it.
func (s *Store) Close() error {
	if s.seq == nil {
		return nil
	}
	return s.seq.Release()
}

func (s *Store) DB() *badger.DB {
	return s.db
}

func (s *Store) nextSeq() (uint64, error) {
	if s.seq == nil {
		return 0, errReadOnly
	}
	return s.seq.Next()
}

func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) || attempt >= s.retries {
			return err
		}
		s.log.Debug("Transaction conflict, retrying", "attempt", attempt+1)
	}
}

func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

// getRecord decodes the value at key into v.
// A missing key is reported as errors.ErrNotFound.
func getRecord(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errors.ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshal(val, v)
	})
}

func setRecord(txn *badger.Txn, key string, v any) error {
	data, err := marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

func marshal(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal failed: %w", err)
	}
	return data, nil
}

func unmarshal(val []byte, v any) error {
	return msgpack.Unmarshal(val, v)
}
