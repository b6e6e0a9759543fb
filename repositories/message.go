//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"alumni-net/domain"
	"alumni-net/errors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	AppendMessage(ctx context.Context, message domain.Message) (domain.Message, domain.Conversation, error)
	MarkRead(ctx context.Context, sender, receiver domain.UserID) (int, error)
	MessagesBetween(ctx context.Context, a, b domain.UserID) ([]domain.Message, error)
	GetConversation(ctx context.Context, key domain.PairKey) (domain.Conversation, error)
	ConversationsOf(ctx context.Context, id domain.UserID) ([]domain.Conversation, error)
	RebuildConversations(ctx context.Context) (int, error)
}

// MessageRepository keeps the append-only message log and the conversation
// index derived from it.
type MessageRepository struct {
	store *Store
	log   *slog.Logger
}

func NewMessageRepository(store *Store, log *slog.Logger) *MessageRepository {
	return &MessageRepository{store: store, log: log}
}

// messagePrefix groups the log by conversation pair.
func messagePrefix(key domain.PairKey) string {
	return fmt.Sprintf("msg:%s:", key)
}

// messageKey is formatted as "msg:{pair}:{timestamp_padded}:{seq_padded}" so
// a forward prefix scan yields messages by timestamp, then by insertion order.
// Zero padding keeps the lexicographic order equal to the numeric one.
func messageKey(m domain.Message) string {
	return fmt.Sprintf("%s%019d:%020d", messagePrefix(m.Key()), m.At.UnixNano(), m.Seq)
}

// AppendMessage stores the message with the next store sequence number and
// creates or updates the pair's conversation in the same transaction.
func (m MessageRepository) AppendMessage(ctx context.Context, message domain.Message) (domain.Message, domain.Conversation, error) {
	seq, err := m.store.nextSeq()
	if err != nil {
		return domain.Message{}, domain.Conversation{}, fmt.Errorf("next sequence: %w", err)
	}
	message.Seq = seq

	var conversation domain.Conversation
	err = m.store.update(ctx, func(txn *badger.Txn) error {
		if err := setRecord(txn, messageKey(message), fromMessage(message)); err != nil {
			return err
		}
		conv, err := loadConversation(txn, message.Key())
		switch {
		case errors.Is(err, errors.ErrNotFound):
			conversation = domain.NewConversation(message)
			return saveConversation(txn, conversation, true)
		case err != nil:
			return err
		default:
			conv.Record(message)
			conversation = conv
			return saveConversation(txn, conversation, false)
		}
	})
	if err != nil {
		return domain.Message{}, domain.Conversation{}, err
	}
	return message, conversation, nil
}

// MarkRead flips every unread sender→receiver message and resets the
// conversation counters. It returns the number of messages flipped.
func (m MessageRepository) MarkRead(ctx context.Context, sender, receiver domain.UserID) (int, error) {
	key := domain.NewPairKey(sender, receiver)
	var flipped int
	err := m.store.update(ctx, func(txn *badger.Txn) error {
		flipped = 0
		conv, err := loadConversation(txn, key)
		if errors.Is(err, errors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		messages, err := scanMessages(txn, messagePrefix(key))
		if err != nil {
			return err
		}
		for _, message := range messages {
			if message.SenderID != sender || message.ReceiverID != receiver {
				continue
			}
			if !message.MarkRead() {
				continue
			}
			if err = setRecord(txn, messageKey(message), fromMessage(message)); err != nil {
				return err
			}
			flipped++
		}

		conv.MarkRead(receiver)
		return saveConversation(txn, conv, false)
	})
	return flipped, err
}

func (m MessageRepository) MessagesBetween(ctx context.Context, a, b domain.UserID) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.store.view(ctx, func(txn *badger.Txn) error {
		var err error
		messages, err = scanMessages(txn, messagePrefix(domain.NewPairKey(a, b)))
		return err
	})
	return messages, err
}

// scanMessages decodes every message under prefix in key order.
func scanMessages(txn *badger.Txn, prefix string) ([]domain.Message, error) {
	var messages []domain.Message
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		var record messageRecord
		if err := it.Item().Value(func(val []byte) error {
			return unmarshal(val, &record)
		}); err != nil {
			return nil, err
		}
		message, err := toMessage(record)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

type messageRecord struct {
	ID       string    `msgpack:"id"`
	Sender   string    `msgpack:"sender"`
	Receiver string    `msgpack:"receiver"`
	Content  string    `msgpack:"content"`
	Language string    `msgpack:"lang"`
	At       time.Time `msgpack:"at"`
	Seq      uint64    `msgpack:"seq"`
	Read     bool      `msgpack:"read"`
}

func fromMessage(message domain.Message) messageRecord {
	return messageRecord{
		ID:       message.ID.String(),
		Sender:   string(message.SenderID),
		Receiver: string(message.ReceiverID),
		Content:  message.Content,
		Language: message.Language,
		At:       message.At,
		Seq:      message.Seq,
		Read:     message.Read,
	}
}

func toMessage(record messageRecord) (domain.Message, error) {
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:         parsedID,
		SenderID:   domain.UserID(record.Sender),
		ReceiverID: domain.UserID(record.Receiver),
		Content:    record.Content,
		Language:   record.Language,
		At:         record.At.UTC(),
		Seq:        record.Seq,
		Read:       record.Read,
	}, nil
}
