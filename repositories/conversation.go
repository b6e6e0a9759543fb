package repositories

import (
	"alumni-net/domain"
	"alumni-net/errors"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

func conversationKey(key domain.PairKey) string {
	return "conv:" + string(key)
}

// conversationIndexPrefix lists the conversations of one participant:
// "idx:conv:{user}:{pair}" with an empty value.
func conversationIndexPrefix(id domain.UserID) string {
	return fmt.Sprintf("idx:conv:%s:", id)
}

func (m MessageRepository) GetConversation(ctx context.Context, key domain.PairKey) (domain.Conversation, error) {
	var conversation domain.Conversation
	err := m.store.view(ctx, func(txn *badger.Txn) error {
		var err error
		conversation, err = loadConversation(txn, key)
		return err
	})
	return conversation, err
}

// ConversationsOf follows the participant index. Order is unspecified.
func (m MessageRepository) ConversationsOf(ctx context.Context, id domain.UserID) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	err := m.store.view(ctx, func(txn *badger.Txn) error {
		prefix := conversationIndexPrefix(id)
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		var keys []domain.PairKey
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, domain.PairKey(strings.TrimPrefix(string(it.Item().Key()), prefix)))
		}
		for _, key := range keys {
			conv, err := loadConversation(txn, key)
			if errors.Is(err, errors.ErrNotFound) {
				return fmt.Errorf("%w: index entry %s has no conversation", errors.ErrConsistency, key)
			}
			if err != nil {
				return err
			}
			conversations = append(conversations, conv)
		}
		return nil
	})
	return conversations, err
}

// RebuildConversations recomputes the conversation index from the message
// log. Unread counters are derived from the read flags, identifiers and
// creation dates of existing conversations are kept.
func (m MessageRepository) RebuildConversations(ctx context.Context) (int, error) {
	rebuilt := map[domain.PairKey]domain.Conversation{}
	err := m.store.view(ctx, func(txn *badger.Txn) error {
		messages, err := scanMessages(txn, "msg:")
		if err != nil {
			return err
		}
		for _, message := range messages {
			conv, ok := rebuilt[message.Key()]
			if !ok {
				conv = domain.NewConversation(message)
				conv.UnreadCount = 0
				conv.UnreadBy = map[domain.UserID]int{}
				if existing, err := loadConversation(txn, message.Key()); err == nil {
					conv.ID = existing.ID
					conv.CreatedAt = existing.CreatedAt
				}
			}
			if message.At.After(conv.LastMessageAt) {
				conv.LastMessageAt = message.At
			}
			if !message.Read {
				conv.UnreadCount++
				conv.UnreadBy[message.ReceiverID]++
			}
			rebuilt[message.Key()] = conv
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	batch := m.store.db.NewWriteBatch()
	defer batch.Cancel()
	for _, conv := range rebuilt {
		data, err := marshalConversation(conv)
		if err != nil {
			return 0, err
		}
		if err = batch.Set([]byte(conversationKey(conv.Key)), data); err != nil {
			return 0, err
		}
		for _, participant := range conv.Participants {
			if err = batch.Set([]byte(conversationIndexPrefix(participant)+string(conv.Key)), nil); err != nil {
				return 0, err
			}
		}
	}
	if err = batch.Flush(); err != nil {
		return 0, err
	}
	m.log.Info("Conversation index rebuilt", "conversations", len(rebuilt))
	return len(rebuilt), nil
}

func loadConversation(txn *badger.Txn, key domain.PairKey) (domain.Conversation, error) {
	var record conversationRecord
	if err := getRecord(txn, conversationKey(key), &record); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return domain.Conversation{}, fmt.Errorf("%w: conversation %s", errors.ErrNotFound, key)
		}
		return domain.Conversation{}, err
	}
	return toConversation(record)
}

// saveConversation writes the record, and the participant index entries when
// the conversation is new.
func saveConversation(txn *badger.Txn, conv domain.Conversation, created bool) error {
	if err := setRecord(txn, conversationKey(conv.Key), fromConversation(conv)); err != nil {
		return err
	}
	if !created {
		return nil
	}
	for _, participant := range conv.Participants {
		if err := txn.Set([]byte(conversationIndexPrefix(participant)+string(conv.Key)), nil); err != nil {
			return err
		}
	}
	return nil
}

type conversationRecord struct {
	ID            string         `msgpack:"id"`
	Key           string         `msgpack:"key"`
	Participants  [2]string      `msgpack:"participants"`
	LastMessageAt time.Time      `msgpack:"last_message_at"`
	UnreadCount   int            `msgpack:"unread_count"`
	UnreadBy      map[string]int `msgpack:"unread_by"`
	CreatedAt     time.Time      `msgpack:"created_at"`
}

func marshalConversation(conv domain.Conversation) ([]byte, error) {
	return marshal(fromConversation(conv))
}

func fromConversation(conv domain.Conversation) conversationRecord {
	return conversationRecord{
		ID:            conv.ID.String(),
		Key:           string(conv.Key),
		Participants:  [2]string{string(conv.Participants[0]), string(conv.Participants[1])},
		LastMessageAt: conv.LastMessageAt,
		UnreadCount:   conv.UnreadCount,
		UnreadBy: lo.MapKeys(conv.UnreadBy, func(_ int, id domain.UserID) string {
			return string(id)
		}),
		CreatedAt: conv.CreatedAt,
	}
}

func toConversation(record conversationRecord) (domain.Conversation, error) {
	parsedID, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Conversation{}, err
	}
	unreadBy := lo.MapKeys(record.UnreadBy, func(_ int, id string) domain.UserID {
		return domain.UserID(id)
	})
	if unreadBy == nil {
		unreadBy = map[domain.UserID]int{}
	}
	return domain.Conversation{
		ID:            parsedID,
		Key:           domain.PairKey(record.Key),
		Participants:  [2]domain.UserID{domain.UserID(record.Participants[0]), domain.UserID(record.Participants[1])},
		LastMessageAt: record.LastMessageAt.UTC(),
		UnreadCount:   record.UnreadCount,
		UnreadBy:      unreadBy,
		CreatedAt:     record.CreatedAt.UTC(),
	}, nil
}
