package services

import (
	"alumni-net/domain"
	"alumni-net/errors"
	"alumni-net/moderation"
	"alumni-net/repositories"
	"alumni-net/runtime"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMessagingService interface {
	SendMessage(ctx context.Context, senderID, receiverID domain.UserID, content string) (domain.Message, error)
	MarkRead(ctx context.Context, senderID, receiverID domain.UserID) (int, error)
	MessagesBetween(ctx context.Context, userA, userB domain.UserID) ([]domain.Message, error)
	ConversationsFor(ctx context.Context, userID domain.UserID) ([]domain.ConversationView, error)
	UnreadTotal(ctx context.Context, userID domain.UserID) (int, error)
	RebuildConversations(ctx context.Context) (int, error)
}

// ContentInspector moderates a message body before it is stored.
type ContentInspector interface {
	Inspect(content string) moderation.Verdict
}

type MessagingConfig struct {
	MaxContentLength int
	UnreadMode       domain.UnreadMode
}

type MessagingService struct {
	userRepository    repositories.IUserRepository
	messageRepository repositories.IMessageRepository
	inspector         ContentInspector
	clock             runtime.Clock
	locks             *runtime.LockRegistry
	config            MessagingConfig
	log               *slog.Logger
}

func NewMessagingService(users repositories.IUserRepository, messages repositories.IMessageRepository,
	inspector ContentInspector, clock runtime.Clock, locks *runtime.LockRegistry,
	config MessagingConfig, log *slog.Logger) *MessagingService {
	if config.UnreadMode == "" {
		config.UnreadMode = domain.UnreadShared
	}
	return &MessagingService{
		userRepository:    users,
		messageRepository: messages,
		inspector:         inspector,
		clock:             clock,
		locks:             locks,
		config:            config,
		log:               log,
	}
}

// SendMessage appends a message to the log and records it on the pair's
// conversation, creating the conversation on first contact.
func (s *MessagingService) SendMessage(ctx context.Context, senderID, receiverID domain.UserID, content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, fmt.Errorf("%w: empty message content", errors.ErrInvalidArgument)
	}
	if s.config.MaxContentLength > 0 && utf8.RuneCountInString(content) > s.config.MaxContentLength {
		return domain.Message{}, fmt.Errorf("%w: message longer than %d characters", errors.ErrInvalidArgument, s.config.MaxContentLength)
	}
	if err := validatePair(senderID, receiverID); err != nil {
		return domain.Message{}, err
	}
	for _, id := range []domain.UserID{senderID, receiverID} {
		if _, err := s.userRepository.GetUser(ctx, id); err != nil {
			return domain.Message{}, err
		}
	}

	verdict := s.inspector.Inspect(content)

	// The timestamp is taken under the pair lock so the log order of a pair
	// follows the call order.
	key := domain.NewPairKey(senderID, receiverID)
	unlock := s.locks.Lock(key.String())
	defer unlock()

	message, conversation, err := s.messageRepository.AppendMessage(ctx, domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    verdict.Content,
		Language:   verdict.Language,
		At:         s.clock.Now(),
	})
	if err != nil {
		return domain.Message{}, err
	}
	s.log.Debug("Message stored",
		"message_id", message.ID,
		"conversation_id", conversation.ID,
		"seq", message.Seq,
		"unread", conversation.UnreadCount)
	return message, nil
}

// MarkRead flags every unread senderID→receiverID message as read and resets
// the conversation counters. It is a no-op when the pair never talked.
func (s *MessagingService) MarkRead(ctx context.Context, senderID, receiverID domain.UserID) (int, error) {
	if err := validatePair(senderID, receiverID); err != nil {
		return 0, err
	}
	unlock := s.locks.Lock(domain.NewPairKey(senderID, receiverID).String())
	defer unlock()

	flipped, err := s.messageRepository.MarkRead(ctx, senderID, receiverID)
	if err != nil {
		return 0, err
	}
	if flipped > 0 {
		s.log.Debug("Messages read", "sender_id", senderID, "receiver_id", receiverID, "count", flipped)
	}
	return flipped, nil
}

// MessagesBetween returns both directions, oldest first, ties in insertion order.
func (s *MessagingService) MessagesBetween(ctx context.Context, userA, userB domain.UserID) ([]domain.Message, error) {
	messages, err := s.messageRepository.MessagesBetween(ctx, userA, userB)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		return []domain.Message{}, nil
	}
	return messages, nil
}

// ConversationsFor lists the conversations of userID, most recent first.
// A participant that cannot be resolved fails the whole call.
func (s *MessagingService) ConversationsFor(ctx context.Context, userID domain.UserID) ([]domain.ConversationView, error) {
	if _, err := s.userRepository.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	conversations, err := s.messageRepository.ConversationsOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.ConversationView, 0, len(conversations))
	for _, conv := range conversations {
		otherID, ok := conv.Other(userID)
		if !ok {
			return nil, fmt.Errorf("%w: %s indexed under %s", errors.ErrConsistency, conv.Key, userID)
		}
		other, err := s.userRepository.GetUser(ctx, otherID)
		if errors.Is(err, errors.ErrNotFound) {
			s.log.Error("Conversation participant missing", "conversation_id", conv.ID, "user_id", otherID)
			return nil, fmt.Errorf("%w: participant %s of %s cannot be resolved", errors.ErrConsistency, otherID, conv.Key)
		}
		if err != nil {
			return nil, err
		}
		views = append(views, domain.ConversationView{
			Conversation: conv,
			Other:        other.Profile,
			Unread:       conv.UnreadFor(userID, s.config.UnreadMode),
		})
	}

	slices.SortStableFunc(views, func(a, b domain.ConversationView) int {
		if c := b.Conversation.LastMessageAt.Compare(a.Conversation.LastMessageAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.Conversation.Key), string(b.Conversation.Key))
	})
	return views, nil
}

// UnreadTotal sums what userID sees as unread across every conversation.
func (s *MessagingService) UnreadTotal(ctx context.Context, userID domain.UserID) (int, error) {
	conversations, err := s.messageRepository.ConversationsOf(ctx, userID)
	if err != nil {
		return 0, err
	}
	return lo.SumBy(conversations, func(c domain.Conversation) int {
		return c.UnreadFor(userID, s.config.UnreadMode)
	}), nil
}

func (s *MessagingService) RebuildConversations(ctx context.Context) (int, error) {
	return s.messageRepository.RebuildConversations(ctx)
}
