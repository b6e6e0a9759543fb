package domain

import (
	"alumni-net/errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PairKey canonically identifies an unordered pair of users: the two ids
// sorted lexicographically and joined by '|'.
type PairKey string

const pairSeparator = "|"

func NewPairKey(a, b UserID) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey(string(a) + pairSeparator + string(b))
}

// Participants returns both ids in canonical order.
func (k PairKey) Participants() (UserID, UserID) {
	first, second, _ := strings.Cut(string(k), pairSeparator)
	return UserID(first), UserID(second)
}

func (k PairKey) String() string {
	return string(k)
}

// UnreadMode selects which counter a viewer sees.
//
// UnreadShared reports the single per-conversation counter to both
// participants. It conflates both directions once both sides have written.
// UnreadPerViewer reports the counter scoped to the viewer.
type UnreadMode string

const (
	UnreadShared    UnreadMode = "shared"
	UnreadPerViewer UnreadMode = "per_viewer"
)

func ParseUnreadMode(raw string) (UnreadMode, error) {
	switch m := UnreadMode(raw); m {
	case UnreadShared, UnreadPerViewer:
		return m, nil
	case "":
		return UnreadShared, nil
	default:
		return "", fmt.Errorf("%w: unknown unread mode %q", errors.ErrInvalidArgument, raw)
	}
}

// Conversation is derived from the message log, one per unordered pair.
type Conversation struct {
	ID            uuid.UUID
	Key           PairKey
	Participants  [2]UserID
	LastMessageAt time.Time
	UnreadCount   int
	UnreadBy      map[UserID]int
	CreatedAt     time.Time
}

// NewConversation opens a conversation from its first message.
func NewConversation(first Message) Conversation {
	a, b := first.Key().Participants()
	return Conversation{
		ID:            uuid.New(),
		Key:           first.Key(),
		Participants:  [2]UserID{a, b},
		LastMessageAt: first.At,
		UnreadCount:   1,
		UnreadBy:      map[UserID]int{first.ReceiverID: 1},
		CreatedAt:     first.At,
	}
}

// Record accounts for a new message of the pair.
func (c *Conversation) Record(m Message) {
	if m.At.After(c.LastMessageAt) {
		c.LastMessageAt = m.At
	}
	c.UnreadCount++
	if c.UnreadBy == nil {
		c.UnreadBy = map[UserID]int{}
	}
	c.UnreadBy[m.ReceiverID]++
}

// MarkRead zeroes the shared counter and the receiver's own counter.
// Messages the receiver sent are still pending for the other side, which the
// shared counter cannot express.
func (c *Conversation) MarkRead(receiver UserID) {
	c.UnreadCount = 0
	if c.UnreadBy != nil {
		c.UnreadBy[receiver] = 0
	}
}

func (c Conversation) Has(id UserID) bool {
	return c.Participants[0] == id || c.Participants[1] == id
}

// Other returns the participant that is not viewer.
func (c Conversation) Other(viewer UserID) (UserID, bool) {
	switch viewer {
	case c.Participants[0]:
		return c.Participants[1], true
	case c.Participants[1]:
		return c.Participants[0], true
	default:
		return "", false
	}
}

func (c Conversation) UnreadFor(viewer UserID, mode UnreadMode) int {
	if mode == UnreadPerViewer {
		return c.UnreadBy[viewer]
	}
	return c.UnreadCount
}

// ConversationView is a conversation as seen by one participant.
type ConversationView struct {
	Conversation Conversation
	Other        Profile
	Unread       int
}
