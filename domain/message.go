package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is immutable once stored, except for the read flag which flips
// from false to true exactly once.
type Message struct {
	ID         uuid.UUID
	SenderID   UserID
	ReceiverID UserID
	Content    string
	Language   string // ISO 639-1, empty when undetected
	At         time.Time
	Seq        uint64 // store-wide insertion order, breaks timestamp ties
	Read       bool
}

// MarkRead reports whether the flag actually changed.
func (m *Message) MarkRead() bool {
	if m.Read {
		return false
	}
	m.Read = true
	return true
}

func (m Message) Key() PairKey {
	return NewPairKey(m.SenderID, m.ReceiverID)
}

// Before orders messages by timestamp then by sequence.
func (m Message) Before(other Message) bool {
	if !m.At.Equal(other.At) {
		return m.At.Before(other.At)
	}
	return m.Seq < other.Seq
}
