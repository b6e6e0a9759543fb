// Package domain contains core concepts of the alumni network.
// This file defines user identities and the connection set attached to them.
// No storage, transport, or UI logic should be added here.
package domain

import (
	"alumni-net/errors"
	"fmt"
	"sort"
	"strings"
)

// UserID is an opaque reference to a user, owned by the profile store.
type UserID string

func (u UserID) String() string {
	return string(u)
}

// ParseUserID rejects identifiers that would break storage keys.
// ':' separates key segments and '|' separates the two halves of a pair key.
func ParseUserID(raw string) (UserID, error) {
	if raw == "" {
		return "", fmt.Errorf("%w: empty user id", errors.ErrInvalidArgument)
	}
	if strings.ContainsAny(raw, ":| \t\n") {
		return "", fmt.Errorf("%w: malformed user id %q", errors.ErrInvalidArgument, raw)
	}
	return UserID(raw), nil
}

// Connections is the adjacency set of one user.
type Connections map[UserID]struct{}

func NewConnections(ids ...UserID) Connections {
	c := make(Connections, len(ids))
	for _, id := range ids {
		c[id] = struct{}{}
	}
	return c
}

// Add reports whether the set changed.
func (c Connections) Add(id UserID) bool {
	if _, ok := c[id]; ok {
		return false
	}
	c[id] = struct{}{}
	return true
}

// Remove reports whether the set changed.
func (c Connections) Remove(id UserID) bool {
	if _, ok := c[id]; !ok {
		return false
	}
	delete(c, id)
	return true
}

func (c Connections) Has(id UserID) bool {
	_, ok := c[id]
	return ok
}

// Sorted returns the members in lexicographic order, never nil.
func (c Connections) Sorted() []UserID {
	out := make([]UserID, 0, len(c))
	for id := range c {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
