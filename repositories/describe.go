package repositories

import (
	"fmt"
	"strings"
)

// Describe decodes a raw store entry for debugging tools. It returns the
// record kind and a one line summary.
func Describe(key string, val []byte) (string, string, error) {
	switch {
	case strings.HasPrefix(key, "user:id:"):
		var record userRecord
		if err := decodeUser(val, &record); err != nil {
			return "USER", "", err
		}
		return "USER", fmt.Sprintf("%s <%s> %s, %d connections",
			record.Profile.Name, record.Email, record.Profile.Role, len(record.Connections)), nil
	case strings.HasPrefix(key, "user:email:"):
		return "EMAIL", string(val), nil
	case strings.HasPrefix(key, "msg:"):
		var record messageRecord
		if err := unmarshal(val, &record); err != nil {
			return "MESSAGE", "", err
		}
		return "MESSAGE", fmt.Sprintf("%s -> %s read=%t %q",
			record.Sender, record.Receiver, record.Read, record.Content), nil
	case strings.HasPrefix(key, "conv:"):
		var record conversationRecord
		if err := unmarshal(val, &record); err != nil {
			return "CONVERSATION", "", err
		}
		return "CONVERSATION", fmt.Sprintf("last=%s unread=%d by=%v",
			record.LastMessageAt.UTC().Format("2006-01-02 15:04:05"), record.UnreadCount, record.UnreadBy), nil
	case strings.HasPrefix(key, "idx:"):
		return "INDEX", "", nil
	default:
		return "RAW", fmt.Sprintf("Size: %d bytes", len(val)), nil
	}
}
