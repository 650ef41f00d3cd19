package enums

import "fmt"

// ChatSessionStatus tracks whether a support/seller conversation is open.
type ChatSessionStatus string

const (
	ChatSessionOpen   ChatSessionStatus = "OPEN"
	ChatSessionClosed ChatSessionStatus = "CLOSED"
)

// IsValid reports whether the value is a known ChatSessionStatus.
func (c ChatSessionStatus) IsValid() bool {
	return c == ChatSessionOpen || c == ChatSessionClosed
}

// ChatSessionKind distinguishes support conversations from seller DMs.
type ChatSessionKind string

const (
	ChatSessionSupport ChatSessionKind = "SUPPORT"
	ChatSessionSeller  ChatSessionKind = "SELLER"
)

// IsValid reports whether the value is a known ChatSessionKind.
func (c ChatSessionKind) IsValid() bool {
	return c == ChatSessionSupport || c == ChatSessionSeller
}

// ParseChatSessionKind converts raw input into a ChatSessionKind.
func ParseChatSessionKind(value string) (ChatSessionKind, error) {
	switch ChatSessionKind(value) {
	case ChatSessionSupport, ChatSessionSeller:
		return ChatSessionKind(value), nil
	}
	return "", fmt.Errorf("invalid chat session kind %q", value)
}
