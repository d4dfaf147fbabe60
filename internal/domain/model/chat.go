package model

import (
	"time"

	"github.com/google/uuid"

	"vip-content-platform/internal/domain"
)

// Chat is a two-member conversation. The member pair is stored normalized
// (MemberA < MemberB) so the unordered pair maps to exactly one row.
// LastMessageAt/LastMessageText are a display cache of the newest message,
// never the source of truth. The preview is stored and cached in plaintext
// even when message bodies are encrypted at rest; listing queries read it
// without the encryption key.
type Chat struct {
	ID              string
	MemberA         string
	MemberB         string
	IsAccepted      bool
	IsSupport       bool
	LastMessageAt   *time.Time
	LastMessageText string
	CreatedAt       time.Time
}

// NormalizePair orders two user ids so (a,b) and (b,a) address the same chat.
func NormalizePair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

func NewChat(a, b string, support bool) (*Chat, error) {
	if a == "" || b == "" || a == b {
		return nil, domain.ErrInvalidArgument
	}
	ma, mb := NormalizePair(a, b)
	return &Chat{
		ID:         uuid.NewString(),
		MemberA:    ma,
		MemberB:    mb,
		IsAccepted: support, // support chats skip the request gate
		IsSupport:  support,
		CreatedAt:  time.Now(),
	}, nil
}

func (c *Chat) HasMember(userID string) bool {
	return c != nil && (c.MemberA == userID || c.MemberB == userID)
}

// Peer returns the other member of the chat.
func (c *Chat) Peer(userID string) string {
	if c.MemberA == userID {
		return c.MemberB
	}
	return c.MemberA
}

type ChatRequestStatus string

const (
	ChatRequestPending  ChatRequestStatus = "pending"
	ChatRequestAccepted ChatRequestStatus = "accepted"
	ChatRequestRejected ChatRequestStatus = "rejected"
)

// ChatRequest gates first contact. Exactly one request exists per chat and
// its status moves one way: pending -> accepted | rejected.
type ChatRequest struct {
	ID         string
	ChatID     string
	SenderID   string
	ReceiverID string
	Status     ChatRequestStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewChatRequest(chatID, senderID, receiverID string) *ChatRequest {
	now := time.Now()
	return &ChatRequest{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     ChatRequestPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
