package model

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"vip-content-platform/internal/domain"
)

// Message is one chat message. IDs are ULIDs so lexicographic order matches
// creation order, which keeps createdAt-ascending listing stable across
// same-timestamp inserts.
type Message struct {
	ID        string
	ChatID    string
	SenderID  string
	Content   string
	Read      bool
	CreatedAt time.Time
}

func NewMessage(chatID, senderID, content string) (*Message, error) {
	if chatID == "" || senderID == "" || content == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	id := ulid.MustNew(ulid.Timestamp(now), rand.Reader)
	return &Message{
		ID:        id.String(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: now,
	}, nil
}
