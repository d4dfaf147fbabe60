package repository

import (
	"context"

	"vip-content-platform/internal/domain/model"
)

type MessageRepository interface {
	Save(ctx context.Context, tx Tx, m *model.Message) error
	// ListByChat returns messages in createdAt-ascending order.
	ListByChat(ctx context.Context, tx Tx, chatID string, limit int) ([]*model.Message, error)
	// MarkReadExceptSender flips read=true on unread messages in the chat that
	// were NOT authored by actorID. Returns the number of rows flipped.
	MarkReadExceptSender(ctx context.Context, tx Tx, chatID, actorID string) (int, error)
	// CountUnreadForUser counts unread messages across the user's accepted
	// chats, excluding the user's own messages.
	CountUnreadForUser(ctx context.Context, tx Tx, userID string) (int, error)
}
