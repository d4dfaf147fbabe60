package repository

import (
	"context"
	"time"

	"vip-content-platform/internal/domain/model"
)

type ChatRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Chat) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Chat, error)
	// FindByMembers looks up the single chat for a normalized member pair.
	FindByMembers(ctx context.Context, tx Tx, memberA, memberB string) (*model.Chat, error)
	SetAccepted(ctx context.Context, tx Tx, id string, accepted bool) error
	// UpdateLastMessage refreshes the denormalized preview fields.
	UpdateLastMessage(ctx context.Context, tx Tx, id, text string, at time.Time) error
	// Delete removes the chat and cascades to its messages. Destructive.
	Delete(ctx context.Context, tx Tx, id string) error
	ListAcceptedByUser(ctx context.Context, tx Tx, userID string) ([]*model.Chat, error)
}

type ChatRequestRepository interface {
	Save(ctx context.Context, tx Tx, r *model.ChatRequest) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ChatRequest, error)
	FindByChatID(ctx context.Context, tx Tx, chatID string) (*model.ChatRequest, error)
	// UpdateStatusIfPending flips status only from pending; returns false when
	// the request already reached a terminal status.
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.ChatRequestStatus) (bool, error)
	ListPendingByReceiver(ctx context.Context, tx Tx, receiverID string) ([]*model.ChatRequest, error)
	CountPendingByReceiver(ctx context.Context, tx Tx, receiverID string) (int, error)
}
