package repository

import (
	"context"

	"vip-content-platform/internal/domain/model"
)

type ActivityLogRepository interface {
	Save(ctx context.Context, tx Tx, e *model.ActivityLog) error
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.ActivityLog, error)
}

type NotificationRepository interface {
	Save(ctx context.Context, tx Tx, n *model.Notification) error
	ListUnread(ctx context.Context, tx Tx, recipient string, limit int) ([]*model.Notification, error)
}
