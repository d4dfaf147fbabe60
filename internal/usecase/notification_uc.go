package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"vip-content-platform/internal/domain/model"
	"vip-content-platform/internal/domain/ports/repository"
)

var _ NotificationUseCase = (*notificationUC)(nil)

// NotificationUseCase records back-office notices. All writes are
// best-effort: callers never see an error from NotifyAdmin.
type NotificationUseCase interface {
	NotifyAdmin(ctx context.Context, kind, body string)
	ListUnread(ctx context.Context, recipient string, limit int) ([]*model.Notification, error)
}

type notificationUC struct {
	repo repository.NotificationRepository
	log  *zerolog.Logger
}

func NewNotificationUseCase(repo repository.NotificationRepository, logger *zerolog.Logger) *notificationUC {
	return &notificationUC{repo: repo, log: logger}
}

func (u *notificationUC) NotifyAdmin(ctx context.Context, kind, body string) {
	n := model.NewAdminNotification(kind, body)
	if err := u.repo.Save(ctx, repository.NoTX, n); err != nil {
		u.log.Warn().Err(err).Str("kind", kind).Msg("save admin notification")
	}
}

func (u *notificationUC) ListUnread(ctx context.Context, recipient string, limit int) ([]*model.Notification, error) {
	return u.repo.ListUnread(ctx, repository.NoTX, recipient, limit)
}
