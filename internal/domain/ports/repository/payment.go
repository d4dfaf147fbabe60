package repository

import (
	"context"
	"time"

	"vip-content-platform/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByTransactionID(ctx context.Context, tx Tx, trackID string) (*model.Payment, error)
	// SetTransaction attaches the provider track id and merges kv into meta.
	SetTransaction(ctx context.Context, tx Tx, id, trackID string, meta map[string]any) error
	// MergeMeta appends kv to the audit metadata without touching status.
	MergeMeta(ctx context.Context, tx Tx, id string, meta map[string]any) error
	// UpdateStatusIfPending transitions status only when the row is still
	// pending. Returns false when the row was already terminal, which is how
	// duplicate and out-of-order webhook deliveries are detected.
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.PaymentStatus) (bool, error)
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Payment, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)
	SumCompletedByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
