package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"vip-content-platform/internal/domain"
	"vip-content-platform/internal/domain/model"
	"vip-content-platform/internal/domain/ports/repository"
)

var (
	_ repository.ActivityLogRepository  = (*activityLogRepo)(nil)
	_ repository.NotificationRepository = (*notificationRepo)(nil)
)

type activityLogRepo struct{ pool *pgxpool.Pool }

func NewActivityLogRepo(pool *pgxpool.Pool) *activityLogRepo {
	return &activityLogRepo{pool: pool}
}

func (r *activityLogRepo) Save(ctx context.Context, tx repository.Tx, e *model.ActivityLog) error {
	const q = `INSERT INTO activity_log (id, user_id, action, detail, created_at) VALUES ($1,$2,$3,$4,$5);`
	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.UserID, e.Action, e.Detail, e.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *activityLogRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT id, user_id, action, detail, created_at FROM activity_log WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var out []*model.ActivityLog
	for rows.Next() {
		e := new(model.ActivityLog)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, e)
	}
	return out, nil
}

type notificationRepo struct{ pool *pgxpool.Pool }

func NewNotificationRepo(pool *pgxpool.Pool) *notificationRepo {
	return &notificationRepo{pool: pool}
}

func (r *notificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	const q = `INSERT INTO notifications (id, recipient, kind, body, read_at, created_at) VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := execSQL(ctx, r.pool, tx, q, n.ID, n.Recipient, n.Kind, n.Body, n.ReadAt, n.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *notificationRepo) ListUnread(ctx context.Context, tx repository.Tx, recipient string, limit int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT id, recipient, kind, body, read_at, created_at FROM notifications WHERE recipient=$1 AND read_at IS NULL ORDER BY created_at DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, recipient, limit)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var out []*model.Notification
	for rows.Next() {
		n := new(model.Notification)
		if err := rows.Scan(&n.ID, &n.Recipient, &n.Kind, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, n)
	}
	return out, nil
}
