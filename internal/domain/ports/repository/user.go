package repository

import (
	"context"

	"vip-content-platform/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByUsername(ctx context.Context, tx Tx, username string) (*model.User, error)
	// SetVIP is an idempotent set: applying it to an already-VIP user is a
	// no-op at the row level, never an error.
	SetVIP(ctx context.Context, tx Tx, id string, vip bool) error
	Count(ctx context.Context, tx Tx) (int, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
}
