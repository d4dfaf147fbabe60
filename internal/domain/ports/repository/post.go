package repository

import (
	"context"
	"time"

	"vip-content-platform/internal/domain/model"
)

type PostRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Post) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Post, error)
	// PublishDue flips published=true on rows whose publish_at has passed and
	// that are not yet published. Returns the number of rows flipped; a
	// concurrent second run simply matches zero rows.
	PublishDue(ctx context.Context, tx Tx, now time.Time) (int, error)
	ListPublished(ctx context.Context, tx Tx, includeVIP bool, offset, limit int) ([]*model.Post, error)
}
