package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"vip-content-platform/internal/domain/model"
	"vip-content-platform/internal/domain/ports/repository"
)

var _ FeedUseCase = (*feedUC)(nil)

const feedListPrefix = "feed"

type FeedUseCase interface {
	CreatePost(ctx context.Context, authorID, title, body string, vipOnly bool, publishAt *time.Time) (*model.Post, error)
	// ListFeed returns published posts. VIP-only posts are included only for
	// VIP viewers; gating happens here, not in the handler.
	ListFeed(ctx context.Context, viewerID string, offset, limit int) ([]*model.Post, error)
	// PublishDue flips every scheduled post whose publish time has passed.
	// Idempotent; the worker calls it on a fixed interval.
	PublishDue(ctx context.Context, now time.Time) (int, error)
}

type feedUC struct {
	posts repository.PostRepository
	users repository.UserRepository
	cache ListingCache
	log   *zerolog.Logger
}

func NewFeedUseCase(posts repository.PostRepository, users repository.UserRepository, cache ListingCache, logger *zerolog.Logger) *feedUC {
	if cache == nil {
		cache = noopCache{}
	}
	return &feedUC{posts: posts, users: users, cache: cache, log: logger}
}

func (u *feedUC) CreatePost(ctx context.Context, authorID, title, body string, vipOnly bool, publishAt *time.Time) (*model.Post, error) {
	p, err := model.NewPost(authorID, title, body, vipOnly, publishAt)
	if err != nil {
		return nil, err
	}
	if err := u.posts.Save(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	if p.Published {
		u.invalidateFeed(ctx)
	}
	return p, nil
}

func (u *feedUC) ListFeed(ctx context.Context, viewerID string, offset, limit int) ([]*model.Post, error) {
	includeVIP := false
	if viewerID != "" {
		viewer, err := u.users.FindByID(ctx, repository.NoTX, viewerID)
		if err != nil {
			return nil, err
		}
		includeVIP = viewer.IsVIP
	}

	// Cache splits on the VIP tier, not on the viewer, so the two rendered
	// variants cover everyone.
	cacheKey := fmt.Sprintf("%s:%t:%d:%d", feedListPrefix, includeVIP, offset, limit)
	var cached []*model.Post
	if hit, err := u.cache.Get(ctx, cacheKey, &cached); err != nil {
		u.log.Warn().Err(err).Msg("feed cache read")
	} else if hit {
		return cached, nil
	}

	posts, err := u.posts.ListPublished(ctx, repository.NoTX, includeVIP, offset, limit)
	if err != nil {
		return nil, err
	}
	if err := u.cache.Set(ctx, cacheKey, posts); err != nil {
		u.log.Warn().Err(err).Msg("feed cache write")
	}
	return posts, nil
}

func (u *feedUC) PublishDue(ctx context.Context, now time.Time) (int, error) {
	n, err := u.posts.PublishDue(ctx, repository.NoTX, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		u.log.Info().Int("published", n).Msg("scheduled posts published")
		u.invalidateFeed(ctx)
	}
	return n, nil
}

func (u *feedUC) invalidateFeed(ctx context.Context) {
	if err := u.cache.InvalidatePrefix(ctx, feedListPrefix); err != nil {
		u.log.Warn().Err(err).Msg("invalidate feed listings")
	}
}
