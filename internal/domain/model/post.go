package model

import (
	"time"

	"github.com/google/uuid"

	"vip-content-platform/internal/domain"
)

// Post is a feed entry. A post with a future PublishAt stays hidden until the
// publish worker flips it; the flip only touches due, unpublished rows, so
// the worker can safely run concurrently with itself.
type Post struct {
	ID        string
	AuthorID  string
	Title     string
	Body      string
	VIPOnly   bool
	Published bool
	PublishAt *time.Time
	CreatedAt time.Time
}

func NewPost(authorID, title, body string, vipOnly bool, publishAt *time.Time) (*Post, error) {
	if authorID == "" || title == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Title:     title,
		Body:      body,
		VIPOnly:   vipOnly,
		Published: publishAt == nil,
		PublishAt: publishAt,
		CreatedAt: time.Now(),
	}, nil
}
