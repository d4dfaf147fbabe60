package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"vip-content-platform/internal/domain"
	"vip-content-platform/internal/domain/model"
	"vip-content-platform/internal/domain/ports/repository"
)

var _ repository.PostRepository = (*postRepo)(nil)

const postColumns = `id, author_id, title, body, vip_only, published, publish_at, created_at`

type postRepo struct{ pool *pgxpool.Pool }

func NewPostRepo(pool *pgxpool.Pool) *postRepo {
	return &postRepo{pool: pool}
}

func (r *postRepo) Save(ctx context.Context, tx repository.Tx, p *model.Post) error {
	const q = `
INSERT INTO posts (` + postColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET title=$3, body=$4, vip_only=$5, published=$6, publish_at=$7;`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.ID, p.AuthorID, p.Title, p.Body, p.VIPOnly, p.Published, p.PublishAt, p.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *postRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Post, error) {
	const q = `SELECT ` + postColumns + ` FROM posts WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p := &model.Post{}
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.VIPOnly, &p.Published, &p.PublishAt, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

// PublishDue only matches due, unpublished rows, so two concurrent runs
// cannot publish a post twice: the second run affects zero rows.
func (r *postRepo) PublishDue(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `UPDATE posts SET published=TRUE WHERE NOT published AND publish_at IS NOT NULL AND publish_at <= $1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return 0, err
		}
		return 0, domain.ErrOperationFailed
	}
	return int(cmd.RowsAffected()), nil
}

func (r *postRepo) ListPublished(ctx context.Context, tx repository.Tx, includeVIP bool, offset, limit int) ([]*model.Post, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT ` + postColumns + ` FROM posts
 WHERE published AND (NOT vip_only OR $1)
 ORDER BY created_at DESC OFFSET $2 LIMIT $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, includeVIP, offset, limit)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var out []*model.Post
	for rows.Next() {
		p := new(model.Post)
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Body, &p.VIPOnly, &p.Published, &p.PublishAt, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	return out, nil
}
