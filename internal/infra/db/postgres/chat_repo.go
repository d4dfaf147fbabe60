package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"vip-content-platform/internal/domain"
	"vip-content-platform/internal/domain/model"
	"vip-content-platform/internal/domain/ports/repository"
)

var (
	_ repository.ChatRepository        = (*chatRepo)(nil)
	_ repository.ChatRequestRepository = (*chatRequestRepo)(nil)
)

const chatColumns = `id, member_a, member_b, is_accepted, is_support, last_message_at, last_message_text, created_at`

type chatRepo struct{ pool *pgxpool.Pool }

func NewChatRepo(pool *pgxpool.Pool) *chatRepo {
	return &chatRepo{pool: pool}
}

func (r *chatRepo) Save(ctx context.Context, tx repository.Tx, c *model.Chat) error {
	const q = `
INSERT INTO chats (` + chatColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  is_accepted=$4, last_message_at=$6, last_message_text=$7;`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.MemberA, c.MemberB, c.IsAccepted, c.IsSupport, c.LastMessageAt, c.LastMessageText, c.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		// The UNIQUE(member_a, member_b) index fires when a concurrent
		// creator wins the pair; callers converge on the existing row.
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *chatRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Chat, error) {
	const q = `SELECT ` + chatColumns + ` FROM chats WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanChat(row)
}

// FindByMembers expects the pair already normalized (memberA < memberB);
// a UNIQUE(member_a, member_b) index backs the one-chat-per-pair invariant.
func (r *chatRepo) FindByMembers(ctx context.Context, tx repository.Tx, memberA, memberB string) (*model.Chat, error) {
	const q = `SELECT ` + chatColumns + ` FROM chats WHERE member_a=$1 AND member_b=$2 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, memberA, memberB)
	if err != nil {
		return nil, err
	}
	return scanChat(row)
}

func (r *chatRepo) SetAccepted(ctx context.Context, tx repository.Tx, id string, accepted bool) error {
	const q = `UPDATE chats SET is_accepted=$2 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, accepted)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *chatRepo) UpdateLastMessage(ctx context.Context, tx repository.Tx, id, text string, at time.Time) error {
	const q = `UPDATE chats SET last_message_text=$2, last_message_at=$3 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, text, at)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *chatRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	// messages cascade via FK
	const q = `DELETE FROM chats WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *chatRepo) ListAcceptedByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Chat, error) {
	const q = `
SELECT ` + chatColumns + ` FROM chats
 WHERE is_accepted AND (member_a=$1 OR member_b=$1)
 ORDER BY last_message_at DESC NULLS LAST, created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var out []*model.Chat
	for rows.Next() {
		c := new(model.Chat)
		if err := rows.Scan(&c.ID, &c.MemberA, &c.MemberB, &c.IsAccepted, &c.IsSupport,
			&c.LastMessageAt, &c.LastMessageText, &c.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, c)
	}
	return out, nil
}

func scanChat(row pgx.Row) (*model.Chat, error) {
	c := &model.Chat{}
	err := row.Scan(&c.ID, &c.MemberA, &c.MemberB, &c.IsAccepted, &c.IsSupport,
		&c.LastMessageAt, &c.LastMessageText, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}

const chatRequestColumns = `id, chat_id, sender_id, receiver_id, status, created_at, updated_at`

type chatRequestRepo struct{ pool *pgxpool.Pool }

func NewChatRequestRepo(pool *pgxpool.Pool) *chatRequestRepo {
	return &chatRequestRepo{pool: pool}
}

func (r *chatRequestRepo) Save(ctx context.Context, tx repository.Tx, cr *model.ChatRequest) error {
	const q = `
INSERT INTO chat_requests (` + chatRequestColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET status=$5, updated_at=$7;`
	_, err := execSQL(ctx, r.pool, tx, q,
		cr.ID, cr.ChatID, cr.SenderID, cr.ReceiverID, cr.Status, cr.CreatedAt, cr.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *chatRequestRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ChatRequest, error) {
	const q = `SELECT ` + chatRequestColumns + ` FROM chat_requests WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanChatRequest(row)
}

func (r *chatRequestRepo) FindByChatID(ctx context.Context, tx repository.Tx, chatID string) (*model.ChatRequest, error) {
	const q = `SELECT ` + chatRequestColumns + ` FROM chat_requests WHERE chat_id=$1 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, chatID)
	if err != nil {
		return nil, err
	}
	return scanChatRequest(row)
}

func (r *chatRequestRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.ChatRequestStatus) (bool, error) {
	const q = `UPDATE chat_requests SET status=$2, updated_at=NOW() WHERE id=$1 AND status='pending';`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(status))
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *chatRequestRepo) ListPendingByReceiver(ctx context.Context, tx repository.Tx, receiverID string) ([]*model.ChatRequest, error) {
	const q = `SELECT ` + chatRequestColumns + ` FROM chat_requests WHERE receiver_id=$1 AND status='pending' ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, receiverID)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var out []*model.ChatRequest
	for rows.Next() {
		cr := new(model.ChatRequest)
		if err := rows.Scan(&cr.ID, &cr.ChatID, &cr.SenderID, &cr.ReceiverID,
			&cr.Status, &cr.CreatedAt, &cr.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, cr)
	}
	return out, nil
}

func (r *chatRequestRepo) CountPendingByReceiver(ctx context.Context, tx repository.Tx, receiverID string) (int, error) {
	const q = `SELECT COUNT(*) FROM chat_requests WHERE receiver_id=$1 AND status='pending';`
	row, err := pickRow(ctx, r.pool, tx, q, receiverID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func scanChatRequest(row pgx.Row) (*model.ChatRequest, error) {
	cr := &model.ChatRequest{}
	err := row.Scan(&cr.ID, &cr.ChatID, &cr.SenderID, &cr.ReceiverID, &cr.Status, &cr.CreatedAt, &cr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return cr, nil
}
