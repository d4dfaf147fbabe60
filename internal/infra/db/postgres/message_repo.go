package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"vip-content-platform/internal/domain"
	"vip-content-platform/internal/domain/model"
	"vip-content-platform/internal/domain/ports/repository"
	"vip-content-platform/internal/infra/security"
)

var _ repository.MessageRepository = (*messageRepo)(nil)

// messageRepo stores chat messages with content encrypted at rest when an
// EncryptionService is supplied (nil stores plaintext, used by dev setups).
// Encryption covers messages.content only: the chats.last_message_text
// preview and the redis listing cache hold plaintext so listings render
// without the key.
type messageRepo struct {
	pool *pgxpool.Pool
	enc  *security.EncryptionService
}

func NewMessageRepo(pool *pgxpool.Pool, enc *security.EncryptionService) *messageRepo {
	return &messageRepo{pool: pool, enc: enc}
}

func (r *messageRepo) Save(ctx context.Context, tx repository.Tx, m *model.Message) error {
	content := m.Content
	if r.enc != nil {
		c, err := r.enc.Encrypt(content)
		if err != nil {
			return err
		}
		content = c
	}
	const q = `
INSERT INTO messages (id, chat_id, sender_id, content, read, created_at)
VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := execSQL(ctx, r.pool, tx, q, m.ID, m.ChatID, m.SenderID, content, m.Read, m.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *messageRepo) ListByChat(ctx context.Context, tx repository.Tx, chatID string, limit int) ([]*model.Message, error) {
	if limit <= 0 {
		limit = 200
	}
	const q = `
SELECT id, chat_id, sender_id, content, read, created_at
  FROM messages WHERE chat_id=$1 ORDER BY created_at ASC, id ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, chatID, limit)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	defer rows.Close()

	var out []*model.Message
	for rows.Next() {
		m := new(model.Message)
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if r.enc != nil {
			plain, err := r.enc.Decrypt(m.Content)
			if err != nil {
				return nil, domain.ErrReadDatabaseRow
			}
			m.Content = plain
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *messageRepo) MarkReadExceptSender(ctx context.Context, tx repository.Tx, chatID, actorID string) (int, error) {
	// Scope excludes the actor's own messages: a sender must not clear the
	// unread flag on what they sent.
	const q = `UPDATE messages SET read=TRUE WHERE chat_id=$1 AND sender_id <> $2 AND NOT read;`
	cmd, err := execSQL(ctx, r.pool, tx, q, chatID, actorID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return 0, err
		}
		return 0, domain.ErrOperationFailed
	}
	return int(cmd.RowsAffected()), nil
}

func (r *messageRepo) CountUnreadForUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	const q = `
SELECT COUNT(*)
  FROM messages m
  JOIN chats c ON c.id = m.chat_id
 WHERE c.is_accepted
   AND (c.member_a=$1 OR c.member_b=$1)
   AND m.sender_id <> $1
   AND NOT m.read;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
