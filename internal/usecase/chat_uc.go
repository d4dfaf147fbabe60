package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"vip-content-platform/internal/domain"
	"vip-content-platform/internal/domain/model"
	"vip-content-platform/internal/domain/ports/repository"
	"vip-content-platform/internal/infra/metrics"
)

var _ ChatUseCase = (*chatUC)(nil)

// chatListPrefix keys the cached chat listings; the suffix is the user id.
const chatListPrefix = "chats"

// supportWelcome is the first message in every support chat, sent as the
// support account.
const supportWelcome = "Hi! You have reached support. Describe your issue and we will get back to you."

// ChatOverview is one row of a user's chat listing.
type ChatOverview struct {
	ChatID          string     `json:"chat_id"`
	PeerID          string     `json:"peer_id"`
	IsSupport       bool       `json:"is_support"`
	LastMessageAt   *time.Time `json:"last_message_at,omitempty"`
	LastMessageText string     `json:"last_message_text,omitempty"`
}

// UnreadSummary aggregates everything waiting on a user.
type UnreadSummary struct {
	PendingRequests int `json:"pending_requests"`
	UnreadMessages  int `json:"unread_messages"`
	Total           int `json:"total"`
}

type ChatUseCase interface {
	// StartChat returns the existing chat for the pair or creates a new one
	// with a pending contact request. The request is nil when the chat
	// already existed or when it is a support chat. support is only honored
	// when the receiver is a support account; otherwise ErrInvalidArgument.
	StartChat(ctx context.Context, senderID, receiverID string, support bool) (*model.Chat, *model.ChatRequest, error)
	// Accept flips a pending request to accepted and opens the chat. Only
	// the request's receiver may call it.
	Accept(ctx context.Context, requestID, actorID string) error
	// Reject flips a pending request to rejected and deletes the chat with
	// its messages.
	Reject(ctx context.Context, requestID, actorID string) error
	SendMessage(ctx context.Context, chatID, senderID, content string) (*model.Message, error)
	// MarkRead marks the peer's messages in the chat as read and returns how
	// many were flipped.
	MarkRead(ctx context.Context, chatID, actorID string) (int, error)
	UnreadCount(ctx context.Context, userID string) (*UnreadSummary, error)
	ListChats(ctx context.Context, userID string) ([]ChatOverview, error)
	ListRequests(ctx context.Context, receiverID string) ([]*model.ChatRequest, error)
	ListMessages(ctx context.Context, chatID, actorID string, limit int) ([]*model.Message, error)
}

type chatUC struct {
	chats    repository.ChatRepository
	requests repository.ChatRequestRepository
	messages repository.MessageRepository
	users    repository.UserRepository
	tm       repository.TransactionManager
	cache    ListingCache
	log      *zerolog.Logger
}

func NewChatUseCase(
	chats repository.ChatRepository,
	requests repository.ChatRequestRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	tm repository.TransactionManager,
	cache ListingCache,
	logger *zerolog.Logger,
) *chatUC {
	if cache == nil {
		cache = noopCache{}
	}
	return &chatUC{
		chats:    chats,
		requests: requests,
		messages: messages,
		users:    users,
		tm:       tm,
		cache:    cache,
		log:      logger,
	}
}

func (u *chatUC) StartChat(ctx context.Context, senderID, receiverID string, support bool) (*model.Chat, *model.ChatRequest, error) {
	if support {
		// The flag is caller-supplied; only a receiver flagged as a support
		// account may open an auto-accepted chat.
		receiver, err := u.users.FindByID(ctx, repository.NoTX, receiverID)
		if err != nil {
			if err == domain.ErrNotFound {
				return nil, nil, domain.ErrInvalidArgument
			}
			return nil, nil, err
		}
		if !receiver.IsSupport {
			return nil, nil, domain.ErrInvalidArgument
		}
	}

	a, b := model.NormalizePair(senderID, receiverID)
	existing, err := u.chats.FindByMembers(ctx, repository.NoTX, a, b)
	if err == nil {
		return existing, nil, nil
	}
	if err != domain.ErrNotFound {
		return nil, nil, err
	}

	chat, err := model.NewChat(senderID, receiverID, support)
	if err != nil {
		return nil, nil, err
	}

	var req *model.ChatRequest
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.chats.Save(ctx, tx, chat); err != nil {
			return err
		}
		if support {
			// Support chats skip the request gate and open with a greeting
			// so the inbox is never empty for a fresh support contact.
			msg, merr := model.NewMessage(chat.ID, receiverID, supportWelcome)
			if merr != nil {
				return merr
			}
			if merr := u.messages.Save(ctx, tx, msg); merr != nil {
				return merr
			}
			return u.chats.UpdateLastMessage(ctx, tx, chat.ID, msg.Content, msg.CreatedAt)
		}
		req = model.NewChatRequest(chat.ID, senderID, receiverID)
		return u.requests.Save(ctx, tx, req)
	})
	if err != nil {
		// A concurrent creator can win the unique pair index between the
		// lookup and the insert; converge on their row.
		if err == domain.ErrAlreadyExists {
			existing, ferr := u.chats.FindByMembers(ctx, repository.NoTX, a, b)
			if ferr == nil {
				return existing, nil, nil
			}
		}
		return nil, nil, err
	}
	if req != nil {
		metrics.IncChatRequest("created")
	}
	return chat, req, nil
}

func (u *chatUC) Accept(ctx context.Context, requestID, actorID string) error {
	req, err := u.requests.FindByID(ctx, repository.NoTX, requestID)
	if err != nil {
		return err
	}
	if req.ReceiverID != actorID {
		return domain.ErrNotFound // not-yours is indistinguishable from absent
	}
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		applied, err := u.requests.UpdateStatusIfPending(ctx, tx, requestID, model.ChatRequestAccepted)
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrStateConflict
		}
		return u.chats.SetAccepted(ctx, tx, req.ChatID, true)
	})
	if err != nil {
		return err
	}
	metrics.IncChatRequest("accepted")
	u.invalidateListings(ctx, req.SenderID, req.ReceiverID)
	return nil
}

func (u *chatUC) Reject(ctx context.Context, requestID, actorID string) error {
	req, err := u.requests.FindByID(ctx, repository.NoTX, requestID)
	if err != nil {
		return err
	}
	if req.ReceiverID != actorID {
		return domain.ErrNotFound
	}
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		applied, err := u.requests.UpdateStatusIfPending(ctx, tx, requestID, model.ChatRequestRejected)
		if err != nil {
			return err
		}
		if !applied {
			return domain.ErrStateConflict
		}
		// Rejection erases the conversation, messages cascade with the chat.
		return u.chats.Delete(ctx, tx, req.ChatID)
	})
	if err != nil {
		return err
	}
	metrics.IncChatRequest("rejected")
	u.invalidateListings(ctx, req.SenderID, req.ReceiverID)
	return nil
}

func (u *chatUC) SendMessage(ctx context.Context, chatID, senderID, content string) (*model.Message, error) {
	chat, err := u.chats.FindByID(ctx, repository.NoTX, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(senderID) {
		return nil, domain.ErrNotChatMember
	}
	if !chat.IsAccepted {
		return nil, domain.ErrChatNotAccepted
	}

	msg, err := model.NewMessage(chatID, senderID, content)
	if err != nil {
		return nil, err
	}
	if err := u.messages.Save(ctx, repository.NoTX, msg); err != nil {
		return nil, err
	}
	metrics.IncMessageSent()

	// The preview fields are a display cache; a failed refresh must not
	// undo a delivered message.
	if err := u.chats.UpdateLastMessage(ctx, repository.NoTX, chatID, msg.Content, msg.CreatedAt); err != nil {
		u.log.Warn().Err(err).Str("chat_id", chatID).Msg("refresh last message preview")
	}
	u.invalidateListings(ctx, chat.MemberA, chat.MemberB)
	return msg, nil
}

func (u *chatUC) MarkRead(ctx context.Context, chatID, actorID string) (int, error) {
	chat, err := u.chats.FindByID(ctx, repository.NoTX, chatID)
	if err != nil {
		return 0, err
	}
	if !chat.HasMember(actorID) {
		return 0, domain.ErrNotChatMember
	}
	return u.messages.MarkReadExceptSender(ctx, repository.NoTX, chatID, actorID)
}

func (u *chatUC) UnreadCount(ctx context.Context, userID string) (*UnreadSummary, error) {
	pending, err := u.requests.CountPendingByReceiver(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	unread, err := u.messages.CountUnreadForUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	return &UnreadSummary{
		PendingRequests: pending,
		UnreadMessages:  unread,
		Total:           pending + unread,
	}, nil
}

func (u *chatUC) ListChats(ctx context.Context, userID string) ([]ChatOverview, error) {
	cacheKey := chatListPrefix + ":" + userID
	var cached []ChatOverview
	if hit, err := u.cache.Get(ctx, cacheKey, &cached); err != nil {
		u.log.Warn().Err(err).Str("user_id", userID).Msg("chat listing cache read")
	} else if hit {
		return cached, nil
	}

	chats, err := u.chats.ListAcceptedByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ChatOverview, 0, len(chats))
	for _, c := range chats {
		out = append(out, ChatOverview{
			ChatID:          c.ID,
			PeerID:          c.Peer(userID),
			IsSupport:       c.IsSupport,
			LastMessageAt:   c.LastMessageAt,
			LastMessageText: c.LastMessageText,
		})
	}
	if err := u.cache.Set(ctx, cacheKey, out); err != nil {
		u.log.Warn().Err(err).Str("user_id", userID).Msg("chat listing cache write")
	}
	return out, nil
}

func (u *chatUC) ListRequests(ctx context.Context, receiverID string) ([]*model.ChatRequest, error) {
	return u.requests.ListPendingByReceiver(ctx, repository.NoTX, receiverID)
}

func (u *chatUC) ListMessages(ctx context.Context, chatID, actorID string, limit int) ([]*model.Message, error) {
	chat, err := u.chats.FindByID(ctx, repository.NoTX, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasMember(actorID) {
		return nil, domain.ErrNotChatMember
	}
	return u.messages.ListByChat(ctx, repository.NoTX, chatID, limit)
}

func (u *chatUC) invalidateListings(ctx context.Context, _, _ string) {
	// The listing prefix spans all users; per-user invalidation would need a
	// per-user index for little gain at this fan-out.
	if err := u.cache.InvalidatePrefix(ctx, chatListPrefix); err != nil {
		u.log.Warn().Err(err).Msg("invalidate chat listings")
	}
}
