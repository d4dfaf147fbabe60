//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"vip-content-platform/internal/domain"
	"vip-content-platform/internal/domain/model"
	"vip-content-platform/internal/domain/ports/adapter"
	"vip-content-platform/internal/domain/ports/repository"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// =============================
// Transaction manager
// =============================

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
	Calls      int
}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

var _ repository.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.Calls++
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Repositories
// =============================

// ---- Payments ----

type MockPaymentRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Payment

	SaveFunc                  func(ctx context.Context, tx repository.Tx, p *model.Payment) error
	MergeMetaFunc             func(ctx context.Context, tx repository.Tx, id string, meta map[string]any) error
	UpdateStatusIfPendingFunc func(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus) (bool, error)
}

func NewMockPaymentRepo() *MockPaymentRepo {
	return &MockPaymentRepo{store: make(map[string]*model.Payment)}
}

var _ repository.PaymentRepository = (*MockPaymentRepo)(nil)

func (m *MockPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, tx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPaymentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepo) FindByTransactionID(ctx context.Context, tx repository.Tx, trackID string) (*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.store {
		if p.TransactionID != nil && *p.TransactionID == trackID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPaymentRepo) SetTransaction(ctx context.Context, tx repository.Tx, id, trackID string, meta map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if p.TransactionID == nil {
		p.TransactionID = &trackID
	}
	p.MergeMeta(meta)
	return nil
}

func (m *MockPaymentRepo) MergeMeta(ctx context.Context, tx repository.Tx, id string, meta map[string]any) error {
	if m.MergeMetaFunc != nil {
		return m.MergeMetaFunc(ctx, tx, id, meta)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.MergeMeta(meta)
	return nil
}

func (m *MockPaymentRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.PaymentStatus) (bool, error) {
	if m.UpdateStatusIfPendingFunc != nil {
		return m.UpdateStatusIfPendingFunc(ctx, tx, id, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if p.Status != model.PaymentStatusPending {
		return false, nil
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockPaymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.UserID == userID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockPaymentRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, cutoff time.Time, limit int) ([]*model.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Payment
	for _, p := range m.store {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(cutoff) {
			cp := *p
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockPaymentRepo) SumCompletedByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, p := range m.store {
		if p.Status == model.PaymentStatusCompleted {
			sum += p.Amount
		}
	}
	return sum, nil
}

// ---- Users ----

type MockUserRepo struct {
	mu    sync.RWMutex
	store map[string]*model.User

	SetVIPFunc func(ctx context.Context, tx repository.Tx, id string, vip bool) error
	SetVIPCall int
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[string]*model.User)}
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByUsername(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) SetVIP(ctx context.Context, tx repository.Tx, id string, vip bool) error {
	m.mu.Lock()
	m.SetVIPCall++
	m.mu.Unlock()
	if m.SetVIPFunc != nil {
		return m.SetVIPFunc(ctx, tx, id, vip)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.IsVIP = vip
	u.VIPUntil = nil
	return nil
}

func (m *MockUserRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

func (m *MockUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.User
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- Chats ----

type MockChatRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Chat

	UpdateLastMessageFunc func(ctx context.Context, tx repository.Tx, id, text string, at time.Time) error
	DeleteCalls           []string
}

func NewMockChatRepo() *MockChatRepo {
	return &MockChatRepo{store: make(map[string]*model.Chat)}
}

var _ repository.ChatRepository = (*MockChatRepo)(nil)

func (m *MockChatRepo) Save(ctx context.Context, tx repository.Tx, c *model.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.store {
		if ex.MemberA == c.MemberA && ex.MemberB == c.MemberB {
			return domain.ErrAlreadyExists
		}
	}
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *MockChatRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockChatRepo) FindByMembers(ctx context.Context, tx repository.Tx, memberA, memberB string) (*model.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.store {
		if c.MemberA == memberA && c.MemberB == memberB {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockChatRepo) SetAccepted(ctx context.Context, tx repository.Tx, id string, accepted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.IsAccepted = accepted
	return nil
}

func (m *MockChatRepo) UpdateLastMessage(ctx context.Context, tx repository.Tx, id, text string, at time.Time) error {
	if m.UpdateLastMessageFunc != nil {
		return m.UpdateLastMessageFunc(ctx, tx, id, text, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.LastMessageText = text
	c.LastMessageAt = &at
	return nil
}

func (m *MockChatRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	m.DeleteCalls = append(m.DeleteCalls, id)
	return nil
}

func (m *MockChatRepo) ListAcceptedByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Chat
	for _, c := range m.store {
		if c.IsAccepted && c.HasMember(userID) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := out[i].LastMessageAt, out[j].LastMessageAt
		switch {
		case li == nil:
			return false
		case lj == nil:
			return true
		default:
			return li.After(*lj)
		}
	})
	return out, nil
}

// ---- Chat requests ----

type MockChatRequestRepo struct {
	mu    sync.RWMutex
	store map[string]*model.ChatRequest
}

func NewMockChatRequestRepo() *MockChatRequestRepo {
	return &MockChatRequestRepo{store: make(map[string]*model.ChatRequest)}
}

var _ repository.ChatRequestRepository = (*MockChatRequestRepo)(nil)

func (m *MockChatRequestRepo) Save(ctx context.Context, tx repository.Tx, r *model.ChatRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.store[r.ID] = &cp
	return nil
}

func (m *MockChatRequestRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ChatRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockChatRequestRepo) FindByChatID(ctx context.Context, tx repository.Tx, chatID string) (*model.ChatRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.store {
		if r.ChatID == chatID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockChatRequestRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.ChatRequestStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.store[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if r.Status != model.ChatRequestPending {
		return false, nil
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockChatRequestRepo) ListPendingByReceiver(ctx context.Context, tx repository.Tx, receiverID string) ([]*model.ChatRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.ChatRequest
	for _, r := range m.store {
		if r.ReceiverID == receiverID && r.Status == model.ChatRequestPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockChatRequestRepo) CountPendingByReceiver(ctx context.Context, tx repository.Tx, receiverID string) (int, error) {
	list, _ := m.ListPendingByReceiver(ctx, tx, receiverID)
	return len(list), nil
}

// ---- Messages ----

type MockMessageRepo struct {
	mu    sync.RWMutex
	store []*model.Message
	chats *MockChatRepo // for CountUnreadForUser membership checks
}

func NewMockMessageRepo(chats *MockChatRepo) *MockMessageRepo {
	return &MockMessageRepo{chats: chats}
}

var _ repository.MessageRepository = (*MockMessageRepo)(nil)

func (m *MockMessageRepo) Save(ctx context.Context, tx repository.Tx, msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *msg
	m.store = append(m.store, &cp)
	return nil
}

func (m *MockMessageRepo) ListByChat(ctx context.Context, tx repository.Tx, chatID string, limit int) ([]*model.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Message
	for _, msg := range m.store {
		if msg.ChatID == chatID {
			cp := *msg
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockMessageRepo) MarkReadExceptSender(ctx context.Context, tx repository.Tx, chatID, actorID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.store {
		if msg.ChatID == chatID && msg.SenderID != actorID && !msg.Read {
			msg.Read = true
			n++
		}
	}
	return n, nil
}

func (m *MockMessageRepo) CountUnreadForUser(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, msg := range m.store {
		if msg.SenderID == userID || msg.Read {
			continue
		}
		chat, err := m.chats.FindByID(ctx, tx, msg.ChatID)
		if err != nil || !chat.IsAccepted || !chat.HasMember(userID) {
			continue
		}
		n++
	}
	return n, nil
}

// ---- Posts ----

type MockPostRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Post
}

func NewMockPostRepo() *MockPostRepo {
	return &MockPostRepo{store: make(map[string]*model.Post)}
}

var _ repository.PostRepository = (*MockPostRepo)(nil)

func (m *MockPostRepo) Save(ctx context.Context, tx repository.Tx, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPostRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPostRepo) PublishDue(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.store {
		if !p.Published && p.PublishAt != nil && !p.PublishAt.After(now) {
			p.Published = true
			n++
		}
	}
	return n, nil
}

func (m *MockPostRepo) ListPublished(ctx context.Context, tx repository.Tx, includeVIP bool, offset, limit int) ([]*model.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Post
	for _, p := range m.store {
		if !p.Published {
			continue
		}
		if p.VIPOnly && !includeVIP {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- Activity / notifications ----

type MockActivityLogRepo struct {
	mu      sync.RWMutex
	Entries []*model.ActivityLog
}

func NewMockActivityLogRepo() *MockActivityLogRepo { return &MockActivityLogRepo{} }

var _ repository.ActivityLogRepository = (*MockActivityLogRepo)(nil)

func (m *MockActivityLogRepo) Save(ctx context.Context, tx repository.Tx, e *model.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.Entries = append(m.Entries, &cp)
	return nil
}

func (m *MockActivityLogRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.ActivityLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.ActivityLog
	for _, e := range m.Entries {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CountByAction is a test helper, not part of the port.
func (m *MockActivityLogRepo) CountByAction(action string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.Entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

type MockNotificationRepo struct {
	mu      sync.RWMutex
	Saved   []*model.Notification
	SaveErr error
}

func NewMockNotificationRepo() *MockNotificationRepo { return &MockNotificationRepo{} }

var _ repository.NotificationRepository = (*MockNotificationRepo)(nil)

func (m *MockNotificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.Saved = append(m.Saved, &cp)
	return nil
}

func (m *MockNotificationRepo) ListUnread(ctx context.Context, tx repository.Tx, recipient string, limit int) ([]*model.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Notification
	for _, n := range m.Saved {
		if n.Recipient == recipient && n.ReadAt == nil {
			cp := *n
			out = append(out, &cp)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// =============================
// Adapters
// =============================

type MockPaymentGateway struct {
	mu sync.Mutex

	CreateInvoiceFunc func(ctx context.Context, req adapter.InvoiceRequest) (*adapter.Invoice, error)
	Invoices          []adapter.InvoiceRequest
}

var _ adapter.PaymentGateway = (*MockPaymentGateway)(nil)

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) CreateInvoice(ctx context.Context, req adapter.InvoiceRequest) (*adapter.Invoice, error) {
	m.mu.Lock()
	m.Invoices = append(m.Invoices, req)
	m.mu.Unlock()
	if m.CreateInvoiceFunc != nil {
		return m.CreateInvoiceFunc(ctx, req)
	}
	return &adapter.Invoice{TrackID: "track-1", PayLink: "https://pay.example/track-1"}, nil
}

func (m *MockPaymentGateway) CreateWhiteLabelPayment(ctx context.Context, req adapter.WhiteLabelRequest) (*adapter.WhiteLabelPayment, error) {
	return &adapter.WhiteLabelPayment{TrackID: "track-1", Address: "addr", PayAmount: req.Amount}, nil
}

// =============================
// Listing cache
// =============================

// MockListingCache records invalidations and serves nothing, so use case
// tests always hit the repositories.
type MockListingCache struct {
	mu          sync.Mutex
	Invalidated []string
	GetCalls    int
	SetCalls    int
}

func (m *MockListingCache) Get(ctx context.Context, key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	return false, nil
}

func (m *MockListingCache) Set(ctx context.Context, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	return nil
}

func (m *MockListingCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invalidated = append(m.Invalidated, prefix)
	return nil
}
