package model

import (
	"time"

	"github.com/google/uuid"

	"vip-content-platform/internal/domain"
)

// User is the account entity. Only the VIP-relevant subset is modeled here;
// profile data lives with the rendering layer.
type User struct {
	ID           string
	Username     string
	Email        string
	IsVIP        bool
	VIPUntil     *time.Time // nil means lifetime; the upgrade path always sets nil
	IsSupport    bool       // support/system accounts get auto-accepted chats
	IsAdmin      bool
	RegisteredAt time.Time
	LastActiveAt time.Time
}

func NewUser(id, username, email string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if username == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:           id,
		Username:     username,
		Email:        email,
		RegisteredAt: now,
		LastActiveAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }
