package model

import (
	"time"

	"github.com/google/uuid"
)

// Activity log actions for payment transitions.
const (
	ActivityPaymentCompleted = "payment_completed"
	ActivityPaymentFailed    = "payment_failed"
	ActivityPaymentCancelled = "payment_cancelled"
	ActivityVIPGranted       = "vip_granted"
)

// ActivityLog is one audit row per meaningful transition. Duplicate webhook
// deliveries that change nothing must not add rows here.
type ActivityLog struct {
	ID        string
	UserID    string
	Action    string
	Detail    string
	CreatedAt time.Time
}

func NewActivityLog(userID, action, detail string) *ActivityLog {
	return &ActivityLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
}
