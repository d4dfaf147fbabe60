package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationKindInvoiceCreated = "invoice_created"
	NotificationKindPaymentDone    = "payment_completed"
)

// Notification is an admin-facing notice. Writes are best-effort: a failed
// insert is logged and never fails the request that triggered it.
type Notification struct {
	ID        string
	Recipient string // "admin" for back-office notices
	Kind      string
	Body      string
	ReadAt    *time.Time
	CreatedAt time.Time
}

func NewAdminNotification(kind, body string) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		Recipient: "admin",
		Kind:      kind,
		Body:      body,
		CreatedAt: time.Now(),
	}
}
