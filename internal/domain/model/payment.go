package model

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"   // created locally; provider invoice outstanding
	PaymentStatusCompleted PaymentStatus = "completed" // provider reported the invoice as paid
	PaymentStatusFailed    PaymentStatus = "failed"    // gateway error, expiry, or user cancellation
	PaymentStatusRefunded  PaymentStatus = "refunded"  // reserved; no webhook transition reaches it
)

// IsTerminal reports whether no further status transition is allowed.
// Terminal statuses are never overwritten, even by late webhook deliveries.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed || s == PaymentStatusRefunded
}

// Payment purposes. The webhook handler only acts on purposes it recognizes.
const (
	PaymentPurposeVIPUpgrade = "vip_upgrade"
)

// Payment records one attempted purchase against the external provider.
// TransactionID holds the provider's track id and, once set, never changes.
// Meta is an append-only audit bag (track id, pay link, raw webhook fields);
// the Status column stays authoritative.
type Payment struct {
	ID            string
	UserID        string
	Amount        int64 // minor units (cents)
	Currency      string
	Status        PaymentStatus
	PaymentMethod string
	Purpose       string
	TransactionID *string
	Description   string
	Meta          map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MergeMeta copies kv into the payment's metadata without dropping existing
// keys. Later writes win on key collision, which is what the audit trail
// wants: the freshest raw webhook fields sit on top.
func (p *Payment) MergeMeta(kv map[string]any) {
	if p.Meta == nil {
		p.Meta = make(map[string]any, len(kv))
	}
	for k, v := range kv {
		p.Meta[k] = v
	}
}
