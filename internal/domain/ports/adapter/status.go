package adapter

import "vip-content-platform/internal/domain/model"

// Provider status vocabulary as delivered in webhook callbacks.
const (
	ProviderStatusPaid       = "Paid"
	ProviderStatusWaiting    = "Waiting"
	ProviderStatusConfirming = "Confirming"
	ProviderStatusExpired    = "Expired"
	ProviderStatusFailed     = "Failed"
)

// MapProviderStatus translates the provider's status vocabulary into the
// internal enum. Unrecognized values map to pending: failing open keeps an
// in-flight payment alive until the provider says something definitive.
func MapProviderStatus(raw string) model.PaymentStatus {
	switch raw {
	case ProviderStatusPaid:
		return model.PaymentStatusCompleted
	case ProviderStatusWaiting, ProviderStatusConfirming:
		return model.PaymentStatusPending
	case ProviderStatusExpired, ProviderStatusFailed:
		return model.PaymentStatusFailed
	default:
		return model.PaymentStatusPending
	}
}
