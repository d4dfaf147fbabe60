package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"vip-content-platform/internal/domain"
	"vip-content-platform/internal/domain/model"
	"vip-content-platform/internal/domain/ports/adapter"
	"vip-content-platform/internal/domain/ports/repository"
	"vip-content-platform/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// CallbackPayload is the provider webhook body, already decoded.
type CallbackPayload struct {
	TrackID     string  `json:"trackId"`
	OrderID     string  `json:"orderId"`
	Status      string  `json:"status"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PayAmount   float64 `json:"payAmount"`
	PayCurrency string  `json:"payCurrency"`
	TxID        string  `json:"txID"`
	Network     string  `json:"network"`
	Date        string  `json:"date"`
}

// CallbackResult reports what the reconciliation did.
type CallbackResult struct {
	Status model.PaymentStatus
	// Applied is false when the delivery was a duplicate or arrived after a
	// terminal transition; no side effects ran in that case.
	Applied bool
}

type PaymentUseCase interface {
	// InitiateVIP creates a pending payment for the flat VIP price and asks
	// the provider for a pay link. The returned payment already carries the
	// provider track id and link in its metadata.
	InitiateVIP(ctx context.Context, userID string) (*model.Payment, *adapter.Invoice, error)
	// HandleCallback reconciles one provider webhook delivery. Safe to call
	// any number of times with the same payload.
	HandleCallback(ctx context.Context, cb CallbackPayload) (*CallbackResult, error)
	// Status returns the payment, restricted to its owner.
	Status(ctx context.Context, paymentID, userID string) (*model.Payment, error)
	// Cancel moves the owner's pending payment to failed. Cancelling a
	// non-pending payment fails with ErrStateConflict: it lost a race with
	// the webhook and the caller must re-read.
	Cancel(ctx context.Context, paymentID, userID string) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.Payment, error)
	// RevenueByPeriod sums completed payment amounts since the start of the
	// given period ("week", "month", "year").
	RevenueByPeriod(ctx context.Context, period string) (int64, error)
}

type paymentUC struct {
	payments repository.PaymentRepository
	users    repository.UserRepository
	activity repository.ActivityLogRepository
	notify   NotificationUseCase
	gateway  adapter.PaymentGateway
	tm       repository.TransactionManager
	log      *zerolog.Logger

	vipPriceUSD float64
	callbackURL string
	returnURL   string
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	users repository.UserRepository,
	activity repository.ActivityLogRepository,
	notify NotificationUseCase,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	vipPriceUSD float64,
	callbackURL, returnURL string,
	logger *zerolog.Logger,
) *paymentUC {
	return &paymentUC{
		payments:    payments,
		users:       users,
		activity:    activity,
		notify:      notify,
		gateway:     gateway,
		tm:          tm,
		vipPriceUSD: vipPriceUSD,
		callbackURL: callbackURL,
		returnURL:   returnURL,
		log:         logger,
	}
}

func (u *paymentUC) InitiateVIP(ctx context.Context, userID string) (*model.Payment, *adapter.Invoice, error) {
	user, err := u.users.FindByID(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, nil, err
	}
	if user.IsVIP {
		return nil, nil, domain.ErrAlreadyVIP
	}

	now := time.Now()
	p := &model.Payment{
		ID:            uuid.NewString(),
		UserID:        userID,
		Amount:        int64(u.vipPriceUSD * 100), // minor units
		Currency:      "USD",
		Status:        model.PaymentStatusPending,
		PaymentMethod: "crypto",
		Purpose:       model.PaymentPurposeVIPUpgrade,
		Description:   "VIP membership",
		Meta:          map[string]any{"initiated_at": now.Format(time.RFC3339)},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := u.payments.Save(ctx, repository.NoTX, p); err != nil {
		return nil, nil, err
	}

	inv, err := u.gateway.CreateInvoice(ctx, adapter.InvoiceRequest{
		Amount:      u.vipPriceUSD,
		Currency:    "USD",
		OrderID:     p.ID,
		CallbackURL: u.callbackURL,
		ReturnURL:   u.returnURL,
		Description: p.Description,
		Email:       user.Email,
	})
	if err != nil {
		// The failed attempt stays on record; the row is never deleted.
		if merr := u.payments.MergeMeta(ctx, repository.NoTX, p.ID, map[string]any{"gateway_error": err.Error()}); merr != nil {
			u.log.Error().Err(merr).Str("payment_id", p.ID).Msg("record gateway error in payment meta")
		}
		if _, uerr := u.payments.UpdateStatusIfPending(ctx, repository.NoTX, p.ID, model.PaymentStatusFailed); uerr != nil {
			u.log.Error().Err(uerr).Str("payment_id", p.ID).Msg("mark payment failed after gateway error")
		}
		metrics.IncPayment(string(model.PaymentStatusFailed))
		return nil, nil, fmt.Errorf("create invoice: %w", err)
	}

	// The track id and link must be durable before the caller learns the
	// link, so a webhook firing immediately always finds a populated row.
	trackID := inv.TrackID
	if err := u.payments.SetTransaction(ctx, repository.NoTX, p.ID, trackID, map[string]any{
		"track_id": trackID,
		"pay_link": inv.PayLink,
	}); err != nil {
		return nil, nil, err
	}
	p.TransactionID = &trackID
	p.MergeMeta(map[string]any{"track_id": trackID, "pay_link": inv.PayLink})
	metrics.IncPayment(string(model.PaymentStatusPending))

	// Best-effort back-office notice; failure is logged, never surfaced.
	u.notify.NotifyAdmin(ctx, model.NotificationKindInvoiceCreated,
		fmt.Sprintf("VIP invoice created for user %s (payment %s, track %s)", userID, p.ID, trackID))

	return p, inv, nil
}

func (u *paymentUC) HandleCallback(ctx context.Context, cb CallbackPayload) (*CallbackResult, error) {
	p, err := u.payments.FindByID(ctx, repository.NoTX, cb.OrderID)
	if err != nil {
		metrics.IncWebhookDelivery("rejected")
		return nil, err // ErrNotFound: never create a payment from a webhook
	}
	// Purpose tag is the spoofing guard: a callback can only act on rows
	// this flow created.
	if p.Purpose != model.PaymentPurposeVIPUpgrade {
		metrics.IncWebhookDelivery("rejected")
		return nil, fmt.Errorf("%w: payment %s is not a vip upgrade", domain.ErrInvalidArgument, p.ID)
	}

	mapped := adapter.MapProviderStatus(cb.Status)

	// Audit trail first, even for duplicate deliveries.
	if err := u.payments.MergeMeta(ctx, repository.NoTX, p.ID, map[string]any{
		"webhook_status":   cb.Status,
		"webhook_track_id": cb.TrackID,
		"webhook_tx_id":    cb.TxID,
		"webhook_pay":      fmt.Sprintf("%v %s", cb.PayAmount, cb.PayCurrency),
		"webhook_network":  cb.Network,
		"webhook_date":     cb.Date,
		"webhook_seen_at":  time.Now().Format(time.RFC3339),
	}); err != nil {
		u.log.Error().Err(err).Str("payment_id", p.ID).Msg("merge webhook meta")
	}

	res := &CallbackResult{Status: mapped}
	switch {
	// The double condition (mapped terminal AND raw "Paid" sentinel) guards
	// against an ambiguous intermediate status being read as completion.
	case mapped == model.PaymentStatusCompleted && cb.Status == adapter.ProviderStatusPaid:
		err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			applied, err := u.payments.UpdateStatusIfPending(ctx, tx, p.ID, model.PaymentStatusCompleted)
			if err != nil {
				return err
			}
			if !applied {
				return nil // duplicate or late delivery: converge silently
			}
			res.Applied = true
			// Idempotent set: re-granting an already-VIP user changes nothing.
			if err := u.users.SetVIP(ctx, tx, p.UserID, true); err != nil {
				return err
			}
			if err := u.activity.Save(ctx, tx, model.NewActivityLog(p.UserID, model.ActivityPaymentCompleted,
				fmt.Sprintf("payment %s completed (track %s)", p.ID, cb.TrackID))); err != nil {
				return err
			}
			return u.activity.Save(ctx, tx, model.NewActivityLog(p.UserID, model.ActivityVIPGranted,
				fmt.Sprintf("lifetime vip granted via payment %s", p.ID)))
		})
		if err != nil {
			metrics.IncWebhookDelivery("error")
			return nil, err
		}
		if res.Applied {
			metrics.IncPayment(string(model.PaymentStatusCompleted))
			metrics.AddPaymentRevenue(p.Currency, p.Amount)
			metrics.IncVIPGrant()
			u.notify.NotifyAdmin(ctx, model.NotificationKindPaymentDone,
				fmt.Sprintf("payment %s completed; user %s is now VIP", p.ID, p.UserID))
			metrics.IncWebhookDelivery("applied")
		} else {
			metrics.IncWebhookDelivery("duplicate")
		}

	case mapped == model.PaymentStatusFailed:
		applied, err := u.payments.UpdateStatusIfPending(ctx, repository.NoTX, p.ID, model.PaymentStatusFailed)
		if err != nil {
			metrics.IncWebhookDelivery("error")
			return nil, err
		}
		res.Applied = applied
		if applied {
			if err := u.activity.Save(ctx, repository.NoTX, model.NewActivityLog(p.UserID, model.ActivityPaymentFailed,
				fmt.Sprintf("payment %s failed with provider status %q", p.ID, cb.Status))); err != nil {
				u.log.Error().Err(err).Str("payment_id", p.ID).Msg("write failure activity")
			}
			metrics.IncPayment(string(model.PaymentStatusFailed))
			metrics.IncWebhookDelivery("applied")
		} else {
			metrics.IncWebhookDelivery("duplicate")
		}

	default:
		// Waiting/Confirming/unknown: nothing to transition, audit only.
		metrics.IncWebhookDelivery("duplicate")
	}

	return res, nil
}

func (u *paymentUC) Status(ctx context.Context, paymentID, userID string) (*model.Payment, error) {
	p, err := u.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return nil, err
	}
	// Not-yours is indistinguishable from absent.
	if p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (u *paymentUC) Cancel(ctx context.Context, paymentID, userID string) error {
	p, err := u.payments.FindByID(ctx, repository.NoTX, paymentID)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return domain.ErrNotFound
	}
	applied, err := u.payments.UpdateStatusIfPending(ctx, repository.NoTX, paymentID, model.PaymentStatusFailed)
	if err != nil {
		return err
	}
	if !applied {
		return domain.ErrStateConflict
	}
	if merr := u.payments.MergeMeta(ctx, repository.NoTX, paymentID, map[string]any{
		"cancelled_at": time.Now().Format(time.RFC3339),
	}); merr != nil {
		u.log.Error().Err(merr).Str("payment_id", paymentID).Msg("record cancellation in payment meta")
	}
	if err := u.activity.Save(ctx, repository.NoTX, model.NewActivityLog(userID, model.ActivityPaymentCancelled,
		fmt.Sprintf("payment %s cancelled by owner", paymentID))); err != nil {
		u.log.Error().Err(err).Str("payment_id", paymentID).Msg("write cancel activity")
	}
	metrics.IncPayment(string(model.PaymentStatusFailed))
	return nil
}

func (u *paymentUC) ListByUser(ctx context.Context, userID string, limit int) ([]*model.Payment, error) {
	return u.payments.ListByUser(ctx, repository.NoTX, userID, limit)
}

func (u *paymentUC) RevenueByPeriod(ctx context.Context, period string) (int64, error) {
	return u.payments.SumCompletedByPeriod(ctx, repository.NoTX, period)
}
