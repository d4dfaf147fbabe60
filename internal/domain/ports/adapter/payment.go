package adapter

import "context"

// InvoiceRequest asks the provider for a hosted payment page.
type InvoiceRequest struct {
	Amount        float64 // currency-denominated display amount
	Currency      string
	OrderID       string
	CallbackURL   string
	ReturnURL     string
	Description   string
	Email         string
	UnderPaidCover float64 // percent of underpayment tolerated
	FeePaidByPayer bool
}

// Invoice is the provider's answer: an opaque track id plus a hosted link.
type Invoice struct {
	TrackID string
	PayLink string
}

// WhiteLabelRequest asks for a raw deposit address instead of a hosted page.
type WhiteLabelRequest struct {
	Amount      float64
	Currency    string
	PayCurrency string
	Network     string
	OrderID     string
	CallbackURL string
	Lifetime    int // minutes until the address expires
}

type WhiteLabelPayment struct {
	TrackID   string
	Address   string
	PayAmount float64
	QRCode    string
	ExpiredAt int64
	Rate      float64
}

// PaymentGateway is the outbound port to the crypto payment provider.
type PaymentGateway interface {
	Name() string
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
	CreateWhiteLabelPayment(ctx context.Context, req WhiteLabelRequest) (*WhiteLabelPayment, error)
}
