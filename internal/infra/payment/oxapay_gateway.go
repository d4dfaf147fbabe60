package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vip-content-platform/internal/domain"
	"vip-content-platform/internal/domain/ports/adapter"
)

const resultOK = 100

// OxaPayGateway implements adapter.PaymentGateway against the OxaPay-style
// merchant HTTP API. The client carries an explicit timeout; the provider
// retries failed callbacks on its side, so a hung invoice call has no upside.
type OxaPayGateway struct {
	merchantKey string
	baseURL     string
	sandbox     bool
	client      *http.Client
}

func NewOxaPayGateway(merchantKey, baseURL string, sandbox bool) *OxaPayGateway {
	return &OxaPayGateway{
		merchantKey: merchantKey,
		baseURL:     baseURL,
		sandbox:     sandbox,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *OxaPayGateway) Name() string { return "oxapay" }

type invoiceResponse struct {
	Result  int    `json:"result"`
	Message string `json:"message"`
	TrackID string `json:"trackId"`
	PayLink string `json:"payLink"`
}

type whiteLabelResponse struct {
	Result    int     `json:"result"`
	Message   string  `json:"message"`
	TrackID   string  `json:"track_id"`
	Address   string  `json:"address"`
	PayAmount float64 `json:"pay_amount"`
	QRCode    string  `json:"qr_code"`
	ExpiredAt int64   `json:"expired_at"`
	Rate      float64 `json:"rate"`
}

// CreateInvoice asks the provider for a hosted pay link.
func (g *OxaPayGateway) CreateInvoice(ctx context.Context, req adapter.InvoiceRequest) (*adapter.Invoice, error) {
	body := map[string]any{
		"merchant":       g.merchantKey,
		"amount":         req.Amount,
		"currency":       req.Currency,
		"orderId":        req.OrderID,
		"callbackUrl":    req.CallbackURL,
		"returnUrl":      req.ReturnURL,
		"description":    req.Description,
		"email":          req.Email,
		"underPaidCover": req.UnderPaidCover,
		"feePaidByPayer": boolToInt(req.FeePaidByPayer),
		"sandbox":        g.sandbox,
	}

	var out invoiceResponse
	if err := g.post(ctx, "/invoice", body, &out); err != nil {
		return nil, err
	}
	if out.Result != resultOK {
		return nil, fmt.Errorf("%w: result %d, message: %s", domain.ErrGatewayFailure, out.Result, out.Message)
	}
	return &adapter.Invoice{TrackID: out.TrackID, PayLink: out.PayLink}, nil
}

// CreateWhiteLabelPayment asks for a raw deposit address in the chosen crypto.
func (g *OxaPayGateway) CreateWhiteLabelPayment(ctx context.Context, req adapter.WhiteLabelRequest) (*adapter.WhiteLabelPayment, error) {
	body := map[string]any{
		"merchant":    g.merchantKey,
		"amount":      req.Amount,
		"currency":    req.Currency,
		"payCurrency": req.PayCurrency,
		"network":     req.Network,
		"orderId":     req.OrderID,
		"callbackUrl": req.CallbackURL,
		"lifeTime":    req.Lifetime,
		"sandbox":     g.sandbox,
	}

	var out whiteLabelResponse
	if err := g.post(ctx, "/white-label", body, &out); err != nil {
		return nil, err
	}
	if out.Result != resultOK {
		return nil, fmt.Errorf("%w: result %d, message: %s", domain.ErrGatewayFailure, out.Result, out.Message)
	}
	return &adapter.WhiteLabelPayment{
		TrackID:   out.TrackID,
		Address:   out.Address,
		PayAmount: out.PayAmount,
		QRCode:    out.QRCode,
		ExpiredAt: out.ExpiredAt,
		Rate:      out.Rate,
	}, nil
}

func (g *OxaPayGateway) post(ctx context.Context, path string, body map[string]any, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(raw))
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
