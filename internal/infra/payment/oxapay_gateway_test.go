//go:build !integration

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vip-content-platform/internal/domain"
	"vip-content-platform/internal/domain/ports/adapter"
)

func TestOxaPayGateway_CreateInvoice(t *testing.T) {
	ctx := context.Background()

	t.Run("should return track id and pay link on success", func(t *testing.T) {
		// --- Arrange ---
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/invoice" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": 100, "trackId": "777", "payLink": "https://pay.example/777",
			})
		}))
		defer srv.Close()

		g := NewOxaPayGateway("merchant-key", srv.URL, true)

		// --- Act ---
		inv, err := g.CreateInvoice(ctx, adapter.InvoiceRequest{
			Amount:      50,
			Currency:    "USD",
			OrderID:     "pay-1",
			CallbackURL: "https://site.example/cb",
		})

		// --- Assert ---
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if inv.TrackID != "777" {
			t.Errorf("expected trackId 777, got %q", inv.TrackID)
		}
		if inv.PayLink != "https://pay.example/777" {
			t.Errorf("unexpected pay link %q", inv.PayLink)
		}
		if gotBody["orderId"] != "pay-1" {
			t.Errorf("orderId not forwarded to provider, body: %v", gotBody)
		}
	})

	t.Run("should surface gateway failure on non-success result code", func(t *testing.T) {
		// --- Arrange ---
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"result": 102, "message": "invalid merchant"})
		}))
		defer srv.Close()

		g := NewOxaPayGateway("bad-key", srv.URL, false)

		// --- Act ---
		_, err := g.CreateInvoice(ctx, adapter.InvoiceRequest{Amount: 50, Currency: "USD", OrderID: "pay-2"})

		// --- Assert ---
		if !errors.Is(err, domain.ErrGatewayFailure) {
			t.Fatalf("expected ErrGatewayFailure, got %v", err)
		}
	})
}

func TestOxaPayGateway_CreateWhiteLabelPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("should return deposit address and expiry", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/white-label" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"result": 100, "track_id": "888", "address": "TAbc123",
				"pay_amount": 0.0015, "qr_code": "data:image/png;base64,xx",
				"expired_at": int64(1756400000), "rate": 33333.0,
			})
		}))
		defer srv.Close()

		g := NewOxaPayGateway("merchant-key", srv.URL, true)

		wl, err := g.CreateWhiteLabelPayment(ctx, adapter.WhiteLabelRequest{
			Amount: 50, Currency: "USD", PayCurrency: "TRX", Network: "TRC20",
			OrderID: "pay-3", Lifetime: 30,
		})
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if wl.TrackID != "888" || wl.Address != "TAbc123" {
			t.Errorf("unexpected white-label payment: %+v", wl)
		}
		if wl.ExpiredAt != 1756400000 {
			t.Errorf("expected expiry to pass through, got %d", wl.ExpiredAt)
		}
	})
}

func TestVerifyWebhookSignature(t *testing.T) {
	body := []byte(`{"orderId":"pay-1","status":"Paid"}`)

	t.Run("empty secret disables verification", func(t *testing.T) {
		if !VerifyWebhookSignature("", body, "whatever") {
			t.Error("expected verification to pass when no secret is configured")
		}
	})

	t.Run("rejects a wrong signature", func(t *testing.T) {
		if VerifyWebhookSignature("secret", body, "deadbeef") {
			t.Error("expected verification to fail for a bogus signature")
		}
	})
}
