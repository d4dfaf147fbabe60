package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vip-content-platform/internal/infra/logging"
	"vip-content-platform/internal/infra/metrics"
	"vip-content-platform/internal/infra/payment"
	"vip-content-platform/internal/usecase"
)

type initiateVIPResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	TrackID   string `json:"track_id"`
	PayLink   string `json:"pay_link"`
}

func (s *Server) handleInitiateVIP(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	p, inv, err := s.paymentUC.InitiateVIP(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, initiateVIPResponse{
		PaymentID: p.ID,
		Status:    string(p.Status),
		TrackID:   inv.TrackID,
		PayLink:   inv.PayLink,
	})
}

func (s *Server) handlePaymentStatus(w http.ResponseWriter, r *http.Request) {
	p, err := s.paymentUC.Status(r.Context(), chi.URLParam(r, "id"), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	if err := s.paymentUC.Cancel(r.Context(), chi.URLParam(r, "id"), userID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "failed"})
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	list, err := s.paymentUC.ListByUser(r.Context(), userID(r), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handlePaymentCallback receives provider webhooks. The response body always
// carries the current status so the provider's retry loop can settle.
func (s *Server) handlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unreadable body"})
		return
	}

	if !payment.VerifyWebhookSignature(s.webhookSecret, body, r.Header.Get("HMAC")) {
		metrics.IncWebhookDelivery("rejected")
		logging.With(r.Context(), s.log).Warn().Msg("webhook signature mismatch")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
		return
	}

	var cb usecase.CallbackPayload
	if err := json.Unmarshal(body, &cb); err != nil {
		metrics.IncWebhookDelivery("rejected")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid payload"})
		return
	}
	if cb.OrderID == "" {
		metrics.IncWebhookDelivery("rejected")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing orderId"})
		return
	}

	res, err := s.paymentUC.HandleCallback(r.Context(), cb)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  string(res.Status),
		"applied": res.Applied,
	})
}

func (s *Server) handleAdminRevenue(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Week  int64 `json:"week"`
		Month int64 `json:"month"`
		Year  int64 `json:"year"`
	}{}
	var err error
	if resp.Week, err = s.paymentUC.RevenueByPeriod(r.Context(), "week"); err != nil {
		writeError(w, err)
		return
	}
	if resp.Month, err = s.paymentUC.RevenueByPeriod(r.Context(), "month"); err != nil {
		writeError(w, err)
		return
	}
	if resp.Year, err = s.paymentUC.RevenueByPeriod(r.Context(), "year"); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
