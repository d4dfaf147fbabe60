package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"vip-content-platform/internal/infra/logging"
	"vip-content-platform/internal/usecase"
)

// RateLimiter gates bursty member actions. Implemented by the redis fixed
// window counter; a nil limiter disables gating.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Server struct {
	paymentUC usecase.PaymentUseCase
	chatUC    usecase.ChatUseCase
	feedUC    usecase.FeedUseCase
	userUC    usecase.UserUseCase

	auth          *AuthManager
	adminKey      string
	webhookSecret string
	limiter       RateLimiter
	validate      *validator.Validate
	log           *zerolog.Logger
}

func NewServer(
	paymentUC usecase.PaymentUseCase,
	chatUC usecase.ChatUseCase,
	feedUC usecase.FeedUseCase,
	userUC usecase.UserUseCase,
	auth *AuthManager,
	adminKey string,
	webhookSecret string,
	limiter RateLimiter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		paymentUC:     paymentUC,
		chatUC:        chatUC,
		feedUC:        feedUC,
		userUC:        userUC,
		auth:          auth,
		adminKey:      adminKey,
		webhookSecret: webhookSecret,
		limiter:       limiter,
		validate:      validator.New(),
		log:           logger,
	}
}

// Router builds the full route tree.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.requestLog)
	r.Use(s.recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// The provider calls this; it authenticates by signature, not session.
		r.Post("/payments/callback", s.handlePaymentCallback)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.OptionalUser)
			r.Get("/feed", s.handleListFeed)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireUser)

			r.Post("/payments/vip", s.handleInitiateVIP)
			r.Get("/payments", s.handleListPayments)
			r.Get("/payments/{id}", s.handlePaymentStatus)
			r.Post("/payments/{id}/cancel", s.handleCancelPayment)

			r.Post("/chats", s.handleStartChat)
			r.Get("/chats", s.handleListChats)
			r.Get("/chats/requests", s.handleListChatRequests)
			r.Post("/chats/requests/{id}/accept", s.handleAcceptRequest)
			r.Post("/chats/requests/{id}/reject", s.handleRejectRequest)
			r.Get("/chats/{id}/messages", s.handleListMessages)
			r.Post("/chats/{id}/messages", s.handleSendMessage)
			r.Post("/chats/{id}/read", s.handleMarkRead)
			r.Get("/inbox/unread", s.handleUnreadCount)
		})

		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler { return requireAdminKey(s.adminKey, next) })

			r.Post("/admin/users/{id}/vip", s.handleAdminGrantVIP)
			r.Get("/admin/users", s.handleAdminListUsers)
			r.Get("/admin/revenue", s.handleAdminRevenue)
			r.Post("/admin/posts", s.handleAdminCreatePost)
		})
	})

	return r
}

// allow consults the rate limiter; limiter errors fail open so a redis
// outage does not block traffic.
func (s *Server) allow(r *http.Request, action string, limit int, window time.Duration) bool {
	if s.limiter == nil {
		return true
	}
	uid := userID(r)
	if uid == "" {
		return true
	}
	ok, err := s.limiter.Allow(r.Context(), "rate_limit:"+uid+":"+action, limit, window)
	if err != nil {
		s.log.Warn().Err(err).Str("action", action).Msg("rate limiter unavailable")
		return true
	}
	return ok
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logging.With(r.Context(), s.log)
		start := time.Now()
		ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		l.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.status).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.With(r.Context(), s.log).Error().Interface("panic", rec).Msg("panic recovered")
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
