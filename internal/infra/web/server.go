package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"souksync/internal/bot"
	"souksync/internal/domain/ports/adapter"
	"souksync/internal/usecase"
)

// Server is the HTTP boundary: the phone/OTP auth API plus the Telegram
// webhook. Everything behind it is reached through ports, so handlers stay
// thin.
type Server struct {
	otpUC   usecase.OTPUseCase
	tokens  adapter.TokenIssuer
	machine *bot.Machine
	log     *zerolog.Logger
}

func NewServer(otpUC usecase.OTPUseCase, tokens adapter.TokenIssuer, machine *bot.Machine, logger *zerolog.Logger) *Server {
	return &Server{otpUC: otpUC, tokens: tokens, machine: machine, log: logger}
}

// Router builds the route tree. /metrics and /health sit outside /api/v1
// so infrastructure probes don't mix with versioned endpoints.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/request-otp", s.handleRequestOTP)
		r.Post("/auth/verify-otp", s.handleVerifyOTP)
		r.Post("/auth/refresh", s.handleRefresh)
		r.Post("/webhooks/telegram", s.handleTelegramWebhook)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
