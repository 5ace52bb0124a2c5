package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"paperdesk/internal/app"
	"paperdesk/internal/util"
	"paperdesk/pkg/domain"
	"paperdesk/pkg/payments"
)

// Limiter throttles a keyed operation. Allow reports whether the key
// may proceed in the current window.
type Limiter interface {
	Allow(key string) bool
}

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
	// RegisterLimiter throttles registration attempts per client IP.
	// Nil disables the limit.
	RegisterLimiter Limiter
	// LoginLimiter throttles login attempts per client IP.
	LoginLimiter   Limiter
	TrustedProxies *util.TrustedProxies
}

// Server exposes the GraphQL endpoint plus the REST bridges (email
// verification, webhooks, checkout sessions, uploads).
type Server struct {
	app             *app.App
	registerLimiter Limiter
	loginLimiter    Limiter
	proxies         *util.TrustedProxies
	mux             *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:             cfg.App,
		registerLimiter: cfg.RegisterLimiter,
		loginLimiter:    cfg.LoginLimiter,
		proxies:         cfg.TrustedProxies,
		mux:             http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler with middleware applied.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	h = s.withActor(h)
	h = util.WithCORS(h)
	h = util.WithSecurityHeaders(h)
	h = util.WithRequestLog(h)
	h = util.WithRequestID(h)
	return h
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/graphql", s.graphqlHandler())
	s.mux.HandleFunc("/verify-email", s.handleVerifyEmail)
	s.mux.HandleFunc("/webhooks/stripe", s.handleStripeWebhook)
	s.mux.HandleFunc("/api/payment/create-session", s.handleCreateSession)
	s.mux.HandleFunc("/api/orders/", s.handleOrderFiles)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// actor resolution

type actorContextKey struct{}

type clientIPContextKey struct{}

// withActor resolves an optional bearer credential into the request
// context. An absent or invalid credential yields no actor; each
// resolver decides how that surfaces. The client IP rides along for
// the rate-limited resolvers.
func (s *Server) withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPContextKey{}, s.clientIP(r))
		if token, ok := bearerToken(r); ok {
			if user, found := s.app.UserFromToken(token); found {
				ctx = context.WithValue(ctx, actorContextKey{}, &user)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFromContext(ctx context.Context) *domain.User {
	actor, _ := ctx.Value(actorContextKey{}).(*domain.User)
	return actor
}

func clientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

// handleVerifyEmail bridges the emailed link to the verification
// mutation: it checks the token, stores it in a cookie, and redirects
// to the frontend completion page.
func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	token := r.URL.Query().Get("token")
	res, err := s.app.VerifyEmail(token)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if res.Valid {
		http.SetCookie(w, &http.Cookie{
			Name:     "verificationToken",
			Value:    res.Token,
			Path:     "/",
			MaxAge:   3600,
			HttpOnly: false,
			SameSite: http.SameSiteLaxMode,
		})
	}
	http.Redirect(w, r, res.RedirectURL, http.StatusFound)
}

// handleStripeWebhook receives signed gateway events. 400 means the
// event is rejected for good; 500 tells the gateway to retry.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read body")
		return
	}
	event, err := s.app.ParseWebhookEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		slog.Warn("webhook rejected", "error", err)
		writeError(w, http.StatusBadRequest, "invalid webhook")
		return
	}
	if event.Type != payments.EventCheckoutCompleted {
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}
	if err := s.app.HandleCheckoutEvent(r.Context(), event); err != nil {
		slog.Error("webhook processing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "processing failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

type createSessionRequest struct {
	OrderID     string  `json:"orderId"`
	Amount      float64 `json:"amount"`
	PaymentType string  `json:"paymentType"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req createSessionRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	url, err := s.app.CreateCheckoutSession(r.Context(), actorFromContext(r.Context()), req.OrderID, req.PaymentType)
	if err != nil {
		status := http.StatusInternalServerError
		switch app.KindOf(err) {
		case app.KindUnauthenticated:
			status = http.StatusUnauthorized
		case app.KindValidation:
			status = http.StatusBadRequest
		case app.KindNotFound:
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// handleOrderFiles serves POST /api/orders/{id}/files.
func (s *Server) handleOrderFiles(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	orderID, tail, found := strings.Cut(rest, "/")
	if !found || tail != "files" || orderID == "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	actor := actorFromContext(r.Context())
	if actor == nil {
		writeError(w, http.StatusUnauthorized, app.MsgLoginRequiredMutation)
		return
	}

	if err := r.ParseMultipartForm(app.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer f.Close()

	file, err := s.app.UploadOrderFile(r.Context(), actor, orderID,
		header.Filename, header.Header.Get("Content-Type"), header.Size, f)
	if err != nil {
		status := http.StatusInternalServerError
		switch app.KindOf(err) {
		case app.KindValidation:
			status = http.StatusBadRequest
		case app.KindNotFound:
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, file)
}

func (s *Server) clientIP(r *http.Request) string {
	return util.ClientIP(r, s.proxies)
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
