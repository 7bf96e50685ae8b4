package router

import (
	"net/http"
	"strings"

	"dishdash/internal/handler"
	"dishdash/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	chatHandler *handler.ChatHandler,
	menuHandler *handler.MenuHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("/api/menu", menuHandler.List)

	// Session routes: creation plus per-session message and payment-action
	// endpoints.
	sessionRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == "/api/sessions" || path == "/api/sessions/" {
			chatHandler.CreateSession(w, r)
			return
		}

		switch {
		case strings.HasSuffix(path, "/messages"):
			chatHandler.PostMessage(w, r)
		case strings.HasSuffix(path, "/payments/pay"):
			chatHandler.PayNow(w, r)
		case strings.HasSuffix(path, "/payments/verify"):
			chatHandler.VerifyPayment(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}

	mux.HandleFunc("/api/sessions", sessionRouteHandler)
	mux.HandleFunc("/api/sessions/", sessionRouteHandler)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
