package http

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/innkeeper/server/internal/auth"
	"github.com/innkeeper/server/internal/http/handlers"
	"github.com/innkeeper/server/internal/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	tokens *auth.TokenService,
	log *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Get("/health", handlers.NewHealthHandler().ServeHTTP)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/refresh", authHandler.HandleRefresh)
		r.Post("/logout", authHandler.HandleLogout)
	})

	// Protected routes (require a valid bearer access token)
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.Authenticator(tokens))
		r.Get("/profile", accountHandler.HandleProfile)
		r.Put("/profile", accountHandler.HandleUpdateProfile)
		r.Delete("/profile", accountHandler.HandleDeactivate)
		r.Put("/change-password", accountHandler.HandleChangePassword)
	})

	return r
}
