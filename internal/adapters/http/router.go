package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storehub/identity/internal/application"
	"github.com/storehub/identity/internal/ports"
)

// Handler is the HTTP adapter entrypoint. It holds the application service,
// the token verifier for the auth middleware, and the pepper used to hash
// network metadata before it crosses into the application layer.
type Handler struct {
	service    *application.Service
	signer     ports.TokenSigner
	metaPepper []byte
}

func NewHandler(service *application.Service, signer ports.TokenSigner, metadataPepper string) *Handler {
	return &Handler{
		service:    service,
		signer:     signer,
		metaPepper: []byte(metadataPepper),
	}
}

// NewRouter registers routes and the middleware stack.
// Centralizing routes here keeps auth and error behavior consistent across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(correlationIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/refresh", handler.refresh)
		r.Post("/logout", handler.logout)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Get("/me", handler.me)
		})
	})

	r.Route("/authz/v1", func(r chi.Router) {
		r.Use(handler.authMiddleware)
		r.Post("/memberships", handler.grantMembership)
		r.Get("/memberships", handler.listMemberships)
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}
