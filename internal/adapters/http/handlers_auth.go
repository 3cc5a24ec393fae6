package http

import (
	"net/http"
	"strings"

	"github.com/storehub/identity/internal/application"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var cmd application.RegisterCommand
	if err := decodeBody(r, &cmd); err != nil {
		writeValidationError(r.Context(), w, "register", err)
		return
	}
	cmd.IdempotencyKey = strings.TrimSpace(r.Header.Get("Idempotency-Key"))

	res, err := h.service.Register(r.Context(), h.requestContext(r), cmd)
	if err != nil {
		writeMappedError(r.Context(), w, "register", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var cmd application.LoginCommand
	if err := decodeBody(r, &cmd); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}

	res, err := h.service.Login(r.Context(), h.requestContext(r), cmd)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var cmd application.RefreshCommand
	if err := decodeBody(r, &cmd); err != nil {
		writeValidationError(r.Context(), w, "refresh", err)
		return
	}

	res, err := h.service.Refresh(r.Context(), h.requestContext(r), cmd)
	if err != nil {
		writeMappedError(r.Context(), w, "refresh", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	var cmd application.LogoutCommand
	if err := decodeBody(r, &cmd); err != nil {
		writeValidationError(r.Context(), w, "logout", err)
		return
	}

	res, err := h.service.Logout(r.Context(), h.requestContext(r), cmd)
	if err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.GetMe(r.Context(), h.requestContext(r))
	if err != nil {
		writeMappedError(r.Context(), w, "get_me", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
