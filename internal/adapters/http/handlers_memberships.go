package http

import (
	"net/http"
	"strings"

	"github.com/storehub/identity/internal/application"
)

func (h *Handler) grantMembership(w http.ResponseWriter, r *http.Request) {
	var cmd application.GrantMembershipCommand
	if err := decodeBody(r, &cmd); err != nil {
		writeValidationError(r.Context(), w, "grant_membership", err)
		return
	}
	cmd.IdempotencyKey = strings.TrimSpace(r.Header.Get("Idempotency-Key"))

	res, err := h.service.GrantMembership(r.Context(), h.requestContext(r), cmd)
	if err != nil {
		writeMappedError(r.Context(), w, "grant_membership", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) listMemberships(w http.ResponseWriter, r *http.Request) {
	query := application.ListMembershipsQuery{
		StoreID: strings.TrimSpace(r.URL.Query().Get("store_id")),
		Limit:   parseIntDefault(r.URL.Query().Get("limit"), -1),
		Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	res, err := h.service.ListMemberships(r.Context(), h.requestContext(r), query)
	if err != nil {
		writeMappedError(r.Context(), w, "list_memberships", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
