package http

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/storehub/identity/internal/application"
)

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

func parseIntDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func readIP(r *http.Request) string {
	if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host := strings.TrimSpace(r.RemoteAddr)
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

// hashMetadata peppers and hashes a network metadata value. Empty input stays
// empty so absence remains observable downstream.
func (h *Handler) hashMetadata(value string) string {
	if value == "" {
		return ""
	}
	mac := hmac.New(sha256.New, h.metaPepper)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

// requestContext assembles the per-call envelope handed to the application
// layer. Identity comes from the parsed claims when the auth middleware ran;
// otherwise the caller is a guest.
func (h *Handler) requestContext(r *http.Request) application.RequestContext {
	rc := application.RequestContext{
		RequestID:     requestIDFromContext(r.Context()),
		CorrelationID: correlationIDFromContext(r.Context()),
		IsGuest:       true,
		IPHash:        h.hashMetadata(readIP(r)),
		UserAgentHash: h.hashMetadata(r.UserAgent()),
	}

	claims, ok := claimsFromContext(r.Context())
	if !ok {
		return rc
	}
	rc.IsGuest = false
	rc.UserID = claims.Subject.String()
	rc.Stores = make([]application.StoreAccess, 0, len(claims.Stores))
	for _, st := range claims.Stores {
		rc.Stores = append(rc.Stores, application.StoreAccess{
			StoreID: st.StoreID,
			Roles:   st.Roles,
			Scopes:  st.Scopes,
		})
	}
	return rc
}

func writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	status, code, msg := mapDomainError(err)
	logHTTPOperationError(ctx, operation, status, code, msg, err)
	writeError(w, status, code, msg)
}

func writeValidationError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	code := "VALIDATION_ERROR"
	msg := err.Error()
	logHTTPOperationError(ctx, operation, http.StatusBadRequest, code, msg, err)
	writeError(w, http.StatusBadRequest, code, msg)
}
