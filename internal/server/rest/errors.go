package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeError maps a vault error onto an HTTP response.
func writeError(ctx context.Context, logger logging.Logger, w http.ResponseWriter, err error) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "validation error", Errors: ve.Fields})

	case errors.Is(err, common.ErrorValidation):
		writeDetail(w, http.StatusUnprocessableEntity, "validation error")

	case errors.Is(err, common.ErrDuplicateEmail):
		writeDetail(w, http.StatusBadRequest, common.ErrDuplicateEmail.Error())

	case errors.Is(err, common.ErrTokenExpired):
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="token_expired"`)
		writeDetail(w, http.StatusUnauthorized, "token expired")

	case errors.Is(err, common.ErrorUnauthorized):
		if errors.Is(err, common.ErrInvalidToken) {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		} else {
			w.Header().Set("WWW-Authenticate", `Bearer`)
		}
		writeDetail(w, http.StatusUnauthorized, "could not validate credentials")

	case errors.Is(err, common.ErrorNotFound):
		writeDetail(w, http.StatusNotFound, "not found")

	case errors.Is(err, common.ErrCredentialCorrupted):
		writeDetail(w, http.StatusInternalServerError, common.ErrCredentialCorrupted.Error())

	case errors.Is(err, context.DeadlineExceeded):
		writeDetail(w, http.StatusServiceUnavailable, "request timed out")

	case errors.Is(err, context.Canceled):
		// client went away; nobody reads this
		w.WriteHeader(http.StatusServiceUnavailable)

	default:
		if !errors.Is(err, common.ErrorInternal) {
			logger.Error(ctx, "unhandled error", "error", err)
		}
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}
