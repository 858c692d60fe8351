// Package httpx holds the JSON request/response helpers shared by every
// module's HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/kc-aidesigntech/atlas/internal/shared/errors"
)

// JSON writes v as a JSON response with the given status
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// Error writes an error response. AppErrors carry their own status and code;
// anything else becomes a 500 without leaking internals.
func Error(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		JSON(w, appErr.HTTPStatus, map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	JSON(w, http.StatusInternalServerError, map[string]any{
		"error": "internal server error",
		"code":  "INTERNAL_ERROR",
	})
}

// Decode decodes the request body into v
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.BadRequest("invalid request body")
	}
	return nil
}
