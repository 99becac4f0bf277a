package shared

import (
	"encoding/json"
	"errors"
	"net/http"
)

// RespondJSON writes v as a JSON response body.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError maps a service error to its HTTP status and writes a JSON
// error body. Unknown errors become 500 without leaking detail.
func RespondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := http.StatusText(http.StatusInternalServerError)
	switch {
	case errors.Is(err, ErrNotFound):
		status, message = http.StatusNotFound, "not found"
	case errors.Is(err, ErrForbidden):
		status, message = http.StatusForbidden, "forbidden"
	case errors.Is(err, ErrAlreadyExists):
		status, message = http.StatusConflict, "already exists"
	case errors.Is(err, ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "invalid credentials"
	}
	RespondJSON(w, status, map[string]string{"error": message})
}
