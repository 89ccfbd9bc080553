package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/goydb/goyview/pkg/port"
)

func WriteError(w http.ResponseWriter, status int, reason string) {
	statusText := strings.ToLower(http.StatusText(status))
	statusText = strings.ReplaceAll(statusText, " ", "_")
	statusText = strings.ReplaceAll(statusText, "'", "")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{ // nolint: errcheck
		Error:  statusText,
		Reason: reason,
	})
}

// WriteErrorFrom writes the error with the status matching its kind
func WriteErrorFrom(w http.ResponseWriter, err error) {
	WriteError(w, errorStatus(err), err.Error())
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, port.ErrInvalidQuerySpec):
		return http.StatusBadRequest
	case errors.Is(err, port.ErrNotFound), errors.Is(err, port.ErrViewNotFound):
		return http.StatusNotFound
	case errors.Is(err, port.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, port.ErrIndexUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}
