package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"syncalendar/internal/auth"
	"syncalendar/internal/storage"
	"syncalendar/internal/usecases"
)

var errForbidden = errors.New("forbidden")

func writeJSON(w http.ResponseWriter, log *logrus.Entry, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, log *logrus.Entry, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, log, status, errResp{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: couldnt decode json: %v", usecases.ErrValidation, err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecases.ErrValidation), errors.Is(err, auth.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrEmailTaken), errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err to the client. Server errors are logged and hidden.
func fail(w http.ResponseWriter, log *logrus.Entry, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithField("op", op).WithError(err).Error("request failed")
		writeError(w, log, status, "internal error")
		return
	}
	writeError(w, log, status, err.Error())
}
