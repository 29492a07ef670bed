package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-yoga-server/internal/errors"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

const (
	msgBadCredentials = "Bad credentials"
	msgEmailTaken     = "Error: Email is already taken!"
	msgRegistered     = "User registered successfully!"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse is the body of calls that only acknowledge success
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{
		Status:  status,
		Error:   http.StatusText(status),
		Message: message,
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, message)
}

// writeError maps a domain error onto a status code. Only the sentinel decides the status;
// internal details go to the log, never the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.IsAuthError(err):
		writeUnauthorized(w, msgBadCredentials)
	case errors.Is(err, errors.ErrForbidden):
		writeUnauthorized(w, "Operation not permitted")
	case errors.Is(err, errors.ErrEmailTaken):
		writeJSONError(w, http.StatusBadRequest, msgEmailTaken)
	case errors.Is(err, errors.ErrBadInputFormat):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errors.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, errors.ErrConflict):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, errors.ErrStaleVersion):
		writeJSONError(w, http.StatusConflict, "Resource was modified concurrently, retry")
	default:
		log.Error().Err(err).
			Str("request_id", requestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// pathID parses a numeric path parameter
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrBadInputFormat, "%s %q is not a number", name, raw)
	}
	return id, nil
}

// decodeJSON reads a request body into dst
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errors.Wrapf(errors.ErrBadInputFormat, "invalid request body: %v", err)
	}
	return nil
}
