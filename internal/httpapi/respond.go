package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"byebye/internal/logging"
	"byebye/internal/services"
)

type errorResponse struct {
	Error          string `json:"error"`
	Kind           string `json:"kind"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.WithContext(r.Context(), s.logger).Error("failed to encode response",
			logging.String(logging.FieldEventType, "api_encode_failed"),
			logging.Error(err),
		)
	}
}

func (s *Server) writeMessage(w http.ResponseWriter, r *http.Request, status int, kind, message string) {
	s.writeJSON(w, r, status, errorResponse{Error: message, Kind: kind})
}

// writeError maps err onto the error taxonomy. Server-side failures are logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	body := errorResponse{Error: err.Error(), Kind: services.Kind(err)}
	if code, ok := services.UpstreamStatus(err); ok {
		body.UpstreamStatus = code
	}
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "request failed", "api_request_failed",
			logging.String("path", r.URL.Path),
			logging.Int("status", status),
			logging.Error(err),
		)
		if status == http.StatusInternalServerError {
			body.Error = "internal error"
		}
	}
	s.writeJSON(w, r, status, body)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, into any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return services.Wrap(services.ErrValidation, "api", "decode", "request body too large", nil)
		}
		return services.Wrap(services.ErrValidation, "api", "decode", "invalid JSON body", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, services.Wrap(services.ErrValidation, "api", "path", fmt.Sprintf("invalid %s %q", name, raw), nil)
	}
	return id, nil
}

func notFound(what string, id int64) error {
	return services.Wrap(services.ErrNotFound, "api", "lookup", fmt.Sprintf("%s %d not found", what, id), nil)
}
