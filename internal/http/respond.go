package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Clark-Hu/filmfeud/internal/comparison"
	"github.com/Clark-Hu/filmfeud/internal/letterboxd"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type userDetails struct {
	User string `json:"user"`
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error().Err(err).Msg("encode response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

// respondCollectError maps a diary or comparison failure onto a status code.
func (s *Server) respondCollectError(w http.ResponseWriter, r *http.Request, err error) {
	var details interface{}
	var uerr *comparison.UserError
	if errors.As(err, &uerr) {
		details = userDetails{User: uerr.User}
	}

	status, code, message := http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to collect diary"
	switch {
	case errors.Is(err, letterboxd.ErrInvalidUsername):
		status, code, message = http.StatusBadRequest, "INVALID_USERNAME", "Username is not valid"
	case letterboxd.IsNotFound(err):
		status, code, message = http.StatusNotFound, "USER_NOT_FOUND", "No such user"
	case errors.Is(err, context.DeadlineExceeded):
		status, code, message = http.StatusGatewayTimeout, "TIMEOUT", "Timed out collecting diary"
	case isFetchFailure(err):
		status, code, message = http.StatusBadGateway, "FETCH_FAILED", "Failed to fetch diary"
	}
	if status >= http.StatusInternalServerError {
		s.requestLogger(r).Error().Err(err).Int("status", status).Msg("collect failed")
	}
	s.respondJSON(w, status, errorResponse{Code: code, Message: message, Details: details})
}

func isFetchFailure(err error) bool {
	var ferr *letterboxd.FetchError
	return errors.As(err, &ferr) || errors.Is(err, letterboxd.ErrDisallowedOrigin)
}

func (s *Server) verifyBearer(header string) bool {
	if header == "" {
		return false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token == s.cfg.AuthToken
}
