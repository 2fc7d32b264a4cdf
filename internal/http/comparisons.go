package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Clark-Hu/filmfeud/internal/domain"
	"github.com/Clark-Hu/filmfeud/internal/repository"
)

type comparisonCreateRequest struct {
	User1 string `json:"user1"`
	User2 string `json:"user2"`
}

type comparisonListResponse struct {
	Items      []domain.Comparison `json:"items"`
	NextCursor *string             `json:"nextCursor,omitempty"`
}

func (s *Server) handleCreateComparison(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AuthToken != "" && !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req comparisonCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.User1) == "" || strings.TrimSpace(req.User2) == "" {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "user1 and user2 are required")
		return
	}

	result, err := s.comparer.Compare(r.Context(), req.User1, req.User2)
	if err != nil {
		s.respondCollectError(w, r, err)
		return
	}

	stored, err := s.repo.Comparisons.Create(r.Context(), result)
	if err != nil {
		s.requestLogger(r).Error().Err(err).Str("comparison_id", result.ID).Msg("store comparison")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store comparison")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/comparisons/%s", url.PathEscape(stored.ID)))
	s.respondJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "missing id parameter")
		return
	}

	c, err := s.repo.Comparisons.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.requestLogger(r).Error().Err(err).Str("comparison_id", id).Msg("get comparison")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch comparison")
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleListComparisons(w http.ResponseWriter, r *http.Request) {
	filters, err := buildComparisonFilters(r.URL.Query())
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	result, err := s.repo.Comparisons.List(r.Context(), filters)
	if err != nil {
		s.requestLogger(r).Error().Err(err).Msg("list comparisons")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list comparisons")
		return
	}

	s.respondJSON(w, http.StatusOK, comparisonListResponse{
		Items:      result.Items,
		NextCursor: result.NextCursor,
	})
}

func buildComparisonFilters(query url.Values) (repository.ComparisonListFilters, error) {
	var filters repository.ComparisonListFilters

	if val := strings.TrimSpace(query.Get("user")); val != "" {
		filters.User = &val
	}
	if val := strings.TrimSpace(query.Get("limit")); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil || limit < 0 {
			return filters, fmt.Errorf("invalid limit value")
		}
		filters.Limit = limit
	}
	if val := strings.TrimSpace(query.Get("cursor")); val != "" {
		cursor, err := repository.DecodeCursor(val)
		if err != nil {
			return filters, fmt.Errorf("invalid cursor")
		}
		filters.Cursor = cursor
	}
	return filters, nil
}
