package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/filmfeud/internal/compare"
	"github.com/Clark-Hu/filmfeud/internal/diary"
	"github.com/Clark-Hu/filmfeud/internal/domain"
	"github.com/Clark-Hu/filmfeud/internal/letterboxd"
	"github.com/Clark-Hu/filmfeud/internal/repository"
)

type diaryResponse struct {
	domain.UserDiary
	Stats domain.UserStats `json:"stats"`
}

type snapshotResponse struct {
	diaryResponse
	SnapshotID int64     `json:"snapshotId"`
	Layout     string    `json:"layout"`
	StoredAt   time.Time `json:"storedAt"`
}

func (s *Server) requestLogger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

func (s *Server) handleGetDiary(w http.ResponseWriter, r *http.Request) {
	d, err := s.comparer.Diary(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.respondCollectError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, diaryResponse{UserDiary: d, Stats: compare.Stats(d.Movies, s.now())})
}

// handleGetLatestDiary serves the most recent stored snapshot without
// touching the site.
func (s *Server) handleGetLatestDiary(w http.ResponseWriter, r *http.Request) {
	username, err := letterboxd.ValidateUsername(chi.URLParam(r, "username"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "INVALID_USERNAME", "Username is not valid")
		return
	}
	layout := s.cfg.ListingLayout
	if q := r.URL.Query().Get("layout"); q != "" {
		if layout, err = diary.ParseLayout(q); err != nil {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "layout must be diary or grid")
			return
		}
	}

	snap, err := s.repo.Diaries.Latest(r.Context(), username, string(layout))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.requestLogger(r).Error().Err(err).Str("user", username).Msg("latest snapshot")
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch snapshot")
		return
	}

	s.respondJSON(w, http.StatusOK, snapshotResponse{
		diaryResponse: diaryResponse{UserDiary: snap.Diary, Stats: compare.Stats(snap.Diary.Movies, s.now())},
		SnapshotID:    snap.ID,
		Layout:        snap.Layout,
		StoredAt:      snap.CreatedAt,
	})
}
