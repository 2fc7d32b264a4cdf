package compare

import (
	"math"
	"testing"
	"time"

	"github.com/Clark-Hu/filmfeud/internal/domain"
)

func day(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestStats(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	entries := []domain.FilmEntry{
		{FilmID: "a", Rating: domain.IntPtr(8), WatchDate: day("2024-02-01")},
		{FilmID: "a", Rating: domain.IntPtr(5), WatchDate: day("2023-02-01")},
		{FilmID: "b", IsLiked: true, WatchDate: day("2024-03-01")},
		{FilmID: "c"},
	}

	got := Stats(entries, now)
	if got.TotalFilms != 4 {
		t.Fatalf("TotalFilms = %d, want 4", got.TotalFilms)
	}
	if math.Abs(got.AverageRating-6.5) > 1e-9 {
		t.Fatalf("AverageRating = %v, want 6.5", got.AverageRating)
	}
	if got.FilmsThisYear != 2 {
		t.Fatalf("FilmsThisYear = %d, want 2", got.FilmsThisYear)
	}
}

func TestStatsNoRatings(t *testing.T) {
	got := Stats([]domain.FilmEntry{{FilmID: "a", IsLiked: true}}, time.Now())
	if got.AverageRating != 0 || got.TotalFilms != 1 {
		t.Fatalf("Stats = %+v", got)
	}
	if empty := Stats(nil, time.Now()); empty != (domain.UserStats{}) {
		t.Fatalf("Stats(nil) = %+v", empty)
	}
}
