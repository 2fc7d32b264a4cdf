package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Clark-Hu/filmfeud/internal/domain"
)

func TestRenderComparison(t *testing.T) {
	c := domain.Comparison{
		ID:    "cq1",
		User1: domain.ComparisonUser{Username: "alice", Name: "Alice", Stats: domain.UserStats{TotalFilms: 3, AverageRating: 7}},
		User2: domain.ComparisonUser{Username: "bob", Name: "Bob", FailedPages: []int{4}},
		Disagreements: []domain.Disagreement{{
			Title:            "Dune",
			User1Rating:      domain.LikedValue(),
			User2Rating:      domain.NumericValue(3),
			RatingDifference: 7,
			User1Message:     domain.StringPtr("Spice!"),
		}},
		QuipsAttached: 1,
	}

	var buf bytes.Buffer
	renderComparison(&buf, c)
	out := buf.String()
	for _, want := range []string{"Alice", "Bob", "Dune", "5.0", "1.5", "Spice!", "[4]", "3.50", "comparison cq1, 1 quips attached"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderComparisonWithoutDisagreements(t *testing.T) {
	var buf bytes.Buffer
	renderComparison(&buf, domain.Comparison{
		User1: domain.ComparisonUser{Name: "Alice"},
		User2: domain.ComparisonUser{Name: "Bob"},
	})
	if !strings.Contains(buf.String(), "Alice and Bob agree") {
		t.Fatalf("output = %s", buf.String())
	}
}

func TestRenderDiary(t *testing.T) {
	watched := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	d := domain.UserDiary{
		Username: "bob",
		Name:     "Bob",
		Movies: []domain.FilmEntry{
			{FilmID: "1", Title: "Dune", Rating: domain.IntPtr(8), WatchDate: &watched, LetterboxdURL: domain.StringPtr("https://letterboxd.com/film/dune-2021/")},
			{FilmID: "2", IsLiked: true},
		},
	}

	var buf bytes.Buffer
	renderDiary(&buf, d, domain.UserStats{TotalFilms: 2, AverageRating: 8})
	out := buf.String()
	for _, want := range []string{"Dune", "4.0", "2024-03-09", "liked", "2 films", "/film/dune-2021/"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}
