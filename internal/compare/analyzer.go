// Package compare ranks the films two users disagree on most and attaches
// generated quips to the result.
package compare

import (
	"sort"

	"github.com/Clark-Hu/filmfeud/internal/diary"
	"github.com/Clark-Hu/filmfeud/internal/domain"
)

const (
	// SignificantDifference is the smallest absolute gap that counts.
	SignificantDifference = 3
	// MaxDisagreements caps the ranked list.
	MaxDisagreements = 10

	// A like stands in for a perfect score, but only against a low rating.
	likedPoints  = domain.MaxRating
	likedCeiling = 5
)

// Result holds the ranked disagreements between two diaries.
type Result struct {
	Disagreements []domain.Disagreement
}

// Analyze normalizes both diaries and ranks the shared films by how far
// apart the two users are. RatingDifference is the absolute gap; ties keep
// user one's diary order.
func Analyze(diary1, diary2 []domain.FilmEntry) Result {
	first := diary.Normalize(diary1)
	second := diary.ByFilm(diary.Normalize(diary2))

	var found []domain.Disagreement
	for _, e1 := range first {
		e2, ok := second[e1.FilmID]
		if !ok {
			continue
		}
		s1, s2 := e1.Signal(), e2.Signal()
		diff, ok := difference(s1, s2)
		diff = abs(diff)
		if !ok || diff < SignificantDifference {
			continue
		}
		found = append(found, domain.Disagreement{
			FilmID:           e1.FilmID,
			Title:            e1.Title,
			PosterURL:        e1.PosterURL,
			LetterboxdURL:    e1.LetterboxdURL,
			User1Rating:      value(s1),
			User2Rating:      value(s2),
			RatingDifference: diff,
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].RatingDifference > found[j].RatingDifference
	})
	if len(found) > MaxDisagreements {
		found = found[:MaxDisagreements]
	}
	return Result{Disagreements: found}
}

// difference is user one's value minus user two's. Two likes, or a like
// against a rating above the ceiling, have no defined difference.
func difference(s1, s2 domain.Signal) (int, bool) {
	switch {
	case s1.Kind == domain.Numeric && s2.Kind == domain.Numeric:
		return s1.Points - s2.Points, true
	case s1.Kind == domain.Liked && s2.Kind == domain.Numeric && s2.Points <= likedCeiling:
		return likedPoints - s2.Points, true
	case s1.Kind == domain.Numeric && s2.Kind == domain.Liked && s1.Points <= likedCeiling:
		return s1.Points - likedPoints, true
	}
	return 0, false
}

func value(s domain.Signal) domain.RatingValue {
	if s.Kind == domain.Liked {
		return domain.LikedValue()
	}
	return domain.NumericValue(s.Points)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
