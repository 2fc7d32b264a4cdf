package compare

import (
	"time"

	"github.com/Clark-Hu/filmfeud/internal/domain"
)

// Stats summarizes a raw diary. TotalFilms counts every entry, duplicates
// included. The average covers numeric ratings only and is zero without any.
func Stats(entries []domain.FilmEntry, now time.Time) domain.UserStats {
	stats := domain.UserStats{TotalFilms: len(entries)}
	var sum, rated int
	for _, e := range entries {
		if s := e.Signal(); s.Kind == domain.Numeric {
			sum += s.Points
			rated++
		}
		if e.WatchDate != nil && e.WatchDate.Year() == now.Year() {
			stats.FilmsThisYear++
		}
	}
	if rated > 0 {
		stats.AverageRating = float64(sum) / float64(rated)
	}
	return stats
}
