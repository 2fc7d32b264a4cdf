package diary

import "github.com/Clark-Hu/filmfeud/internal/domain"

// Normalize keeps one comparable entry per film. Entries with neither a
// rating nor a like are dropped, as are entries without a film id. When a
// film repeats, the entry with the strictly later watch date wins and a
// missing date counts as earlier than any date, so ties and two undated
// entries keep the first one seen. The surviving entry holds the position of
// the film's first appearance.
func Normalize(entries []domain.FilmEntry) []domain.FilmEntry {
	index := make(map[string]int, len(entries))
	out := make([]domain.FilmEntry, 0, len(entries))
	for _, e := range entries {
		if e.FilmID == "" || !e.Comparable() {
			continue
		}
		i, seen := index[e.FilmID]
		if !seen {
			index[e.FilmID] = len(out)
			out = append(out, e)
			continue
		}
		if watchedLater(e, out[i]) {
			out[i] = e
		}
	}
	return out
}

// ByFilm indexes entries by film id. Later duplicates overwrite earlier ones,
// so callers pass normalized input.
func ByFilm(entries []domain.FilmEntry) map[string]domain.FilmEntry {
	out := make(map[string]domain.FilmEntry, len(entries))
	for _, e := range entries {
		out[e.FilmID] = e
	}
	return out
}

func watchedLater(candidate, current domain.FilmEntry) bool {
	if candidate.WatchDate == nil {
		return false
	}
	if current.WatchDate == nil {
		return true
	}
	return candidate.WatchDate.After(*current.WatchDate)
}
