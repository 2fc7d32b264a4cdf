package domain

import "time"

// MinRating and MaxRating bound the site's half-star scale (0.5 to 5 stars).
const (
	MinRating = 1
	MaxRating = 10
)

// FilmEntry is one observed viewing or logging of a film by a user.
type FilmEntry struct {
	FilmID        string     `json:"filmId"`
	Title         string     `json:"title,omitempty"`
	PosterURL     *string    `json:"posterUrl"`
	Rating        *int       `json:"rating"`
	IsLiked       bool       `json:"isLiked"`
	WatchDate     *time.Time `json:"watchDate,omitempty"`
	LetterboxdURL *string    `json:"letterboxdUrl,omitempty"`
}

// SignalKind tags the comparable value carried by an entry.
type SignalKind int

const (
	// Unrated entries carry neither a rating nor a like.
	Unrated SignalKind = iota
	// Numeric entries carry a 1-10 rating.
	Numeric
	// Liked entries carry only a like.
	Liked
)

func (k SignalKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Liked:
		return "liked"
	default:
		return "unrated"
	}
}

// Signal is the tagged form of an entry's rating fields. A numeric rating
// takes precedence over the liked flag.
type Signal struct {
	Kind   SignalKind
	Points int
}

// Signal collapses Rating and IsLiked into a single tagged value.
func (e FilmEntry) Signal() Signal {
	if e.Rating != nil && *e.Rating >= MinRating && *e.Rating <= MaxRating {
		return Signal{Kind: Numeric, Points: *e.Rating}
	}
	if e.IsLiked {
		return Signal{Kind: Liked}
	}
	return Signal{Kind: Unrated}
}

// Comparable reports whether the entry carries a rating or a like.
func (e FilmEntry) Comparable() bool {
	return e.Signal().Kind != Unrated
}

// Profile is the public identity shown at the top of a listing page.
type Profile struct {
	Name          string  `json:"name"`
	ProfilePicURL *string `json:"profilePicUrl"`
}

// UserDiary is everything collected for one user in a single fetch.
type UserDiary struct {
	Username      string      `json:"username"`
	Name          string      `json:"name"`
	ProfilePicURL *string     `json:"profilePicUrl"`
	Movies        []FilmEntry `json:"movies"`
	FailedPages   []int       `json:"failedPages,omitempty"`
	FetchedAt     time.Time   `json:"fetchedAt"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// StringPtr returns a pointer to v, or nil when v is empty.
func StringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
