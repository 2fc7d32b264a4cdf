package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// LikedMarker is the JSON sentinel used in place of a numeric rating when a
// user only marked a film as liked.
const LikedMarker = "liked"

// RatingValue is a disagreement side: either 1-10 points or the liked marker.
type RatingValue struct {
	Liked  bool
	Points int
}

// NumericValue builds a RatingValue holding points.
func NumericValue(points int) RatingValue {
	return RatingValue{Points: points}
}

// LikedValue builds a RatingValue holding the liked marker.
func LikedValue() RatingValue {
	return RatingValue{Liked: true}
}

// Stars renders the value on the five-star display scale with one decimal.
// The liked marker displays as a full five stars.
func (v RatingValue) Stars() string {
	if v.Liked {
		return "5.0"
	}
	return strconv.FormatFloat(float64(v.Points)/2, 'f', 1, 64)
}

func (v RatingValue) String() string {
	if v.Liked {
		return LikedMarker
	}
	return strconv.Itoa(v.Points)
}

func (v RatingValue) MarshalJSON() ([]byte, error) {
	if v.Liked {
		return json.Marshal(LikedMarker)
	}
	return json.Marshal(v.Points)
}

func (v *RatingValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != LikedMarker {
			return fmt.Errorf("rating value: unknown marker %q", s)
		}
		*v = LikedValue()
		return nil
	}
	var points int
	if err := json.Unmarshal(data, &points); err != nil {
		return fmt.Errorf("rating value: %w", err)
	}
	*v = NumericValue(points)
	return nil
}

// Disagreement is a film both users logged with a qualifying rating gap.
// Messages stay nil until quips are attached.
type Disagreement struct {
	FilmID           string      `json:"filmId"`
	Title            string      `json:"title"`
	PosterURL        *string     `json:"posterUrl"`
	LetterboxdURL    *string     `json:"letterboxdUrl,omitempty"`
	User1Rating      RatingValue `json:"user1Rating"`
	User2Rating      RatingValue `json:"user2Rating"`
	RatingDifference int         `json:"ratingDifference"`
	User1Message     *string     `json:"user1Message"`
	User2Message     *string     `json:"user2Message"`
}

// UserStats aggregates one user's history.
type UserStats struct {
	TotalFilms    int     `json:"totalFilms"`
	AverageRating float64 `json:"averageRating"`
	FilmsThisYear int     `json:"filmsThisYear"`
}

// ComparisonUser is one side of a stored comparison.
type ComparisonUser struct {
	Username      string    `json:"username"`
	Name          string    `json:"name"`
	ProfilePicURL *string   `json:"profilePicUrl"`
	Stats         UserStats `json:"stats"`
	FailedPages   []int     `json:"failedPages,omitempty"`
}

// Comparison is the persisted result of comparing two diaries.
type Comparison struct {
	ID            string         `json:"id"`
	User1         ComparisonUser `json:"user1"`
	User2         ComparisonUser `json:"user2"`
	Disagreements []Disagreement `json:"disagreements"`
	QuipsAttached int            `json:"quipsAttached"`
	CreatedAt     time.Time      `json:"createdAt"`
}
