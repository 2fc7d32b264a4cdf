package diary

import (
	"fmt"
	"strings"

	"github.com/Clark-Hu/filmfeud/internal/domain"
)

const posterTemplate = "https://a.ltrbxd.com/resized/film-poster/%s/%s-%s-0-300-0-450-crop.jpg"

// StripYear drops a trailing "-YYYY" segment from a film slug. Any other
// trailing segment is kept verbatim.
func StripYear(slug string) string {
	if len(slug) < 5 {
		return slug
	}
	i := strings.LastIndex(slug, "-")
	if i == -1 {
		return slug
	}
	tail := slug[i+1:]
	if len(tail) != 4 || !allDigits(tail) {
		return slug
	}
	return slug[:i]
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// PosterURL derives the poster image location for a film. It needs both the
// film id and a non-empty cleaned slug; otherwise it returns nil.
func PosterURL(filmID, slug string) *string {
	cleaned := StripYear(slug)
	if filmID == "" || cleaned == "" {
		return nil
	}
	path := strings.Join(strings.Split(filmID, ""), "/")
	return domain.StringPtr(fmt.Sprintf(posterTemplate, path, filmID, cleaned))
}

// FilmURL links to the film's page on the site, using the raw slug since
// year suffixes are part of the canonical path there.
func FilmURL(siteURL, rawSlug string) *string {
	if rawSlug == "" {
		return nil
	}
	return domain.StringPtr(withTrailingSlash(siteURL) + "film/" + rawSlug + "/")
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
