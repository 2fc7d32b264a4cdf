// Package diary turns listing pages into film entries: it parses single
// pages, collects every page of a listing and collapses repeated viewings
// into one entry per film.
package diary

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/Clark-Hu/filmfeud/internal/domain"
)

// DefaultSiteURL is the root used to build outbound film links.
const DefaultSiteURL = "https://letterboxd.com/"

// Layout selects which listing markup a page uses.
type Layout string

const (
	// LayoutDiary is the dated diary table (films/diary/).
	LayoutDiary Layout = "diary"
	// LayoutGrid is the undated poster grid (films/).
	LayoutGrid Layout = "grid"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case LayoutDiary:
		return LayoutDiary, nil
	case LayoutGrid:
		return LayoutGrid, nil
	}
	return "", fmt.Errorf("unknown listing layout %q", s)
}

const (
	paginationSel = ".paginate-pages li.paginate-page a"
	avatarSel     = ".profile-mini-person .avatar img"

	gridRowSel    = "li.poster-container"
	gridFilmSel   = "div.film-poster"
	gridRatingSel = ".poster-viewingdata .rating"
	gridLikedSel  = ".poster-viewingdata .like.icon-liked"

	diaryRowSel    = "tr.diary-entry-row"
	diaryFilmSel   = "td.td-film-details div[data-film-id]"
	diaryTitleSel  = "td.td-film-details h3.headline-3 a"
	diaryDaySel    = "td.td-day a"
	diaryRatingSel = "td.td-rating input.rateit-field"
	diaryLikedSel  = "td.td-like .icon-liked"

	smallAvatarCrop = "-0-48-0-48-crop"
	largeAvatarCrop = "-0-220-0-220-crop"
)

var (
	ratedClass = regexp.MustCompile(`\brated-(\d+)\b`)
	possessive = regexp.MustCompile(`^(.+?)[’']s?\s`)
)

// Page is the result of parsing one listing page.
type Page struct {
	PageCount int
	Profile   *domain.Profile
	Entries   []domain.FilmEntry
}

// Parser reads one fixed listing layout. Missing or malformed fields come
// back as zero values; parsing never fails.
type Parser struct {
	Layout  Layout
	SiteURL string
}

// NewParser returns a parser for layout linking films under siteURL.
func NewParser(layout Layout, siteURL string) Parser {
	if siteURL == "" {
		siteURL = DefaultSiteURL
	}
	return Parser{Layout: layout, SiteURL: siteURL}
}

// Parse extracts the page count, profile and entries from html.
func (p Parser) Parse(html string) Page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Page{PageCount: 1}
	}
	return Page{
		PageCount: pageCount(doc),
		Profile:   profile(doc),
		Entries:   p.entries(doc),
	}
}

// ParseEntries extracts only the entries from html.
func (p Parser) ParseEntries(html string) []domain.FilmEntry {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return p.entries(doc)
}

func pageCount(doc *goquery.Document) int {
	last := doc.Find(paginationSel).Last()
	if last.Length() == 0 {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(last.Text()))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func profile(doc *goquery.Document) *domain.Profile {
	name := profileName(doc.Find("title").First().Text())
	pic := profilePicURL(doc.Find(avatarSel).First().AttrOr("src", ""))
	if name == "" && pic == nil {
		return nil
	}
	return &domain.Profile{Name: name, ProfilePicURL: pic}
}

// profileName reduces a title like "‎Bob’s film diary • Letterboxd" to "Bob".
func profileName(title string) string {
	title = strings.TrimFunc(title, func(r rune) bool {
		return unicode.IsSpace(r) || !unicode.IsPrint(r)
	})
	if before, _, found := strings.Cut(title, "•"); found {
		title = strings.TrimSpace(before)
	}
	if m := possessive.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1])
	}
	return title
}

func profilePicURL(src string) *string {
	if !strings.Contains(src, smallAvatarCrop) {
		return nil
	}
	return domain.StringPtr(strings.Replace(src, smallAvatarCrop, largeAvatarCrop, 1))
}

func (p Parser) entries(doc *goquery.Document) []domain.FilmEntry {
	if p.Layout == LayoutGrid {
		return p.gridEntries(doc)
	}
	return p.diaryEntries(doc)
}

func (p Parser) gridEntries(doc *goquery.Document) []domain.FilmEntry {
	var out []domain.FilmEntry
	doc.Find(gridRowSel).Each(func(_ int, row *goquery.Selection) {
		film := row.Find(gridFilmSel).First()
		entry := p.filmFields(film)
		entry.Title = strings.TrimSpace(film.Find("img").First().AttrOr("alt", ""))

		if span := row.Find(gridRatingSel).First(); span.Length() > 0 {
			if m := ratedClass.FindStringSubmatch(span.AttrOr("class", "")); m != nil {
				entry.Rating = parseRating(m[1])
			}
		}
		entry.IsLiked = row.Find(gridLikedSel).Length() > 0
		out = append(out, entry)
	})
	return out
}

func (p Parser) diaryEntries(doc *goquery.Document) []domain.FilmEntry {
	var out []domain.FilmEntry
	doc.Find(diaryRowSel).Each(func(_ int, row *goquery.Selection) {
		entry := p.filmFields(row.Find(diaryFilmSel).First())
		entry.Title = strings.TrimSpace(row.Find(diaryTitleSel).First().Text())
		entry.WatchDate = watchDate(row.Find(diaryDaySel).First().AttrOr("href", ""))
		if v, ok := row.Find(diaryRatingSel).First().Attr("value"); ok {
			entry.Rating = parseRating(v)
		}
		entry.IsLiked = row.Find(diaryLikedSel).Length() > 0
		out = append(out, entry)
	})
	return out
}

func (p Parser) filmFields(film *goquery.Selection) domain.FilmEntry {
	id := strings.TrimSpace(film.AttrOr("data-film-id", ""))
	slug := strings.TrimSpace(film.AttrOr("data-film-slug", ""))
	return domain.FilmEntry{
		FilmID:        id,
		PosterURL:     PosterURL(id, slug),
		LetterboxdURL: FilmURL(p.SiteURL, slug),
	}
}

func parseRating(raw string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < domain.MinRating || n > domain.MaxRating {
		return nil
	}
	return domain.IntPtr(n)
}

// watchDate rebuilds the viewing date from a link such as
// /bob/films/diary/for/2024/03/09/.
func watchDate(href string) *time.Time {
	var parts []string
	for _, part := range strings.Split(href, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	at := -1
	for i, part := range parts {
		if part == "for" {
			at = i
			break
		}
	}
	if at == -1 || len(parts) <= at+3 {
		return nil
	}
	year, errY := strconv.Atoi(parts[at+1])
	month, errM := strconv.Atoi(parts[at+2])
	day, errD := strconv.Atoi(parts[at+3])
	if errY != nil || errM != nil || errD != nil {
		return nil
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return nil
	}
	return &date
}
