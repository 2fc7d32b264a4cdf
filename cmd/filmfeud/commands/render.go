package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Clark-Hu/filmfeud/internal/domain"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func entryRating(e domain.FilmEntry) string {
	switch s := e.Signal(); s.Kind {
	case domain.Numeric:
		return domain.NumericValue(s.Points).Stars()
	case domain.Liked:
		return "liked"
	default:
		return "-"
	}
}

func renderStats(w io.Writer, users ...domain.ComparisonUser) {
	t := newTable(w)
	t.AppendHeader(table.Row{"User", "Name", "Films", "Avg rating", "This year", "Failed pages"})
	for _, u := range users {
		failed := "-"
		if len(u.FailedPages) > 0 {
			failed = fmt.Sprint(u.FailedPages)
		}
		avg := "-"
		if u.Stats.AverageRating > 0 {
			avg = strconv.FormatFloat(u.Stats.AverageRating/2, 'f', 2, 64)
		}
		t.AppendRow(table.Row{u.Username, u.Name, u.Stats.TotalFilms, avg, u.Stats.FilmsThisYear, failed})
	}
	t.Render()
}

func renderDiary(w io.Writer, d domain.UserDiary, stats domain.UserStats) {
	renderStats(w, domain.ComparisonUser{
		Username:    d.Username,
		Name:        d.Name,
		Stats:       stats,
		FailedPages: d.FailedPages,
	})

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Film", "Rating", "Watched", "Link"})
	for i, e := range d.Movies {
		watched := ""
		if e.WatchDate != nil {
			watched = e.WatchDate.Format("2006-01-02")
		}
		title := e.Title
		if title == "" {
			title = e.FilmID
		}
		t.AppendRow(table.Row{i + 1, title, entryRating(e), watched, deref(e.LetterboxdURL)})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d films", len(d.Movies))})
	t.Render()
}

func renderComparison(w io.Writer, c domain.Comparison) {
	renderStats(w, c.User1, c.User2)

	if len(c.Disagreements) == 0 {
		fmt.Fprintf(w, "%s and %s agree on everything they both watched.\n", c.User1.Name, c.User2.Name)
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Film", c.User1.Name, c.User2.Name, "Diff", c.User1.Name + " says", c.User2.Name + " says"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, WidthMax: 40},
		{Number: 6, WidthMax: 40},
	})
	for _, d := range c.Disagreements {
		t.AppendRow(table.Row{
			d.Title,
			d.User1Rating.Stars(),
			d.User2Rating.Stars(),
			d.RatingDifference,
			deref(d.User1Message),
			deref(d.User2Message),
		})
	}
	t.Render()
	fmt.Fprintf(w, "comparison %s, %d quips attached\n", c.ID, c.QuipsAttached)
}
