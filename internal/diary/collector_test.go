package diary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const listingBase = "https://letterboxd.com/alice/films/"

func gridPage(pages int, ids ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Alice’s films • Letterboxd</title></head><body><ul>")
	for _, id := range ids {
		fmt.Fprintf(&b, `<li class="poster-container"><div class="film-poster" data-film-id="%s" data-film-slug="film-%s"><img alt="Film %s"></div><p class="poster-viewingdata"><span class="rating rated-6"></span></p></li>`, id, id, id)
	}
	b.WriteString("</ul>")
	if pages > 1 {
		b.WriteString(`<div class="paginate-pages"><ul>`)
		for i := 1; i <= pages; i++ {
			fmt.Fprintf(&b, `<li class="paginate-page"><a href="/alice/films/page/%d/">%d</a></li>`, i, i)
		}
		b.WriteString(`</ul></div>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func entryIDs(c Collection) []string {
	ids := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		ids = append(ids, e.FilmID)
	}
	return ids
}

func TestCollectPreservesPageOrder(t *testing.T) {
	pages := map[string]string{
		listingBase:             gridPage(3, "1", "2"),
		PageURL(listingBase, 2): gridPage(3, "3", "4"),
		PageURL(listingBase, 3): gridPage(3, "5"),
	}
	var calls atomic.Int32
	fetch := FetchFunc(func(ctx context.Context, url string) (string, error) {
		calls.Add(1)
		// later pages finish first
		if url == PageURL(listingBase, 2) {
			time.Sleep(20 * time.Millisecond)
		}
		html, ok := pages[url]
		if !ok {
			return "", fmt.Errorf("unexpected url %s", url)
		}
		return html, nil
	})

	c := NewCollector(NewParser(LayoutGrid, ""), fetch, CollectorOptions{Concurrency: 2})
	got, err := c.Collect(context.Background(), listingBase)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3", "4", "5"}, entryIDs(got))
	require.Equal(t, 3, got.PageCount)
	require.Equal(t, "Alice", got.Profile.Name)
	require.Empty(t, got.FailedPages)
	require.EqualValues(t, 3, calls.Load())
}

func TestCollectSinglePageFetchesOnce(t *testing.T) {
	var calls atomic.Int32
	fetch := FetchFunc(func(ctx context.Context, url string) (string, error) {
		calls.Add(1)
		return gridPage(1, "9"), nil
	})
	got, err := NewCollector(NewParser(LayoutGrid, ""), fetch, CollectorOptions{}).Collect(context.Background(), listingBase)
	require.NoError(t, err)
	require.Equal(t, []string{"9"}, entryIDs(got))
	require.EqualValues(t, 1, calls.Load())
}

func TestCollectFirstPageFailureIsFatal(t *testing.T) {
	boom := errors.New("boom")
	fetch := FetchFunc(func(ctx context.Context, url string) (string, error) {
		return "", boom
	})
	c := NewCollector(NewParser(LayoutGrid, ""), fetch, CollectorOptions{AllowPartial: true})
	_, err := c.Collect(context.Background(), listingBase)

	var cerr *CollectionError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, []int{1}, cerr.FailedPages)
	require.ErrorIs(t, err, boom)
}

func failingPageTwo() FetchFunc {
	return func(ctx context.Context, url string) (string, error) {
		switch url {
		case listingBase:
			return gridPage(3, "1"), nil
		case PageURL(listingBase, 2):
			return "", errors.New("status 500")
		default:
			return gridPage(3, "3"), nil
		}
	}
}

func TestCollectStrictFailsOnAnyPage(t *testing.T) {
	c := NewCollector(NewParser(LayoutGrid, ""), failingPageTwo(), CollectorOptions{})
	got, err := c.Collect(context.Background(), listingBase)

	var cerr *CollectionError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, []int{2}, cerr.FailedPages)
	require.Empty(t, got.Entries)
}

func TestCollectPartialKeepsGoodPages(t *testing.T) {
	opts := CollectorOptions{AllowPartial: true, Logger: zerolog.Nop()}
	c := NewCollector(NewParser(LayoutGrid, ""), failingPageTwo(), opts)
	got, err := c.Collect(context.Background(), listingBase)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "3"}, entryIDs(got))
	require.Equal(t, []int{2}, got.FailedPages)
}
