package diary

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/filmfeud/internal/domain"
)

var tracer = otel.Tracer("github.com/Clark-Hu/filmfeud/internal/diary")

// Fetcher retrieves the raw HTML behind a listing page URL.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// FetchFunc adapts a plain function to Fetcher.
type FetchFunc func(ctx context.Context, url string) (string, error)

func (f FetchFunc) FetchPage(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// PageResult is the outcome of fetching and parsing one page.
type PageResult struct {
	Page    int
	Entries []domain.FilmEntry
	Err     error
}

// Collection is every entry of a listing, in page order.
type Collection struct {
	Profile     *domain.Profile
	PageCount   int
	Entries     []domain.FilmEntry
	FailedPages []int
}

// CollectionError reports the pages that could not be fetched.
type CollectionError struct {
	FailedPages []int
	Err         error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collect listing: pages %v failed: %v", e.FailedPages, e.Err)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// CollectorOptions tunes a Collector.
type CollectorOptions struct {
	// Concurrency caps in-flight page fetches after page one. Zero means unbounded.
	Concurrency int
	// AllowPartial keeps entries from good pages when later pages fail.
	AllowPartial bool
	Logger       zerolog.Logger
}

// Collector walks every page of a listing.
type Collector struct {
	parser  Parser
	fetcher Fetcher
	opts    CollectorOptions
}

// NewCollector wires a parser to a fetcher.
func NewCollector(parser Parser, fetcher Fetcher, opts CollectorOptions) *Collector {
	return &Collector{parser: parser, fetcher: fetcher, opts: opts}
}

// Layout reports the listing layout this collector parses.
func (c *Collector) Layout() Layout { return c.parser.Layout }

// PageURL returns the address of page n of the listing rooted at base.
func PageURL(base string, n int) string {
	if n <= 1 {
		return base
	}
	return withTrailingSlash(base) + "page/" + strconv.Itoa(n) + "/"
}

// Collect fetches page one to learn the page count, then the remaining pages
// concurrently. Entries are assembled in page order regardless of the order
// fetches complete in. A failed first page is always fatal.
func (c *Collector) Collect(ctx context.Context, base string) (Collection, error) {
	ctx, span := tracer.Start(ctx, "diary.Collect")
	defer span.End()
	span.SetAttributes(attribute.String("listing.url", base))

	first, err := c.fetcher.FetchPage(ctx, base)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "first page failed")
		return Collection{}, &CollectionError{FailedPages: []int{1}, Err: err}
	}
	head := c.parser.Parse(first)
	span.SetAttributes(attribute.Int("listing.pages", head.PageCount))

	results := make([]PageResult, head.PageCount)
	results[0] = PageResult{Page: 1, Entries: head.Entries}

	var g errgroup.Group
	if c.opts.Concurrency > 0 {
		g.SetLimit(c.opts.Concurrency)
	}
	for n := 2; n <= head.PageCount; n++ {
		n := n
		g.Go(func() error {
			results[n-1] = c.fetchPage(ctx, base, n)
			return nil
		})
	}
	_ = g.Wait()

	out := Collection{Profile: head.Profile, PageCount: head.PageCount}
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			out.FailedPages = append(out.FailedPages, r.Page)
			errs = append(errs, fmt.Errorf("page %d: %w", r.Page, r.Err))
			continue
		}
		out.Entries = append(out.Entries, r.Entries...)
	}

	if len(out.FailedPages) == 0 {
		return out, nil
	}
	joined := errors.Join(errs...)
	span.RecordError(joined)
	if !c.opts.AllowPartial {
		span.SetStatus(codes.Error, "pages failed")
		return Collection{}, &CollectionError{FailedPages: out.FailedPages, Err: joined}
	}
	c.opts.Logger.Warn().
		Str("url", base).
		Ints("failed_pages", out.FailedPages).
		Err(joined).
		Msg("keeping partial listing")
	return out, nil
}

func (c *Collector) fetchPage(ctx context.Context, base string, n int) PageResult {
	html, err := c.fetcher.FetchPage(ctx, PageURL(base, n))
	if err != nil {
		return PageResult{Page: n, Err: err}
	}
	return PageResult{Page: n, Entries: c.parser.ParseEntries(html)}
}
