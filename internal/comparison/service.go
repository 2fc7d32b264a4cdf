// Package comparison ties collection, analysis and enrichment together for
// a pair of users.
package comparison

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Clark-Hu/filmfeud/internal/cache"
	"github.com/Clark-Hu/filmfeud/internal/compare"
	"github.com/Clark-Hu/filmfeud/internal/diary"
	"github.com/Clark-Hu/filmfeud/internal/domain"
	"github.com/Clark-Hu/filmfeud/internal/letterboxd"
	"github.com/Clark-Hu/filmfeud/internal/repository"
)

var tracer = otel.Tracer("github.com/Clark-Hu/filmfeud/internal/comparison")

// UserError names the user whose diary could not be produced.
type UserError struct {
	User string
	Err  error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("user %q: %v", e.User, e.Err)
}

func (e *UserError) Unwrap() error { return e.Err }

// DiarySnapshots records every fresh fetch.
type DiarySnapshots interface {
	Save(ctx context.Context, layout string, d domain.UserDiary) (repository.DiarySnapshot, error)
}

// Options tunes a Service.
type Options struct {
	// BaseURL is the site root listings are built under.
	BaseURL string
	// CacheTTL bounds how long a fetched diary is reused. Zero disables caching.
	CacheTTL time.Duration
	// Timeout bounds a whole Diary or Compare call. Zero means no extra deadline.
	Timeout time.Duration
	Now     func() time.Time
}

// Service produces diaries and comparisons. Generator, cache and snapshots
// are optional.
type Service struct {
	collector *diary.Collector
	generator compare.Generator
	cache     cache.Cache
	snapshots DiarySnapshots
	logger    zerolog.Logger
	opts      Options
}

// New builds a Service. Pass a nil generator to skip quip enrichment.
func New(collector *diary.Collector, generator compare.Generator, c cache.Cache, snapshots DiarySnapshots, logger zerolog.Logger, opts Options) *Service {
	if opts.BaseURL == "" {
		opts.BaseURL = letterboxd.DefaultBaseURL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		collector: collector,
		generator: generator,
		cache:     c,
		snapshots: snapshots,
		logger:    logger.With().Str("component", "comparison").Logger(),
		opts:      opts,
	}
}

// Layout reports the listing layout diaries are collected from.
func (s *Service) Layout() diary.Layout { return s.collector.Layout() }

// Diary validates username and returns the user's collected diary. The
// configured timeout bounds the whole collection.
func (s *Service) Diary(ctx context.Context, username string) (domain.UserDiary, error) {
	name, err := letterboxd.ValidateUsername(username)
	if err != nil {
		return domain.UserDiary{}, &UserError{User: username, Err: err}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.diary(ctx, name)
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return ctx, func() {}
}

// Compare collects both diaries concurrently and ranks their disagreements.
// Both usernames are validated before any network call. Quip failures never
// fail the comparison.
func (s *Service) Compare(ctx context.Context, user1, user2 string) (domain.Comparison, error) {
	name1, err := letterboxd.ValidateUsername(user1)
	if err != nil {
		return domain.Comparison{}, &UserError{User: user1, Err: err}
	}
	name2, err := letterboxd.ValidateUsername(user2)
	if err != nil {
		return domain.Comparison{}, &UserError{User: user2, Err: err}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	ctx, span := tracer.Start(ctx, "comparison.Compare", trace.WithAttributes(
		attribute.String("user1", name1),
		attribute.String("user2", name2),
	))
	defer span.End()

	var d1, d2 domain.UserDiary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d1, err = s.diary(gctx, name1)
		return err
	})
	g.Go(func() error {
		var err error
		d2, err = s.diary(gctx, name2)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collection failed")
		return domain.Comparison{}, err
	}

	now := s.opts.Now()
	result := compare.Analyze(d1.Movies, d2.Movies)
	disagreements, report := compare.Enrich(s.logger.WithContext(ctx), result.Disagreements, s.generator)
	if disagreements == nil {
		disagreements = []domain.Disagreement{}
	}
	span.SetAttributes(
		attribute.Int("disagreements", len(disagreements)),
		attribute.Int("quips_attached", report.Attached),
	)

	s.logger.Info().
		Str("user1", name1).
		Str("user2", name2).
		Int("disagreements", len(disagreements)).
		Int("quips_requested", report.Requested).
		Int("quips_attached", report.Attached).
		Msg("comparison computed")

	return domain.Comparison{
		ID:            xid.New().String(),
		User1:         comparisonUser(d1, now),
		User2:         comparisonUser(d2, now),
		Disagreements: disagreements,
		QuipsAttached: report.Attached,
		CreatedAt:     now.UTC(),
	}, nil
}

func comparisonUser(d domain.UserDiary, now time.Time) domain.ComparisonUser {
	return domain.ComparisonUser{
		Username:      d.Username,
		Name:          d.Name,
		ProfilePicURL: d.ProfilePicURL,
		Stats:         compare.Stats(d.Movies, now),
		FailedPages:   d.FailedPages,
	}
}

func (s *Service) cacheKey(username string) string {
	return "diary:" + string(s.collector.Layout()) + ":" + username
}

func (s *Service) diary(ctx context.Context, username string) (domain.UserDiary, error) {
	key := s.cacheKey(username)
	if s.cache != nil && s.opts.CacheTTL > 0 {
		var cached domain.UserDiary
		if cache.GetJSON(ctx, s.cache, key, &cached) {
			s.logger.Debug().Str("user", username).Msg("diary cache hit")
			return cached, nil
		}
	}

	listing := letterboxd.ListingURL(s.opts.BaseURL, username, s.collector.Layout())
	col, err := s.collector.Collect(ctx, listing)
	if err != nil {
		return domain.UserDiary{}, &UserError{User: username, Err: err}
	}

	d := domain.UserDiary{
		Username:    username,
		Name:        username,
		Movies:      col.Entries,
		FailedPages: col.FailedPages,
		FetchedAt:   s.opts.Now().UTC(),
	}
	if d.Movies == nil {
		d.Movies = []domain.FilmEntry{}
	}
	if col.Profile != nil {
		if col.Profile.Name != "" {
			d.Name = col.Profile.Name
		}
		d.ProfilePicURL = col.Profile.ProfilePicURL
	}

	if s.cache != nil && s.opts.CacheTTL > 0 && len(d.FailedPages) == 0 {
		if err := cache.SetJSON(ctx, s.cache, key, d, s.opts.CacheTTL); err != nil {
			s.logger.Warn().Err(err).Str("user", username).Msg("diary cache write failed")
		}
	}
	if s.snapshots != nil {
		if _, err := s.snapshots.Save(ctx, string(s.collector.Layout()), d); err != nil {
			s.logger.Warn().Err(err).Str("user", username).Msg("diary snapshot failed")
		}
	}

	s.logger.Info().
		Str("user", username).
		Int("pages", col.PageCount).
		Int("entries", len(d.Movies)).
		Ints("failed_pages", d.FailedPages).
		Msg("diary collected")
	return d, nil
}
