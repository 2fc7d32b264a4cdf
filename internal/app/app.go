// Package app assembles the comparison service from configuration.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/filmfeud/internal/cache"
	"github.com/Clark-Hu/filmfeud/internal/compare"
	"github.com/Clark-Hu/filmfeud/internal/comparison"
	"github.com/Clark-Hu/filmfeud/internal/config"
	"github.com/Clark-Hu/filmfeud/internal/diary"
	"github.com/Clark-Hu/filmfeud/internal/letterboxd"
	"github.com/Clark-Hu/filmfeud/internal/quips"
)

// Overrides adjust the configuration for one invocation.
type Overrides struct {
	Layout       *diary.Layout
	AllowPartial *bool
	NoQuips      bool
	NoCache      bool
}

// Build wires the scraper, optional generator and cache into a Service.
// Snapshots may be nil. The returned close func releases the cache.
func Build(ctx context.Context, cfg config.Config, snapshots comparison.DiarySnapshots, logger zerolog.Logger, o Overrides) (*comparison.Service, func(), error) {
	layout := cfg.ListingLayout
	if o.Layout != nil {
		layout = *o.Layout
	}
	allowPartial := cfg.AllowPartialDiary
	if o.AllowPartial != nil {
		allowPartial = *o.AllowPartial
	}

	client, err := letterboxd.NewClient(letterboxd.Options{
		BaseURL:       cfg.LetterboxdBaseURL,
		Timeout:       time.Duration(cfg.ScrapeTimeoutSecs) * time.Second,
		RatePerSecond: cfg.ScrapeRatePerSec,
		Burst:         cfg.ScrapeBurst,
		Logger:        logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init letterboxd client: %w", err)
	}
	collector := diary.NewCollector(
		diary.NewParser(layout, client.BaseURL()),
		client,
		diary.CollectorOptions{
			Concurrency:  cfg.PageConcurrency,
			AllowPartial: allowPartial,
			Logger:       logger,
		},
	)

	var generator compare.Generator
	if cfg.QuipsEnabled() && !o.NoQuips {
		gen, err := quips.NewHTTPClient(cfg.QuipURL, cfg.QuipAPIKey, cfg.QuipModel, time.Duration(cfg.QuipTimeoutSecs)*time.Second, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("init quip client: %w", err)
		}
		generator = gen
	} else {
		logger.Info().Msg("quip generation disabled")
	}

	var (
		c       cache.Cache
		closeFn = func() {}
	)
	switch {
	case o.NoCache || cfg.CacheTTLSecs == 0:
	case cfg.ValkeyAddr != "":
		vk, err := cache.NewValkey(ctx, cfg.ValkeyAddr, cfg.ValkeyPassword, "filmfeud:")
		if err != nil {
			return nil, nil, fmt.Errorf("connect valkey: %w", err)
		}
		c, closeFn = vk, vk.Close
		logger.Info().Str("addr", cfg.ValkeyAddr).Msg("using valkey cache")
	default:
		c = cache.NewInMemory()
	}

	svc := comparison.New(collector, generator, c, snapshots, logger, comparison.Options{
		BaseURL:  client.BaseURL(),
		CacheTTL: time.Duration(cfg.CacheTTLSecs) * time.Second,
		Timeout:  time.Duration(cfg.CompareTimeoutSecs) * time.Second,
	})
	return svc, closeFn, nil
}
