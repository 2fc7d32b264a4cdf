// Package letterboxd fetches public listing pages from the film diary site.
package letterboxd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/Clark-Hu/filmfeud/internal/diary"
)

// DefaultBaseURL is the only origin the client will fetch from by default.
const DefaultBaseURL = "https://letterboxd.com/"

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"

var (
	// ErrInvalidUsername is returned for empty or malformed usernames.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrDisallowedOrigin is returned for URLs outside the configured site.
	ErrDisallowedOrigin = errors.New("url outside allowed origin")
)

var tracer = otel.Tracer("github.com/Clark-Hu/filmfeud/internal/letterboxd")

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

// FetchError describes a failed page fetch. StatusCode is zero when no
// response arrived.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 from the site.
func IsNotFound(err error) bool {
	var ferr *FetchError
	return errors.As(err, &ferr) && ferr.StatusCode == http.StatusNotFound
}

// ValidateUsername trims raw and checks it against the site's username
// alphabet. Usernames are case-insensitive and come back lowercased.
func ValidateUsername(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if !usernamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUsername, raw)
	}
	return strings.ToLower(name), nil
}

// ListingURL is the first page of a user's listing in the given layout.
func ListingURL(base, username string, layout diary.Layout) string {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	if layout == diary.LayoutGrid {
		return base + username + "/films/"
	}
	return base + username + "/films/diary/"
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	UserAgent     string
	Logger        zerolog.Logger
}

// Client fetches raw HTML with browser-like headers, a shared rate limit
// and redirects pinned to the site's host.
type Client struct {
	base   *url.URL
	prefix string
	http   *resty.Client
	logger zerolog.Logger
}

// NewClient builds a Client from opts, filling defaults for zero values.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("letterboxd base url %q is not absolute", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	httpClient := resty.New()
	httpClient.SetHeaders(map[string]string{
		"Accept":             "text/html,application/xhtml+xml,*/*;q=0.8",
		"Accept-Language":    "en-US,en;q=0.5",
		"Referer":            DefaultBaseURL,
		"User-Agent":         opts.UserAgent,
		"sec-ch-ua":          `"Google Chrome";v="129", "Not=A?Brand";v="8", "Chromium";v="129"`,
		"sec-ch-ua-mobile":   "?0",
		"sec-ch-ua-platform": `"macOS"`,
		"Cache-Control":      "no-cache",
		"Pragma":             "no-cache",
	})
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(base.Hostname()))
	httpClient.SetTimeout(opts.Timeout)

	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}
	instrument(httpClient, opts.Logger)

	return &Client{
		base:   base,
		prefix: base.Scheme + "://" + base.Host + base.Path,
		http:   httpClient,
		logger: opts.Logger,
	}, nil
}

// BaseURL returns the normalized site root.
func (c *Client) BaseURL() string { return c.prefix }

// FetchPage returns the body of rawURL. Only URLs under the configured base
// are fetched; anything else fails with ErrDisallowedOrigin before any
// network traffic.
func (c *Client) FetchPage(ctx context.Context, rawURL string) (string, error) {
	if !c.allowed(rawURL) {
		return "", &FetchError{URL: rawURL, Err: ErrDisallowedOrigin}
	}

	ctx, span := tracer.Start(ctx, "letterboxd.FetchPage", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.url", rawURL))

	res, err := c.http.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return "", &FetchError{URL: rawURL, Err: err}
	}
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode()))
	if !res.IsSuccess() {
		ferr := &FetchError{
			URL:        rawURL,
			StatusCode: res.StatusCode(),
			Err:        fmt.Errorf("unexpected status %s", res.Status()),
		}
		span.RecordError(ferr)
		span.SetStatus(codes.Error, "unexpected status")
		return "", ferr
	}
	return res.String(), nil
}

func (c *Client) allowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.User != nil {
		return false
	}
	return strings.HasPrefix(u.Scheme+"://"+u.Host+u.Path, c.prefix)
}
