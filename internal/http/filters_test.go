package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/filmfeud/internal/comparison"
	"github.com/Clark-Hu/filmfeud/internal/config"
	"github.com/Clark-Hu/filmfeud/internal/diary"
	"github.com/Clark-Hu/filmfeud/internal/letterboxd"
)

func TestBuildComparisonFilters(t *testing.T) {
	values, _ := url.ParseQuery("user= Alice &limit=15")

	filters, err := buildComparisonFilters(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filters.User == nil || *filters.User != "Alice" {
		t.Fatalf("user not trimmed: %+v", filters.User)
	}
	if filters.Limit != 15 {
		t.Fatalf("Limit = %d, want 15", filters.Limit)
	}
	if filters.Cursor != nil {
		t.Fatalf("Cursor = %+v, want nil", filters.Cursor)
	}
}

func TestBuildComparisonFilters_Invalid(t *testing.T) {
	for _, raw := range []string{"limit=abc", "limit=-1", "cursor=%25%25"} {
		values, _ := url.ParseQuery(raw)
		if _, err := buildComparisonFilters(values); err == nil {
			t.Fatalf("buildComparisonFilters(%q) expected error", raw)
		}
	}
}

func TestVerifyBearer(t *testing.T) {
	srv := &Server{cfg: config.Config{AuthToken: "secret"}}
	cases := []struct {
		header  string
		allowed bool
	}{
		{"Bearer secret", true},
		{"Bearer secret ", true},
		{"Bearer other", false},
		{"secret", false},
		{"", false},
	}
	for _, c := range cases {
		if srv.verifyBearer(c.header) != c.allowed {
			t.Fatalf("verifyBearer(%q) expected %v", c.header, c.allowed)
		}
	}
}

func TestRespondCollectError(t *testing.T) {
	notFound := &letterboxd.FetchError{URL: "https://letterboxd.com/ghost/films/diary/", StatusCode: http.StatusNotFound, Err: errors.New("404")}
	upstream := &letterboxd.FetchError{URL: "https://letterboxd.com/bob/films/diary/page/2/", StatusCode: http.StatusServiceUnavailable, Err: errors.New("503")}

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"invalid username", &comparison.UserError{User: "..", Err: fmt.Errorf("%w: %q", letterboxd.ErrInvalidUsername, "..")}, http.StatusBadRequest, "INVALID_USERNAME"},
		{"missing user", &comparison.UserError{User: "ghost", Err: &diary.CollectionError{FailedPages: []int{1}, Err: notFound}}, http.StatusNotFound, "USER_NOT_FOUND"},
		{"upstream failure", &comparison.UserError{User: "bob", Err: &diary.CollectionError{FailedPages: []int{2}, Err: errors.Join(upstream)}}, http.StatusBadGateway, "FETCH_FAILED"},
		{"disallowed origin", &letterboxd.FetchError{URL: "https://evil.example/", Err: letterboxd.ErrDisallowedOrigin}, http.StatusBadGateway, "FETCH_FAILED"},
		{"deadline", &comparison.UserError{User: "bob", Err: context.DeadlineExceeded}, http.StatusGatewayTimeout, "TIMEOUT"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	srv := &Server{logger: zerolog.Nop()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.respondCollectError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := decodeError(t, rec); got.Code != tt.wantBody {
				t.Fatalf("code = %s, want %s", got.Code, tt.wantBody)
			}
		})
	}
}
