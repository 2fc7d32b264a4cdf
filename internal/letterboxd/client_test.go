package letterboxd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/filmfeud/internal/diary"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{BaseURL: srv.URL, Timeout: 2 * time.Second, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return c, srv
}

func TestFetchPageSendsBrowserHeaders(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") != DefaultBaseURL || r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("<html>ok</html>"))
	})

	body, err := c.FetchPage(context.Background(), srv.URL+"/alice/films/diary/")
	require.NoError(t, err)
	require.Equal(t, "<html>ok</html>", body)
}

func TestFetchPageStatusError(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.FetchPage(context.Background(), srv.URL+"/ghost/films/diary/")
	var ferr *FetchError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, http.StatusNotFound, ferr.StatusCode)
	require.True(t, IsNotFound(err))
}

func TestFetchPageRejectsOtherOrigins(t *testing.T) {
	var hits atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	for _, u := range []string{
		"https://evil.example/alice/",
		"http://user@127.0.0.1/",
		"::not a url",
	} {
		_, err := c.FetchPage(context.Background(), u)
		require.ErrorIs(t, err, ErrDisallowedOrigin, u)
	}
	require.Zero(t, hits.Load())
}

func TestFetchPageHonoursContext(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.FetchPage(ctx, srv.URL+"/slow/")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrDisallowedOrigin))
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{"alice", "alice", false},
		{"  Bob_99 ", "bob_99", false},
		{"", "", true},
		{"   ", "", true},
		{"../admin", "", true},
		{"a b", "", true},
		{"eve?x=1", "", true},
	}
	for _, tt := range tests {
		got, err := ValidateUsername(tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidUsername) {
				t.Fatalf("ValidateUsername(%q) err = %v, want ErrInvalidUsername", tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ValidateUsername(%q) = %q, %v; want %q", tt.raw, got, err, tt.want)
		}
	}
}

func TestListingURL(t *testing.T) {
	if got := ListingURL("https://letterboxd.com", "alice", diary.LayoutDiary); got != "https://letterboxd.com/alice/films/diary/" {
		t.Fatalf("diary ListingURL = %s", got)
	}
	if got := ListingURL(DefaultBaseURL, "alice", diary.LayoutGrid); got != "https://letterboxd.com/alice/films/" {
		t.Fatalf("grid ListingURL = %s", got)
	}
}
