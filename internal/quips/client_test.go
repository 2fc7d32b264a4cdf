package quips

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/filmfeud/internal/compare"
)

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func newServer(t *testing.T, status int, body any, seen *chatRequest) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPClient(srv.URL+"/v1/", "test-key", "test-model", 2*time.Second, zerolog.Nop())
	require.NoError(t, err)
	return c
}

var sampleRequests = []compare.QuipRequest{
	{MovieTitle: "Cats", User1Rating: "0.5", User2Rating: "4.0"},
	{MovieTitle: "Heat", User1Rating: "5.0", User2Rating: "1.5"},
}

func TestGenerate(t *testing.T) {
	content := "```json\n[\n{\"movieTitle\": \"Cats\", \"user1Response\": \"No.\", \"user2Response\": \"Yes.\"},\n{movieTitle: \"Heat\", user1Response: \"Iconic\", user2Response: \"Long\",},\n]\n```"
	var seen chatRequest
	c := newServer(t, http.StatusOK, completion(content), &seen)

	quips, err := c.Generate(context.Background(), sampleRequests)
	require.NoError(t, err)
	require.Len(t, quips, 2)
	require.Equal(t, "No.", quips[0].User1Response)
	require.Equal(t, "Long", quips[1].User2Response)

	require.Equal(t, "test-model", seen.Model)
	require.Len(t, seen.Messages, 2)
	var sent []compare.QuipRequest
	require.NoError(t, json.Unmarshal([]byte(seen.Messages[1].Content), &sent))
	require.Equal(t, sampleRequests, sent)
}

func TestGenerateErrorObject(t *testing.T) {
	c := newServer(t, http.StatusOK, completion(`{"error": "could not comply"}`), nil)
	_, err := c.Generate(context.Background(), sampleRequests)
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestGenerateUpstreamStatus(t *testing.T) {
	c := newServer(t, http.StatusTooManyRequests, map[string]any{"error": map[string]string{"message": "slow down"}}, nil)
	_, err := c.Generate(context.Background(), sampleRequests)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrGenerationFailed))
}

func TestGenerateEmptySkipsCall(t *testing.T) {
	c, err := NewHTTPClient("http://127.0.0.1:1", "", "m", time.Second, zerolog.Nop())
	require.NoError(t, err)
	quips, err := c.Generate(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, quips)
}

func TestDecodeQuips(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{"plain array", `[{"user1Response":"a","user2Response":"b"}]`, 1, false},
		{"fenced without language", "```\n[]\n```", 0, false},
		{"wrapped list", `{"quips": [{"user1Response":"a","user2Response":"b"}]}`, 1, false},
		{"error object", `{"error": {"message": "nope"}}`, 0, true},
		{"prose", `Sorry, I cannot help with that.`, 0, true},
		{"empty", "   ", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeQuips(tt.content)
			if tt.wantErr {
				if !errors.Is(err, ErrGenerationFailed) {
					t.Fatalf("decodeQuips err = %v, want ErrGenerationFailed", err)
				}
				return
			}
			if err != nil || len(got) != tt.want {
				t.Fatalf("decodeQuips = %d quips, %v; want %d", len(got), err, tt.want)
			}
		})
	}
}

// TestHTTPClientSmoke runs against a live endpoint when QUIP_URL is set,
// such as cmd/quip-mock.
func TestHTTPClientSmoke(t *testing.T) {
	baseURL := os.Getenv("QUIP_URL")
	if baseURL == "" {
		t.Skip("QUIP_URL not provided")
	}
	c, err := NewHTTPClient(baseURL, os.Getenv("QUIP_API_KEY"), "gpt-4o-mini", 10*time.Second, zerolog.Nop())
	if err != nil {
		t.Fatalf("create http client: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	quips, err := c.Generate(ctx, sampleRequests)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(quips) == 0 {
		t.Fatalf("expected at least one quip")
	}
}
