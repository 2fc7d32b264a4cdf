// Package quips asks a chat-completions endpoint for banter about rating
// disagreements.
package quips

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/filmfeud/internal/compare"
)

// ErrGenerationFailed is returned when the model replies with an error
// object or content that is not a quip list.
var ErrGenerationFailed = errors.New("quips: generation failed")

// HTTPClient implements compare.Generator over an OpenAI-compatible
// chat-completions API.
type HTTPClient struct {
	http   *resty.Client
	model  string
	logger zerolog.Logger
}

var _ compare.Generator = (*HTTPClient)(nil)

// NewHTTPClient constructs a client rooted at baseURL, for example
// https://api.openai.com/v1.
func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration, logger zerolog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse quip url %q: invalid", baseURL)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	client := resty.NewWithClient(&http.Client{Timeout: timeout, Transport: transport}).
		SetBaseURL(parsed.String()).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}

	return &HTTPClient{http: client, model: model, logger: logger}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends every request in one completion call and decodes the
// reply. Quips come back in model order; callers match them by position.
func (c *HTTPClient) Generate(ctx context.Context, requests []compare.QuipRequest) ([]compare.Quip, error) {
	if len(requests) == 0 {
		return nil, nil
	}
	movies, err := json.Marshal(requests)
	if err != nil {
		return nil, fmt.Errorf("encode quip requests: %w", err)
	}

	var payload chatResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: systemPrompt},
				{Role: "user", Content: string(movies)},
			},
			Temperature: 0.9,
		}).
		SetResult(&payload).
		SetError(&payload).
		Post("/chat/completions")
	if err != nil {
		return nil, err
	}

	if !res.IsSuccess() {
		msg := ""
		if payload.Error != nil {
			msg = payload.Error.Message
		}
		c.logger.Warn().Int("status", res.StatusCode()).Str("error", msg).Msg("quip upstream rejected request")
		return nil, fmt.Errorf("quips: upstream returned %d", res.StatusCode())
	}
	if len(payload.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrGenerationFailed)
	}
	return decodeQuips(payload.Choices[0].Message.Content)
}
