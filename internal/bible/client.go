package bible

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nimasrn/verse-gateway/internal/model"
	"github.com/nimasrn/verse-gateway/pkg/logger"
	"github.com/nimasrn/verse-gateway/pkg/prom"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

var (
	ErrNoContent = errors.New("passage has no verses")
)

type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Client fetches passages from a bible-api.com compatible endpoint.
type Client struct {
	config *ClientConfig
	http   *fasthttp.Client
}

type passageResponse struct {
	Reference       string            `json:"reference"`
	Verses          []passageFragment `json:"verses"`
	TranslationID   string            `json:"translation_id"`
	TranslationName string            `json:"translation_name"`
}

type passageFragment struct {
	BookName string `json:"book_name"`
	Chapter  int    `json:"chapter"`
	Verse    int    `json:"verse"`
	Text     string `json:"text"`
}

func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = 500 * time.Millisecond
	}

	return &Client{
		config: config,
		http: &fasthttp.Client{
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
		},
	}, nil
}

// Fetch retrieves a passage in the given translation. Retries transient
// failures up to MaxRetries before giving up.
func (c *Client) Fetch(ctx context.Context, reference, translation string) (*passageResponse, error) {
	uri := fmt.Sprintf("%s/%s?translation=%s",
		c.config.BaseURL, url.PathEscape(reference), url.QueryEscape(translation))

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
		}

		startTime := time.Now()
		body, err := c.doRequest(ctx, uri)
		prom.ObserveVerseFetchDuration(time.Since(startTime).Seconds(), translation)

		if err != nil {
			logger.Warn("Passage fetch failed, retrying", "error", err, "reference", reference, "translation", translation, "attempt", attempt+1)
			lastErr = err
			continue
		}

		var resp passageResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal passage response")
		}
		if len(resp.Verses) == 0 {
			return nil, ErrNoContent
		}
		return &resp, nil
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) doRequest(ctx context.Context, uri string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode(), resp.Body())
	}

	result := make([]byte, len(resp.Body()))
	copy(result, resp.Body())

	return result, nil
}

// toVerse joins the fragments as the provider returned them, only the outer
// whitespace is stripped. Line breaks inside a passage stay intact.
func (r *passageResponse) toVerse(translation string) model.Verse {
	parts := make([]string, 0, len(r.Verses))
	for _, frag := range r.Verses {
		parts = append(parts, frag.Text)
	}

	first := r.Verses[0]
	return model.Verse{
		Text:        strings.TrimSpace(strings.Join(parts, " ")),
		Reference:   fmt.Sprintf("%s %d:%d", first.BookName, first.Chapter, first.Verse),
		Translation: translation,
	}
}
