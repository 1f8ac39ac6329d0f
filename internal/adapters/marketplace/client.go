// Package marketplace reads card, metadata, and price history documents from the
// marketplace's public mirrors
package marketplace

import (
	"context"
	"io"
	"net/http"
	"time"

	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/logger"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultUA          = "cardrelay/1.0"
	defaultMaxBody     = 4 << 20
	defaultMetadataURL = "https://card.wb.ru/cards/v2/detail?dest=0&nm={id}"
	defaultCurrency    = "RUB"
)

// Options configures the Client
type Options struct {
	UserAgent string
	// Timeout caps a whole request; callers usually pass a shorter context deadline
	Timeout time.Duration
	MaxBody int64

	// MetadataURL is the enrichment endpoint; "{id}" is replaced, otherwise id is appended
	MetadataURL string
	// Currency is the price key read from price history entries
	Currency string

	// HTTP overrides the transport, mostly for tests
	HTTP *http.Client
}

// Client is a small GET-only HTTP client shared by the three sources
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
	now  func() time.Time
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxBody <= 0 {
		o.MaxBody = defaultMaxBody
	}
	if o.MetadataURL == "" {
		o.MetadataURL = defaultMetadataURL
	}
	if o.Currency == "" {
		o.Currency = defaultCurrency
	}
	hc := o.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &Client{
		http: hc,
		opts: o,
		log:  *logger.Named("marketplace"),
		now:  time.Now,
	}
}

// Fetch issues a GET and returns the body and status.
// Non-200 bodies are drained and dropped; the error is set only when no response arrived
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "marketplace new request failed")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	lat := c.now().Sub(start)
	if err != nil {
		return nil, 0, perr.Wrapf(err, perr.ErrorCodeUnavailable, "marketplace get failed")
	}
	defer func() { _ = drainAndClose(resp.Body) }()

	c.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("latency", lat).
		Int64("content_length", resp.ContentLength).
		Msg("marketplace http response")

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBody))
	if err != nil {
		return nil, resp.StatusCode, perr.Wrapf(err, perr.ErrorCodeUnavailable, "marketplace read body failed")
	}
	return body, resp.StatusCode, nil
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
