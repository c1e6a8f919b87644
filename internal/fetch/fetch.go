// Package fetch turns URLs into parsed HTML documents. Failures are
// reported to the caller, who treats them as "no data" at the product or
// category boundary.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"

	"github.com/stilmark/fashion-scraper/internal/ratelimit"
)

// Fetcher is the page-fetch capability consumed by the scraper.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Client fetches pages over plain HTTP with a fixed per-site cadence.
type Client struct {
	http      *http.Client
	userAgent string
	limiter   ratelimit.Limiter
	log       zerolog.Logger
}

func NewClient(userAgent string, timeout, delay time.Duration, log zerolog.Logger) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		limiter:   ratelimit.NewFixedDelayLimiter(delay),
		log:       log,
	}
}

// Fetch retrieves the URL, converts the body to UTF-8 and parses it. The
// cadence delay applies before each request so successive fetches respect
// the site's configured gap.
func (c *Client) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.log.Debug().Str("url", url).Msg("fetching page")

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}

	return doc, nil
}

func (c *Client) get(ctx context.Context, url string) (io.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status code %d", url, resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	enc, name, _ := charset.DetermineEncoding(bodyBytes, resp.Header.Get("Content-Type"))
	if name == "utf-8" {
		return bytes.NewReader(bodyBytes), nil
	}

	utf8Reader := enc.NewDecoder().Reader(bytes.NewReader(bodyBytes))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, fmt.Errorf("failed to convert body to UTF-8: %w", err)
	}

	return &buf, nil
}
