package transport

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/tableofjustice/liga/internal/logger"
)

// userAgents is rotated per request so repeated scrapes do not present a
// single fingerprint
var userAgents = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
}

// Client wraps an http.Client with browser-like headers and transparent
// response decompression for page fetching.
type Client struct {
	httpClient *http.Client
}

// NewClient builds a pooled client with the given request timeout
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
	}
}

// GetHTML fetches a page and returns the decoded body bytes
func (c *Client) GetHTML(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", pageURL, err)
	}

	// Headers that make the request look like a browser
	req.Header.Set("User-Agent", RandomUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Referer", "https://www.google.com/")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %s returned status %d", pageURL, resp.StatusCode)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", pageURL, err)
	}
	return data, nil
}

// decodeBody wraps the response body in the decompressor named by
// Content-Encoding. We ask for br explicitly, so brotli must be handled.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	encoding := resp.Header.Get("Content-Encoding")
	switch encoding {
	case "gzip":
		logger.Debug("Handling gzip compressed content")
		reader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return reader, nil
	case "deflate":
		logger.Debug("Handling deflate compressed content")
		return flate.NewReader(resp.Body), nil
	case "br":
		logger.Debug("Handling brotli compressed content")
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		if encoding != "" {
			logger.Warn("Unknown content encoding:", encoding)
		}
		return io.NopCloser(resp.Body), nil
	}
}

// RandomUserAgent picks a browser identity for the next request
func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}
