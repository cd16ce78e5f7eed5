// Package network is the HTTP client used to fetch preset payloads from a
// remote payload server.
package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/lcalzada-xor/xsslab/pkg/config"
	"github.com/lcalzada-xor/xsslab/pkg/logger"
)

// MaxBodySize caps a fetched payload.
const MaxBodySize = 1 << 20

var (
	// ErrStatus is returned for non-2xx responses.
	ErrStatus = errors.New("unexpected status")
	// ErrTooLarge is returned when a payload exceeds MaxBodySize.
	ErrTooLarge = errors.New("payload too large")
)

const baseBackoff = 100 * time.Millisecond

// Client fetches payload text. Requests are rate limited and retried when
// the payload server answers 5xx or 429.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	retries   int
	userAgent string
	log       *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client. rateLimit is in requests per second, 0 means
// unlimited.
func NewClient(timeout time.Duration, rateLimit float64, opts ...Option) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: timeout,
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), 1)
	}

	c := &Client{
		http:      &http.Client{Transport: transport, Timeout: timeout},
		limiter:   limiter,
		retries:   2,
		userAgent: config.AppName + "/" + config.Version,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func retryable(resp *http.Response) bool {
	return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
}

// Do sends req, waiting on the rate limiter before every attempt.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			wait := baseBackoff << (attempt - 1)
			c.log.V("Retrying %s in %s (attempt %d)", req.URL, wait, attempt+1)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}
		if !retryable(resp) || attempt == c.retries {
			return resp, nil
		}
		resp.Body.Close()
		lastErr = fmt.Errorf("%w %d", ErrStatus, resp.StatusCode)
	}
	return nil, fmt.Errorf("request failed after %d retries: %w", c.retries, lastErr)
}

// Fetch GETs url and returns the body verbatim.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "text/plain, */*")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: %w %d", url, ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("GET %s: %w", url, ErrTooLarge)
	}
	c.log.VV("Fetched %d bytes from %s", len(body), url)
	return body, nil
}
