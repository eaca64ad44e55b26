package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/dnscache"

	"github.com/ajxudir/depfloor/pkg/verbose"
)

// maxBodySize caps how much of an index page is read.
const maxBodySize = 64 << 20

// Getter fetches the body of a registry page.
type Getter interface {
	Get(ctx context.Context, url, accept string) ([]byte, error)
}

// Fetcher performs HTTP GETs against a registry with optional retries.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxRetries sets how many times a rate-limited or 5xx request is
// retried. Zero, the default, makes the first failure final.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRetries = n
		}
	}
}

// WithBaseDelay sets the base delay for exponential backoff between retries.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.baseDelay = d
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

var (
	resolverOnce sync.Once
	resolver     *dnscache.Resolver
)

// sharedResolver returns the process-wide DNS cache, refreshed every 5 minutes.
func sharedResolver() *dnscache.Resolver {
	resolverOnce.Do(func() {
		resolver = &dnscache.Resolver{}
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				resolver.Refresh(true)
			}
		}()
	})
	return resolver
}

// NewFetcher creates a Fetcher whose client dials through a DNS cache.
func NewFetcher(opts ...Option) *Fetcher {
	r := sharedResolver()
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := r.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
					}
					return nil, fmt.Errorf("failed to dial any resolved IP for %s", host)
				},
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		userAgent: "depfloor",
		baseDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Get downloads url, retrying rate-limit and server errors up to the
// configured number of times.
//
// Parameters:
//   - ctx: Context for cancellation
//   - url: Page to fetch
//   - accept: Value of the Accept header
//
// Returns:
//   - []byte: Response body
//   - error: ErrNotFound, ErrRateLimited, ErrUpstreamDown, *HTTPError or a transport error
func (f *Fetcher) Get(ctx context.Context, url, accept string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			// exponential backoff with 10% jitter
			delay := f.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			delay += time.Duration(float64(delay) * (rand.Float64() * 0.1))

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := f.doGet(ctx, url, accept)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstreamDown) {
			continue
		}
		return nil, err
	}

	return nil, lastErr
}

func (f *Fetcher) doGet(ctx context.Context, url, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		verbose.HTTPRequest(http.MethodGet, url, 0, time.Since(start))
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	verbose.HTTPRequest(http.MethodGet, url, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", url, err)
		}
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrUpstreamDown, resp.StatusCode, url)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: string(body)}
	}
}
