package registry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/ajxudir/depfloor/pkg/verbose"
)

// breakerThreshold is the number of consecutive failures that opens a breaker.
const breakerThreshold = 5

// BreakerGetter wraps a Getter with one circuit breaker per registry host.
type BreakerGetter struct {
	getter   Getter
	breakers map[string]*circuit.Breaker
	mu       sync.RWMutex
}

// NewBreakerGetter creates a circuit breaker wrapper for g.
func NewBreakerGetter(g Getter) *BreakerGetter {
	return &BreakerGetter{
		getter:   g,
		breakers: make(map[string]*circuit.Breaker),
	}
}

// breaker returns or creates the breaker for host.
func (b *BreakerGetter) breaker(host string) *circuit.Breaker {
	b.mu.RLock()
	br, ok := b.breakers[host]
	b.mu.RUnlock()
	if ok {
		return br
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if br, ok := b.breakers[host]; ok {
		return br
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	br = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(breakerThreshold),
	})
	b.breakers[host] = br
	return br
}

// Get fetches rawURL unless the breaker for its host is open.
//
// A missing project is a valid answer from a healthy registry and does not
// count as a breaker failure.
func (b *BreakerGetter) Get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	host := hostOf(rawURL)
	br := b.breaker(host)

	if !br.Ready() {
		verbose.Printf("circuit breaker open for %s", host)
		return nil, fmt.Errorf("circuit breaker open for registry %s: %w", host, ErrUpstreamDown)
	}

	var body []byte
	var notFound error
	err := br.Call(func() error {
		var getErr error
		body, getErr = b.getter.Get(ctx, rawURL, accept)
		if errors.Is(getErr, ErrNotFound) {
			notFound = getErr
			return nil
		}
		return getErr
	}, 0)
	if err != nil {
		return nil, err
	}
	if notFound != nil {
		return nil, notFound
	}
	return body, nil
}

// States reports "open" or "closed" per registry host.
func (b *BreakerGetter) States() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	states := make(map[string]string, len(b.breakers))
	for host, br := range b.breakers {
		if br.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

// hostOf extracts the breaker key from a URL.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
