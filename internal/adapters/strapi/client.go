// Package strapi pulls listing entries from a Strapi CMS REST API.
package strapi

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"realty_catalog/internal/adapters/observability"
	"realty_catalog/internal/domain"
)

const maxAttempts = 4

type Client struct {
	base  string
	hc    *http.Client
	token string
	rl    *rate.Limiter
}

// New builds a client for the Strapi instance at base (e.g. https://cms.example.com).
// The token is optional; public collections need none.
func New(base, token string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("strapi base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		hc:    &http.Client{Timeout: 20 * time.Second},
		token: token,
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

var _ domain.ListingSource = (*Client)(nil)

type listResponse struct {
	Data []map[string]any `json:"data"`
	Meta struct {
		Pagination struct {
			Page      int `json:"page"`
			PageSize  int `json:"pageSize"`
			PageCount int `json:"pageCount"`
			Total     int `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

// ListProperties fetches one page of the tenant's property entries, drafts
// included, with relations and media populated.
func (c *Client) ListProperties(ctx context.Context, tenantSlug string, page, pageSize int) (domain.ListingPage, error) {
	q := url.Values{}
	q.Set("filters[tenant][slug][$eq]", tenantSlug)
	q.Set("pagination[page]", strconv.Itoa(page))
	q.Set("pagination[pageSize]", strconv.Itoa(pageSize))
	q.Set("publicationState", "preview")
	q.Set("populate", "*")

	var out listResponse
	if err := c.get(ctx, "properties", c.base+"/api/properties?"+q.Encode(), &out); err != nil {
		return domain.ListingPage{}, err
	}
	pg := out.Meta.Pagination
	return domain.ListingPage{
		Entries:   out.Data,
		Page:      pg.Page,
		PageCount: pg.PageCount,
		Total:     pg.Total,
	}, nil
}

// ---- Internals ----

var (
	ErrNotFound     = errors.New("strapi: not found")
	ErrUnauthorized = errors.New("strapi: unauthorized")
	ErrForbidden    = errors.New("strapi: forbidden")
)

// get fetches u into out, retrying transport errors, 429 and 5xx and honoring
// Retry-After. Every attempt, retries included, waits on the rate limiter.
func (c *Client) get(ctx context.Context, endpoint, u string, out any) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}
		wait, err := c.attempt(ctx, endpoint, u, out)
		if !errors.Is(err, errRetry) {
			return err
		}
		lastErr = err
		if wait == 0 {
			wait = backoff(i)
		}
		if i == maxAttempts-1 || !sleepCtx(ctx, wait) {
			break
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return lastErr
}

// errRetry marks a failed attempt worth repeating.
var errRetry = errors.New("strapi: retryable failure")

// attempt performs one GET. A retryable failure wraps errRetry and may carry
// the server's Retry-After hint.
func (c *Client) attempt(ctx context.Context, endpoint, u string, out any) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "realty-catalog/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("strapi", endpoint, 0, time.Since(start))
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: %w", errRetry, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("strapi", endpoint, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		return 0, json.NewDecoder(resp.Body).Decode(out)
	case http.StatusNotFound:
		return 0, ErrNotFound
	case http.StatusUnauthorized:
		return 0, ErrUnauthorized
	case http.StatusForbidden:
		return 0, ErrForbidden
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return retryAfter(resp), fmt.Errorf("%w: remote %d", errRetry, resp.StatusCode)
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return 0, fmt.Errorf("strapi: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent or invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
