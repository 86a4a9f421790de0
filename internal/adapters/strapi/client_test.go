package strapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"realty_catalog/internal/adapters/strapi"
)

const pageBody = `{
  "data": [
    {"id": 7, "documentId": "abc123", "title": "Casa en Punta", "price": 350000}
  ],
  "meta": {"pagination": {"page": 2, "pageSize": 1, "pageCount": 3, "total": 3}}
}`

func TestClient_ListProperties(t *testing.T) {
	var gotQuery, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/properties" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("filters[tenant][slug][$eq]") + "|" + r.URL.Query().Get("pagination[page]")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(pageBody))
	}))
	defer ts.Close()

	cl, err := strapi.New(ts.URL+"/", "tok", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	lp, err := cl.ListProperties(context.Background(), "costa", 2, 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if gotQuery != "costa|2" {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if lp.Page != 2 || lp.PageCount != 3 || lp.Total != 3 || len(lp.Entries) != 1 {
		t.Fatalf("unexpected page: %+v", lp)
	}
	if lp.Entries[0]["documentId"] != "abc123" {
		t.Fatalf("unexpected entry: %+v", lp.Entries[0])
	}
}

func TestClient_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1:
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte(pageBody))
		}
	}))
	defer ts.Close()

	cl, err := strapi.New(ts.URL, "", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := cl.ListProperties(ctx, "costa", 1, 100); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", hits)
	}
}

func TestClient_RetriesAreRateLimited(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(pageBody))
	}))
	defer ts.Close()

	// one request per second, no burst beyond the first
	cl, err := strapi.New(ts.URL, "", 1)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	if _, err := cl.ListProperties(ctx, "costa", 1, 100); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if hits != 2 {
		t.Fatalf("expected 2 calls, got %d", hits)
	}
	// backoff alone is at most 300ms; the limiter holds the retry for ~1s
	if elapsed := time.Since(start); elapsed < 800*time.Millisecond {
		t.Fatalf("retry bypassed the rate limiter: took %v", elapsed)
	}
}

func TestClient_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	cl, _ := strapi.New(ts.URL, "bad", 100)
	_, err := cl.ListProperties(context.Background(), "costa", 1, 100)
	if !errors.Is(err, strapi.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestNew_RequiresBase(t *testing.T) {
	if _, err := strapi.New("", "tok", 1); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}
