package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hearings/internal/config"
)

func testScraper(maxAttempts int) *Scraper {
	return NewScraperWithConfig(
		&config.RetryPolicy{
			MaxAttempts:       maxAttempts,
			InitialDelayMs:    1,
			MaxDelayMs:        5,
			BackoffMultiplier: 1.0,
			TimeoutSec:        5,
		},
		config.HTTPConfig{UserAgent: "test-agent/1.0", TimeoutSec: 5, BufferSizeKb: 1},
	)
}

func TestScraper_Fetch_Success(t *testing.T) {
	var gotUA string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<ok/>"))
	}))
	defer server.Close()

	log := NewAttemptLog()

	body, err := testScraper(3).WithAttemptLog(log).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if string(body) != "<ok/>" {
		t.Errorf("Expected body '<ok/>', got %q", body)
	}

	if gotUA != "test-agent/1.0" {
		t.Errorf("Expected User-Agent 'test-agent/1.0', got %q", gotUA)
	}

	if stats := log.Stats(); stats.TotalAttempts != 1 || stats.SuccessfulURLs != 1 {
		t.Errorf("Unexpected stats: %s", stats)
	}
}

func TestScraper_Fetch_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	res, err := testScraper(3).ScrapeWithMetrics(context.Background(), server.URL)
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Fatalf("Expected ErrUnexpectedStatusCode, got %v", err)
	}

	if calls != 1 || res.Attempts != 1 {
		t.Errorf("Expected a single attempt, got %d calls / %d attempts", calls, res.Attempts)
	}

	if res.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", res.StatusCode)
	}
}

func TestScraper_Fetch_RetriesRetryableStatus(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = w.Write([]byte("second time lucky"))
	}))
	defer server.Close()

	res, err := testScraper(3).ScrapeWithMetrics(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after retry, got %v", err)
	}

	if res.Attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", res.Attempts)
	}
}

func TestScraper_Fetch_WithoutStatusRetry(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testScraper(3).WithoutStatusRetry().Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrUnexpectedStatusCode) {
		t.Fatalf("Expected ErrUnexpectedStatusCode, got %v", err)
	}

	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestScraper_Fetch_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer server.Close()

	_, err := testScraper(1).Fetch(context.Background(), server.URL)
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("Expected ErrBodyTooLarge, got %v", err)
	}
}

func TestScraper_Fetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	s := testScraper(1).WithClient(&http.Client{Timeout: 50 * time.Millisecond})

	start := time.Now()

	if _, err := s.Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("Expected timeout error, got nil")
	}

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Expected fetch to give up quickly, took %v", elapsed)
	}
}

func TestScraper_Fetch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := testScraper(3).Fetch(ctx, "http://127.0.0.1:1/never"); err == nil {
		t.Error("Expected error for canceled context")
	}
}

func TestIsRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 429, 503, 504} {
		if !isRetryableStatus(code) {
			t.Errorf("Expected %d to be retryable", code)
		}
	}

	for _, code := range []int{400, 403, 404, 500} {
		if isRetryableStatus(code) {
			t.Errorf("Expected %d not to be retryable", code)
		}
	}
}
