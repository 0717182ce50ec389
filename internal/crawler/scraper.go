package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"hearings/internal/config"
	"hearings/pkg/utils"
)

// Scraper errors.
var (
	// ErrUnexpectedStatusCode indicates an HTTP response with status >= 400.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrBodyTooLarge indicates a response larger than the configured buffer.
	ErrBodyTooLarge = errors.New("response body exceeds buffer size")
)

// Fetcher retrieves the body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Result describes a completed fetch.
type Result struct {
	Body       []byte
	StatusCode int
	Attempts   int
	Duration   time.Duration
}

// Scraper handles HTTP fetches with config-driven retry logic.
type Scraper struct {
	client      *http.Client
	retryPolicy *config.RetryPolicy
	limiter     *rate.Limiter
	attempts    *AttemptLog
	userAgent   string
	bufferSize  int64
	retryStatus bool
}

// NewScraperWithConfig creates a new scraper with custom retry policy and
// client settings.
func NewScraperWithConfig(retryPolicy *config.RetryPolicy, httpCfg config.HTTPConfig) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: httpCfg.GetTimeout(),
		},
		retryPolicy: retryPolicy,
		userAgent:   httpCfg.UserAgent,
		bufferSize:  httpCfg.GetBufferSize(),
		retryStatus: true,
	}
}

// WithClient replaces the HTTP client.
func (s *Scraper) WithClient(client *http.Client) *Scraper {
	s.client = client

	return s
}

// WithLimiter makes every attempt wait on l first.
func (s *Scraper) WithLimiter(l *rate.Limiter) *Scraper {
	s.limiter = l

	return s
}

// WithAttemptLog records every attempt in log.
func (s *Scraper) WithAttemptLog(log *AttemptLog) *Scraper {
	s.attempts = log

	return s
}

// WithoutStatusRetry makes every status >= 400 fail immediately. Transport
// errors are still retried.
func (s *Scraper) WithoutStatusRetry() *Scraper {
	s.retryStatus = false

	return s
}

// Fetch implements Fetcher.
func (s *Scraper) Fetch(ctx context.Context, url string) ([]byte, error) {
	res, err := s.ScrapeWithMetrics(ctx, url)
	if err != nil {
		return nil, err
	}

	return res.Body, nil
}

// ScrapeWithMetrics fetches url, retrying transport errors and retryable
// statuses. The whole call, retries included, is bounded by the retry
// policy timeout.
func (s *Scraper) ScrapeWithMetrics(ctx context.Context, url string) (Result, error) {
	if timeout := s.retryPolicy.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var (
		lastErr error
		res     Result
	)

	for attempt := 1; attempt <= s.retryPolicy.MaxAttempts; attempt++ {
		if err := s.wait(ctx, s.retryPolicy.GetRetryDelay(attempt)); err != nil {
			if lastErr == nil {
				lastErr = err
			}

			break
		}

		res.Attempts = attempt
		startTime := time.Now()

		body, status, retryable, err := s.do(ctx, url)
		duration := time.Since(startTime)
		res.Duration += duration
		res.StatusCode = status

		s.attempts.Record(url, err == nil, err, status, duration)

		if err == nil {
			res.Body = body

			return res, nil
		}

		lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt, s.retryPolicy.MaxAttempts, err)

		if !retryable || ctx.Err() != nil {
			break
		}
	}

	return res, lastErr
}

// do performs one request. The boolean reports whether a failure may be retried.
func (s *Scraper) do(ctx context.Context, url string) ([]byte, int, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = utils.BuildHeaders(s.userAgent, nil)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, true, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		return nil, resp.StatusCode, s.retryStatus && isRetryableStatus(resp.StatusCode),
			fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode)
	}

	// Read one byte past the limit to detect oversized bodies.
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.bufferSize+1))
	if err != nil {
		return nil, resp.StatusCode, true, fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(body)) > s.bufferSize {
		return nil, resp.StatusCode, false, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, s.bufferSize)
	}

	return body, resp.StatusCode, false, nil
}

// wait sleeps for delay and then for the rate limiter, honoring ctx.
func (s *Scraper) wait(ctx context.Context, delay time.Duration) error {
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if s.limiter != nil {
		return s.limiter.Wait(ctx)
	}

	return ctx.Err()
}

// isRetryableStatus determines if we should retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	// Retry on temporary failures
	switch statusCode {
	case http.StatusServiceUnavailable: // 503
		return true
	case http.StatusGatewayTimeout: // 504
		return true
	case http.StatusTooManyRequests: // 429
		return true
	case http.StatusRequestTimeout: // 408
		return true
	}

	return false
}
