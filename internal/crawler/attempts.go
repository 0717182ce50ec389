package crawler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"hearings/internal/logger"
)

// AttemptResult records the result of a URL fetch attempt.
type AttemptResult struct {
	Timestamp  time.Time
	URL        string
	Error      string
	Attempt    int
	Duration   time.Duration
	StatusCode int
	Success    bool
}

// AttemptLog records fetch attempts per URL. It is safe for concurrent use
// and a nil log ignores all records.
type AttemptLog struct {
	mu  sync.Mutex
	log map[string][]AttemptResult
}

// NewAttemptLog creates an empty attempt log.
func NewAttemptLog() *AttemptLog {
	return &AttemptLog{log: make(map[string][]AttemptResult)}
}

// Record records the result of a fetch attempt.
func (al *AttemptLog) Record(url string, success bool, err error, statusCode int, duration time.Duration) {
	if al == nil {
		return
	}

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}

	al.mu.Lock()
	defer al.mu.Unlock()

	al.log[url] = append(al.log[url], AttemptResult{
		URL:        url,
		Attempt:    len(al.log[url]) + 1,
		Success:    success,
		Error:      errMsg,
		Timestamp:  time.Now(),
		Duration:   duration,
		StatusCode: statusCode,
	})
}

// Get returns a copy of the attempts for a URL.
func (al *AttemptLog) Get(url string) []AttemptResult {
	al.mu.Lock()
	defer al.mu.Unlock()

	return append([]AttemptResult(nil), al.log[url]...)
}

// Stats returns statistics about fetch attempts.
func (al *AttemptLog) Stats() AttemptStats {
	al.mu.Lock()
	defer al.mu.Unlock()

	stats := AttemptStats{
		URLAttempts: make(map[string]int, len(al.log)),
		TotalURLs:   len(al.log),
	}

	for url, results := range al.log {
		stats.URLAttempts[url] = len(results)
		stats.TotalAttempts += len(results)

		urlSuccess := false

		for _, result := range results {
			if result.Success {
				stats.SuccessfulAttempts++
				urlSuccess = true
			} else {
				stats.FailedAttempts++
			}
		}

		if urlSuccess {
			stats.SuccessfulURLs++
		} else {
			stats.FailedURLs++
		}
	}

	return stats
}

// FailedURLs returns URLs that never succeeded, sorted.
func (al *AttemptLog) FailedURLs() []string {
	al.mu.Lock()
	defer al.mu.Unlock()

	var failed []string

	for url, results := range al.log {
		ok := false

		for _, r := range results {
			ok = ok || r.Success
		}

		if !ok {
			failed = append(failed, url)
		}
	}

	sort.Strings(failed)

	return failed
}

// AttemptStats contains statistics about fetch attempts.
type AttemptStats struct {
	URLAttempts        map[string]int
	TotalURLs          int
	SuccessfulURLs     int
	FailedURLs         int
	TotalAttempts      int
	SuccessfulAttempts int
	FailedAttempts     int
}

// String returns a string representation of attempt stats.
func (s AttemptStats) String() string {
	return fmt.Sprintf(
		"URLs: %d total, %d success, %d failed | Attempts: %d total, %d success, %d failed",
		s.TotalURLs,
		s.SuccessfulURLs,
		s.FailedURLs,
		s.TotalAttempts,
		s.SuccessfulAttempts,
		s.FailedAttempts,
	)
}

// LogSummary logs the overall stats and, at debug level, every URL that
// never succeeded with its last error.
func (al *AttemptLog) LogSummary(l *logger.Logger) {
	stats := al.Stats()
	l.Info(fmt.Sprintf("📊 Fetch attempts: %s", stats))

	for _, url := range al.FailedURLs() {
		results := al.Get(url)
		last := results[len(results)-1]

		l.Debug("fetch failed",
			"url", url,
			"attempts", len(results),
			"status", last.StatusCode,
			"err", last.Error,
		)
	}
}

// Reset clears the log.
func (al *AttemptLog) Reset() {
	al.mu.Lock()
	defer al.mu.Unlock()

	al.log = make(map[string][]AttemptResult)
}
