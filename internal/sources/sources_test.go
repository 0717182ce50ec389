package sources

import (
	"context"
	"errors"
	"sync"
	"time"

	"hearings/internal/crawler"
	"hearings/internal/logger"
	"hearings/internal/models"
	"hearings/internal/normalizer"
)

var (
	fixedNow    = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	errNotFound = errors.New("not found")
)

// mockFetcher serves canned bodies by URL and counts requests.
type mockFetcher struct {
	bodies map[string]string
	calls  map[string]int
	mu     sync.Mutex
}

func newMockFetcher(bodies map[string]string) *mockFetcher {
	return &mockFetcher{bodies: bodies, calls: make(map[string]int)}
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	m.calls[url]++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, ok := m.bodies[url]
	if !ok {
		return nil, errNotFound
	}

	return []byte(body), nil
}

func (m *mockFetcher) Calls(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls[url]
}

func clock() time.Time { return fixedNow }

func newTestSenate(f crawler.Fetcher) *Senate {
	return NewSenate(crawler.NewClientWithFetcher(f), senateFeed, senateDefaultDetail, logger.Discard()).
		WithProcessor(normalizer.NewProcessor(models.ChamberSenate, models.SourceSenate, normalizer.DefaultSenateCommittees()).WithClock(clock))
}

func newTestHouse(f crawler.Fetcher, concurrency int) *House {
	opts := HouseOptions{
		Now:         clock,
		BaseURL:     houseBase,
		WeeksBack:   0,
		WeeksAhead:  0,
		Concurrency: concurrency,
	}

	return NewHouse(crawler.NewClientWithFetcher(f), opts, logger.Discard()).
		WithProcessor(normalizer.NewProcessor(models.ChamberHouse, models.SourceHouse, normalizer.DefaultHouseCommittees()).WithClock(clock))
}
