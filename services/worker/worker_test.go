package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"sjsage522/productscraper/internal/scraper"
	"sjsage522/productscraper/services/cache"
	"sjsage522/productscraper/services/publisher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockScraper returns canned results keyed by URL
type MockScraper struct {
	mu      sync.Mutex
	results map[string]scraper.Result
	errs    map[string]error
	block   chan struct{}
}

func (m *MockScraper) Scrape(ctx context.Context, target scraper.Target, req scraper.FieldRequest) (scraper.Result, error) {
	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.errs[target.URL]; ok {
		return nil, err
	}
	return m.results[target.URL], nil
}

// MockPublisher implements the publisher.Publisher interface for testing
type MockPublisher struct {
	mu       sync.Mutex
	messages map[string][][]byte
	err      error
	trimmed  int
}

// Ensure MockPublisher implements publisher.Publisher
var _ publisher.Publisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{messages: make(map[string][][]byte)}
}

func (m *MockPublisher) Publish(ctx context.Context, key string, message []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	// Copy the message to ensure thread safety
	messageCopy := make([]byte, len(message))
	copy(messageCopy, message)
	m.messages[key] = append(m.messages[key], messageCopy)
	return nil
}

func (m *MockPublisher) TrimStreams(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trimmed++
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// memoryCache is an in-memory cache.CacheService
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (m *memoryCache) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (m *memoryCache) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryCache) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func waitDone(t *testing.T, jobs *cache.JobStore, id string) *cache.Job {
	t.Helper()
	var job *cache.Job
	require.Eventually(t, func() bool {
		j, err := jobs.Load(id)
		if err != nil {
			return false
		}
		job = j
		return j.Done()
	}, 2*time.Second, 10*time.Millisecond)
	return job
}

func TestWorkerProcessesJobs(t *testing.T) {
	okURL := "https://www.amazon.eg/dp/B08N5WRWNW"
	badURL := "https://www.amazon.eg/dp/B000000000"

	s := &MockScraper{
		results: map[string]scraper.Result{okURL: {"title": "Echo Dot"}},
		errs:    map[string]error{badURL: errors.New("fetch " + badURL + " unexpected status code: 404")},
	}
	jobs := cache.NewJobStore(newMemoryCache(), time.Hour)
	pub := NewMockPublisher()

	w := NewWorker(s, jobs, pub, 2, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	require.NoError(t, jobs.Save(&cache.Job{ID: "ok", State: cache.JobQueued}))
	require.NoError(t, w.Submit(Task{JobID: "ok", Target: scraper.Target{Site: scraper.SiteAmazon, URL: okURL}, Request: scraper.NewFieldRequest(scraper.FieldTitle)}))
	require.NoError(t, w.Submit(Task{JobID: "bad", Target: scraper.Target{Site: scraper.SiteAmazon, URL: badURL}, Request: scraper.NewFieldRequest(scraper.FieldTitle)}))

	okJob := waitDone(t, jobs, "ok")
	assert.Equal(t, cache.JobSucceeded, okJob.State)
	assert.Equal(t, map[string]string{"title": "Echo Dot"}, okJob.Result)
	assert.Equal(t, "amazon", okJob.Site)
	assert.Equal(t, okURL, okJob.URL)

	badJob := waitDone(t, jobs, "bad")
	assert.Equal(t, cache.JobFailed, badJob.State)
	assert.Equal(t, "fetch "+badURL+" unexpected status code: 404", badJob.Error)

	w.Stop()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.messages["amazon"], 1)
	var msg publisher.ResultMessage
	require.NoError(t, json.Unmarshal(pub.messages["amazon"][0], &msg))
	assert.Equal(t, "ok", msg.JobID)
	assert.Equal(t, "amazon", msg.Site)
	assert.Equal(t, okURL, msg.URL)
	assert.Equal(t, "Echo Dot", msg.Result["title"])
	assert.Equal(t, 1, pub.trimmed)
}

func TestWorkerPublishFailureDoesNotFailJob(t *testing.T) {
	url := "https://www.noon.com/egypt-en/x/N1/p/"
	s := &MockScraper{results: map[string]scraper.Result{url: {"price": "EGP 10"}}}
	jobs := cache.NewJobStore(newMemoryCache(), time.Hour)
	pub := NewMockPublisher()
	pub.err = errors.New("redis down")

	w := NewWorker(s, jobs, pub, 1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	require.NoError(t, w.Submit(Task{JobID: "j1", Target: scraper.Target{Site: scraper.SiteNoon, URL: url}, Request: scraper.NewFieldRequest(scraper.FieldPrice)}))

	job := waitDone(t, jobs, "j1")
	assert.Equal(t, cache.JobSucceeded, job.State)
	assert.Equal(t, "EGP 10", job.Result["price"])
}

func TestWorkerFetchTimeout(t *testing.T) {
	s := &MockScraper{block: make(chan struct{})}
	jobs := cache.NewJobStore(newMemoryCache(), time.Hour)

	w := NewWorker(s, jobs, nil, 1, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	require.NoError(t, w.Submit(Task{JobID: "slow", Target: scraper.Target{Site: scraper.SiteAmazon, URL: "https://www.amazon.eg/dp/B08N5WRWNW"}}))

	job := waitDone(t, jobs, "slow")
	assert.Equal(t, cache.JobFailed, job.State)
	assert.Contains(t, job.Error, "deadline exceeded")
}

func TestWorkerStopSettlesQueuedJobs(t *testing.T) {
	url := "https://www.amazon.eg/dp/B08N5WRWNW"
	s := &MockScraper{results: map[string]scraper.Result{url: {"title": "Echo Dot"}}}
	jobs := cache.NewJobStore(newMemoryCache(), time.Hour)

	w := NewWorker(s, jobs, nil, 1, time.Second)
	for _, id := range []string{"q1", "q2"} {
		require.NoError(t, jobs.Save(&cache.Job{ID: id, State: cache.JobQueued}))
		require.NoError(t, w.Submit(Task{JobID: id, Target: scraper.Target{Site: scraper.SiteAmazon, URL: url}, Request: scraper.NewFieldRequest(scraper.FieldTitle)}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)
	w.Stop()

	for _, id := range []string{"q1", "q2"} {
		job, err := jobs.Load(id)
		require.NoError(t, err)
		assert.Equal(t, cache.JobFailed, job.State, id)
		assert.Equal(t, context.Canceled.Error(), job.Error, id)
		assert.Equal(t, url, job.URL, id)
	}
}

func TestWorkerSubmitAfterStop(t *testing.T) {
	w := NewWorker(&MockScraper{}, cache.NewJobStore(newMemoryCache(), time.Hour), nil, 1, time.Second)
	w.Start(context.Background())
	w.Stop()

	err := w.Submit(Task{JobID: "late"})
	assert.ErrorIs(t, err, ErrStopped)
}

func TestWorkerQueueFull(t *testing.T) {
	// Never started, so nothing drains the queue
	w := NewWorker(&MockScraper{}, cache.NewJobStore(newMemoryCache(), time.Hour), nil, 1, time.Second)

	var err error
	for i := 0; i < cap(w.queue)+1; i++ {
		err = w.Submit(Task{JobID: "j"})
	}
	assert.ErrorIs(t, err, ErrQueueFull)
}
