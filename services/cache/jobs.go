package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrJobNotFound is returned when a job id is unknown or has expired
var ErrJobNotFound = errors.New("job not found")

// JobState is the lifecycle stage of an asynchronous scrape
type JobState string

// Job states
const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Job is the persisted record of an asynchronous scrape
type Job struct {
	ID        string            `json:"id"`
	State     JobState          `json:"state"`
	Site      string            `json:"site,omitempty"`
	URL       string            `json:"url,omitempty"`
	Result    map[string]string `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Done reports whether the job reached a final state
func (j *Job) Done() bool {
	return j.State == JobSucceeded || j.State == JobFailed
}

// JobStore keeps job records in a CacheService with a fixed TTL
type JobStore struct {
	cache CacheService
	ttl   time.Duration
}

// NewJobStore creates a job store on top of cacheSvc
func NewJobStore(cacheSvc CacheService, ttl time.Duration) *JobStore {
	return &JobStore{cache: cacheSvc, ttl: ttl}
}

func jobKey(id string) string {
	return "job:" + id
}

// Save writes job, refreshing its TTL
func (s *JobStore) Save(job *Job) error {
	job.UpdatedAt = time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = job.UpdatedAt
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}
	if err := s.cache.Set(jobKey(job.ID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}
	return nil
}

// Load returns the job with the given id
func (s *JobStore) Load(id string) (*Job, error) {
	data, err := s.cache.Get(jobKey(id))
	if errors.Is(err, ErrMiss) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load job %s: %w", id, err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", id, err)
	}
	return &job, nil
}
