package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"sjsage522/productscraper/internal/scraper"
	"sjsage522/productscraper/logger"
	"sjsage522/productscraper/services/cache"
	"sjsage522/productscraper/services/publisher"
)

var (
	// ErrQueueFull is returned by Submit when no queue slot is free
	ErrQueueFull = errors.New("job queue is full")
	// ErrStopped is returned by Submit after Stop
	ErrStopped = errors.New("worker is stopped")
)

// Scraper runs a single scrape invocation
type Scraper interface {
	Scrape(ctx context.Context, target scraper.Target, req scraper.FieldRequest) (scraper.Result, error)
}

// Task is one queued scrape
type Task struct {
	JobID   string
	Target  scraper.Target
	Request scraper.FieldRequest
}

// Worker runs queued scrape jobs on a fixed pool of goroutines and records
// their outcome in the job store
type Worker struct {
	scraper      Scraper
	jobs         *cache.JobStore
	publisher    publisher.Publisher
	fetchTimeout time.Duration
	count        int
	log          *logger.Logger

	queue   chan Task
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
}

// NewWorker creates a new worker. pub may be nil to disable publication.
func NewWorker(
	s Scraper,
	jobs *cache.JobStore,
	pub publisher.Publisher,
	count int,
	fetchTimeout time.Duration,
) *Worker {
	if count <= 0 {
		count = 1
	}
	return &Worker{
		scraper:      s,
		jobs:         jobs,
		publisher:    pub,
		fetchTimeout: fetchTimeout,
		count:        count,
		log:          logger.ForWorker(),
		queue:        make(chan Task, count*16),
	}
}

// Start launches the worker goroutines. They run until Stop closes the queue;
// tasks dequeued after ctx is done are recorded as failed without scraping.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.count; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.run(ctx)
		}()
	}
	w.log.Info().Int("workers", w.count).Msg("Job workers started")
}

func (w *Worker) run(ctx context.Context) {
	for task := range w.queue {
		if err := ctx.Err(); err != nil {
			w.abandon(task, err)
			continue
		}
		w.process(ctx, task)
	}
}

// Submit queues a task without blocking
func (w *Worker) Submit(task Task) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return ErrStopped
	}
	select {
	case w.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop stops accepting tasks, drains the queue and waits for the workers
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()

	w.wg.Wait()

	if w.publisher != nil {
		if err := w.publisher.TrimStreams(context.Background()); err != nil {
			w.log.Error().Err(err).Msg("Stream trimming failed")
		}
	}
}

// jobFor returns the stored record for task, with the task's target applied
func (w *Worker) jobFor(task Task) *cache.Job {
	job := &cache.Job{ID: task.JobID}
	if stored, err := w.jobs.Load(task.JobID); err == nil {
		job = stored
	}
	job.Site = string(task.Target.Site)
	job.URL = task.Target.URL
	return job
}

// abandon records a task that was still queued at shutdown
func (w *Worker) abandon(task Task, cause error) {
	job := w.jobFor(task)
	job.State = cache.JobFailed
	job.Error = cause.Error()
	if err := w.jobs.Save(job); err != nil {
		w.log.Error().Err(err).Str("job_id", task.JobID).Msg("Failed to store abandoned job")
		return
	}
	w.log.Warn().Str("job_id", task.JobID).Msg("Job abandoned at shutdown")
}

// process runs one task and stores its outcome
func (w *Worker) process(ctx context.Context, task Task) {
	log := w.log.WithFields(logger.Fields{"job_id": task.JobID, "url": task.Target.URL})

	job := w.jobFor(task)
	job.State = cache.JobRunning
	if err := w.jobs.Save(job); err != nil {
		log.Error().Err(err).Msg("Failed to mark job running")
	}

	start := time.Now()
	fetchCtx, cancel := context.WithTimeout(ctx, w.fetchTimeout)
	result, err := w.scraper.Scrape(fetchCtx, task.Target, task.Request)
	cancel()

	if err != nil {
		job.State = cache.JobFailed
		job.Error = err.Error()
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("Job failed")
	} else {
		job.State = cache.JobSucceeded
		job.Result = result
		log.Info().Int("fields", len(result)).Dur("elapsed", time.Since(start)).Msg("Job succeeded")
	}

	if err := w.jobs.Save(job); err != nil {
		log.Error().Err(err).Msg("Failed to store job outcome")
	}

	if err == nil && w.publisher != nil {
		msg := publisher.ResultMessage{
			JobID:  job.ID,
			Site:   string(task.Target.Site),
			URL:    task.Target.URL,
			Result: result,
		}
		if pubErr := publisher.PublishResult(ctx, w.publisher, msg); pubErr != nil {
			log.Error().Err(pubErr).Msg("Failed to publish result")
		}
	}
}
