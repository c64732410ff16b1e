package handler

import (
	"errors"
	"net/http"

	"sjsage522/productscraper/logger"
	"sjsage522/productscraper/services/cache"
	"sjsage522/productscraper/services/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// JobQueue accepts tasks for background execution
type JobQueue interface {
	Submit(task worker.Task) error
}

// JobResponse is the body of GET /api/jobs/:id
type JobResponse struct {
	ID     string            `json:"id"`
	State  cache.JobState    `json:"state"`
	Result map[string]string `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// PostJob returns a handler for POST /api/jobs.
// It validates the request up front, stores a queued job and hands it to the worker pool.
func PostJob(jobs *cache.JobStore, queue JobQueue, settings Settings) gin.HandlerFunc {
	log := logger.ForServer()

	return func(c *gin.Context) {
		target, req, err := parseRequest(c, settings)
		if err != nil {
			writeError(c, statusFor(err), err)
			return
		}

		job := &cache.Job{
			ID:    uuid.NewString(),
			State: cache.JobQueued,
			Site:  string(target.Site),
			URL:   target.URL,
		}
		if err := jobs.Save(job); err != nil {
			log.Error().Err(err).Msg("Failed to store job")
			writeError(c, http.StatusInternalServerError, err)
			return
		}

		if err := queue.Submit(worker.Task{JobID: job.ID, Target: target, Request: req}); err != nil {
			job.State = cache.JobFailed
			job.Error = err.Error()
			if saveErr := jobs.Save(job); saveErr != nil {
				log.Error().Err(saveErr).Str("job_id", job.ID).Msg("Failed to store job")
			}
			writeError(c, http.StatusServiceUnavailable, err)
			return
		}

		log.Debug().Str("job_id", job.ID).Str("url", target.URL).Msg("Job queued")
		c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
	}
}

// GetJob returns a handler for GET /api/jobs/:id.
func GetJob(jobs *cache.JobStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := jobs.Load(c.Param("id"))
		if errors.Is(err, cache.ErrJobNotFound) {
			writeError(c, http.StatusNotFound, err)
			return
		}
		if err != nil {
			writeError(c, http.StatusInternalServerError, err)
			return
		}

		resp := JobResponse{ID: job.ID, State: job.State}
		switch job.State {
		case cache.JobSucceeded:
			resp.Result = job.Result
			if resp.Result == nil {
				resp.Result = map[string]string{}
			}
		case cache.JobFailed:
			resp.Error = job.Error
		}
		c.PureJSON(http.StatusOK, resp)
	}
}
