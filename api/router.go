package api

import (
	"time"

	"sjsage522/productscraper/api/handler"
	"sjsage522/productscraper/api/middleware"
	"sjsage522/productscraper/config"
	"sjsage522/productscraper/services/cache"
	"sjsage522/productscraper/services/publisher"

	"github.com/gin-gonic/gin"
)

// Dependencies are the components the HTTP wrapper is built from
type Dependencies struct {
	Config    *config.Config
	Scraper   handler.Scraper
	Jobs      *cache.JobStore
	Queue     handler.JobQueue
	Publisher publisher.Publisher
}

// NewRouter creates a configured Gin engine with all routes and middleware.
func NewRouter(deps Dependencies, startTime time.Time) *gin.Engine {
	gin.SetMode(deps.Config.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	settings := handler.Settings{
		AmazonHost:   deps.Config.AmazonHost,
		FetchTimeout: deps.Config.FetchTimeout,
		FetchMode:    deps.Config.FetchMode,
	}

	g := r.Group("/api")
	g.GET("/health", handler.Health(settings, startTime))
	g.POST("/scrape", handler.Scrape(deps.Scraper, deps.Publisher, settings))

	if deps.Jobs != nil && deps.Queue != nil {
		g.POST("/jobs", handler.PostJob(deps.Jobs, deps.Queue, settings))
		g.GET("/jobs/:id", handler.GetJob(deps.Jobs))
	}

	return r
}
