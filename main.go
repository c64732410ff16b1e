package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/productscraper/api"
	"sjsage522/productscraper/config"
	"sjsage522/productscraper/internal/fetch"
	"sjsage522/productscraper/internal/scraper"
	"sjsage522/productscraper/logger"
	scrapeerrors "sjsage522/productscraper/pkg/errors"
	"sjsage522/productscraper/services/cache"
	"sjsage522/productscraper/services/publisher"
	"sjsage522/productscraper/services/worker"

	"github.com/joho/godotenv"
)

const usage = "usage: productscraper [-site amazon|noon] <asin-or-url> '<options_json>' | productscraper serve"

// fetcherFactory builds the page fetcher for a configuration
type fetcherFactory func(cfg *config.Config) (fetch.Fetcher, error)

func defaultFetcher(cfg *config.Config) (fetch.Fetcher, error) {
	return fetch.New(cfg, fetch.PlaceholderSolver{})
}

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first; it writes to stderr only
	logger.Init()

	os.Exit(run(os.Args[1:], os.Stdout, defaultFetcher))
}

// run executes one invocation and returns the process exit code
func run(args []string, stdout io.Writer, newFetcher fetcherFactory) int {
	logger.Init()
	cfg := config.LoadConfig()

	if len(args) > 0 && args[0] == "serve" {
		if err := serve(cfg, newFetcher); err != nil {
			logger.Default.Error().Err(err).Msg("Server stopped with error")
			return 1
		}
		return 0
	}

	resp := scrapeOnce(args, cfg, newFetcher)
	if err := resp.Write(stdout); err != nil {
		logger.Default.Error().Err(err).Msg("Failed to write result")
		return 1
	}
	return resp.ExitCode()
}

// scrapeOnce handles the one-shot command line invocation
func scrapeOnce(args []string, cfg *config.Config, newFetcher fetcherFactory) scraper.Response {
	log := logger.Default

	fs := flag.NewFlagSet("productscraper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	site := fs.String("site", "", "page layout to use: amazon or noon")
	if err := fs.Parse(args); err != nil {
		return scraper.Failure(scrapeerrors.NewConfiguration(usage, nil))
	}
	if fs.NArg() < 2 {
		return scraper.Failure(scrapeerrors.NewConfiguration(usage, nil))
	}
	identifier, options := fs.Arg(0), fs.Arg(1)

	// Options are decoded before anything touches the network
	req, err := scraper.ParseFieldRequest([]byte(options))
	if err != nil {
		return scraper.Failure(err)
	}

	if err := cfg.Validate(); err != nil {
		return scraper.Failure(scrapeerrors.NewConfiguration("invalid configuration", err))
	}

	target, err := scraper.ResolveTarget(identifier, *site, cfg.AmazonHost)
	if err != nil {
		return scraper.Failure(err)
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return scraper.Failure(scrapeerrors.NewConfiguration("invalid configuration", err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close fetcher")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	result, err := scraper.New(fetcher).Scrape(ctx, target, req)
	if err != nil {
		return scraper.Failure(err)
	}

	if cfg.PublishResults {
		publishOnce(cfg, target, result)
	}
	return scraper.Success(result)
}

// publishOnce sends a CLI result to the stream. Failures are only logged.
func publishOnce(cfg *config.Config, target scraper.Target, result scraper.Result) {
	log := logger.ForPublisher()

	pub := publisher.NewRedisPublisher(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msg := publisher.ResultMessage{Site: string(target.Site), URL: target.URL, Result: result}
	if err := publisher.PublishResult(ctx, pub, msg); err != nil {
		log.Error().Err(err).Str("url", target.URL).Msg("Failed to publish result")
		return
	}
	log.Debug().Str("stream", pub.StreamName(msg.Site)).Msg("Result published")
}

// serve runs the HTTP wrapper until SIGINT or SIGTERM
func serve(cfg *config.Config, newFetcher fetcherFactory) error {
	log := logger.ForServer()

	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("fetch_mode", cfg.FetchMode).
		Str("addr", cfg.ServerAddr).
		Msg("Starting server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := initializeServices(cfg, newFetcher)
	if err != nil {
		return err
	}
	defer services.Cleanup()

	w := worker.NewWorker(services.Scraper, services.Jobs, services.Publisher, cfg.WorkerCount, cfg.FetchTimeout)
	w.Start(ctx)
	defer w.Stop()

	router := api.NewRouter(api.Dependencies{
		Config:    cfg,
		Scraper:   services.Scraper,
		Jobs:      services.Jobs,
		Queue:     w,
		Publisher: services.Publisher,
	}, time.Now())

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	case err := <-serverDone:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Services holds all the initialized services
type Services struct {
	Fetcher   fetch.Fetcher
	Scraper   *scraper.Scraper
	Jobs      *cache.JobStore
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.Fetcher != nil {
		s.Fetcher.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(cfg *config.Config, newFetcher fetcherFactory) (*Services, error) {
	log := logger.ForServer()
	services := &Services{}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}
	services.Fetcher = fetcher
	services.Scraper = scraper.New(fetcher)

	memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	if err := memcacheService.Ping(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache is not reachable; job endpoints will fail until it is")
	} else {
		logger.ForCache().Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")
	}
	services.Jobs = cache.NewJobStore(memcacheService, cfg.JobTTL)

	if cfg.PublishResults {
		redisPublisher := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		services.Publisher = redisPublisher

		logger.ForPublisher().Info().
			Str("addr", cfg.RedisAddr).
			Int("db", cfg.RedisDB).
			Str("stream", cfg.RedisStream).
			Msg("Publishing results to Redis")
	}

	return services, nil
}
