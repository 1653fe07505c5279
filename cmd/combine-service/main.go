package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/pdf-combine-kit/pkg/config"
	"github.com/yourorg/pdf-combine-kit/pkg/httpservice"
	"github.com/yourorg/pdf-combine-kit/pkg/jobs"
	"github.com/yourorg/pdf-combine-kit/pkg/jwt"
	"github.com/yourorg/pdf-combine-kit/pkg/logging"
	"github.com/yourorg/pdf-combine-kit/pkg/storage"
	"github.com/yourorg/pdf-combine-kit/pkg/telemetry"
	"github.com/yourorg/pdf-combine-kit/pkg/utils"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	store      storage.Store
	queue      jobs.Queue
	processor  *jobs.Processor
	retry      utils.RetryConfig
	jwtService *jwt.JWTService
	telemetry  *telemetry.NewRelicClient
	slack      *telemetry.SlackClient
	server     *httpservice.Server
}

func main() {
	// Load configuration
	var (
		cfg *config.Config
		err error
	)
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = config.LoadConfigFromFile(path)
	} else {
		cfg, err = config.LoadConfigFromEnv()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync(logger)

	logger.Info("Starting combine service", logging.NewField("version", cfg.AppVersion))

	// Create document store (use in-memory store for local development)
	var store storage.Store
	if cfg.BlobStorageAccountName == "" {
		logger.Info("Using in-memory document store (no account name configured)")
		store = storage.NewMemoryStore()
	} else {
		store, err = storage.NewAzureStore(
			cfg.BlobStorageAccountName,
			cfg.BlobStorageAccountKey,
			cfg.BlobContainer,
			logger,
		)
		if err != nil {
			logger.Error("Failed to create document store", logging.NewField("error", err))
			os.Exit(1)
		}
	}

	// Create job queue (use in-memory queue for local development)
	var queue jobs.Queue
	if cfg.ServiceBusNamespace == "" {
		logger.Info("Using in-memory job queue (no namespace configured)")
		queue = jobs.NewMemoryQueue()
	} else {
		queue, err = jobs.NewAzureQueue(
			cfg.ServiceBusNamespace,
			cfg.ServiceBusKeyName,
			cfg.ServiceBusKeyValue,
			cfg.ServiceBusQueue,
			logger,
		)
		if err != nil {
			logger.Error("Failed to create job queue", logging.NewField("error", err))
			os.Exit(1)
		}
	}

	retry := utils.RetryConfig{
		MaxAttempts:  cfg.RetryMaxAttempts,
		InitialDelay: time.Duration(cfg.RetryInitialDelay) * time.Millisecond,
		MaxDelay:     time.Duration(cfg.RetryMaxDelay) * time.Millisecond,
		Multiplier:   2.0,
	}

	processor := jobs.NewProcessor(jobs.ProcessorConfig{
		Store:        store,
		Retry:        retry,
		WorkDir:      cfg.WorkDir,
		OutputPrefix: cfg.OutputPrefix,
		Logger:       logger,
	})

	// Telemetry clients are inert until configured
	telemetryClient, err := telemetry.NewNewRelicClient(telemetry.NewRelicConfig{
		LicenseKey:  cfg.NewRelicLicenseKey,
		AppName:     cfg.AppName,
		ServiceName: "combine_api",
		Enabled:     cfg.NewRelicLicenseKey != "",
	}, logger)
	if err != nil {
		logger.Error("Failed to create telemetry client", logging.NewField("error", err))
		os.Exit(1)
	}

	slackClient := telemetry.NewSlackClient(telemetry.SlackConfig{
		WebhookURL:  cfg.SlackWebhookURL,
		ServiceName: cfg.AppName,
		Enabled:     cfg.SlackWebhookURL != "",
	}, logger)

	// Bearer auth is optional: without a secret every endpoint is open
	var jwtService *jwt.JWTService
	if cfg.JWTSecret != "" {
		jwtService, err = jwt.NewJWTServiceFromConfig(jwt.Config{SecretKey: cfg.JWTSecret}, logger)
		if err != nil {
			logger.Error("Failed to create JWT service", logging.NewField("error", err))
			os.Exit(1)
		}
	} else {
		logger.Info("Bearer auth disabled (no JWT secret configured)")
	}

	// Create app
	app := &App{
		config:     cfg,
		logger:     logger,
		store:      store,
		queue:      queue,
		processor:  processor,
		retry:      retry,
		jwtService: jwtService,
		telemetry:  telemetryClient,
		slack:      slackClient,
	}

	// Start the combine job consumer
	consumer := jobs.NewConsumer(queue, jobs.ConsumerConfig{
		MaxConcurrent: cfg.ServiceBusConcurrency,
		Logger:        logger,
	}, app.processJob)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	if err := consumer.Start(workerCtx); err != nil {
		logger.Error("Failed to start job consumer", logging.NewField("error", err))
		os.Exit(1)
	}

	// Create HTTP server
	server, err := httpservice.NewServer(httpservice.ServerConfig{
		Port:           cfg.HTTPPort,
		ReadTimeout:    time.Duration(cfg.HTTPReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.HTTPWriteTimeout) * time.Second,
		IdleTimeout:    time.Duration(cfg.HTTPIdleTimeout) * time.Second,
		Logger:         logger,
		RateLimitRPS:   float64(cfg.RateLimitRPS),
		RateLimitBurst: cfg.RateLimitBurst,
		MaxBodySize:    int64(cfg.MaxUploadMB) * 1024 * 1024,
	}, app)
	if err != nil {
		logger.Error("Failed to create server", logging.NewField("error", err))
		os.Exit(1)
	}

	app.server = server

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Server error", logging.NewField("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", logging.NewField("error", err))
	}

	stopWorkers()
	if err := consumer.Stop(ctx); err != nil {
		logger.Error("Consumer shutdown error", logging.NewField("error", err))
	}
	if err := queue.Close(ctx); err != nil {
		logger.Error("Queue close error", logging.NewField("error", err))
	}

	telemetryClient.Shutdown(5000)
}

// processJob is the consumer handler: it executes one queued combine
// and reports the outcome to telemetry.
func (a *App) processJob(ctx context.Context, job jobs.CombineJob) error {
	start := time.Now()

	result, err := a.processor.Process(ctx, job)
	if err != nil {
		a.telemetry.RecordCombineFailed(job.ID, err.Error())
		if alertErr := a.slack.SendCombineFailureAlert(ctx, job.ID, job.Output.Name, err); alertErr != nil {
			a.logger.Warn("Failed to send combine failure alert", logging.NewField("error", alertErr))
		}
		return err
	}

	a.telemetry.RecordCombineCompleted(len(job.Documents), result.Pages, time.Since(start).Milliseconds(), result.Output)
	return nil
}
