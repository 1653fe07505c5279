package examples

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/pdf-combine-kit/pkg/combiner"
	"github.com/yourorg/pdf-combine-kit/pkg/config"
	"github.com/yourorg/pdf-combine-kit/pkg/httpservice"
	"github.com/yourorg/pdf-combine-kit/pkg/jobs"
	"github.com/yourorg/pdf-combine-kit/pkg/logging"
	"github.com/yourorg/pdf-combine-kit/pkg/storage"
	"github.com/yourorg/pdf-combine-kit/pkg/utils"
)

// ExampleCombineToFile demonstrates the core merge flow: register
// sources, merge, write the result to disk.
func ExampleCombineToFile() error {
	session := combiner.NewSession()

	// Whole document, orientation detected per page
	if err := session.AddDocument("reports/january.pdf", nil, combiner.OrientationAuto); err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	// Selected pages with a forced orientation
	if err := session.AddDocumentRange("reports/appendix.pdf", "1-3,7", combiner.Landscape); err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	if err := session.Merge(combiner.MergeOptions{
		Metadata: map[string]string{"title": "Monthly Report"},
		Duplex:   true,
	}); err != nil {
		return fmt.Errorf("failed to merge: %w", err)
	}

	if _, err := session.Save("combined.pdf", combiner.ModeFile); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// ExampleStoreUsage demonstrates how to create a document store.
func ExampleStoreUsage(cfg *config.Config, logger logging.Logger) (storage.Store, error) {
	// Create Azure Blob backed store
	store, err := storage.NewAzureStore(
		cfg.BlobStorageAccountName,
		cfg.BlobStorageAccountKey,
		cfg.BlobContainer,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create document store: %w", err)
	}

	// For testing, you can use the in-memory store:
	// store := storage.NewMemoryStore()

	return store, nil
}

// ExampleQueueUsage demonstrates how to create a combine job queue.
func ExampleQueueUsage(cfg *config.Config, logger logging.Logger) (jobs.Queue, error) {
	// Create Azure Service Bus backed queue
	queue, err := jobs.NewAzureQueue(
		cfg.ServiceBusNamespace,
		cfg.ServiceBusKeyName,
		cfg.ServiceBusKeyValue,
		cfg.ServiceBusQueue,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create job queue: %w", err)
	}

	// For testing, you can use the in-memory queue:
	// queue := jobs.NewMemoryQueue()

	return queue, nil
}

// ExampleEnqueueCombine demonstrates queueing a combine job for the
// background worker.
func ExampleEnqueueCombine(ctx context.Context, queue jobs.Queue) error {
	job := jobs.CombineJob{
		Documents: []jobs.DocumentRequest{
			{Source: "uploads/cover.pdf"},
			{Source: "uploads/body.pdf", Pages: "2-10", Orientation: "portrait"},
		},
		Metadata: map[string]string{"title": "Quarterly Pack"},
		Output:   jobs.OutputSpec{Name: "quarterly-pack.pdf"},
	}

	_, err := queue.Enqueue(ctx, job, jobs.WithProperty("origin", "example"))
	if err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	return nil
}

// ExampleStageAndCombine demonstrates combining documents that live in
// the store: stage them to local disk, merge, upload the result.
func ExampleStageAndCombine(ctx context.Context, store storage.Store, workDir string) error {
	// Stage sources from the store
	paths, cleanup, err := storage.Stage(ctx, store, utils.DefaultRetryConfig(), workDir,
		[]string{"uploads/cover.pdf", "uploads/body.pdf"})
	if err != nil {
		return fmt.Errorf("failed to stage documents: %w", err)
	}
	defer cleanup()

	// Merge them
	session := combiner.NewSession()
	for _, path := range paths {
		if err := session.AddDocument(path, nil, combiner.OrientationAuto); err != nil {
			return fmt.Errorf("failed to add document: %w", err)
		}
	}
	if err := session.Merge(combiner.MergeOptions{}); err != nil {
		return fmt.Errorf("failed to merge: %w", err)
	}

	data, err := session.Save("", combiner.ModeString)
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}

	// Upload the combined artifact back to the store
	_, err = store.Upload(ctx, "combined/pack.pdf", bytes.NewReader(data), "application/pdf")
	if err != nil {
		return fmt.Errorf("failed to upload result: %w", err)
	}

	return nil
}

// CombinePreviewRequest is the payload for the wrapped handler below.
type CombinePreviewRequest struct {
	Documents []string `json:"documents" validate:"required,min=1"`
	Title     string   `json:"title" validate:"max=255"`
}

// ExampleWrappedHandler demonstrates the Wrap helper: the handler only
// contains business logic and returns errors, the wrapper logs them
// and converts them to HTTP responses.
func ExampleWrappedHandler(router *gin.Engine) {
	router.POST("/preview", httpservice.Wrap("CombinePreview", func(c *gin.Context) error {
		var req CombinePreviewRequest
		if !httpservice.ValidateRequest(c, &req) {
			return nil
		}

		session := combiner.NewSession(combiner.WithInlineWriter(c.Writer))
		for _, source := range req.Documents {
			if err := session.AddDocument(source, nil, combiner.OrientationAuto); err != nil {
				return err
			}
		}
		if err := session.Merge(combiner.MergeOptions{
			Metadata: map[string]string{"title": req.Title},
		}); err != nil {
			return err
		}

		c.Header("Content-Type", "application/pdf")
		_, err := session.Save("preview.pdf", combiner.ModeBrowser)
		return err
	}))
}

// ExampleWireComponents demonstrates how to wire all components together.
func ExampleWireComponents() error {
	// Load configuration
	cfg, err := config.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Create logger
	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logging.Sync(logger)

	// Create document store
	store, err := ExampleStoreUsage(cfg, logger)
	if err != nil {
		return err
	}

	// Create job queue
	queue, err := ExampleQueueUsage(cfg, logger)
	if err != nil {
		return err
	}

	// Create the processor that executes queued combines
	processor := jobs.NewProcessor(jobs.ProcessorConfig{
		Store:        store,
		WorkDir:      cfg.WorkDir,
		OutputPrefix: cfg.OutputPrefix,
		Logger:       logger,
	})

	// Wire the consumer to it...
	_ = queue
	_ = processor

	return nil
}
