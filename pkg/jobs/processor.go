package jobs

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yourorg/pdf-combine-kit/pkg/combiner"
	"github.com/yourorg/pdf-combine-kit/pkg/logging"
	"github.com/yourorg/pdf-combine-kit/pkg/pdfutil"
	"github.com/yourorg/pdf-combine-kit/pkg/storage"
	"github.com/yourorg/pdf-combine-kit/pkg/utils"
)

// OutputName is the storage name a job's artifact is uploaded under.
func OutputName(prefix, name string) string {
	return prefix + name
}

// ProcessorConfig wires the pieces a combine job needs at execution
// time.
type ProcessorConfig struct {
	Store storage.Store
	Retry utils.RetryConfig
	// WorkDir is where sources are staged; empty means the system
	// temp directory.
	WorkDir string
	// OutputPrefix is prepended to every job's output name.
	OutputPrefix string
	Logger       logging.Logger
}

// Result describes the artifact a completed job produced.
type Result struct {
	Output string `json:"output"` // storage name of the artifact
	URL    string `json:"url"`
	Pages  int    `json:"pages"`
}

// Processor executes combine jobs: it stages the job's sources from
// the store, merges them, and uploads the combined artifact.
type Processor struct {
	store        storage.Store
	retry        utils.RetryConfig
	workDir      string
	outputPrefix string
	logger       logging.Logger
}

// NewProcessor creates a processor from config, filling in defaults
// for the retry policy and logger.
func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = utils.DefaultRetryConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	return &Processor{
		store:        cfg.Store,
		retry:        cfg.Retry,
		workDir:      cfg.WorkDir,
		outputPrefix: cfg.OutputPrefix,
		logger:       cfg.Logger,
	}
}

// Process runs one job to completion. The staging directory is
// removed before return, success or not.
func (p *Processor) Process(ctx context.Context, job CombineJob) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	logger := p.logger.With(
		logging.NewField("jobID", job.ID),
		logging.NewField("documents", len(job.Documents)),
	)
	logger.Info("Processing combine job")

	names := make([]string, 0, len(job.Documents))
	for _, doc := range job.Documents {
		names = append(names, doc.Source)
	}

	paths, cleanup, err := storage.Stage(ctx, p.store, p.retry, p.workDir, names)
	if err != nil {
		return nil, fmt.Errorf("jobs: staging sources for %s: %w", job.ID, err)
	}
	defer cleanup()

	session := combiner.NewSession(combiner.WithLogger(logger))
	for i, doc := range job.Documents {
		orient, err := pdfutil.ParseOrientation(doc.Orientation)
		if err != nil {
			return nil, fmt.Errorf("jobs: document %d: %w", i+1, err)
		}
		if doc.Pages == "" {
			err = session.AddDocument(paths[i], nil, orient)
		} else {
			err = session.AddDocumentRange(paths[i], doc.Pages, orient)
		}
		if err != nil {
			return nil, err
		}
	}

	orient, err := pdfutil.ParseOrientation(job.Orientation)
	if err != nil {
		return nil, err
	}
	if err := session.Merge(combiner.MergeOptions{
		Orientation: orient,
		Metadata:    job.Metadata,
		Duplex:      job.Duplex,
	}); err != nil {
		return nil, err
	}

	data, err := session.Save("", combiner.ModeString)
	if err != nil {
		return nil, err
	}

	name := OutputName(p.outputPrefix, job.Output.Name)
	url, err := p.store.Upload(ctx, name, bytes.NewReader(data), "application/pdf")
	if err != nil {
		return nil, fmt.Errorf("jobs: uploading %s: %w", name, err)
	}

	result := &Result{Output: name, URL: url, Pages: session.PageCount()}
	logger.Info("Combine job completed",
		logging.NewField("output", result.Output),
		logging.NewField("url", result.URL),
		logging.NewField("pages", result.Pages),
	)
	return result, nil
}
