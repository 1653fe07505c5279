package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Queue carries combine jobs for one named queue.
type Queue interface {
	// Enqueue publishes a job and returns its ID. A job without an ID
	// is assigned one.
	Enqueue(ctx context.Context, job CombineJob, opts ...EnqueueOption) (string, error)

	// Receive waits for up to max jobs. It returns early with what it
	// has when ctx expires; an expired ctx with nothing received is
	// not an error.
	Receive(ctx context.Context, max int) ([]Delivery, error)

	// Close releases the queue's transport resources.
	Close(ctx context.Context) error
}

// Delivery is one received job together with its settlement handle.
// Exactly one of Complete or Abandon should be called per delivery.
type Delivery struct {
	ID         string
	Job        CombineJob
	Attempts   int
	EnqueuedAt time.Time
	Properties map[string]interface{}

	complete func(ctx context.Context) error
	abandon  func(ctx context.Context) error
}

// Complete removes the job from the queue for good.
func (d *Delivery) Complete(ctx context.Context) error {
	if d.complete == nil {
		return nil
	}
	return d.complete(ctx)
}

// Abandon releases the job so it is delivered again.
func (d *Delivery) Abandon(ctx context.Context) error {
	if d.abandon == nil {
		return nil
	}
	return d.abandon(ctx)
}

// EnqueueOption represents optional parameters for Enqueue.
type EnqueueOption func(*enqueueOptions)

type enqueueOptions struct {
	properties map[string]interface{}
}

// WithProperty attaches a custom property to the queued message.
func WithProperty(key string, value interface{}) EnqueueOption {
	return func(opts *enqueueOptions) {
		if opts.properties == nil {
			opts.properties = make(map[string]interface{})
		}
		opts.properties[key] = value
	}
}

func applyEnqueueOptions(opts []EnqueueOption) *enqueueOptions {
	options := &enqueueOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// marshalJob assigns a missing ID, validates, and encodes a job for
// the wire. It mutates job so the caller sees the assigned ID.
func marshalJob(job *CombineJob) ([]byte, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("jobs: encoding job %s: %w", job.ID, err)
	}
	return body, nil
}
