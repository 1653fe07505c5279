package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"github.com/yourorg/pdf-combine-kit/pkg/logging"
)

// AzureQueue implements Queue on one Azure Service Bus queue.
type AzureQueue struct {
	client   *azservicebus.Client
	sender   *azservicebus.Sender
	receiver *azservicebus.Receiver
	queue    string
	logger   logging.Logger
}

// NewAzureQueue connects to a Service Bus namespace and binds the
// named queue. With an empty keyName or keyValue it authenticates
// through the default Azure credential chain (managed identity, env,
// CLI); otherwise it uses the shared access key.
func NewAzureQueue(namespace, keyName, keyValue, queue string, logger logging.Logger) (*AzureQueue, error) {
	var client *azservicebus.Client
	var err error

	if keyName == "" || keyValue == "" {
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create Azure credential: %w", credErr)
		}
		namespaceURL := fmt.Sprintf("%s.servicebus.windows.net", namespace)
		client, err = azservicebus.NewClient(namespaceURL, cred, nil)
	} else {
		connStr := fmt.Sprintf("Endpoint=sb://%s.servicebus.windows.net/;SharedAccessKeyName=%s;SharedAccessKey=%s",
			namespace, keyName, keyValue)
		client, err = azservicebus.NewClientFromConnectionString(connStr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus client: %w", err)
	}

	sender, err := client.NewSender(queue, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create sender for %s: %w", queue, err)
	}
	receiver, err := client.NewReceiverForQueue(queue, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create receiver for %s: %w", queue, err)
	}

	return &AzureQueue{
		client:   client,
		sender:   sender,
		receiver: receiver,
		queue:    queue,
		logger:   logger,
	}, nil
}

// Enqueue publishes a job as a JSON message whose message ID is the
// job ID.
func (q *AzureQueue) Enqueue(ctx context.Context, job CombineJob, opts ...EnqueueOption) (string, error) {
	options := applyEnqueueOptions(opts)

	body, err := marshalJob(&job)
	if err != nil {
		return "", err
	}

	contentType := "application/json"
	msg := &azservicebus.Message{
		Body:        body,
		MessageID:   &job.ID,
		ContentType: &contentType,
	}
	if len(options.properties) > 0 {
		msg.ApplicationProperties = options.properties
	}

	if err := q.sender.SendMessage(ctx, msg, nil); err != nil {
		q.logger.Error("Failed to enqueue combine job",
			logging.NewField("queue", q.queue),
			logging.NewField("jobID", job.ID),
			logging.NewField("error", err),
		)
		return "", fmt.Errorf("jobs: enqueuing to %s: %w", q.queue, err)
	}

	q.logger.Info("Combine job enqueued",
		logging.NewField("queue", q.queue),
		logging.NewField("jobID", job.ID),
		logging.NewField("documents", len(job.Documents)),
	)
	return job.ID, nil
}

// Receive pulls up to max messages and decodes them into deliveries
// whose Complete and Abandon settle through the live receiver. A
// message whose body does not decode as a job is dead-lettered.
func (q *AzureQueue) Receive(ctx context.Context, max int) ([]Delivery, error) {
	if max <= 0 {
		max = 1
	}

	received, err := q.receiver.ReceiveMessages(ctx, max, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, nil
		}
		return nil, fmt.Errorf("jobs: receiving from %s: %w", q.queue, err)
	}

	deliveries := make([]Delivery, 0, len(received))
	for _, sbMsg := range received {
		var job CombineJob
		if err := json.Unmarshal(sbMsg.Body, &job); err != nil {
			q.logger.Error("Dead-lettering malformed job payload",
				logging.NewField("messageID", sbMsg.MessageID),
				logging.NewField("error", err),
			)
			reason := "malformed job payload"
			if dlErr := q.receiver.DeadLetterMessage(ctx, sbMsg, &azservicebus.DeadLetterOptions{Reason: &reason}); dlErr != nil {
				q.logger.Error("Failed to dead-letter message", logging.NewField("error", dlErr))
			}
			continue
		}

		var enqueuedAt time.Time
		if sbMsg.EnqueuedTime != nil {
			enqueuedAt = *sbMsg.EnqueuedTime
		}

		deliveries = append(deliveries, Delivery{
			ID:         sbMsg.MessageID,
			Job:        job,
			Attempts:   int(sbMsg.DeliveryCount),
			EnqueuedAt: enqueuedAt,
			Properties: sbMsg.ApplicationProperties,
			complete: func(ctx context.Context) error {
				return q.receiver.CompleteMessage(ctx, sbMsg, nil)
			},
			abandon: func(ctx context.Context) error {
				return q.receiver.AbandonMessage(ctx, sbMsg, nil)
			},
		})
	}
	return deliveries, nil
}

// Close shuts down the sender and receiver links.
func (q *AzureQueue) Close(ctx context.Context) error {
	var errs []error
	if err := q.sender.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := q.receiver.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
