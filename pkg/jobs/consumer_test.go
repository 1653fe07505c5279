package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumer_ProcessesJobs(t *testing.T) {
	queue := NewMemoryQueue()
	ctx := context.Background()

	var mu sync.Mutex
	processed := make(map[string]bool)
	handler := func(ctx context.Context, job CombineJob) error {
		mu.Lock()
		processed[job.ID] = true
		mu.Unlock()
		return nil
	}

	consumer := NewConsumer(queue, ConsumerConfig{
		MaxConcurrent:  2,
		ReceiveTimeout: 50 * time.Millisecond,
	}, handler)
	require.NoError(t, consumer.Start(ctx))
	defer consumer.Stop(ctx)

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		id, err := queue.Enqueue(ctx, testJob("pack.pdf"))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(processed) == 3
	}, 2*time.Second, 10*time.Millisecond, "expected all jobs to be processed")

	mu.Lock()
	defer mu.Unlock()
	for _, id := range ids {
		assert.True(t, processed[id], "job %s was not processed", id)
	}
}

func TestConsumer_RetriesFailedJob(t *testing.T) {
	queue := NewMemoryQueue()
	ctx := context.Background()

	var mu sync.Mutex
	attempts := 0
	handler := func(ctx context.Context, job CombineJob) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return errors.New("transient failure")
		}
		return nil
	}

	consumer := NewConsumer(queue, ConsumerConfig{
		ReceiveTimeout: 50 * time.Millisecond,
	}, handler)
	require.NoError(t, consumer.Start(ctx))
	defer consumer.Stop(ctx)

	_, err := queue.Enqueue(ctx, testJob("pack.pdf"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts >= 2
	}, 2*time.Second, 10*time.Millisecond, "expected the job to be redelivered after a failure")

	assert.Equal(t, 0, queue.Depth())
}

func TestConsumer_StopDrains(t *testing.T) {
	queue := NewMemoryQueue()
	consumer := NewConsumer(queue, ConsumerConfig{
		MaxConcurrent:  2,
		ReceiveTimeout: 20 * time.Millisecond,
	}, func(ctx context.Context, job CombineJob) error { return nil })

	require.NoError(t, consumer.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, consumer.Stop(stopCtx))
}
