package jobs

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryMessage struct {
	id         string
	body       []byte
	properties map[string]interface{}
	attempts   int
	enqueuedAt time.Time
}

// MemoryQueue is an in-process Queue for local development and tests.
// Jobs round-trip through JSON the same way the Azure transport
// carries them. Abandoned deliveries go back on the queue.
type MemoryQueue struct {
	mu       sync.Mutex
	pending  []memoryMessage
	inflight map[string]memoryMessage
	wake     chan struct{}
}

// NewMemoryQueue creates an empty in-process queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		inflight: make(map[string]memoryMessage),
		wake:     make(chan struct{}, 1),
	}
}

// Enqueue publishes a job to the in-process queue.
func (m *MemoryQueue) Enqueue(ctx context.Context, job CombineJob, opts ...EnqueueOption) (string, error) {
	options := applyEnqueueOptions(opts)

	body, err := marshalJob(&job)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.pending = append(m.pending, memoryMessage{
		id:         job.ID,
		body:       body,
		properties: options.properties,
		enqueuedAt: time.Now(),
	})
	m.mu.Unlock()
	m.signal()

	return job.ID, nil
}

// Receive blocks until at least one job is available or ctx expires.
// An expired ctx with nothing pending returns an empty batch, not an
// error, mirroring the Azure receive timeout.
func (m *MemoryQueue) Receive(ctx context.Context, max int) ([]Delivery, error) {
	if max <= 0 {
		max = 1
	}

	for {
		m.mu.Lock()
		if len(m.pending) > 0 {
			n := max
			if n > len(m.pending) {
				n = len(m.pending)
			}
			batch := m.pending[:n]
			m.pending = m.pending[n:]

			deliveries := make([]Delivery, 0, n)
			for _, msg := range batch {
				msg.attempts++
				m.inflight[msg.id] = msg

				var job CombineJob
				if err := json.Unmarshal(msg.body, &job); err != nil {
					delete(m.inflight, msg.id)
					continue
				}

				id := msg.id
				deliveries = append(deliveries, Delivery{
					ID:         id,
					Job:        job,
					Attempts:   msg.attempts,
					EnqueuedAt: msg.enqueuedAt,
					Properties: msg.properties,
					complete: func(context.Context) error {
						m.mu.Lock()
						delete(m.inflight, id)
						m.mu.Unlock()
						return nil
					},
					abandon: func(context.Context) error {
						m.requeue(id)
						return nil
					},
				})
			}
			m.mu.Unlock()
			return deliveries, nil
		}
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, nil
		case <-m.wake:
		}
	}
}

// Close implements Queue. The in-process queue holds no transport
// resources.
func (m *MemoryQueue) Close(ctx context.Context) error {
	return nil
}

// Depth reports how many jobs are waiting, not counting in-flight
// deliveries.
func (m *MemoryQueue) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

func (m *MemoryQueue) requeue(id string) {
	m.mu.Lock()
	msg, ok := m.inflight[id]
	if ok {
		delete(m.inflight, id)
		m.pending = append(m.pending, msg)
	}
	m.mu.Unlock()
	if ok {
		m.signal()
	}
}

func (m *MemoryQueue) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}
