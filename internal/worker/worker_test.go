package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentpilot/workflow-api/internal/domain/workflow"
	"contentpilot/workflow-api/internal/infrastructure/queue"
	"contentpilot/workflow-api/internal/worker"
)

type memoryQueue struct {
	mu        sync.Mutex
	jobs      []*queue.Job
	completed []string
	failed    map[string]string
}

func newMemoryQueue(jobs ...*queue.Job) *memoryQueue {
	return &memoryQueue{jobs: jobs, failed: map[string]string{}}
}

func (q *memoryQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memoryQueue) Dequeue(ctx context.Context) (*queue.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *memoryQueue) MarkCompleted(ctx context.Context, publicID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.completed = append(q.completed, publicID)
	return nil
}

func (q *memoryQueue) MarkFailed(ctx context.Context, publicID string, err error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed[publicID] = err.Error()
	return nil
}

func (q *memoryQueue) GetJob(ctx context.Context, publicID string) (*queue.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range q.jobs {
		if job.PublicID == publicID {
			return job, nil
		}
	}
	return nil, nil
}

func (q *memoryQueue) GetQueueDepth(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.jobs)), nil
}

type mockService struct {
	processRequestFunc   func(ctx context.Context, conversationID, request string) (*workflow.Result, error)
	continueFunc         func(ctx context.Context, conversationID, feedback string) (*workflow.Result, error)
	generateIdeasFunc    func(ctx context.Context, conversationID, sourceRef string) (*workflow.Result, error)
	generateFromIdeaFunc func(ctx context.Context, conversationID string, ideaIndex int, templateID string) (*workflow.Result, error)
}

func (m *mockService) ProcessRequest(ctx context.Context, conversationID, request string) (*workflow.Result, error) {
	return m.processRequestFunc(ctx, conversationID, request)
}

func (m *mockService) Continue(ctx context.Context, conversationID, feedback string) (*workflow.Result, error) {
	return m.continueFunc(ctx, conversationID, feedback)
}

func (m *mockService) GenerateIdeas(ctx context.Context, conversationID, sourceRef string) (*workflow.Result, error) {
	return m.generateIdeasFunc(ctx, conversationID, sourceRef)
}

func (m *mockService) GenerateFromIdea(ctx context.Context, conversationID string, ideaIndex int, templateID string) (*workflow.Result, error) {
	return m.generateFromIdeaFunc(ctx, conversationID, ideaIndex, templateID)
}

func (m *mockService) IsComplete(ctx context.Context, conversationID string) (bool, error) {
	return false, nil
}

func (m *mockService) GetState(ctx context.Context, conversationID string) (*workflow.State, error) {
	return &workflow.State{}, nil
}

func runWorkerUntil(t *testing.T, w *worker.Worker, condition func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)
	defer w.Stop()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("worker did not reach the expected state in time")
}

func TestWorker_ExecutesJobByKind(t *testing.T) {
	q := newMemoryQueue(&queue.Job{
		PublicID:       "job_1",
		Kind:           queue.KindGenerateFromIdea,
		ConversationID: "conv_1",
		Payload:        map[string]any{"idea_index": float64(4), "template_id": "tmpl"},
	})

	var gotIndex int
	var gotTemplate string
	service := &mockService{
		generateFromIdeaFunc: func(ctx context.Context, conversationID string, ideaIndex int, templateID string) (*workflow.Result, error) {
			gotIndex = ideaIndex
			gotTemplate = templateID
			return &workflow.Result{ConversationID: conversationID}, nil
		},
	}

	w := worker.NewWorker(1, q, service, time.Minute, zerolog.Nop())
	runWorkerUntil(t, w, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.completed) == 1
	})

	assert.Equal(t, 4, gotIndex)
	assert.Equal(t, "tmpl", gotTemplate)
	assert.Equal(t, []string{"job_1"}, q.completed)
}

func TestWorker_MarksFailedJobs(t *testing.T) {
	q := newMemoryQueue(&queue.Job{
		PublicID:       "job_2",
		Kind:           queue.KindProcessRequest,
		ConversationID: "conv_2",
		Payload:        map[string]any{"request": "write a post"},
	})

	service := &mockService{
		processRequestFunc: func(ctx context.Context, conversationID, request string) (*workflow.Result, error) {
			return nil, errors.New("provider down")
		},
	}

	w := worker.NewWorker(1, q, service, time.Minute, zerolog.Nop())
	runWorkerUntil(t, w, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.failed) == 1
	})

	require.Contains(t, q.failed, "job_2")
	assert.Contains(t, q.failed["job_2"], "provider down")
	assert.Empty(t, q.completed)
}

func TestWorker_RejectsUnknownKind(t *testing.T) {
	q := newMemoryQueue(&queue.Job{PublicID: "job_3", Kind: "reticulate_splines"})
	service := &mockService{}

	w := worker.NewWorker(1, q, service, time.Minute, zerolog.Nop())
	runWorkerUntil(t, w, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return len(q.failed) == 1
	})

	assert.Contains(t, q.failed["job_3"], "unknown job kind")
}
