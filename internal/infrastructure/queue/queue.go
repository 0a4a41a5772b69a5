// Package queue provides the background job queue for workflow operations.
package queue

import (
	"context"
	"time"
)

// Job kinds, one per coordinator operation that can run in the background.
const (
	KindProcessRequest   = "process_request"
	KindGenerateIdeas    = "generate_ideas"
	KindGenerateFromIdea = "generate_from_idea"
	KindContinue         = "continue"
)

// Job statuses.
const (
	StatusQueued     = "queued"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Job is one queued workflow operation. Delivery is at-least-once; duplicate
// message appends from a re-run are tolerated.
type Job struct {
	PublicID       string
	Kind           string
	ConversationID string
	Payload        map[string]any
	Status         string
	Error          string
	QueuedAt       time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// JobQueue defines the queue contract.
type JobQueue interface {
	// Enqueue adds a job to the queue.
	Enqueue(ctx context.Context, job *Job) error

	// Dequeue claims the next queued job using FOR UPDATE SKIP LOCKED and
	// marks it in progress. Returns (nil, nil) when the queue is empty.
	Dequeue(ctx context.Context) (*Job, error)

	// MarkCompleted records successful execution.
	MarkCompleted(ctx context.Context, publicID string) error

	// MarkFailed records a failed execution with its error.
	MarkFailed(ctx context.Context, publicID string, err error) error

	// GetJob returns a job by its public id, or (nil, nil) when absent.
	GetJob(ctx context.Context, publicID string) (*Job, error)

	// GetQueueDepth returns the number of queued jobs.
	GetQueueDepth(ctx context.Context) (int64, error)
}
