// Package worker runs queued workflow operations in the background.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"contentpilot/workflow-api/internal/domain/workflow"
	"contentpilot/workflow-api/internal/infrastructure/metrics"
	"contentpilot/workflow-api/internal/infrastructure/queue"
)

// pollInterval is how often an idle worker checks the queue.
const pollInterval = 2 * time.Second

// Worker polls the job queue and executes coordinator operations.
type Worker struct {
	id         int
	queue      queue.JobQueue
	service    workflow.Service
	jobTimeout time.Duration
	log        zerolog.Logger
	stopChan   chan struct{}
}

// NewWorker creates a background worker.
func NewWorker(id int, jobQueue queue.JobQueue, service workflow.Service, jobTimeout time.Duration, log zerolog.Logger) *Worker {
	return &Worker{
		id:         id,
		queue:      jobQueue,
		service:    service,
		jobTimeout: jobTimeout,
		log:        log.With().Int("worker_id", id).Str("component", "worker").Logger(),
		stopChan:   make(chan struct{}),
	}
}

// Start begins polling for jobs until the context or Stop ends it.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Msg("worker started")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker stopped by context")
			return
		case <-w.stopChan:
			w.log.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			w.processNextJob(ctx)
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
}

func (w *Worker) processNextJob(ctx context.Context) {
	job, err := w.queue.Dequeue(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to dequeue job")
		return
	}
	if job == nil {
		return
	}

	log := w.log.With().Str("job_id", job.PublicID).Str("kind", job.Kind).
		Str("conversation_id", job.ConversationID).Logger()
	log.Info().Msg("processing workflow job")

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	if err := w.execute(jobCtx, job); err != nil {
		log.Error().Err(err).Msg("job execution failed")
		metrics.RecordBackgroundJob(job.Kind, "failed")
		if markErr := w.queue.MarkFailed(ctx, job.PublicID, err); markErr != nil {
			log.Error().Err(markErr).Msg("failed to mark job as failed")
		}
		return
	}

	if err := w.queue.MarkCompleted(ctx, job.PublicID); err != nil {
		log.Error().Err(err).Msg("failed to mark job as completed")
		return
	}
	metrics.RecordBackgroundJob(job.Kind, "completed")
	log.Info().Msg("job completed")
}

func (w *Worker) execute(ctx context.Context, job *queue.Job) error {
	switch job.Kind {
	case queue.KindProcessRequest:
		_, err := w.service.ProcessRequest(ctx, job.ConversationID, payloadString(job, "request"))
		return err
	case queue.KindContinue:
		_, err := w.service.Continue(ctx, job.ConversationID, payloadString(job, "feedback"))
		return err
	case queue.KindGenerateIdeas:
		_, err := w.service.GenerateIdeas(ctx, job.ConversationID, payloadString(job, "source"))
		return err
	case queue.KindGenerateFromIdea:
		index, err := payloadInt(job, "idea_index")
		if err != nil {
			return err
		}
		_, err = w.service.GenerateFromIdea(ctx, job.ConversationID, index, payloadString(job, "template_id"))
		return err
	default:
		return fmt.Errorf("unknown job kind: %s", job.Kind)
	}
}

func payloadString(job *queue.Job, key string) string {
	if job.Payload == nil {
		return ""
	}
	s, _ := job.Payload[key].(string)
	return s
}

// payloadInt reads an integer payload field. JSONB round-trips numbers as
// float64 or json.Number depending on the decoder.
func payloadInt(job *queue.Job, key string) (int, error) {
	if job.Payload == nil {
		return 0, fmt.Errorf("missing payload field %q", key)
	}
	switch v := job.Payload[key].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case json.Number:
		n, err := v.Int64()
		return int(n), err
	default:
		return 0, fmt.Errorf("missing payload field %q", key)
	}
}
