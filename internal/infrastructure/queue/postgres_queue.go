package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"contentpilot/workflow-api/internal/infrastructure/database/entities"
)

// PostgresQueue implements JobQueue on the workflow_jobs table.
type PostgresQueue struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewPostgresQueue creates a PostgreSQL-backed job queue.
func NewPostgresQueue(db *gorm.DB, log zerolog.Logger) *PostgresQueue {
	return &PostgresQueue{
		db:  db,
		log: log.With().Str("component", "postgres_queue").Logger(),
	}
}

var _ JobQueue = (*PostgresQueue)(nil)

// Enqueue inserts a queued job.
func (q *PostgresQueue) Enqueue(ctx context.Context, job *Job) error {
	if job.PublicID == "" {
		job.PublicID = "job_" + uuid.NewString()
	}
	if job.QueuedAt.IsZero() {
		job.QueuedAt = time.Now().UTC()
	}

	entity := entities.WorkflowJob{
		PublicID:       job.PublicID,
		Kind:           job.Kind,
		ConversationID: job.ConversationID,
		Payload:        datatypes.JSONMap(job.Payload),
		Status:         StatusQueued,
		QueuedAt:       job.QueuedAt,
	}
	if err := q.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

// Dequeue claims the oldest queued job with FOR UPDATE SKIP LOCKED and marks
// it in progress in the same transaction, so concurrent workers never claim
// the same job twice.
func (q *PostgresQueue) Dequeue(ctx context.Context) (*Job, error) {
	var entity entities.WorkflowJob

	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Raw("SELECT * FROM workflow_jobs WHERE status = ? ORDER BY queued_at ASC LIMIT 1 FOR UPDATE SKIP LOCKED", StatusQueued).
			Scan(&entity).Error; err != nil {
			return err
		}
		if entity.ID == 0 {
			return nil
		}

		now := time.Now().UTC()
		return tx.Model(&entities.WorkflowJob{}).
			Where("id = ?", entity.ID).
			Updates(map[string]any{
				"status":     StatusInProgress,
				"started_at": now,
				"updated_at": now,
			}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeue job: %w", err)
	}
	if entity.ID == 0 {
		return nil, nil
	}

	return jobFromEntity(&entity), nil
}

// GetJob looks up a job by public id.
func (q *PostgresQueue) GetJob(ctx context.Context, publicID string) (*Job, error) {
	var entity entities.WorkflowJob
	err := q.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return jobFromEntity(&entity), nil
}

func jobFromEntity(entity *entities.WorkflowJob) *Job {
	return &Job{
		PublicID:       entity.PublicID,
		Kind:           entity.Kind,
		ConversationID: entity.ConversationID,
		Payload:        map[string]any(entity.Payload),
		Status:         entity.Status,
		Error:          entity.Error,
		QueuedAt:       entity.QueuedAt,
		StartedAt:      entity.StartedAt,
		CompletedAt:    entity.CompletedAt,
	}
}

// MarkCompleted records successful execution.
func (q *PostgresQueue) MarkCompleted(ctx context.Context, publicID string) error {
	now := time.Now().UTC()
	result := q.db.WithContext(ctx).
		Model(&entities.WorkflowJob{}).
		Where("public_id = ?", publicID).
		Updates(map[string]any{
			"status":       StatusCompleted,
			"completed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("mark completed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job not found: %s", publicID)
	}
	return nil
}

// MarkFailed records a failed execution.
func (q *PostgresQueue) MarkFailed(ctx context.Context, publicID string, jobErr error) error {
	now := time.Now().UTC()
	result := q.db.WithContext(ctx).
		Model(&entities.WorkflowJob{}).
		Where("public_id = ?", publicID).
		Updates(map[string]any{
			"status":       StatusFailed,
			"error":        jobErr.Error(),
			"completed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("mark failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job not found: %s", publicID)
	}
	return nil
}

// GetQueueDepth returns the number of queued jobs.
func (q *PostgresQueue) GetQueueDepth(ctx context.Context) (int64, error) {
	var count int64
	if err := q.db.WithContext(ctx).
		Model(&entities.WorkflowJob{}).
		Where("status = ?", StatusQueued).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("get queue depth: %w", err)
	}
	return count, nil
}
