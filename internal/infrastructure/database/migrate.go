package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"contentpilot/workflow-api/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for the workflow domain.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Conversation{},
		&entities.Message{},
		&entities.SystemPrompt{},
		&entities.ContentTemplate{},
		&entities.WorkflowJob{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
