package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/choreboardhq/choreboard-api/internal/models"
)

// Migrate applies the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Member{},
		&models.Chore{},
		&models.EvaluationRule{},
		&models.Proof{},
		&models.FeedbackSignal{},
		&models.RewardEntry{},
		&models.ActivityLog{},
		&models.Message{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}
