// Package profilestore persists the per-user profile document.
package profilestore

import (
	"context"
	"errors"

	"bloom/internal/models"
)

// ErrNotFound is returned by Get when no document exists for the user.
var ErrNotFound = errors.New("profile not found")

// Slot names accepted by Update. They match the UserProfile json tags.
const (
	SlotDisplayName       = "display_name"
	SlotCompanionName     = "companion_name"
	SlotTasks             = "tasks"
	SlotGoals             = "goals"
	SlotHealthMetrics     = "health_metrics"
	SlotCycleInfo         = "cycle_info"
	SlotSymptoms          = "symptoms"
	SlotDiaryEntries      = "diary_entries"
	SlotPartnerReflection = "partner_reflection"
	SlotChatHistory       = "chat_history"
)

// Store is the durable side of the synchronizer. Update takes only the
// changed slots; unknown slot names are an error before any write happens.
type Store interface {
	Get(ctx context.Context, userID string) (*models.UserProfile, error)
	Create(ctx context.Context, userID string, profile *models.UserProfile) error
	Update(ctx context.Context, userID string, fields map[string]any) error
}
