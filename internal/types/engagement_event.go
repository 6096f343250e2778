package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EngagementEvent is the append-only activity log feeding the momentum
// window and the learning-pattern analyzer.
type EngagementEvent struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_engagement_event_user_time,priority:1" json:"user_id"`
	Type       string         `gorm:"column:type;not null;index" json:"type"`
	Data       datatypes.JSON `gorm:"column:data;type:jsonb" json:"data,omitempty"`
	OccurredAt time.Time      `gorm:"column:occurred_at;not null;index:idx_engagement_event_user_time,priority:2" json:"occurred_at"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (EngagementEvent) TableName() string { return "engagement_event" }
