package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RewardEvent is an append-only engagement payload (confetti, achievement,
// milestone). Engaged is the only field that may change after creation.
type RewardEvent struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID      `gorm:"type:uuid;not null;index:idx_reward_event_user_created,priority:1" json:"user_id"`
	Type              string         `gorm:"column:type;not null;index" json:"type"`
	Content           datatypes.JSON `gorm:"column:content;type:jsonb" json:"content,omitempty"`
	Trigger           string         `gorm:"column:trigger;not null" json:"trigger"`
	Engaged           bool           `gorm:"column:engaged;not null;default:false" json:"engaged"`
	EngagementSeconds *float64       `gorm:"column:engagement_seconds" json:"engagement_seconds,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;index:idx_reward_event_user_created,priority:2" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (RewardEvent) TableName() string { return "reward_event" }
