package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NudgeState tracks the adaptive intensity of one nudge category for one
// user. Intensity lives in [floor, 1]; interactions move it.
type NudgeState struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_nudge_state,unique,priority:1" json:"user_id"`
	NudgeType       string         `gorm:"column:nudge_type;not null;index:idx_nudge_state,unique,priority:2" json:"nudge_type"`
	Intensity       float64        `gorm:"column:intensity;not null;default:0.5" json:"intensity"`
	LastShownAt     *time.Time     `gorm:"column:last_shown_at" json:"last_shown_at,omitempty"`
	LastInteraction string         `gorm:"column:last_interaction" json:"last_interaction,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (NudgeState) TableName() string { return "nudge_state" }
