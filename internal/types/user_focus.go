package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserFocus tracks the per-user focus-mode toggle and accumulated focus time.
type UserFocus struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_focus_user" json:"user_id"`
	Enabled              bool           `gorm:"column:enabled;not null;default:false" json:"focus_mode_enabled"`
	SessionLengthMinutes int            `gorm:"column:session_length_minutes;not null;default:25" json:"session_length"`
	TotalFocusMinutes    int            `gorm:"column:total_focus_minutes;not null;default:0" json:"total_focus_time"`
	EnabledAt            *time.Time     `gorm:"column:enabled_at" json:"enabled_at,omitempty"`
	CreatedAt            time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserFocus) TableName() string { return "user_focus" }
