package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProgression is the per-user XP accumulator. Levels are derived, never
// stored, so the formula stays the single source of truth.
type UserProgression struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_progression_user" json:"user_id"`
	TotalXP   int            `gorm:"column:total_xp;not null;default:0" json:"total_xp"`
	Version   int            `gorm:"column:version;not null;default:0" json:"-"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserProgression) TableName() string { return "user_progression" }
