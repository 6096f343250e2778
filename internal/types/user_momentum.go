package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserMomentum stores the raw momentum score at its last update; readers
// apply lazy decay, so no background job has to touch this row.
type UserMomentum struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_momentum_user" json:"user_id"`
	Score          float64        `gorm:"column:score;not null;default:0" json:"score"`
	RecentAttempts int            `gorm:"column:recent_attempts;not null;default:0" json:"recent_attempts"`
	RecentCorrect  int            `gorm:"column:recent_correct;not null;default:0" json:"recent_correct"`
	LastUpdateAt   time.Time      `gorm:"column:last_update_at;not null" json:"last_update_at"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserMomentum) TableName() string { return "user_momentum" }
