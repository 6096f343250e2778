package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserStreak struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_streak_user" json:"user_id"`
	CurrentStreak      int            `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
	LongestStreak      int            `gorm:"column:longest_streak;not null;default:0" json:"longest_streak"`
	GraceDaysRemaining int            `gorm:"column:grace_days_remaining;not null;default:0" json:"grace_days_remaining"`
	QualifyingDays     int            `gorm:"column:qualifying_days;not null;default:0" json:"qualifying_days"`
	LastQualifyingDay  *time.Time     `gorm:"column:last_qualifying_day" json:"last_qualifying_day,omitempty"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserStreak) TableName() string { return "user_streak" }
