package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuickChallenge is a short graded item served during WARMUP and CHECKPOINT
// phases. Options hold {id, text} pairs; AnswerID names the correct option.
type QuickChallenge struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SubtopicID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"subtopic_id"`
	ConceptTag  string         `gorm:"column:concept_tag;not null;index" json:"concept_tag"`
	Phase       string         `gorm:"column:phase;not null;default:WARMUP" json:"phase"`
	Prompt      string         `gorm:"column:prompt;not null" json:"prompt"`
	Options     datatypes.JSON `gorm:"column:options;type:jsonb" json:"options"`
	AnswerID    string         `gorm:"column:answer_id;not null" json:"-"`
	Explanation string         `gorm:"column:explanation" json:"-"`
	Difficulty  float64        `gorm:"column:difficulty;not null;default:1200" json:"difficulty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (QuickChallenge) TableName() string { return "quick_challenge" }

// ChallengeAttempt records one user answer to a QuickChallenge.
type ChallengeAttempt struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengeID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"challenge_id"`
	UserID              uuid.UUID      `gorm:"type:uuid;not null;index:idx_challenge_attempt_user_created,priority:1" json:"user_id"`
	UserAnswer          string         `gorm:"column:user_answer;not null" json:"user_answer"`
	ResponseTimeSeconds float64        `gorm:"column:response_time_seconds;not null;default:0" json:"response_time_seconds"`
	ConfidenceLevel     *float64       `gorm:"column:confidence_level" json:"confidence_level,omitempty"`
	Correct             bool           `gorm:"column:correct;not null;default:false" json:"correct"`
	XPEarned            int            `gorm:"column:xp_earned;not null;default:0" json:"xp_earned"`
	MomentumBonus       bool           `gorm:"column:momentum_bonus;not null;default:false" json:"momentum_bonus"`
	CreatedAt           time.Time      `gorm:"not null;index:idx_challenge_attempt_user_created,priority:2" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChallengeAttempt) TableName() string { return "challenge_attempt" }
