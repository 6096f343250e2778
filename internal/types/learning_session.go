package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LearningSession walks WARMUP -> FOCUS -> CHECKPOINT -> REWARD -> PRIME_NEXT,
// with PRIME_NEXT optionally looping back to WARMUP for the next subtopic.
// Sessions are closed logically (CompletedAt/Abandoned), never deleted.
type LearningSession struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"session_id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	RoadmapID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"roadmap_id"`
	State           string         `gorm:"column:state;not null" json:"state"`
	TimeBucket      string         `gorm:"column:time_bucket;not null" json:"time_bucket"`
	StartTime       time.Time      `gorm:"column:start_time;not null" json:"start_time"`
	DurationMinutes int            `gorm:"column:duration_minutes;not null;default:0" json:"duration_minutes"`
	SubtopicIndex   int            `gorm:"column:subtopic_index;not null;default:0" json:"subtopic_index"`
	WarmupDone      bool           `gorm:"column:warmup_done;not null;default:false" json:"warmup_done"`
	FocusDone       bool           `gorm:"column:focus_done;not null;default:false" json:"focus_done"`
	CheckpointDone  bool           `gorm:"column:checkpoint_done;not null;default:false" json:"checkpoint_done"`
	RewardDone      bool           `gorm:"column:reward_done;not null;default:false" json:"reward_done"`
	SessionData     datatypes.JSON `gorm:"column:session_data;type:jsonb" json:"session_data,omitempty"`
	LastActivityAt  time.Time      `gorm:"column:last_activity_at;not null;index" json:"last_activity_at"`
	CompletedAt     *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Abandoned       bool           `gorm:"column:abandoned;not null;default:false" json:"abandoned"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearningSession) TableName() string { return "learning_session" }
