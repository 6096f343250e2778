package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConceptMastery is one (user, concept) ELO rating row, created lazily on
// the first graded attempt for the concept.
type ConceptMastery struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index:idx_concept_mastery,unique,priority:1" json:"user_id"`
	ConceptTag    string         `gorm:"column:concept_tag;not null;index:idx_concept_mastery,unique,priority:2" json:"concept_tag"`
	Rating        float64        `gorm:"column:rating;not null;default:1200" json:"rating"`
	Attempts      int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	LastAttemptAt *time.Time     `gorm:"column:last_attempt_at;index" json:"last_attempt_at,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ConceptMastery) TableName() string { return "concept_mastery" }
