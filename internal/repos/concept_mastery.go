package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/types"
)

type ConceptMasteryRepo interface {
	GetByUserAndTag(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tag string) (*types.ConceptMastery, error)
	GetByUserAndTags(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tags []string) ([]*types.ConceptMastery, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ConceptMastery, error)
	Upsert(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tag string, rating float64, attempts int, lastAttempt time.Time) error
}

type conceptMasteryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptMasteryRepo(db *gorm.DB, baseLog *logger.Logger) ConceptMasteryRepo {
	return &conceptMasteryRepo{
		db:  db,
		log: baseLog.With("repo", "ConceptMasteryRepo"),
	}
}

func (r *conceptMasteryRepo) GetByUserAndTag(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tag string) (*types.ConceptMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || tag == "" {
		return nil, nil
	}
	var row types.ConceptMastery
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND concept_tag = ?", userID, tag).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *conceptMasteryRepo) GetByUserAndTags(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tags []string) ([]*types.ConceptMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || len(tags) == 0 {
		return nil, nil
	}
	var rows []*types.ConceptMastery
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND concept_tag IN ?", userID, tags).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *conceptMasteryRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ConceptMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var rows []*types.ConceptMastery
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("concept_tag asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert overwrites rating/attempts/last_attempt_at on conflict, creating the
// row lazily on the first graded attempt.
func (r *conceptMasteryRepo) Upsert(ctx context.Context, tx *gorm.DB, userID uuid.UUID, tag string, rating float64, attempts int, lastAttempt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || tag == "" {
		return nil
	}
	now := time.Now().UTC()
	row := &types.ConceptMastery{
		ID:            uuid.New(),
		UserID:        userID,
		ConceptTag:    tag,
		Rating:        rating,
		Attempts:      attempts,
		LastAttemptAt: &lastAttempt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "concept_tag"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"rating", "attempts", "last_attempt_at", "updated_at",
			}),
		}).
		Create(row).Error
}
