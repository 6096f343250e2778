package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/types"
)

type QuickChallengeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.QuickChallenge) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuickChallenge, error)
	GetBySubtopicAndPhase(ctx context.Context, tx *gorm.DB, subtopicID uuid.UUID, phase string) ([]*types.QuickChallenge, error)
}

type quickChallengeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuickChallengeRepo(db *gorm.DB, baseLog *logger.Logger) QuickChallengeRepo {
	return &quickChallengeRepo{
		db:  db,
		log: baseLog.With("repo", "QuickChallengeRepo"),
	}
}

func (r *quickChallengeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.QuickChallenge) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).Create(rows).Error
}

func (r *quickChallengeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuickChallenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.QuickChallenge
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
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

func (r *quickChallengeRepo) GetBySubtopicAndPhase(ctx context.Context, tx *gorm.DB, subtopicID uuid.UUID, phase string) ([]*types.QuickChallenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if subtopicID == uuid.Nil {
		return nil, nil
	}
	q := transaction.WithContext(ctx).Where("subtopic_id = ?", subtopicID)
	if phase != "" {
		q = q.Where("phase = ?", phase)
	}
	var rows []*types.QuickChallenge
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
