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

type NudgeStateRepo interface {
	Ensure(ctx context.Context, tx *gorm.DB, userID uuid.UUID, nudgeType string, defaultIntensity float64) error
	GetByUserAndType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, nudgeType string) (*types.NudgeState, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, nudgeType string, updates map[string]any) error
}

type nudgeStateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNudgeStateRepo(db *gorm.DB, baseLog *logger.Logger) NudgeStateRepo {
	return &nudgeStateRepo{
		db:  db,
		log: baseLog.With("repo", "NudgeStateRepo"),
	}
}

func (r *nudgeStateRepo) Ensure(ctx context.Context, tx *gorm.DB, userID uuid.UUID, nudgeType string, defaultIntensity float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	row := &types.NudgeState{
		ID:        uuid.New(),
		UserID:    userID,
		NudgeType: nudgeType,
		Intensity: defaultIntensity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "nudge_type"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *nudgeStateRepo) GetByUserAndType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, nudgeType string) (*types.NudgeState, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || nudgeType == "" {
		return nil, nil
	}
	var row types.NudgeState
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND nudge_type = ?", userID, nudgeType).
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

func (r *nudgeStateRepo) UpdateFields(ctx context.Context, tx *gorm.DB, userID uuid.UUID, nudgeType string, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates["updated_at"] = time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.NudgeState{}).
		Where("user_id = ? AND nudge_type = ?", userID, nudgeType).
		Updates(updates).Error
}
