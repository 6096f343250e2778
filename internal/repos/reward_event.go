package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/types"
)

type RewardEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.RewardEvent) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RewardEvent, error)
	ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.RewardEvent, error)
	LatestByUserAndType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, rewardType string) (*types.RewardEvent, error)
	SetEngaged(ctx context.Context, tx *gorm.DB, id uuid.UUID, engaged bool, engagementSeconds *float64) error
}

type rewardEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRewardEventRepo(db *gorm.DB, baseLog *logger.Logger) RewardEventRepo {
	return &rewardEventRepo{
		db:  db,
		log: baseLog.With("repo", "RewardEventRepo"),
	}
}

func (r *rewardEventRepo) Create(ctx context.Context, tx *gorm.DB, row *types.RewardEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *rewardEventRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RewardEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.RewardEvent
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

func (r *rewardEventRepo) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.RewardEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	var rows []*types.RewardEvent
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *rewardEventRepo) LatestByUserAndType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, rewardType string) (*types.RewardEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || rewardType == "" {
		return nil, nil
	}
	var row types.RewardEvent
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, rewardType).
		Order("created_at desc").
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

func (r *rewardEventRepo) SetEngaged(ctx context.Context, tx *gorm.DB, id uuid.UUID, engaged bool, engagementSeconds *float64) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates := map[string]any{
		"engaged":    engaged,
		"updated_at": time.Now().UTC(),
	}
	if engagementSeconds != nil {
		updates["engagement_seconds"] = *engagementSeconds
	}
	return transaction.WithContext(ctx).
		Model(&types.RewardEvent{}).
		Where("id = ?", id).
		Updates(updates).Error
}
