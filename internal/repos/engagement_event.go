package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/types"
)

type EngagementEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.EngagementEvent) error
	ListByUserAndRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.EngagementEvent, error)
}

type engagementEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEngagementEventRepo(db *gorm.DB, baseLog *logger.Logger) EngagementEventRepo {
	return &engagementEventRepo{
		db:  db,
		log: baseLog.With("repo", "EngagementEventRepo"),
	}
}

func (r *engagementEventRepo) Create(ctx context.Context, tx *gorm.DB, row *types.EngagementEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *engagementEventRepo) ListByUserAndRange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, from, to time.Time) ([]*types.EngagementEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at asc")
	if !from.IsZero() {
		q = q.Where("occurred_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("occurred_at < ?", to)
	}
	var rows []*types.EngagementEvent
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
