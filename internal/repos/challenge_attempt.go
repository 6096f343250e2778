package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/types"
)

type ChallengeAttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.ChallengeAttempt) error
	ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.ChallengeAttempt, error)
}

type challengeAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeAttemptRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeAttemptRepo {
	return &challengeAttemptRepo{
		db:  db,
		log: baseLog.With("repo", "ChallengeAttemptRepo"),
	}
}

func (r *challengeAttemptRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ChallengeAttempt) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *challengeAttemptRepo) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.ChallengeAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc")
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []*types.ChallengeAttempt
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
