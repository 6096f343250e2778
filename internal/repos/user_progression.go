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

type UserProgressionRepo interface {
	Ensure(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProgression, error)
	AddXP(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int) error
}

type userProgressionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProgressionRepo(db *gorm.DB, baseLog *logger.Logger) UserProgressionRepo {
	return &userProgressionRepo{
		db:  db,
		log: baseLog.With("repo", "UserProgressionRepo"),
	}
}

func (r *userProgressionRepo) Ensure(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	row := &types.UserProgression{
		ID:        uuid.New(),
		UserID:    userID,
		TotalXP:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *userProgressionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProgression, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.UserProgression
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
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

// AddXP increments total_xp in place so concurrent awards never lose an
// update even outside the per-user lock.
func (r *userProgressionRepo) AddXP(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.UserProgression{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"total_xp":   gorm.Expr("total_xp + ?", delta),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		}).Error
}
