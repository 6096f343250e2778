package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/types"
)

type LearningSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.LearningSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LearningSession, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.LearningSession, error)
	MarkAbandonedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type learningSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningSessionRepo(db *gorm.DB, baseLog *logger.Logger) LearningSessionRepo {
	return &learningSessionRepo{
		db:  db,
		log: baseLog.With("repo", "LearningSessionRepo"),
	}
}

func (r *learningSessionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.LearningSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *learningSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.LearningSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.LearningSession
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

func (r *learningSessionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	updates["updated_at"] = time.Now().UTC()
	return transaction.WithContext(ctx).
		Model(&types.LearningSession{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *learningSessionRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time, limit int) ([]*types.LearningSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time desc")
	if !since.IsZero() {
		q = q.Where("start_time >= ?", since)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []*types.LearningSession
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkAbandonedBefore closes sessions idle past the cutoff. Idempotent: rows
// already abandoned or completed are untouched.
func (r *learningSessionRepo) MarkAbandonedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.LearningSession{}).
		Where("abandoned = ? AND completed_at IS NULL AND last_activity_at < ?", false, cutoff).
		Updates(map[string]any{
			"abandoned":  true,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
