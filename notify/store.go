package notify

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lmenendez/agora/models"
)

// Store persists per-recipient notification records.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts one notification row, unconditionally. Callers own the
// guarantee of not recording the same logical event twice.
func (s *Store) Create(ctx context.Context, recipient uint, target models.NotificationTarget, at time.Time) error {
	record := models.Notification{
		UserID:     recipient,
		TargetKind: target.Kind,
		TargetID:   target.ID,
		IsView:     false,
		CreatedAt:  at,
	}
	return s.db.WithContext(ctx).Create(&record).Error
}

// MarkAllViewed flags every notification of the user as read. Idempotent.
func (s *Store) MarkAllViewed(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Update("is_view", true).Error
}

// CountPending returns how many unread notifications the user has. The count
// always reads through to the store, so concurrent Create calls that finished
// before the count are reflected.
func (s *Store) CountPending(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_view = ?", userID, false).
		Count(&count).Error
	return count, err
}

// ListByUser returns the user's notifications, newest first.
func (s *Store) ListByUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	var records []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&records).Error
	return records, err
}

// DeleteByTarget removes every notification pointing at the target and no
// others. This is where the weak target reference is resolved destructively,
// e.g. when the underlying comment is deleted.
func (s *Store) DeleteByTarget(ctx context.Context, target models.NotificationTarget) error {
	return s.db.WithContext(ctx).
		Where("target_kind = ? AND target_id = ?", target.Kind, target.ID).
		Delete(&models.Notification{}).Error
}
