package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pollwise/internal/domain/notification"
	pollwise_errors "pollwise/pkg/errors"
)

type PostgresNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Enqueue(ctx context.Context, n *notification.PendingNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *PostgresNotificationRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]notification.PendingNotification, error) {
	var due []notification.PendingNotification
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at <= ? AND attempts < ?",
			notification.StatusPending, now, notification.MaxAttempts).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&due).Error
	if err != nil {
		return nil, err
	}
	return due, nil
}

func (r *PostgresNotificationRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&notification.PendingNotification{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": notification.StatusSent, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pollwise_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) Reschedule(ctx context.Context, id uuid.UUID, at time.Time, errMsg string) error {
	res := r.db.WithContext(ctx).
		Model(&notification.PendingNotification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"scheduled_at": at,
			"attempts":     gorm.Expr("attempts + 1"),
			"last_error":   errMsg,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pollwise_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	res := r.db.WithContext(ctx).
		Model(&notification.PendingNotification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     notification.StatusFailed,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": errMsg,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pollwise_errors.ErrNotFound
	}
	return nil
}
