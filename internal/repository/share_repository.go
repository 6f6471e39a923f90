package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pollwise/internal/domain/share"
)

type PostgresShareRepository struct {
	db *gorm.DB
}

func NewShareRepository(db *gorm.DB) ShareRepository {
	return &PostgresShareRepository{db: db}
}

func (r *PostgresShareRepository) Create(ctx context.Context, e *share.ShareEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *PostgresShareRepository) CountByPlatform(ctx context.Context, pollID uuid.UUID) (map[share.Platform]int64, error) {
	type row struct {
		Platform share.Platform
		Count    int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&share.ShareEvent{}).
		Select("platform, COUNT(*) as count").
		Where("poll_id = ?", pollID).
		Group("platform").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[share.Platform]int64, len(rows))
	for _, rec := range rows {
		counts[rec.Platform] = rec.Count
	}
	return counts, nil
}

func (r *PostgresShareRepository) DeleteByPollIDs(ctx context.Context, pollIDs []uuid.UUID) error {
	if len(pollIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Delete(&share.ShareEvent{}, "poll_id IN ?", pollIDs).Error
}
