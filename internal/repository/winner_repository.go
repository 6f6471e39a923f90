package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pollwise/internal/domain/contest"
	pollwise_errors "pollwise/pkg/errors"
)

type PostgresWinnerRepository struct {
	db *gorm.DB
}

func NewWinnerRepository(db *gorm.DB) WinnerRepository {
	return &PostgresWinnerRepository{db: db}
}

// Create inserts the winner row. The unique index on poll_id turns the loser
// of a concurrent double-announce into ErrWinnerAnnounced instead of a
// second winner.
func (r *PostgresWinnerRepository) Create(ctx context.Context, w *contest.Winner) error {
	res := r.db.WithContext(ctx).Create(w)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return pollwise_errors.ErrWinnerAnnounced
		}
		return res.Error
	}
	return nil
}

func (r *PostgresWinnerRepository) GetByPollID(ctx context.Context, pollID uuid.UUID) (contest.Winner, error) {
	var w contest.Winner
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return contest.Winner{}, pollwise_errors.ErrNotFound
		}
		return contest.Winner{}, err
	}
	return w, nil
}

func (r *PostgresWinnerRepository) Exists(ctx context.Context, pollID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&contest.Winner{}).
		Where("poll_id = ?", pollID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresWinnerRepository) MarkNotified(ctx context.Context, pollID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&contest.Winner{}).
		Where("poll_id = ?", pollID).
		Update("status", contest.WinnerNotified)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pollwise_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresWinnerRepository) DeleteByPollIDs(ctx context.Context, pollIDs []uuid.UUID) error {
	if len(pollIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Delete(&contest.Winner{}, "poll_id IN ?", pollIDs).Error
}
