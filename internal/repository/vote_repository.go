package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pollwise/internal/domain/vote"
	pollwise_errors "pollwise/pkg/errors"
)

type PostgresVoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &PostgresVoteRepository{db: db}
}

// Create inserts the vote. A duplicate (poll_id, voter_key) surfaces as
// ErrAlreadyVoted; two concurrent casts for the same pair are settled by
// the unique index, the second insert loses.
func (r *PostgresVoteRepository) Create(ctx context.Context, v *vote.Vote) error {
	res := r.db.WithContext(ctx).Create(v)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return pollwise_errors.ErrAlreadyVoted
		}
		return res.Error
	}
	return nil
}

func (r *PostgresVoteRepository) HasVoted(ctx context.Context, pollID uuid.UUID, voterKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&vote.Vote{}).
		Where("poll_id = ? AND voter_key = ?", pollID, voterKey).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresVoteRepository) CountByOption(ctx context.Context, pollID uuid.UUID) (int64, int64, error) {
	type row struct {
		Option vote.Option
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&vote.Vote{}).
		Select("option, COUNT(*) as count").
		Where("poll_id = ?", pollID).
		Group("option").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}

	var countA, countB int64
	for _, rec := range rows {
		switch rec.Option {
		case vote.OptionA:
			countA = rec.Count
		case vote.OptionB:
			countB = rec.Count
		}
	}
	return countA, countB, nil
}

func (r *PostgresVoteRepository) GetVoterIDs(ctx context.Context, pollID uuid.UUID, option vote.Option) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&vote.Vote{}).
		Where("poll_id = ? AND option = ? AND voter_id IS NOT NULL", pollID, option).
		Order("created_at ASC").
		Pluck("voter_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresVoteRepository) GetByPollID(ctx context.Context, pollID uuid.UUID) ([]vote.Vote, error) {
	var votes []vote.Vote
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order("created_at ASC").
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *PostgresVoteRepository) GetAll(ctx context.Context) ([]vote.Vote, error) {
	var votes []vote.Vote
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&votes).Error; err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *PostgresVoteRepository) DeleteByPollIDs(ctx context.Context, pollIDs []uuid.UUID) error {
	if len(pollIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Delete(&vote.Vote{}, "poll_id IN ?", pollIDs).Error
}

func (r *PostgresVoteRepository) HardDeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&vote.Vote{}).Error
}
