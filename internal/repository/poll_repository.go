package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pollwise/internal/domain/contest"
	"pollwise/internal/domain/poll"
	pollwise_errors "pollwise/pkg/errors"
)

type PostgresPollRepository struct {
	db *gorm.DB
}

func NewPollRepository(db *gorm.DB) PollRepository {
	return &PostgresPollRepository{db: db}
}

func (r *PostgresPollRepository) Create(ctx context.Context, p *poll.Poll) error {
	res := r.db.WithContext(ctx).Create(p)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return pollwise_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresPollRepository) GetByID(ctx context.Context, id uuid.UUID) (poll.Poll, error) {
	var p poll.Poll
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll.Poll{}, pollwise_errors.ErrNotFound
		}
		return poll.Poll{}, err
	}
	return p, nil
}

func (r *PostgresPollRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (poll.Poll, error) {
	var p poll.Poll
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, poll.StatusActive).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll.Poll{}, pollwise_errors.ErrNotFound
		}
		return poll.Poll{}, err
	}
	return p, nil
}

func (r *PostgresPollRepository) GetLatestActive(ctx context.Context, kind poll.Kind) (poll.Poll, error) {
	q := r.db.WithContext(ctx).
		Where("status = ?", poll.StatusActive)

	switch kind {
	case poll.KindWeekly:
		q = q.Where("is_weekly = ?", true)
	case poll.KindContest:
		q = q.Where("is_contest = ?", true)
	case poll.KindRegular:
		q = q.Where("is_weekly = ? AND is_contest = ?", false, false)
	}

	var p poll.Poll
	err := q.Order("created_at DESC").First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return poll.Poll{}, pollwise_errors.ErrNotFound
		}
		return poll.Poll{}, err
	}
	return p, nil
}

func (r *PostgresPollRepository) List(ctx context.Context, f PollFilter, page, limit int) ([]poll.Poll, int64, error) {
	var polls []poll.Poll
	var total int64

	q := r.db.WithContext(ctx).Model(&poll.Poll{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	} else if !f.IncludeDeleted {
		q = q.Where("status <> ?", poll.StatusDeleted)
	}
	if f.OwnerID.Valid {
		q = q.Where("owner_id = ?", f.OwnerID.UUID)
	}
	switch f.Kind {
	case poll.KindWeekly:
		q = q.Where("is_weekly = ?", true)
	case poll.KindContest:
		q = q.Where("is_contest = ?", true)
	case poll.KindRegular:
		q = q.Where("is_weekly = ? AND is_contest = ?", false, false)
	}
	if f.CreatedAfter != nil {
		q = q.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		q = q.Where("created_at < ?", *f.CreatedBefore)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("question LIKE ? OR option_a LIKE ? OR option_b LIKE ?", pattern, pattern, pattern)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	if err := q.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&polls).Error; err != nil {
		return nil, 0, err
	}

	return polls, total, nil
}

func (r *PostgresPollRepository) Update(ctx context.Context, p poll.Poll) error {
	res := r.db.WithContext(ctx).Save(&p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pollwise_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresPollRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).
		Model(&poll.Poll{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pollwise_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresPollRepository) SetStatus(ctx context.Context, id uuid.UUID, status poll.Status) error {
	return r.UpdateFields(ctx, id, map[string]any{"status": status})
}

func (r *PostgresPollRepository) ClearWeeklyFlagOnAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&poll.Poll{}).
		Where("is_weekly = ?", true).
		Updates(map[string]any{"is_weekly": false, "updated_at": time.Now()}).Error
}

func (r *PostgresPollRepository) SetWeekly(ctx context.Context, id uuid.UUID) error {
	return r.UpdateFields(ctx, id, map[string]any{"is_weekly": true})
}

func (r *PostgresPollRepository) GetExpiredContests(ctx context.Context, now time.Time) ([]poll.Poll, error) {
	var polls []poll.Poll
	winners := r.db.Model(&contest.Winner{}).Select("poll_id")
	err := r.db.WithContext(ctx).
		Where("is_contest = ? AND status = ?", true, poll.StatusActive).
		Where("contest_ends_at IS NOT NULL AND contest_ends_at <= ?", now).
		Where("id NOT IN (?)", winners).
		Find(&polls).Error
	if err != nil {
		return nil, err
	}
	return polls, nil
}

func (r *PostgresPollRepository) GetStaleWeekly(ctx context.Context, olderThan time.Time) ([]poll.Poll, error) {
	var polls []poll.Poll
	err := r.db.WithContext(ctx).
		Where("is_weekly = ? AND status = ? AND created_at < ?", true, poll.StatusActive, olderThan).
		Find(&polls).Error
	if err != nil {
		return nil, err
	}
	return polls, nil
}

func (r *PostgresPollRepository) GetAll(ctx context.Context) ([]poll.Poll, error) {
	var polls []poll.Poll
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&polls).Error; err != nil {
		return nil, err
	}
	return polls, nil
}

func (r *PostgresPollRepository) HardDeleteOlderThan(ctx context.Context, statuses []poll.Status, before time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&poll.Poll{}).
		Where("status IN ? AND created_at < ?", statuses, before).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	if err := r.db.WithContext(ctx).Delete(&poll.Poll{}, "id IN ?", ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *PostgresPollRepository) HardDeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&poll.Poll{}).Error
}
