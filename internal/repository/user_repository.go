package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pollwise/internal/domain/poll"
	"pollwise/internal/domain/user"
	pollwise_errors "pollwise/pkg/errors"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	res := r.db.WithContext(ctx).Create(u)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return pollwise_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, pollwise_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, pollwise_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, pollwise_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	res := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"role": role, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pollwise_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) CreateInvitation(ctx context.Context, inv *user.RoleInvitation) error {
	res := r.db.WithContext(ctx).Create(inv)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return pollwise_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresUserRepository) GetInvitation(ctx context.Context, token uuid.UUID) (user.RoleInvitation, error) {
	var inv user.RoleInvitation
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.RoleInvitation{}, pollwise_errors.ErrNotFound
		}
		return user.RoleInvitation{}, err
	}
	return inv, nil
}

func (r *PostgresUserRepository) MarkInvitationAccepted(ctx context.Context, token uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&user.RoleInvitation{}).
		Where("token = ?", token).
		Update("accepted_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pollwise_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) DeleteExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Delete(&user.RoleInvitation{}, "expires_at < ? AND accepted_at IS NULL", now)
	return res.RowsAffected, res.Error
}

// DismissPopup is idempotent; dismissing twice is not an error.
func (r *PostgresUserRepository) DismissPopup(ctx context.Context, d *user.PopupDismissal) error {
	res := r.db.WithContext(ctx).Create(d)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil
		}
		return res.Error
	}
	return nil
}

func (r *PostgresUserRepository) HasDismissed(ctx context.Context, userID, pollID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&user.PopupDismissal{}).
		Where("user_id = ? AND poll_id = ?", userID, pollID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresUserRepository) DeleteOrphanDismissals(ctx context.Context) (int64, error) {
	polls := r.db.Model(&poll.Poll{}).Select("id")
	res := r.db.WithContext(ctx).
		Delete(&user.PopupDismissal{}, "poll_id NOT IN (?)", polls)
	return res.RowsAffected, res.Error
}
