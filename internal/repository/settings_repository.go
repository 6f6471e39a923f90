package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pollwise/internal/domain/settings"
)

type PostgresSettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &PostgresSettingsRepository{db: db}
}

// Get returns the single settings row, falling back to defaults when no
// admin has saved anything yet.
func (r *PostgresSettingsRepository) Get(ctx context.Context) (settings.Settings, error) {
	var s settings.Settings
	err := r.db.WithContext(ctx).
		Where("id = ?", 1).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return settings.Default(), nil
		}
		return settings.Settings{}, err
	}
	return s, nil
}

func (r *PostgresSettingsRepository) Save(ctx context.Context, s settings.Settings) error {
	s.ID = 1
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&s).Error
}
