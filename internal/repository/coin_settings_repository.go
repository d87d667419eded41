package repository

import (
	"context"
	"errors"
	"fmt"

	"go-coin-wallet/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CoinSettingsRepository interface {
	Create(ctx context.Context, settings *entity.CoinSettings) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CoinSettings, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.CoinSettings, error)
	GetActive(ctx context.Context, tx *gorm.DB) (*entity.CoinSettings, error)
	SetDefault(ctx context.Context, id uuid.UUID) (*entity.CoinSettings, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*entity.CoinSettings, error)
}

type CoinSettingsRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewCoinSettingsRepository(db *gorm.DB, logger *logrus.Logger) CoinSettingsRepository {
	return &CoinSettingsRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// createSettingsAttempts bounds the retries of a create that lost the default to a
// concurrent creator.
const createSettingsAttempts = 3

// Create stores settings. A default record clears the previous default in the
// same transaction; the first record ever stored becomes the default.
func (r *CoinSettingsRepositoryImpl) Create(ctx context.Context, settings *entity.CoinSettings) error {
	isDefault, isActive := settings.IsDefault, settings.IsActive

	var err error
	for attempt := 1; attempt <= createSettingsAttempts; attempt++ {
		settings.IsDefault, settings.IsActive = isDefault, isActive
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if settings.IsDefault {
				if err := clearDefault(tx); err != nil {
					return err
				}
			} else {
				var defaults int64
				if err := tx.Model(&entity.CoinSettings{}).Where("is_default = ?", true).Count(&defaults).Error; err != nil {
					return err
				}
				if defaults == 0 {
					settings.IsDefault = true
					settings.IsActive = true
				}
			}
			return tx.Create(settings).Error
		})
		// the single-default index rejects a default claimed after the check
		if !isUniqueViolation(err) {
			break
		}
		r.logger.WithField("attempt", attempt).Warn("Default coin settings claimed concurrently, retrying")
	}
	if err != nil {
		r.logger.WithError(err).Error("Failed to create coin settings")
		return fmt.Errorf("failed to create coin settings: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"settings_id":   settings.ID,
		"exchange_rate": settings.ExchangeRate.String(),
		"is_default":    settings.IsDefault,
	}).Info("Coin settings created")
	return nil
}

func (r *CoinSettingsRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entity.CoinSettings, error) {
	var settings entity.CoinSettings
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to get coin settings: %w", err)
	}
	return &settings, nil
}

func (r *CoinSettingsRepositoryImpl) List(ctx context.Context, activeOnly bool) ([]*entity.CoinSettings, error) {
	var list []*entity.CoinSettings
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list coin settings: %w", err)
	}
	return list, nil
}

// GetActive resolves the rate in force: the active default, otherwise the most
// recently created active record.
func (r *CoinSettingsRepositoryImpl) GetActive(ctx context.Context, tx *gorm.DB) (*entity.CoinSettings, error) {
	db := dbOrTx(r.db, tx).WithContext(ctx)

	var settings entity.CoinSettings
	err := db.Where("is_default = ? AND is_active = ?", true, true).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get default coin settings: %w", err)
	}

	err = db.Where("is_active = ?", true).Order("created_at DESC").First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNoActiveRateConfigured
		}
		return nil, fmt.Errorf("failed to get active coin settings: %w", err)
	}
	return &settings, nil
}

// SetDefault marks id as the active default and clears the previous default atomically.
func (r *CoinSettingsRepositoryImpl) SetDefault(ctx context.Context, id uuid.UUID) (*entity.CoinSettings, error) {
	var settings entity.CoinSettings
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&settings).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entity.ErrSettingsNotFound
			}
			return err
		}
		if err := clearDefault(tx); err != nil {
			return err
		}
		settings.IsDefault = true
		settings.IsActive = true
		return tx.Model(&settings).Updates(map[string]interface{}{
			"is_default": true,
			"is_active":  true,
		}).Error
	})
	if err != nil {
		if errors.Is(err, entity.ErrSettingsNotFound) {
			return nil, err
		}
		r.logger.WithError(err).WithField("settings_id", id).Error("Failed to set default coin settings")
		return nil, fmt.Errorf("failed to set default coin settings: %w", err)
	}

	r.logger.WithField("settings_id", id).Info("Default coin settings changed")
	return &settings, nil
}

// SetActive toggles a record. The default record cannot be deactivated.
func (r *CoinSettingsRepositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (*entity.CoinSettings, error) {
	var settings entity.CoinSettings
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&settings).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return entity.ErrSettingsNotFound
			}
			return err
		}
		if !active && settings.IsDefault {
			return entity.ErrDefaultRateInUse
		}
		settings.IsActive = active
		return tx.Model(&settings).Update("is_active", active).Error
	})
	if err != nil {
		if errors.Is(err, entity.ErrSettingsNotFound) || errors.Is(err, entity.ErrDefaultRateInUse) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update coin settings: %w", err)
	}
	return &settings, nil
}

func clearDefault(tx *gorm.DB) error {
	return tx.Model(&entity.CoinSettings{}).
		Where("is_default = ?", true).
		Update("is_default", false).Error
}
