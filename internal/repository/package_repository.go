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

type PackageRepository interface {
	CreateCoinPackage(ctx context.Context, pkg *entity.CoinPackage) error
	CreateSMSPackage(ctx context.Context, pkg *entity.SMSPackage) error
	GetCoinPackage(ctx context.Context, id uuid.UUID) (*entity.CoinPackage, error)
	GetSMSPackage(ctx context.Context, id uuid.UUID) (*entity.SMSPackage, error)
	ListCoinPackages(ctx context.Context, role string) ([]*entity.CoinPackage, error)
	ListSMSPackages(ctx context.Context, role string) ([]*entity.SMSPackage, error)
	SetCoinPackageActive(ctx context.Context, id uuid.UUID, active bool) error
	SetSMSPackageActive(ctx context.Context, id uuid.UUID, active bool) error
	UpsertCoinPackage(ctx context.Context, pkg *entity.CoinPackage) (bool, error)
	UpsertSMSPackage(ctx context.Context, pkg *entity.SMSPackage) (bool, error)
}

type PackageRepositoryImpl struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewPackageRepository(db *gorm.DB, logger *logrus.Logger) PackageRepository {
	return &PackageRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *PackageRepositoryImpl) CreateCoinPackage(ctx context.Context, pkg *entity.CoinPackage) error {
	if err := r.db.WithContext(ctx).Create(pkg).Error; err != nil {
		r.logger.WithError(err).WithField("label", pkg.Label).Error("Failed to create coin package")
		return fmt.Errorf("failed to create coin package: %w", err)
	}
	return nil
}

func (r *PackageRepositoryImpl) CreateSMSPackage(ctx context.Context, pkg *entity.SMSPackage) error {
	if err := r.db.WithContext(ctx).Create(pkg).Error; err != nil {
		r.logger.WithError(err).WithField("label", pkg.Label).Error("Failed to create sms package")
		return fmt.Errorf("failed to create sms package: %w", err)
	}
	return nil
}

func (r *PackageRepositoryImpl) GetCoinPackage(ctx context.Context, id uuid.UUID) (*entity.CoinPackage, error) {
	var pkg entity.CoinPackage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pkg).Error; err != nil {
		return nil, packageLookupError(err)
	}
	return &pkg, nil
}

func (r *PackageRepositoryImpl) GetSMSPackage(ctx context.Context, id uuid.UUID) (*entity.SMSPackage, error) {
	var pkg entity.SMSPackage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&pkg).Error; err != nil {
		return nil, packageLookupError(err)
	}
	return &pkg, nil
}

// ListCoinPackages returns active packages for role plus the packages open to every role.
func (r *PackageRepositoryImpl) ListCoinPackages(ctx context.Context, role string) ([]*entity.CoinPackage, error) {
	var list []*entity.CoinPackage
	if err := r.catalog(ctx, role).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list coin packages: %w", err)
	}
	return list, nil
}

func (r *PackageRepositoryImpl) ListSMSPackages(ctx context.Context, role string) ([]*entity.SMSPackage, error) {
	var list []*entity.SMSPackage
	if err := r.catalog(ctx, role).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list sms packages: %w", err)
	}
	return list, nil
}

func (r *PackageRepositoryImpl) SetCoinPackageActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.setActive(ctx, &entity.CoinPackage{}, id, active)
}

func (r *PackageRepositoryImpl) SetSMSPackageActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.setActive(ctx, &entity.SMSPackage{}, id, active)
}

// UpsertCoinPackage matches an existing package on (label, role) and overwrites its
// terms, or creates it. It reports whether a row was created.
func (r *PackageRepositoryImpl) UpsertCoinPackage(ctx context.Context, pkg *entity.CoinPackage) (bool, error) {
	var existing entity.CoinPackage
	err := byLabelAndRole(r.db.WithContext(ctx), pkg.Label, pkg.Role).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, r.CreateCoinPackage(ctx, pkg)
	}
	if err != nil {
		return false, fmt.Errorf("failed to find coin package: %w", err)
	}

	err = r.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"value":         pkg.Value,
		"price":         pkg.Price,
		"display_order": pkg.Order,
		"description":   pkg.Description,
		"is_active":     pkg.IsActive,
	}).Error
	if err != nil {
		return false, fmt.Errorf("failed to update coin package: %w", err)
	}
	pkg.ID = existing.ID
	return false, nil
}

func (r *PackageRepositoryImpl) UpsertSMSPackage(ctx context.Context, pkg *entity.SMSPackage) (bool, error) {
	var existing entity.SMSPackage
	err := byLabelAndRole(r.db.WithContext(ctx), pkg.Label, pkg.Role).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, r.CreateSMSPackage(ctx, pkg)
	}
	if err != nil {
		return false, fmt.Errorf("failed to find sms package: %w", err)
	}

	err = r.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"value":         pkg.Value,
		"coin_cost":     pkg.CoinCost,
		"display_order": pkg.Order,
		"description":   pkg.Description,
		"is_active":     pkg.IsActive,
	}).Error
	if err != nil {
		return false, fmt.Errorf("failed to update sms package: %w", err)
	}
	pkg.ID = existing.ID
	return false, nil
}

func byLabelAndRole(db *gorm.DB, label string, role *string) *gorm.DB {
	db = db.Where("label = ?", label)
	if role == nil {
		return db.Where("role IS NULL")
	}
	return db.Where("role = ?", *role)
}

func (r *PackageRepositoryImpl) catalog(ctx context.Context, role string) *gorm.DB {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if role == "" {
		query = query.Where("role IS NULL")
	} else {
		query = query.Where("role IS NULL OR role = ?", role)
	}
	return query.Order("display_order ASC").Order("value ASC")
}

func (r *PackageRepositoryImpl) setActive(ctx context.Context, model interface{}, id uuid.UUID, active bool) error {
	result := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		r.logger.WithError(result.Error).WithField("package_id", id).Error("Failed to update package")
		return fmt.Errorf("failed to update package: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return entity.ErrPackageNotFound
	}
	return nil
}

func packageLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.ErrPackageNotFound
	}
	return fmt.Errorf("failed to get package: %w", err)
}
