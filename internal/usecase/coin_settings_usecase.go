package usecase

import (
	"context"
	"errors"
	"time"

	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/internal/entity"
	"go-coin-wallet/internal/params"
	"go-coin-wallet/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type CoinSettingsUsecase interface {
	Create(ctx context.Context, req *params.CoinSettingsRequest) (*params.CoinSettingsResponse, *response.CustomError)
	List(ctx context.Context, activeOnly bool) ([]*params.CoinSettingsResponse, *response.CustomError)
	Get(ctx context.Context, id uuid.UUID) (*params.CoinSettingsResponse, *response.CustomError)
	SetDefault(ctx context.Context, id uuid.UUID) (*params.CoinSettingsResponse, *response.CustomError)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*params.CoinSettingsResponse, *response.CustomError)
	// Current returns the rate in force, served from cache when possible. It is meant
	// for previews; ledger writes resolve the rate inside their own transaction.
	Current(ctx context.Context) (*params.CoinSettingsResponse, *response.CustomError)
}

type CoinSettingsUsecaseImpl struct {
	repo     repository.CoinSettingsRepository
	logger   *logrus.Logger
	cache    *cache
	cacheTTL time.Duration
}

func NewCoinSettingsUsecase(repo repository.CoinSettingsRepository, logger *logrus.Logger, rdb *redis.Client, cacheTTL time.Duration) CoinSettingsUsecase {
	return &CoinSettingsUsecaseImpl{
		repo:     repo,
		logger:   logger,
		cache:    newCache(rdb, logger),
		cacheTTL: cacheTTL,
	}
}

func (u *CoinSettingsUsecaseImpl) Create(ctx context.Context, req *params.CoinSettingsRequest) (*params.CoinSettingsResponse, *response.CustomError) {
	if !req.ExchangeRate.IsPositive() || !req.ExchangeRate.Equal(req.ExchangeRate.Truncate(0)) {
		return nil, response.BadRequestError("exchange rate must be a positive whole number of rial")
	}

	settings := &entity.CoinSettings{
		ExchangeRate: req.ExchangeRate,
		Description:  req.Description,
		IsActive:     true,
		IsDefault:    req.IsDefault,
	}
	if req.IsActive != nil && !*req.IsActive {
		if req.IsDefault {
			return nil, response.BadRequestError("default exchange rate must be active")
		}
		settings.IsActive = false
	}

	if err := u.repo.Create(ctx, settings); err != nil {
		return nil, response.FromDomainError(err, "failed to create coin settings")
	}

	u.invalidate(ctx)
	return params.NewCoinSettingsResponse(settings), nil
}

func (u *CoinSettingsUsecaseImpl) List(ctx context.Context, activeOnly bool) ([]*params.CoinSettingsResponse, *response.CustomError) {
	list, err := u.repo.List(ctx, activeOnly)
	if err != nil {
		u.logger.WithError(err).Error("Failed to list coin settings")
		return nil, response.RepositoryError("failed to list coin settings")
	}

	resp := make([]*params.CoinSettingsResponse, len(list))
	for i, s := range list {
		resp[i] = params.NewCoinSettingsResponse(s)
	}
	return resp, nil
}

func (u *CoinSettingsUsecaseImpl) Get(ctx context.Context, id uuid.UUID) (*params.CoinSettingsResponse, *response.CustomError) {
	settings, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, response.FromDomainError(err, "failed to get coin settings")
	}
	return params.NewCoinSettingsResponse(settings), nil
}

func (u *CoinSettingsUsecaseImpl) SetDefault(ctx context.Context, id uuid.UUID) (*params.CoinSettingsResponse, *response.CustomError) {
	settings, err := u.repo.SetDefault(ctx, id)
	if err != nil {
		return nil, response.FromDomainError(err, "failed to set default coin settings")
	}

	u.invalidate(ctx)
	return params.NewCoinSettingsResponse(settings), nil
}

func (u *CoinSettingsUsecaseImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) (*params.CoinSettingsResponse, *response.CustomError) {
	settings, err := u.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, response.FromDomainError(err, "failed to update coin settings")
	}

	u.invalidate(ctx)
	u.logger.WithFields(logrus.Fields{
		"settings_id": id,
		"is_active":   active,
	}).Info("Coin settings state changed")
	return params.NewCoinSettingsResponse(settings), nil
}

func (u *CoinSettingsUsecaseImpl) Current(ctx context.Context) (*params.CoinSettingsResponse, *response.CustomError) {
	var cached params.CoinSettingsResponse
	if u.cache.get(ctx, activeRateCacheKey, &cached) {
		return &cached, nil
	}

	settings, err := u.repo.GetActive(ctx, nil)
	if err != nil {
		if !errors.Is(err, entity.ErrNoActiveRateConfigured) {
			u.logger.WithError(err).Error("Failed to resolve active exchange rate")
		}
		return nil, response.FromDomainError(err, "failed to get exchange rate")
	}

	resp := params.NewCoinSettingsResponse(settings)
	u.cache.set(ctx, activeRateCacheKey, resp, u.cacheTTL)
	return resp, nil
}

func (u *CoinSettingsUsecaseImpl) invalidate(ctx context.Context) {
	u.cache.del(ctx, activeRateCacheKey)
}
