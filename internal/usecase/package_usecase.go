package usecase

import (
	"context"

	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/internal/entity"
	"go-coin-wallet/internal/params"
	"go-coin-wallet/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	PaymentMethodWallet  = "wallet"
	PaymentMethodGateway = "gateway"
)

type PackageUsecase interface {
	ListCoinPackages(ctx context.Context, role string) ([]*params.CoinPackageResponse, *response.CustomError)
	ListSMSPackages(ctx context.Context, role string) ([]*params.SMSPackageResponse, *response.CustomError)
	CreateCoinPackage(ctx context.Context, req *params.CoinPackageRequest) (*params.CoinPackageResponse, *response.CustomError)
	CreateSMSPackage(ctx context.Context, req *params.SMSPackageRequest) (*params.SMSPackageResponse, *response.CustomError)
	SetCoinPackageActive(ctx context.Context, id uuid.UUID, active bool) *response.CustomError
	SetSMSPackageActive(ctx context.Context, id uuid.UUID, active bool) *response.CustomError
	BuyCoinPackage(ctx context.Context, userID uuid.UUID, role string, packageID uuid.UUID, req *params.BuyCoinPackageRequest) (interface{}, *response.CustomError)
	BuySMSPackage(ctx context.Context, userID uuid.UUID, role string, packageID uuid.UUID) (*params.TransactionResponse, *response.CustomError)
	SeedDefaults(ctx context.Context) (*SeedResult, error)
}

type PackageUsecaseImpl struct {
	repo       repository.PackageRepository
	walletRepo repository.WalletRepository
	ledger     LedgerUsecase
	logger     *logrus.Logger
}

func NewPackageUsecase(repo repository.PackageRepository, walletRepo repository.WalletRepository, ledger LedgerUsecase, logger *logrus.Logger) PackageUsecase {
	return &PackageUsecaseImpl{
		repo:       repo,
		walletRepo: walletRepo,
		ledger:     ledger,
		logger:     logger,
	}
}

func (u *PackageUsecaseImpl) ListCoinPackages(ctx context.Context, role string) ([]*params.CoinPackageResponse, *response.CustomError) {
	list, err := u.repo.ListCoinPackages(ctx, role)
	if err != nil {
		u.logger.WithError(err).Error("Failed to list coin packages")
		return nil, response.RepositoryError("failed to list coin packages")
	}

	resp := make([]*params.CoinPackageResponse, len(list))
	for i, p := range list {
		resp[i] = params.NewCoinPackageResponse(p)
	}
	return resp, nil
}

func (u *PackageUsecaseImpl) ListSMSPackages(ctx context.Context, role string) ([]*params.SMSPackageResponse, *response.CustomError) {
	list, err := u.repo.ListSMSPackages(ctx, role)
	if err != nil {
		u.logger.WithError(err).Error("Failed to list sms packages")
		return nil, response.RepositoryError("failed to list sms packages")
	}

	resp := make([]*params.SMSPackageResponse, len(list))
	for i, p := range list {
		resp[i] = params.NewSMSPackageResponse(p)
	}
	return resp, nil
}

func (u *PackageUsecaseImpl) CreateCoinPackage(ctx context.Context, req *params.CoinPackageRequest) (*params.CoinPackageResponse, *response.CustomError) {
	if !req.Price.IsPositive() || !req.Price.Equal(req.Price.Truncate(0)) {
		return nil, response.BadRequestError("price must be a positive whole number of rial")
	}

	pkg := &entity.CoinPackage{
		Value:       req.Value,
		Label:       req.Label,
		Price:       req.Price,
		Order:       req.Order,
		Description: req.Description,
		Role:        optionalRole(req.Role),
		IsActive:    true,
	}
	if err := u.repo.CreateCoinPackage(ctx, pkg); err != nil {
		return nil, response.RepositoryError("failed to create coin package")
	}
	return params.NewCoinPackageResponse(pkg), nil
}

func (u *PackageUsecaseImpl) CreateSMSPackage(ctx context.Context, req *params.SMSPackageRequest) (*params.SMSPackageResponse, *response.CustomError) {
	pkg := &entity.SMSPackage{
		Value:       req.Value,
		Label:       req.Label,
		CoinCost:    req.CoinCost,
		Order:       req.Order,
		Description: req.Description,
		Role:        optionalRole(req.Role),
		IsActive:    true,
	}
	if err := u.repo.CreateSMSPackage(ctx, pkg); err != nil {
		return nil, response.RepositoryError("failed to create sms package")
	}
	return params.NewSMSPackageResponse(pkg), nil
}

func (u *PackageUsecaseImpl) SetCoinPackageActive(ctx context.Context, id uuid.UUID, active bool) *response.CustomError {
	if err := u.repo.SetCoinPackageActive(ctx, id, active); err != nil {
		return response.FromDomainError(err, "failed to update coin package")
	}
	return nil
}

func (u *PackageUsecaseImpl) SetSMSPackageActive(ctx context.Context, id uuid.UUID, active bool) *response.CustomError {
	if err := u.repo.SetSMSPackageActive(ctx, id, active); err != nil {
		return response.FromDomainError(err, "failed to update sms package")
	}
	return nil
}

// BuyCoinPackage pays for a coin package from the rial balance, or opens a pending
// gateway payment that credits the coins once confirmed. The result is a
// *params.TransactionResponse or a *params.PendingPaymentResponse respectively.
func (u *PackageUsecaseImpl) BuyCoinPackage(ctx context.Context, userID uuid.UUID, role string, packageID uuid.UUID, req *params.BuyCoinPackageRequest) (interface{}, *response.CustomError) {
	pkg, err := u.repo.GetCoinPackage(ctx, packageID)
	if err != nil {
		return nil, response.FromDomainError(err, "failed to get coin package")
	}
	if !pkg.AvailableTo(role) {
		return nil, response.FromDomainError(entity.ErrPackageForbidden, "")
	}

	wallet, err := u.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, response.FromDomainError(err, "failed to get wallet")
	}

	metadata := map[string]interface{}{
		"package_id":    pkg.ID.String(),
		"package_label": pkg.Label,
		"price":         pkg.Price.String(),
	}
	description := "Coin package: " + pkg.Label

	method := req.Method
	if method == "" {
		method = PaymentMethodWallet
	}
	metadata["payment_method"] = method

	if method == PaymentMethodGateway {
		transaction, err := u.ledger.CreatePending(ctx, LedgerEntry{
			WalletID:    wallet.ID,
			Type:        entity.TransactionTypeCoinPurchase,
			Magnitudes:  entity.Magnitudes{Coin: pkg.Value},
			Description: description,
			Metadata:    metadata,
		})
		if err != nil {
			return nil, response.FromDomainError(err, "failed to create package payment")
		}
		return &params.PendingPaymentResponse{
			TransactionID: transaction.ID,
			ReferenceID:   *transaction.ReferenceID,
			Amount:        pkg.Price,
			CoinAmount:    transaction.CoinAmount,
			Status:        transaction.Status,
			Timestamp:     transaction.CreatedAt,
		}, nil
	}

	transaction, err := u.ledger.Apply(ctx, LedgerEntry{
		WalletID:    wallet.ID,
		Type:        entity.TransactionTypeCoinPurchase,
		Magnitudes:  entity.Magnitudes{Rial: pkg.Price, Coin: pkg.Value},
		Description: description,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, response.FromDomainError(err, "failed to buy coin package")
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"package_id":     pkg.ID,
		"transaction_id": transaction.ID,
	}).Info("Coin package purchased")

	return params.NewTransactionResponse(transaction), nil
}

// BuySMSPackage exchanges coins for SMS credits.
func (u *PackageUsecaseImpl) BuySMSPackage(ctx context.Context, userID uuid.UUID, role string, packageID uuid.UUID) (*params.TransactionResponse, *response.CustomError) {
	pkg, err := u.repo.GetSMSPackage(ctx, packageID)
	if err != nil {
		return nil, response.FromDomainError(err, "failed to get sms package")
	}
	if !pkg.AvailableTo(role) {
		return nil, response.FromDomainError(entity.ErrPackageForbidden, "")
	}

	wallet, err := u.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, response.FromDomainError(err, "failed to get wallet")
	}

	transaction, err := u.ledger.Apply(ctx, LedgerEntry{
		WalletID:    wallet.ID,
		Type:        entity.TransactionTypeSMSBuying,
		Magnitudes:  entity.Magnitudes{Coin: pkg.CoinCost, SMS: pkg.Value},
		Description: "SMS package: " + pkg.Label,
		Metadata: map[string]interface{}{
			"package_id":    pkg.ID.String(),
			"package_label": pkg.Label,
		},
	})
	if err != nil {
		return nil, response.FromDomainError(err, "failed to buy sms package")
	}

	u.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"package_id":     pkg.ID,
		"transaction_id": transaction.ID,
	}).Info("SMS package purchased")

	return params.NewTransactionResponse(transaction), nil
}

func optionalRole(role string) *string {
	if role == "" {
		return nil
	}
	return &role
}
