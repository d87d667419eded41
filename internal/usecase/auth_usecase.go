package usecase

import (
	"context"
	"errors"

	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/internal/entity"
	"go-coin-wallet/internal/params"
	"go-coin-wallet/internal/repository"
	"go-coin-wallet/pkg/token"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// WelcomeBonusReference is the reference id of the registration reward. Reusing it
// makes the reward idempotent per wallet.
const WelcomeBonusReference = "welcome_bonus"

// WelcomeCoins is the coin reward granted on registration, per role.
type WelcomeCoins struct {
	Lawyer int64
	User   int64
}

func (w WelcomeCoins) For(role string) int64 {
	if role == entity.RoleLawyer {
		return w.Lawyer
	}
	return w.User
}

type AuthUsecase interface {
	Register(ctx context.Context, req *params.RegisterRequest) (*params.AuthResponse, *response.CustomError)
	Login(ctx context.Context, req *params.LoginRequest) (*params.AuthResponse, *response.CustomError)
	ProvisionAdmin(ctx context.Context, req *params.AdminAccountRequest) (*entity.User, bool, *response.CustomError)
}

type AuthUsecaseImpl struct {
	userRepo   repository.UserRepository
	walletRepo repository.WalletRepository
	ledger     LedgerUsecase
	logger     *logrus.Logger
	jwtManager *token.TokenManager
	welcome    WelcomeCoins
}

func NewAuthUsecase(userRepo repository.UserRepository, walletRepo repository.WalletRepository, ledger LedgerUsecase, logger *logrus.Logger, jwtManager *token.TokenManager, welcome WelcomeCoins) AuthUsecase {
	return &AuthUsecaseImpl{
		userRepo:   userRepo,
		walletRepo: walletRepo,
		ledger:     ledger,
		logger:     logger,
		jwtManager: jwtManager,
		welcome:    welcome,
	}
}

// Register creates the user and their wallet, then grants the welcome reward. A
// failed reward is logged and does not fail the registration.
func (s *AuthUsecaseImpl) Register(ctx context.Context, req *params.RegisterRequest) (*params.AuthResponse, *response.CustomError) {
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		s.logger.WithField("email", req.Email).Warn("Registration attempt with existing email")
		return nil, response.BadRequestError("user with this email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.WithError(err).Error("Failed to hash password")
		return nil, response.GeneralError("failed to hash password")
	}

	role := req.Role
	if role == "" {
		role = entity.RoleClient
	}

	user := &entity.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, entity.ErrEmailTaken) {
			return nil, response.BadRequestError("user with this email already exists")
		}
		s.logger.WithError(err).WithField("email", req.Email).Error("Failed to create user")
		return nil, response.RepositoryError("failed to create user")
	}

	wallet, _, err := s.walletRepo.GetOrCreate(ctx, user.ID, entity.DefaultCurrency)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to create wallet for new user")
		return nil, response.RepositoryError("failed to create wallet")
	}

	s.grantWelcomeBonus(ctx, user, wallet)

	signed, err := s.jwtManager.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to generate token")
		return nil, response.GeneralError("failed to generate token")
	}

	resp := authResponse(signed, user)
	resp.User.WalletID = &wallet.ID

	s.logger.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"role":      user.Role,
		"wallet_id": wallet.ID,
	}).Info("User registered successfully")

	return resp, nil
}

func (s *AuthUsecaseImpl) Login(ctx context.Context, req *params.LoginRequest) (*params.AuthResponse, *response.CustomError) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.logger.WithField("email", req.Email).Warn("Login attempt with non-existing email")
		return nil, response.BadRequestError("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		s.logger.WithField("user_id", user.ID).Warn("Login attempt with invalid password")
		return nil, response.BadRequestError("invalid email or password")
	}

	signed, err := s.jwtManager.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to generate token")
		return nil, response.GeneralError("failed to generate token")
	}

	resp := authResponse(signed, user)
	if wallet, err := s.walletRepo.GetByUserID(ctx, user.ID); err == nil {
		resp.User.WalletID = &wallet.ID
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in successfully")
	return resp, nil
}

// ProvisionAdmin creates an admin account, or promotes the user already registered
// under the email. It reports whether a new user was created. Admins get a wallet
// but no welcome reward.
func (s *AuthUsecaseImpl) ProvisionAdmin(ctx context.Context, req *params.AdminAccountRequest) (*entity.User, bool, *response.CustomError) {
	var hashedPassword string
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			s.logger.WithError(err).Error("Failed to hash password")
			return nil, false, response.GeneralError("failed to hash password")
		}
		hashedPassword = string(hashed)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		user.Role = entity.RoleAdmin
		if req.Name != "" {
			user.Name = req.Name
		}
		if hashedPassword != "" {
			user.Password = hashedPassword
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, false, response.FromDomainError(err, "failed to update user")
		}
		s.logger.WithField("user_id", user.ID).Info("User promoted to admin")
		return user, false, nil
	case !errors.Is(err, entity.ErrUserNotFound):
		return nil, false, response.RepositoryError("failed to get user")
	}

	if hashedPassword == "" {
		return nil, false, response.BadRequestError("password is required for a new admin")
	}
	name := req.Name
	if name == "" {
		name = "Administrator"
	}

	user = &entity.User{
		Name:     name,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     entity.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, response.FromDomainError(err, "failed to create user")
	}
	if _, _, err := s.walletRepo.GetOrCreate(ctx, user.ID, entity.DefaultCurrency); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to create wallet for admin")
		return nil, false, response.RepositoryError("failed to create wallet")
	}

	s.logger.WithField("user_id", user.ID).Info("Admin created")
	return user, true, nil
}

func (s *AuthUsecaseImpl) grantWelcomeBonus(ctx context.Context, user *entity.User, wallet *entity.Wallet) {
	coins := s.welcome.For(user.Role)
	if coins <= 0 {
		return
	}

	_, err := s.ledger.Apply(ctx, LedgerEntry{
		WalletID:    wallet.ID,
		Type:        entity.TransactionTypeCoinReward,
		Magnitudes:  entity.Magnitudes{Coin: coins},
		Description: "Welcome bonus",
		ReferenceID: WelcomeBonusReference,
		Metadata:    map[string]interface{}{"reason": "registration", "role": user.Role},
	})
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("Failed to grant welcome bonus")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"coins":   coins,
	}).Info("Welcome bonus granted")
}

func authResponse(signed string, user *entity.User) *params.AuthResponse {
	resp := &params.AuthResponse{
		Token: signed,
	}
	resp.User.ID = user.ID
	resp.User.Name = user.Name
	resp.User.Email = user.Email
	resp.User.Role = user.Role
	return resp
}
