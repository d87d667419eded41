package usecase

import (
	"context"
	"fmt"

	"go-coin-wallet/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SeedResult counts the rows written by SeedDefaults.
type SeedResult struct {
	Created int
	Updated int
}

func rolePtr(role string) *string {
	return &role
}

// DefaultCoinPackages is the launch catalog: generic packages open to every role,
// discounted lawyer packages and smaller client packages.
func DefaultCoinPackages() []*entity.CoinPackage {
	lawyer, client := rolePtr(entity.RoleLawyer), rolePtr(entity.RoleClient)
	return []*entity.CoinPackage{
		{Value: 10, Label: "Starter", Price: decimal.NewFromInt(25000), Order: 1, Description: "For light use"},
		{Value: 50, Label: "Bronze", Price: decimal.NewFromInt(100000), Order: 2, Description: "For regular use"},
		{Value: 100, Label: "Silver", Price: decimal.NewFromInt(180000), Order: 3, Description: "10% off, for heavy use"},
		{Value: 100, Label: "Lawyer Special", Price: decimal.NewFromInt(150000), Order: 1, Description: "25% lawyer discount", Role: lawyer},
		{Value: 500, Label: "Lawyer Gold", Price: decimal.NewFromInt(650000), Order: 2, Description: "35% lawyer discount", Role: lawyer},
		{Value: 1000, Label: "Lawyer Platinum", Price: decimal.NewFromInt(1100000), Order: 3, Description: "45% lawyer discount", Role: lawyer},
		{Value: 20, Label: "Client", Price: decimal.NewFromInt(45000), Order: 1, Description: "For a first consultation", Role: client},
		{Value: 50, Label: "Client Special", Price: decimal.NewFromInt(100000), Order: 2, Description: "For a full consultation", Role: client},
	}
}

// DefaultSMSPackages prices SMS credits at ten messages per coin.
func DefaultSMSPackages() []*entity.SMSPackage {
	return []*entity.SMSPackage{
		{Value: 100, Label: "SMS 100", CoinCost: 10, Order: 1},
		{Value: 500, Label: "SMS 500", CoinCost: 50, Order: 2},
		{Value: 1000, Label: "SMS 1000", CoinCost: 100, Order: 3},
	}
}

// SeedDefaults writes the default catalog. Running it again refreshes the terms of
// packages matched by label and role.
func (u *PackageUsecaseImpl) SeedDefaults(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}
	count := func(created bool) {
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	for _, pkg := range DefaultCoinPackages() {
		pkg.IsActive = true
		created, err := u.repo.UpsertCoinPackage(ctx, pkg)
		if err != nil {
			return result, fmt.Errorf("seed coin package %q: %w", pkg.Label, err)
		}
		count(created)
	}
	for _, pkg := range DefaultSMSPackages() {
		pkg.IsActive = true
		created, err := u.repo.UpsertSMSPackage(ctx, pkg)
		if err != nil {
			return result, fmt.Errorf("seed sms package %q: %w", pkg.Label, err)
		}
		count(created)
	}

	u.logger.WithFields(logrus.Fields{
		"created": result.Created,
		"updated": result.Updated,
	}).Info("Package catalog seeded")
	return result, nil
}
