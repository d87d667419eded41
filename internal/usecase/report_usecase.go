package usecase

import (
	"context"
	"time"

	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/internal/entity"
	"go-coin-wallet/internal/params"
	"go-coin-wallet/internal/repository"

	"github.com/sirupsen/logrus"
)

const reportDateLayout = "2006-01-02"

type ReportUsecase interface {
	Summary(ctx context.Context, query *params.SummaryQuery) (*params.SummaryResponse, *response.CustomError)
}

type ReportUsecaseImpl struct {
	repo   repository.WalletRepository
	logger *logrus.Logger
}

func NewReportUsecase(repo repository.WalletRepository, logger *logrus.Logger) ReportUsecase {
	return &ReportUsecaseImpl{
		repo:   repo,
		logger: logger,
	}
}

// Summary aggregates transactions by type and status. To is inclusive of the whole day.
func (u *ReportUsecaseImpl) Summary(ctx context.Context, query *params.SummaryQuery) (*params.SummaryResponse, *response.CustomError) {
	var from, to *time.Time
	if query.From != "" {
		t, err := time.Parse(reportDateLayout, query.From)
		if err != nil {
			return nil, response.BadRequestError("invalid from date")
		}
		from = &t
	}
	if query.To != "" {
		t, err := time.Parse(reportDateLayout, query.To)
		if err != nil {
			return nil, response.BadRequestError("invalid to date")
		}
		t = t.AddDate(0, 0, 1)
		to = &t
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, response.BadRequestError("from must not be after to")
	}

	rows, err := u.repo.SummarizeTransactions(ctx, from, to)
	if err != nil {
		u.logger.WithError(err).Error("Failed to summarize transactions")
		return nil, response.RepositoryError("failed to summarize transactions")
	}
	if rows == nil {
		rows = []entity.TransactionSummary{}
	}

	return &params.SummaryResponse{From: from, To: to, Rows: rows}, nil
}
