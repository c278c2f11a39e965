package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "vinvest/internal/errors"
	"vinvest/internal/logger"
	"vinvest/internal/metrics"
	"vinvest/internal/models"
)

// SnapshotRetention is how long portfolio snapshots are kept.
const SnapshotRetention = 7 * 24 * time.Hour

// portfolioSnapshotService records periodic portfolio totals.
type portfolioSnapshotService struct {
	db        *gorm.DB
	holdings  HoldingServicer
	valuation ValuationServicer
}

// NewPortfolioSnapshotService creates a new PortfolioSnapshotServicer.
func NewPortfolioSnapshotService(db *gorm.DB, holdings HoldingServicer, valuation ValuationServicer) PortfolioSnapshotServicer {
	return &portfolioSnapshotService{db: db, holdings: holdings, valuation: valuation}
}

// ComputeAndRecordSnapshots stores one total per user with holdings, then
// prunes snapshots older than the retention window. Users whose quotes
// cannot be fetched or whose snapshot cannot be stored are skipped and
// counted as failed.
func (s *portfolioSnapshotService) ComputeAndRecordSnapshots(ctx context.Context, recordedAt time.Time) (*SnapshotRun, error) {
	recordedAt = recordedAt.UTC()

	emails, err := s.holdings.ListUsersWithHoldings()
	if err != nil {
		return nil, err
	}

	run := &SnapshotRun{}
	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return run, err
		}

		total, err := s.valuation.PortfolioTotal(ctx, email)
		if err != nil {
			logger.Get().Warnw("skipping portfolio snapshot", "user", email, "error", err)
			metrics.SnapshotsRecorded.WithLabelValues(metrics.OutcomeFailed).Inc()
			run.Failed++
			continue
		}

		if err := s.upsert(email, total.Round(2), recordedAt); err != nil {
			logger.Get().Warnw("failed to store portfolio snapshot", "user", email, "error", err)
			metrics.SnapshotsRecorded.WithLabelValues(metrics.OutcomeFailed).Inc()
			run.Failed++
			continue
		}
		metrics.SnapshotsRecorded.WithLabelValues(metrics.OutcomeOK).Inc()
		run.Recorded++
	}

	pruned, err := s.PruneSnapshots(recordedAt.Add(-SnapshotRetention))
	if err != nil {
		return run, err
	}
	run.Pruned = pruned

	return run, nil
}

// upsert replaces an existing snapshot for the same user and instant.
func (s *portfolioSnapshotService) upsert(email string, total decimal.Decimal, recordedAt time.Time) error {
	var existing models.PortfolioSnapshot
	result := s.db.Where("user_email = ? AND recorded_at = ?", email, recordedAt).Limit(1).Find(&existing)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}

	if result.RowsAffected > 0 {
		if err := s.db.Model(&existing).Update("total_value", total).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	}
	snapshot := models.PortfolioSnapshot{UserEmail: email, TotalValue: total, RecordedAt: recordedAt}
	if err := s.db.Create(&snapshot).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// PruneSnapshots deletes snapshots recorded before the cutoff.
func (s *portfolioSnapshotService) PruneSnapshots(before time.Time) (int64, error) {
	result := s.db.Where("recorded_at < ?", before.UTC()).Delete(&models.PortfolioSnapshot{})
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// GetHistory returns the user's snapshots, oldest first.
func (s *portfolioSnapshotService) GetHistory(email string) ([]models.PortfolioSnapshot, error) {
	var snapshots []models.PortfolioSnapshot
	if err := s.db.Where("user_email = ?", normalizeEmail(email)).
		Order("recorded_at ASC").
		Find(&snapshots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return snapshots, nil
}
