package service

import (
	"context"
	"fmt"
	"time"

	"sidopi/internal/model"
	"sidopi/internal/repository"
)

const topRankingLimit = 5

// StatisticsService aggregates submission and distribution activity for the
// dinas dashboard
type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate string) (*model.StatisticsResponse, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo}
}

// GetStatistics builds the dashboard aggregate for [startDate, endDate].
// Dates are YYYY-MM-DD; an empty range defaults to the last 30 days.
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate string) (*model.StatisticsResponse, error) {
	start, end, err := resolveRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.repo.CountByStatus(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	byType, err := s.repo.CountByType(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count by type: %w", err)
	}

	requested, approved, distributed, err := s.repo.QuantityTotals(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to sum quantities: %w", err)
	}

	topMedicines, err := s.repo.TopRequestedMedicines(ctx, start, end, topRankingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank medicines: %w", err)
	}

	topGroups, err := s.repo.TopFarmerGroups(ctx, start, end, topRankingLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank farmer groups: %w", err)
	}

	return &model.StatisticsResponse{
		TimeRangeStartDate:   start,
		TimeRangeEndDate:     end,
		SubmissionsByStatus:  byStatus,
		SubmissionsByType:    byType,
		TotalRequestedQty:    requested,
		TotalApprovedQty:     approved,
		TotalDistributedQty:  distributed,
		TopRequestedMedicine: topMedicines,
		TopFarmerGroups:      topGroups,
	}, nil
}

func resolveRange(startDate, endDate string) (time.Time, time.Time, error) {
	now := time.Now()
	start := now.AddDate(0, 0, -30)
	end := now

	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date, expected YYYY-MM-DD: %w", err)
		}
		start = parsed
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date, expected YYYY-MM-DD: %w", err)
		}
		// Inclusive end of day
		end = parsed.Add(24*time.Hour - time.Nanosecond)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date must not precede start_date")
	}

	return start, end, nil
}
