package service

import (
	"context"
	"errors"
	"fmt"

	"sidopi/internal/model"
	"sidopi/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DistributionService reads berita acara records. Records are created only
// by the submission lifecycle when a submission enters DISTRIBUTED; there is
// no direct write path.
type DistributionService interface {
	GetRecord(ctx context.Context, id string) (*model.DistributionRecord, error)
	GetRecordBySubmission(ctx context.Context, submissionID string) (*model.DistributionRecord, error)
	ListRecords(ctx context.Context, page, limit int) ([]model.DistributionRecord, int64, error)
}

type distributionService struct {
	repo repository.DistributionRepository
}

func NewDistributionService(repo repository.DistributionRepository) DistributionService {
	return &distributionService{repo: repo}
}

func (s *distributionService) GetRecord(ctx context.Context, id string) (*model.DistributionRecord, error) {
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid record id: %w", err)
	}

	record, err := s.repo.FindByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("distribution record not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return record, nil
}

func (s *distributionService) GetRecordBySubmission(ctx context.Context, submissionID string) (*model.DistributionRecord, error) {
	sid, err := uuid.Parse(submissionID)
	if err != nil {
		return nil, fmt.Errorf("invalid submission id: %w", err)
	}

	record, err := s.repo.FindBySubmissionID(ctx, sid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("distribution record not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return record, nil
}

func (s *distributionService) ListRecords(ctx context.Context, page, limit int) ([]model.DistributionRecord, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit)
}
