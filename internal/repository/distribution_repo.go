package repository

import (
	"context"

	"sidopi/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DistributionRepository interface {
	Create(ctx context.Context, record *model.DistributionRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DistributionRecord, error)
	FindBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*model.DistributionRecord, error)
	List(ctx context.Context, page, limit int) ([]model.DistributionRecord, int64, error)
	// NextSequence serializes BA-YYYYMMDD- numbering the same way submission
	// numbering does
	NextSequence(ctx context.Context, prefix string) (int64, error)
}

type distributionRepository struct {
	db *gorm.DB
}

func NewDistributionRepository(db *gorm.DB) DistributionRepository {
	return &distributionRepository{db: db}
}

func (r *distributionRepository) Create(ctx context.Context, record *model.DistributionRecord) error {
	return GetDB(ctx, r.db).Create(record).Error
}

func (r *distributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DistributionRecord, error) {
	var record model.DistributionRecord
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Distributor").
		Preload("Submission").
		Preload("Submission.FarmerGroup").
		First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *distributionRepository) FindBySubmissionID(ctx context.Context, submissionID uuid.UUID) (*model.DistributionRecord, error) {
	var record model.DistributionRecord
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Where("submission_id = ?", submissionID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *distributionRepository) List(ctx context.Context, page, limit int) ([]model.DistributionRecord, int64, error) {
	var records []model.DistributionRecord
	var total int64

	db := GetDB(ctx, r.db).Model(&model.DistributionRecord{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.
		Preload("Items").
		Preload("Distributor").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func (r *distributionRepository) NextSequence(ctx context.Context, prefix string) (int64, error) {
	db := GetDB(ctx, r.db)

	if db.Dialector.Name() == "postgres" {
		db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix)
	}

	var count int64
	if err := db.Model(&model.DistributionRecord{}).
		Where("record_number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count + 1, nil
}
