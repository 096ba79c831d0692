package repository

import (
	"context"
	"time"

	"sidopi/internal/model"

	"gorm.io/gorm"
)

type StatisticsRepository interface {
	CountByStatus(ctx context.Context, start, end time.Time) ([]model.StatusCount, error)
	CountByType(ctx context.Context, start, end time.Time) ([]model.TypeCount, error)
	// QuantityTotals sums requested/approved/distributed quantities over
	// submissions created in the range
	QuantityTotals(ctx context.Context, start, end time.Time) (requested, approved, distributed float64, err error)
	TopRequestedMedicines(ctx context.Context, start, end time.Time, limit int) ([]model.MedicineRanking, error)
	TopFarmerGroups(ctx context.Context, start, end time.Time, limit int) ([]model.FarmerGroupRanking, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) CountByStatus(ctx context.Context, start, end time.Time) ([]model.StatusCount, error) {
	var counts []model.StatusCount
	err := GetDB(ctx, r.db).Model(&model.Submission{}).
		Select("status, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("status").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}

func (r *statisticsRepository) CountByType(ctx context.Context, start, end time.Time) ([]model.TypeCount, error) {
	var counts []model.TypeCount
	err := GetDB(ctx, r.db).Model(&model.Submission{}).
		Select("submission_type, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("submission_type").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}

func (r *statisticsRepository) QuantityTotals(ctx context.Context, start, end time.Time) (float64, float64, float64, error) {
	var totals struct {
		Requested   float64
		Approved    float64
		Distributed float64
	}
	err := GetDB(ctx, r.db).Model(&model.SubmissionItem{}).
		Select(`COALESCE(SUM(submission_items.requested_quantity), 0) as requested,
			COALESCE(SUM(submission_items.approved_quantity), 0) as approved,
			COALESCE(SUM(submission_items.distributed_quantity), 0) as distributed`).
		Joins("JOIN submissions ON submissions.id = submission_items.submission_id").
		Where("submissions.created_at BETWEEN ? AND ?", start, end).
		Scan(&totals).Error
	return totals.Requested, totals.Approved, totals.Distributed, err
}

func (r *statisticsRepository) TopRequestedMedicines(ctx context.Context, start, end time.Time, limit int) ([]model.MedicineRanking, error) {
	var rankings []model.MedicineRanking
	err := GetDB(ctx, r.db).Model(&model.SubmissionItem{}).
		Select(`submission_items.medicine_id,
			medicines.name as medicine_name,
			medicines.code as medicine_code,
			COALESCE(SUM(submission_items.requested_quantity), 0) as total_quantity,
			COALESCE(SUM(submission_items.requested_quantity * medicines.price_per_unit), 0) as total_value`).
		Joins("JOIN submissions ON submissions.id = submission_items.submission_id").
		Joins("JOIN medicines ON medicines.id = submission_items.medicine_id").
		Where("submissions.created_at BETWEEN ? AND ?", start, end).
		Group("submission_items.medicine_id, medicines.name, medicines.code").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rankings).Error
	return rankings, err
}

func (r *statisticsRepository) TopFarmerGroups(ctx context.Context, start, end time.Time, limit int) ([]model.FarmerGroupRanking, error) {
	var rankings []model.FarmerGroupRanking
	err := GetDB(ctx, r.db).Model(&model.Submission{}).
		Select(`submissions.farmer_group_id,
			farmer_groups.name as farmer_group_name,
			farmer_groups.district,
			COUNT(*) as submission_count`).
		Joins("JOIN farmer_groups ON farmer_groups.id = submissions.farmer_group_id").
		Where("submissions.created_at BETWEEN ? AND ?", start, end).
		Group("submissions.farmer_group_id, farmer_groups.name, farmer_groups.district").
		Order("submission_count DESC").
		Limit(limit).
		Scan(&rankings).Error
	return rankings, err
}
