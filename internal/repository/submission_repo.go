package repository

import (
	"context"
	"time"

	"sidopi/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubmissionFilter narrows List results; zero values mean "no filter"
type SubmissionFilter struct {
	Status         string
	SubmissionType string
	SubmitterID    *uuid.UUID
	District       string
	Page           int
	Limit          int
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *model.Submission) error
	Save(ctx context.Context, submission *model.Submission) error
	SaveItem(ctx context.Context, item *model.SubmissionItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]model.Submission, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// NextSequence returns the next number in the month-scoped sequence for
	// the given SUB-YYYYMM- prefix, serialized by an advisory lock on postgres
	NextSequence(ctx context.Context, prefix string) (int64, error)
	ListStalePending(ctx context.Context, olderThan time.Time) ([]model.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	return GetDB(ctx, r.db).Create(submission).Error
}

func (r *submissionRepository) Save(ctx context.Context, submission *model.Submission) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(submission).Error
}

func (r *submissionRepository) SaveItem(ctx context.Context, item *model.SubmissionItem) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Save(item).Error
}

func (r *submissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.Medicine").
		Preload("FarmerGroup").
		Preload("Submitter").
		Preload("Reviewer").
		Preload("Distributor").
		First(&submission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// FindByIDForUpdate row-locks the submission so concurrent status updates on
// the same id serialize at the database
func (r *submissionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	db := GetDB(ctx, r.db)
	// Row locks need postgres; sqlite serializes writes on its own
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var submission model.Submission
	if err := db.
		First(&submission, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := GetDB(ctx, r.db).
		Preload("Medicine").
		Where("submission_id = ?", id).
		Find(&submission.Items).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]model.Submission, int64, error) {
	var submissions []model.Submission
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Submission{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.SubmissionType != "" {
		db = db.Where("submission_type = ?", filter.SubmissionType)
	}
	if filter.SubmitterID != nil {
		db = db.Where("submitter_id = ?", *filter.SubmitterID)
	}
	if filter.District != "" {
		db = db.Where("district = ?", filter.District)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.
		Preload("Items").
		Preload("Items.Medicine").
		Preload("FarmerGroup").
		Preload("Submitter").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("submission_id = ?", id).Delete(&model.SubmissionItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Submission{}).Error
}

func (r *submissionRepository) NextSequence(ctx context.Context, prefix string) (int64, error) {
	db := GetDB(ctx, r.db)

	// Advisory lock prevents concurrent duplicate numbers; postgres only
	if db.Dialector.Name() == "postgres" {
		db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix)
	}

	var count int64
	if err := db.Model(&model.Submission{}).
		Where("submission_number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count + 1, nil
}

func (r *submissionRepository) ListStalePending(ctx context.Context, olderThan time.Time) ([]model.Submission, error) {
	var submissions []model.Submission
	if err := GetDB(ctx, r.db).
		Where("status = ? AND created_at < ?", model.StatusPending, olderThan).
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}
