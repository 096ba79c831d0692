package repository

import (
	"context"

	"sidopi/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MedicineRepository interface {
	Create(ctx context.Context, medicine *model.Medicine) error
	Update(ctx context.Context, medicine *model.Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Medicine, error)
	FindByCode(ctx context.Context, code string) (*model.Medicine, error)
	List(ctx context.Context, page, limit int, search, category string) ([]model.Medicine, int64, error)
	ListActive(ctx context.Context) ([]model.Medicine, error)
}

type medicineRepository struct {
	db *gorm.DB
}

func NewMedicineRepository(db *gorm.DB) MedicineRepository {
	return &medicineRepository{db: db}
}

func (r *medicineRepository) Create(ctx context.Context, medicine *model.Medicine) error {
	return GetDB(ctx, r.db).Create(medicine).Error
}

func (r *medicineRepository) Update(ctx context.Context, medicine *model.Medicine) error {
	return GetDB(ctx, r.db).Save(medicine).Error
}

func (r *medicineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Medicine{}).Error
}

func (r *medicineRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	var medicine model.Medicine
	if err := GetDB(ctx, r.db).First(&medicine, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &medicine, nil
}

func (r *medicineRepository) FindByCode(ctx context.Context, code string) (*model.Medicine, error) {
	var medicine model.Medicine
	if err := GetDB(ctx, r.db).Where("code = ?", code).First(&medicine).Error; err != nil {
		return nil, err
	}
	return &medicine, nil
}

func (r *medicineRepository) List(ctx context.Context, page, limit int, search, category string) ([]model.Medicine, int64, error) {
	var medicines []model.Medicine
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Medicine{})
	if search != "" {
		db = db.Where("name LIKE ?", "%"+search+"%")
	}
	if category != "" {
		db = db.Where("category = ?", category)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&medicines).Error; err != nil {
		return nil, 0, err
	}

	return medicines, total, nil
}

// ListActive returns every active medicine — the recommendation engine's
// candidate pool
func (r *medicineRepository) ListActive(ctx context.Context) ([]model.Medicine, error) {
	var medicines []model.Medicine
	if err := GetDB(ctx, r.db).Where("is_active = ?", true).Find(&medicines).Error; err != nil {
		return nil, err
	}
	return medicines, nil
}
