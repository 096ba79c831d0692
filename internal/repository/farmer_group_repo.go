package repository

import (
	"context"

	"sidopi/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FarmerGroupRepository interface {
	Create(ctx context.Context, group *model.FarmerGroup) error
	Update(ctx context.Context, group *model.FarmerGroup) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FarmerGroup, error)
	List(ctx context.Context, page, limit int, search, district string) ([]model.FarmerGroup, int64, error)
}

type farmerGroupRepository struct {
	db *gorm.DB
}

func NewFarmerGroupRepository(db *gorm.DB) FarmerGroupRepository {
	return &farmerGroupRepository{db: db}
}

func (r *farmerGroupRepository) Create(ctx context.Context, group *model.FarmerGroup) error {
	return GetDB(ctx, r.db).Create(group).Error
}

func (r *farmerGroupRepository) Update(ctx context.Context, group *model.FarmerGroup) error {
	return GetDB(ctx, r.db).Save(group).Error
}

func (r *farmerGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.FarmerGroup{}).Error
}

func (r *farmerGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FarmerGroup, error) {
	var group model.FarmerGroup
	if err := GetDB(ctx, r.db).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *farmerGroupRepository) List(ctx context.Context, page, limit int, search, district string) ([]model.FarmerGroup, int64, error) {
	var groups []model.FarmerGroup
	var total int64

	db := GetDB(ctx, r.db).Model(&model.FarmerGroup{})
	if search != "" {
		db = db.Where("name LIKE ?", "%"+search+"%")
	}
	if district != "" {
		db = db.Where("district = ?", district)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name asc").Offset(offset).Limit(limit).Find(&groups).Error; err != nil {
		return nil, 0, err
	}

	return groups, total, nil
}
