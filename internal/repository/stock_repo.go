package repository

import (
	"context"
	"time"

	"sidopi/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository interface {
	CreateLot(ctx context.Context, lot *model.StockLot) error
	ListLots(ctx context.Context, medicineID uuid.UUID) ([]model.StockLot, error)
	// FindAvailableLotsForUpdate returns unexpired lots with stock left,
	// earliest expiry first, row-locked for the duration of the transaction
	FindAvailableLotsForUpdate(ctx context.Context, medicineID uuid.UUID) ([]model.StockLot, error)
	UpdateLotRemaining(ctx context.Context, lotID uuid.UUID, remaining decimal.Decimal) error
	TotalStock(ctx context.Context, medicineID uuid.UUID) (decimal.Decimal, error)
	EarliestExpiry(ctx context.Context, medicineID uuid.UUID) (*time.Time, error)
	CreateMovement(ctx context.Context, movement *model.StockMovement) error
	ListMovements(ctx context.Context, medicineID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error)
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func (r *stockRepository) CreateLot(ctx context.Context, lot *model.StockLot) error {
	return GetDB(ctx, r.db).Create(lot).Error
}

func (r *stockRepository) ListLots(ctx context.Context, medicineID uuid.UUID) ([]model.StockLot, error) {
	var lots []model.StockLot
	if err := GetDB(ctx, r.db).
		Where("medicine_id = ?", medicineID).
		Order("expiry_date asc").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

func (r *stockRepository) FindAvailableLotsForUpdate(ctx context.Context, medicineID uuid.UUID) ([]model.StockLot, error) {
	db := GetDB(ctx, r.db)
	// Row locks need postgres; sqlite serializes writes on its own
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var lots []model.StockLot
	if err := db.
		Where("medicine_id = ? AND remaining_quantity > 0 AND expiry_date > ?", medicineID, time.Now()).
		Order("expiry_date asc").
		Find(&lots).Error; err != nil {
		return nil, err
	}
	return lots, nil
}

func (r *stockRepository) UpdateLotRemaining(ctx context.Context, lotID uuid.UUID, remaining decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.StockLot{}).
		Where("id = ?", lotID).
		Update("remaining_quantity", remaining).Error
}

// TotalStock sums the remaining quantity across unexpired lots — the
// aggregate on-hand figure reconciliation validates against
func (r *stockRepository) TotalStock(ctx context.Context, medicineID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&model.StockLot{}).
		Select("COALESCE(SUM(remaining_quantity), 0) as total").
		Where("medicine_id = ? AND expiry_date > ?", medicineID, time.Now()).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

func (r *stockRepository) EarliestExpiry(ctx context.Context, medicineID uuid.UUID) (*time.Time, error) {
	var lot model.StockLot
	err := GetDB(ctx, r.db).
		Where("medicine_id = ? AND remaining_quantity > 0 AND expiry_date > ?", medicineID, time.Now()).
		Order("expiry_date asc").
		First(&lot).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &lot.ExpiryDate, nil
}

func (r *stockRepository) CreateMovement(ctx context.Context, movement *model.StockMovement) error {
	return GetDB(ctx, r.db).Create(movement).Error
}

func (r *stockRepository) ListMovements(ctx context.Context, medicineID uuid.UUID, page, limit int) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	var total int64

	db := GetDB(ctx, r.db).Model(&model.StockMovement{}).Where("medicine_id = ?", medicineID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at desc").Offset(offset).Limit(limit).Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}
