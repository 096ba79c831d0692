package service

import (
	"context"
	"testing"
	"time"

	"sidopi/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) addLot(t *testing.T, medicineID uuid.UUID, quantity float64, expiry time.Time) *model.StockLot {
	t.Helper()
	qty := decimal.NewFromFloat(quantity)
	lot := &model.StockLot{
		MedicineID:        medicineID,
		BatchNumber:       "BATCH-" + uuid.NewString()[:8],
		InitialQuantity:   qty,
		RemainingQuantity: qty,
		ExpiryDate:        expiry,
	}
	require.NoError(t, e.db.Create(lot).Error)
	return lot
}

func (e *testEnv) lotRemaining(t *testing.T, lotID uuid.UUID) decimal.Decimal {
	t.Helper()
	var lot model.StockLot
	require.NoError(t, e.db.First(&lot, "id = ?", lotID).Error)
	return lot.RemainingQuantity
}

func TestAllocateDrainsEarliestExpiryFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 0, time.Time{})

	later := env.addLot(t, medicine.ID, 10, time.Now().AddDate(1, 0, 0))
	earlier := env.addLot(t, medicine.ID, 10, time.Now().AddDate(0, 2, 0))

	err := env.medicines.Allocate(ctx, medicine.ID, uuid.New(), uuid.New(), decimal.NewFromInt(12))
	require.NoError(t, err)

	// The soon-to-expire lot empties before the fresher one is touched
	assert.True(t, env.lotRemaining(t, earlier.ID).IsZero())
	assert.True(t, env.lotRemaining(t, later.ID).Equal(decimal.NewFromInt(8)))

	total, err := env.stockRepo.TotalStock(ctx, medicine.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(8)), "got %s", total)

	// One movement per consumed lot, with running stock-after snapshots
	var movements []model.StockMovement
	require.NoError(t, env.db.
		Where("medicine_id = ?", medicine.ID).
		Order("stock_after DESC").
		Find(&movements).Error)
	require.Len(t, movements, 2)
	assert.True(t, movements[0].QuantityChanged.Equal(decimal.NewFromInt(-10)))
	assert.True(t, movements[0].StockAfter.Equal(decimal.NewFromInt(10)))
	assert.True(t, movements[1].QuantityChanged.Equal(decimal.NewFromInt(-2)))
	assert.True(t, movements[1].StockAfter.Equal(decimal.NewFromInt(8)))
}

func TestAllocateInsufficientStockRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 0, time.Time{})
	lot := env.addLot(t, medicine.ID, 20, time.Now().AddDate(1, 0, 0))

	err := env.medicines.Allocate(ctx, medicine.ID, uuid.New(), uuid.New(), decimal.NewFromInt(25))
	assert.ErrorIs(t, err, ErrInsufficientStock)

	assert.True(t, env.lotRemaining(t, lot.ID).Equal(decimal.NewFromInt(20)))

	var count int64
	env.db.Model(&model.StockMovement{}).Where("medicine_id = ?", medicine.ID).Count(&count)
	assert.Zero(t, count)
}

func TestAllocateSkipsExpiredLots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 0, time.Time{})

	expired := env.addLot(t, medicine.ID, 50, time.Now().AddDate(0, 0, -1))
	fresh := env.addLot(t, medicine.ID, 10, time.Now().AddDate(1, 0, 0))

	err := env.medicines.Allocate(ctx, medicine.ID, uuid.New(), uuid.New(), decimal.NewFromInt(8))
	require.NoError(t, err)

	assert.True(t, env.lotRemaining(t, expired.ID).Equal(decimal.NewFromInt(50)))
	assert.True(t, env.lotRemaining(t, fresh.ID).Equal(decimal.NewFromInt(2)))

	// Expired quantity never counts toward availability either
	err = env.medicines.Allocate(ctx, medicine.ID, uuid.New(), uuid.New(), decimal.NewFromInt(5))
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestAllocateRejectsNonPositiveQuantity(t *testing.T) {
	env := newTestEnv(t)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 10, time.Now().AddDate(1, 0, 0))

	err := env.medicines.Allocate(context.Background(), medicine.ID, uuid.New(), uuid.New(), decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidApprovalData)
}

func TestAddStockLotRecordsInMovement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, model.RoleAdmin)
	medicine := env.createMedicine(t, model.CategoryFungisida, "kg", []string{"blas"}, 0, time.Time{})

	err := env.medicines.AddStockLot(ctx, admin.ID.String(), medicine.ID.String(), AddStockLotRequest{
		BatchNumber: "BATCH-2026-001",
		Quantity:    40,
		ExpiryDate:  time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
	})
	require.NoError(t, err)

	total, err := env.stockRepo.TotalStock(ctx, medicine.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(40)))

	movements, _, err := env.stockRepo.ListMovements(ctx, medicine.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, model.MovementIn, movements[0].MovementType)
	assert.True(t, movements[0].QuantityChanged.Equal(decimal.NewFromInt(40)))
}

func TestAddStockLotRejectsPastExpiry(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, model.RoleAdmin)
	medicine := env.createMedicine(t, model.CategoryFungisida, "kg", []string{"blas"}, 0, time.Time{})

	err := env.medicines.AddStockLot(context.Background(), admin.ID.String(), medicine.ID.String(), AddStockLotRequest{
		BatchNumber: "BATCH-OLD",
		Quantity:    10,
		ExpiryDate:  time.Now().AddDate(0, 0, -5).Format("2006-01-02"),
	})
	assert.Error(t, err)
}

func TestDeleteMedicineSoftDeletes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, model.RoleAdmin)
	medicine := env.createMedicine(t, model.CategoryInsektisida, "liter", []string{"wereng coklat"}, 15, time.Now().AddDate(1, 0, 0))

	require.NoError(t, env.medicines.DeleteMedicine(ctx, admin.ID.String(), medicine.ID.String()))

	_, err := env.medicines.GetMedicineDetail(ctx, medicine.ID.String())
	assert.ErrorIs(t, err, ErrMedicineNotFound)

	// Soft delete keeps the row for movement history
	var count int64
	env.db.Unscoped().Model(&model.Medicine{}).Where("id = ?", medicine.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}
