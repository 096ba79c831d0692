package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sidopi/internal/model"
	"sidopi/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateMedicineRequest struct {
	Code         string   `json:"code" binding:"required"`
	Name         string   `json:"name" binding:"required"`
	Category     string   `json:"category" binding:"required,oneof=insektisida fungisida herbisida bakterisida"`
	ActiveAgent  string   `json:"active_agent"`
	Unit         string   `json:"unit" binding:"required"`
	PricePerUnit float64  `json:"price_per_unit" binding:"min=0"`
	TargetPests  []string `json:"target_pests" binding:"required,min=1,dive,required"`
}

type UpdateMedicineRequest struct {
	Name         string   `json:"name" binding:"required"`
	Category     string   `json:"category" binding:"required,oneof=insektisida fungisida herbisida bakterisida"`
	ActiveAgent  string   `json:"active_agent"`
	Unit         string   `json:"unit" binding:"required"`
	PricePerUnit float64  `json:"price_per_unit" binding:"min=0"`
	TargetPests  []string `json:"target_pests" binding:"required,min=1,dive,required"`
	IsActive     *bool    `json:"is_active"`
}

type AddStockLotRequest struct {
	BatchNumber  string  `json:"batch_number" binding:"required"`
	Quantity     float64 `json:"quantity" binding:"required,gt=0"`
	ExpiryDate   string  `json:"expiry_date" binding:"required"` // YYYY-MM-DD
	SupplierNote string  `json:"supplier_note"`
}

type MedicineResponse struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	ActiveAgent  string   `json:"active_agent"`
	Unit         string   `json:"unit"`
	PricePerUnit string   `json:"price_per_unit"`
	TargetPests  []string `json:"target_pests"`
	IsActive     bool     `json:"is_active"`
	TotalStock   string   `json:"total_stock"`
}

// --- Interface ---

// MedicineService is the inventory side of the system. Besides CRUD it
// implements the contracts the submission core consumes: GetMedicine,
// GetTotalStock, and the atomic allocate-or-fail Allocate.
type MedicineService interface {
	CreateMedicine(ctx context.Context, userID string, req CreateMedicineRequest) (MedicineResponse, error)
	UpdateMedicine(ctx context.Context, userID, id string, req UpdateMedicineRequest) (MedicineResponse, error)
	DeleteMedicine(ctx context.Context, userID, id string) error
	GetMedicineDetail(ctx context.Context, id string) (MedicineResponse, error)
	ListMedicines(ctx context.Context, page, limit int, search, category string) ([]MedicineResponse, int64, error)
	AddStockLot(ctx context.Context, userID, medicineID string, req AddStockLotRequest) error
	ListStockLots(ctx context.Context, medicineID string) ([]model.StockLot, error)
	ListMovements(ctx context.Context, medicineID string, page, limit int) ([]model.StockMovement, int64, error)

	// Oracle contracts consumed by the submission core
	GetMedicine(ctx context.Context, id uuid.UUID) (*model.Medicine, error)
	GetTotalStock(ctx context.Context, medicineID uuid.UUID) (decimal.Decimal, error)
	Allocate(ctx context.Context, medicineID, submissionItemID, submissionID uuid.UUID, quantity decimal.Decimal) error
}

type medicineService struct {
	medicineRepo repository.MedicineRepository
	stockRepo    repository.StockRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewMedicineService(
	medicineRepo repository.MedicineRepository,
	stockRepo repository.StockRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) MedicineService {
	return &medicineService{
		medicineRepo: medicineRepo,
		stockRepo:    stockRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *medicineService) CreateMedicine(ctx context.Context, userID string, req CreateMedicineRequest) (MedicineResponse, error) {
	if !model.ValidCategory(req.Category) {
		return MedicineResponse{}, fmt.Errorf("unknown medicine category %q", req.Category)
	}

	if _, err := s.medicineRepo.FindByCode(ctx, req.Code); err == nil {
		return MedicineResponse{}, errors.New("medicine code already exists")
	}

	medicine := model.Medicine{
		Code:         req.Code,
		Name:         req.Name,
		Category:     req.Category,
		ActiveAgent:  req.ActiveAgent,
		Unit:         req.Unit,
		PricePerUnit: decimal.NewFromFloat(req.PricePerUnit),
		TargetPests:  req.TargetPests,
		IsActive:     true,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.medicineRepo.Create(txCtx, &medicine); err != nil {
			return fmt.Errorf("failed to create medicine: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionCreateMedicine,
			EntityID:   medicine.ID.String(),
			EntityName: medicine.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return MedicineResponse{}, err
	}

	return s.toMedicineResponse(ctx, &medicine), nil
}

func (s *medicineService) UpdateMedicine(ctx context.Context, userID, id string, req UpdateMedicineRequest) (MedicineResponse, error) {
	medicineID, err := uuid.Parse(id)
	if err != nil {
		return MedicineResponse{}, fmt.Errorf("invalid medicine id: %w", err)
	}

	medicine, err := s.medicineRepo.FindByID(ctx, medicineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MedicineResponse{}, ErrMedicineNotFound
		}
		return MedicineResponse{}, fmt.Errorf("database error: %w", err)
	}

	medicine.Name = req.Name
	medicine.Category = req.Category
	medicine.ActiveAgent = req.ActiveAgent
	medicine.Unit = req.Unit
	medicine.PricePerUnit = decimal.NewFromFloat(req.PricePerUnit)
	medicine.TargetPests = req.TargetPests
	if req.IsActive != nil {
		medicine.IsActive = *req.IsActive
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.medicineRepo.Update(txCtx, medicine); err != nil {
			return fmt.Errorf("failed to update medicine: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionUpdateMedicine,
			EntityID:   medicine.ID.String(),
			EntityName: medicine.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		return MedicineResponse{}, err
	}

	return s.toMedicineResponse(ctx, medicine), nil
}

func (s *medicineService) DeleteMedicine(ctx context.Context, userID, id string) error {
	medicineID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid medicine id: %w", err)
	}

	medicine, err := s.medicineRepo.FindByID(ctx, medicineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMedicineNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.medicineRepo.Delete(txCtx, medicineID); err != nil {
			return fmt.Errorf("failed to delete medicine: %w", err)
		}

		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionDeleteMedicine,
			EntityID:   medicine.ID.String(),
			EntityName: medicine.Name,
			Details:    `{"deleted": true}`,
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

func (s *medicineService) GetMedicineDetail(ctx context.Context, id string) (MedicineResponse, error) {
	medicineID, err := uuid.Parse(id)
	if err != nil {
		return MedicineResponse{}, fmt.Errorf("invalid medicine id: %w", err)
	}

	medicine, err := s.medicineRepo.FindByID(ctx, medicineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MedicineResponse{}, ErrMedicineNotFound
		}
		return MedicineResponse{}, fmt.Errorf("database error: %w", err)
	}

	return s.toMedicineResponse(ctx, medicine), nil
}

func (s *medicineService) ListMedicines(ctx context.Context, page, limit int, search, category string) ([]MedicineResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	medicines, total, err := s.medicineRepo.List(ctx, page, limit, search, category)
	if err != nil {
		return nil, 0, err
	}

	res := make([]MedicineResponse, 0, len(medicines))
	for i := range medicines {
		res = append(res, s.toMedicineResponse(ctx, &medicines[i]))
	}

	return res, total, nil
}

func (s *medicineService) AddStockLot(ctx context.Context, userID, medicineID string, req AddStockLotRequest) error {
	mid, err := uuid.Parse(medicineID)
	if err != nil {
		return fmt.Errorf("invalid medicine id: %w", err)
	}

	medicine, err := s.medicineRepo.FindByID(ctx, mid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMedicineNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	expiry, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		return fmt.Errorf("invalid expiry_date, expected YYYY-MM-DD: %w", err)
	}
	if !expiry.After(time.Now()) {
		return errors.New("expiry_date must be in the future")
	}

	qty := decimal.NewFromFloat(req.Quantity)

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		lot := &model.StockLot{
			MedicineID:        mid,
			BatchNumber:       req.BatchNumber,
			InitialQuantity:   qty,
			RemainingQuantity: qty,
			ExpiryDate:        expiry,
			SupplierNote:      req.SupplierNote,
		}
		if err := s.stockRepo.CreateLot(txCtx, lot); err != nil {
			return fmt.Errorf("failed to create stock lot: %w", err)
		}

		total, err := s.stockRepo.TotalStock(txCtx, mid)
		if err != nil {
			return fmt.Errorf("failed to compute total stock: %w", err)
		}

		movement := &model.StockMovement{
			MedicineID:      mid,
			LotID:           &lot.ID,
			MovementType:    model.MovementIn,
			QuantityChanged: qty,
			StockAfter:      total,
		}
		if err := s.stockRepo.CreateMovement(txCtx, movement); err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}

		details, _ := json.Marshal(req)
		audit := &model.AuditLog{
			UserID:     parseUserID(userID),
			Action:     model.ActionAddStockLot,
			EntityID:   lot.ID.String(),
			EntityName: medicine.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

func (s *medicineService) ListStockLots(ctx context.Context, medicineID string) ([]model.StockLot, error) {
	mid, err := uuid.Parse(medicineID)
	if err != nil {
		return nil, fmt.Errorf("invalid medicine id: %w", err)
	}
	return s.stockRepo.ListLots(ctx, mid)
}

func (s *medicineService) ListMovements(ctx context.Context, medicineID string, page, limit int) ([]model.StockMovement, int64, error) {
	mid, err := uuid.Parse(medicineID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid medicine id: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.stockRepo.ListMovements(ctx, mid, page, limit)
}

// GetMedicine resolves a medicine for the submission core, failing with
// ErrMedicineNotFound / ErrMedicineInactive as the oracle contract requires
func (s *medicineService) GetMedicine(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	medicine, err := s.medicineRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMedicineNotFound, id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !medicine.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrMedicineInactive, medicine.Name)
	}
	return medicine, nil
}

func (s *medicineService) GetTotalStock(ctx context.Context, medicineID uuid.UUID) (decimal.Decimal, error) {
	return s.stockRepo.TotalStock(ctx, medicineID)
}

// Allocate deducts quantity from the medicine's lots, earliest expiry first,
// inside one transaction with the lot rows locked. It either deducts the full
// quantity or fails with ErrInsufficientStock and changes nothing.
func (s *medicineService) Allocate(ctx context.Context, medicineID, submissionItemID, submissionID uuid.UUID, quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: allocation quantity must be positive", ErrInvalidApprovalData)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		lots, err := s.stockRepo.FindAvailableLotsForUpdate(txCtx, medicineID)
		if err != nil {
			return fmt.Errorf("failed to lock stock lots: %w", err)
		}

		available := decimal.Zero
		for _, lot := range lots {
			available = available.Add(lot.RemainingQuantity)
		}
		if available.LessThan(quantity) {
			return fmt.Errorf("%w: requested %s, available %s", ErrInsufficientStock, quantity, available)
		}

		remainingToAllocate := quantity
		runningTotal := available
		for _, lot := range lots {
			if remainingToAllocate.LessThanOrEqual(decimal.Zero) {
				break
			}

			take := decimal.Min(lot.RemainingQuantity, remainingToAllocate)
			newRemaining := lot.RemainingQuantity.Sub(take)
			if err := s.stockRepo.UpdateLotRemaining(txCtx, lot.ID, newRemaining); err != nil {
				return fmt.Errorf("failed to deduct lot %s: %w", lot.BatchNumber, err)
			}

			runningTotal = runningTotal.Sub(take)
			lotID := lot.ID
			movement := &model.StockMovement{
				MedicineID:       medicineID,
				LotID:            &lotID,
				SubmissionID:     &submissionID,
				SubmissionItemID: &submissionItemID,
				MovementType:     model.MovementAllocation,
				QuantityChanged:  take.Neg(),
				StockAfter:       runningTotal,
			}
			if err := s.stockRepo.CreateMovement(txCtx, movement); err != nil {
				return fmt.Errorf("failed to record allocation movement: %w", err)
			}

			remainingToAllocate = remainingToAllocate.Sub(take)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"submission_id":      submissionID.String(),
			"submission_item_id": submissionItemID.String(),
			"quantity":           quantity.String(),
		})
		audit := &model.AuditLog{
			Action:     model.ActionAllocateStock,
			EntityID:   medicineID.String(),
			EntityName: model.MovementAllocation,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		return nil
	})
}

// --- Helpers ---

func (s *medicineService) toMedicineResponse(ctx context.Context, m *model.Medicine) MedicineResponse {
	total, err := s.stockRepo.TotalStock(ctx, m.ID)
	if err != nil {
		total = decimal.Zero
	}

	return MedicineResponse{
		ID:           m.ID.String(),
		Code:         m.Code,
		Name:         m.Name,
		Category:     m.Category,
		ActiveAgent:  m.ActiveAgent,
		Unit:         m.Unit,
		PricePerUnit: m.PricePerUnit.StringFixed(2),
		TargetPests:  m.TargetPests,
		IsActive:     m.IsActive,
		TotalStock:   total.StringFixed(2),
	}
}

func parseUserID(userID string) *uuid.UUID {
	if parsed, err := uuid.Parse(userID); err == nil {
		return &parsed
	}
	return nil
}
