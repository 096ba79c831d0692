package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MedicineCategory enum constants (Indonesian regulatory categories)
const (
	CategoryInsektisida = "insektisida"
	CategoryFungisida   = "fungisida"
	CategoryHerbisida   = "herbisida"
	CategoryBakterisida = "bakterisida"
)

// ValidCategory reports whether category is a known medicine category
func ValidCategory(category string) bool {
	switch category {
	case CategoryInsektisida, CategoryFungisida, CategoryHerbisida, CategoryBakterisida:
		return true
	}
	return false
}

// Medicine represents a registered pesticide/agricultural medicine product.
// TargetPests is the declared list of OPT (plant pest organisms) the product
// treats — the matching key for recommendations.
type Medicine struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code         string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Category     string          `gorm:"type:varchar(30);not null;index" json:"category"`
	ActiveAgent  string          `gorm:"type:varchar(255)" json:"active_agent"` // Active ingredient, e.g. "imidakloprid 200 g/l"
	Unit         string          `gorm:"type:varchar(20);not null" json:"unit"` // liter, kg, botol, ...
	PricePerUnit decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"price_per_unit"`
	TargetPests  []string        `gorm:"serializer:json;type:text" json:"target_pests"`
	IsActive     bool            `gorm:"default:true" json:"is_active"`
	Lots         []StockLot      `gorm:"foreignKey:MedicineID" json:"lots,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (m *Medicine) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// StockLot is a received batch of a medicine with its own expiry date.
// Allocation consumes lots earliest-expiry-first (FEFO).
type StockLot struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MedicineID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"medicine_id"`
	Medicine          *Medicine       `gorm:"foreignKey:MedicineID" json:"medicine,omitempty"`
	BatchNumber       string          `gorm:"type:varchar(100);not null" json:"batch_number"`
	InitialQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"initial_quantity"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"remaining_quantity"`
	ExpiryDate        time.Time       `gorm:"not null;index" json:"expiry_date"`
	SupplierNote      string          `gorm:"type:text" json:"supplier_note"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (l *StockLot) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// StockMovementType enum constants
const (
	MovementIn         = "IN"         // Lot intake
	MovementAllocation = "ALLOCATION" // Deduction for an approved submission item
	MovementAdjustment = "ADJUSTMENT" // Manual correction
)

// StockMovement records every stock change strictly, with a snapshot of the
// medicine's total stock after the change
type StockMovement struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MedicineID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"medicine_id"`
	LotID            *uuid.UUID      `gorm:"type:uuid;index" json:"lot_id"`
	SubmissionID     *uuid.UUID      `gorm:"type:uuid;index" json:"submission_id"`      // Set for ALLOCATION movements
	SubmissionItemID *uuid.UUID      `gorm:"type:uuid;index" json:"submission_item_id"` // Set for ALLOCATION movements
	MovementType     string          `gorm:"type:varchar(20);not null" json:"movement_type"`
	QuantityChanged  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity_changed"` // Negative for deductions
	StockAfter       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"stock_after"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
