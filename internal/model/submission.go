package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubmissionStatus enum constants. REJECTED, COMPLETED, CANCELLED and
// EXPIRED are terminal — no outgoing transitions.
const (
	StatusPending           = "PENDING"
	StatusUnderReview       = "UNDER_REVIEW"
	StatusApproved          = "APPROVED"
	StatusPartiallyApproved = "PARTIALLY_APPROVED"
	StatusRejected          = "REJECTED"
	StatusDistributed       = "DISTRIBUTED"
	StatusCompleted         = "COMPLETED"
	StatusCancelled         = "CANCELLED"
	StatusExpired           = "EXPIRED"
)

// SubmissionType enum constants
const (
	TypePPLRegular    = "PPL_REGULAR"
	TypePOPTEmergency = "POPT_EMERGENCY"
	TypePOPTScheduled = "POPT_SCHEDULED"
)

// POPT activity types — POPT_EMERGENCY vs POPT_SCHEDULED is derived from these
const (
	ActivityEmergencyResponse = "EMERGENCY_RESPONSE"
	ActivityPestControl       = "PEST_CONTROL"
	ActivityRoutineMonitoring = "ROUTINE_MONITORING"
	ActivityPreventive        = "PREVENTIVE"
)

// Priority enum constants
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

// Submission is a request for medicine distribution to a farmer group,
// created by a field officer and reviewed by the district authority. It is
// mutated only through the status state machine and never physically deleted
// except by an administrator while PENDING or CANCELLED.
type Submission struct {
	ID               uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubmissionNumber string           `gorm:"type:varchar(30);uniqueIndex;not null" json:"submission_number"` // SUB-YYYYMM-NNNN, month-scoped sequence
	SubmissionType   string           `gorm:"type:varchar(30);not null;index" json:"submission_type"`
	Status           string           `gorm:"type:varchar(30);not null;default:'PENDING';index" json:"status"`
	Priority         string           `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority"`
	ActivityType     string           `gorm:"type:varchar(30)" json:"activity_type"` // POPT submissions only
	FarmerGroupID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"farmer_group_id"`
	FarmerGroup      *FarmerGroup     `gorm:"foreignKey:FarmerGroupID" json:"farmer_group,omitempty"`
	Village          string           `gorm:"type:varchar(255);not null" json:"village"`
	District         string           `gorm:"type:varchar(255);not null" json:"district"`
	AffectedArea     float64          `gorm:"type:decimal(10,2);not null" json:"affected_area"` // hectares, <= TotalArea
	TotalArea        float64          `gorm:"type:decimal(10,2);not null" json:"total_area"`
	PestTypes        []string         `gorm:"serializer:json;type:text" json:"pest_types"` // 1-10 reported OPT names
	Description      string           `gorm:"type:text" json:"description"`
	SubmitterID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"submitter_id"`
	Submitter        *User            `gorm:"foreignKey:SubmitterID" json:"submitter,omitempty"`
	ReviewerID       *uuid.UUID       `gorm:"type:uuid" json:"reviewer_id"`
	Reviewer         *User            `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	ReviewedAt       *time.Time       `json:"reviewed_at"`
	ReviewNote       string           `gorm:"type:text" json:"review_note"` // Required (>=10 chars) on rejection
	DistributorID    *uuid.UUID       `gorm:"type:uuid" json:"distributor_id"`
	Distributor      *User            `gorm:"foreignKey:DistributorID" json:"distributor,omitempty"`
	DistributedAt    *time.Time       `json:"distributed_at"`
	Items            []SubmissionItem `gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsTerminalStatus reports whether status has no outgoing transitions
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusRejected, StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// SubmissionItem is one requested medicine line. ApprovedQuantity is set
// only by approval reconciliation, DistributedQuantity only at distribution.
// Invariant: ApprovedQuantity <= RequestedQuantity and <= available stock at
// approval time (checked, not a schema constraint).
type SubmissionItem struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubmissionID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"submission_id"`
	MedicineID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"medicine_id"`
	Medicine            *Medicine       `gorm:"foreignKey:MedicineID" json:"medicine,omitempty"`
	RequestedQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"requested_quantity"`
	ApprovedQuantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"approved_quantity"`
	DistributedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"distributed_quantity"`
	Unit                string          `gorm:"type:varchar(20);not null" json:"unit"`
	Notes               string          `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (i *SubmissionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
