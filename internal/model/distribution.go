package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DistributionRecord is the berita acara generated when a submission enters
// DISTRIBUTED: a numbered snapshot of what was handed over to the farmer
// group, by whom, and at what total value.
type DistributionRecord struct {
	ID            uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecordNumber  string             `gorm:"type:varchar(30);uniqueIndex;not null" json:"record_number"` // BA-YYYYMMDD-NNNNN
	SubmissionID  uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex" json:"submission_id"`
	Submission    *Submission        `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
	DistributorID uuid.UUID          `gorm:"type:uuid;not null" json:"distributor_id"`
	Distributor   *User              `gorm:"foreignKey:DistributorID" json:"distributor,omitempty"`
	TotalValue    decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0" json:"total_value"`
	Note          string             `gorm:"type:text" json:"note"`
	Items         []DistributionItem `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func (r *DistributionRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// DistributionItem snapshots one distributed medicine line; quantities and
// prices are copied at distribution time so later medicine edits do not
// rewrite history
type DistributionItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecordID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"record_id"`
	MedicineID   uuid.UUID       `gorm:"type:uuid;not null" json:"medicine_id"`
	MedicineName string          `gorm:"type:varchar(255);not null" json:"medicine_name"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit         string          `gorm:"type:varchar(20);not null" json:"unit"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"unit_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (i *DistributionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
