package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateSubmission       = "CREATE_SUBMISSION"
	ActionUpdateSubmissionStatus = "UPDATE_SUBMISSION_STATUS"
	ActionDeleteSubmission       = "DELETE_SUBMISSION"
	ActionExpireSubmissions      = "EXPIRE_SUBMISSIONS"

	ActionCreateMedicine = "CREATE_MEDICINE"
	ActionUpdateMedicine = "UPDATE_MEDICINE"
	ActionDeleteMedicine = "DELETE_MEDICINE"
	ActionAddStockLot    = "ADD_STOCK_LOT"
	ActionAllocateStock  = "ALLOCATE_STOCK"

	ActionCreateFarmerGroup = "CREATE_FARMER_GROUP"
	ActionUpdateFarmerGroup = "UPDATE_FARMER_GROUP"
	ActionDeleteFarmerGroup = "DELETE_FARMER_GROUP"

	ActionCreateDistributionRecord = "CREATE_DISTRIBUTION_RECORD"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for system-initiated actions (e.g. expiry sweep)
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/number)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:text" json:"details"`                       // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
