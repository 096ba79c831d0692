package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FarmerGroup represents a registered kelompok tani — the receiving end of
// every distribution. Submissions must reference an active group.
type FarmerGroup struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	LeaderName  string         `gorm:"type:varchar(255);not null" json:"leader_name"`
	Phone       string         `gorm:"type:varchar(50)" json:"phone"`
	Village     string         `gorm:"type:varchar(255);not null" json:"village"`
	District    string         `gorm:"type:varchar(255);not null;index" json:"district"`
	Commodity   string         `gorm:"type:varchar(100)" json:"commodity"` // Main crop, e.g. padi, jagung
	MemberCount int            `gorm:"type:int;default:0" json:"member_count"`
	LandArea    float64        `gorm:"type:decimal(10,2);default:0" json:"land_area"` // hectares
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (g *FarmerGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}
