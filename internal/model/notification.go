package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType enum constants
const (
	NotifNewSubmission = "NEW_SUBMISSION"
	NotifStatusChange  = "STATUS_CHANGE"
)

// Notification is a persisted per-recipient message; the websocket hub
// additionally broadcasts the same event to connected clients
type Notification struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecipientID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Recipient    *User      `gorm:"foreignKey:RecipientID" json:"-"`
	Type         string     `gorm:"type:varchar(30);not null" json:"type"`
	Title        string     `gorm:"type:varchar(255);not null" json:"title"`
	Message      string     `gorm:"type:text;not null" json:"message"`
	SubmissionID *uuid.UUID `gorm:"type:uuid;index" json:"submission_id"`
	IsRead       bool       `gorm:"default:false;index" json:"is_read"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
