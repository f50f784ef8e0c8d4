package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/maldonadorepuestos/backend/pkg/enums"
)

// Quote is a parts request for items not purchasable directly. It can be
// filed anonymously, so UserID is nullable.
type Quote struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          *uuid.UUID        `gorm:"column:user_id;type:uuid;index"`
	Name            string            `gorm:"column:name;not null"`
	Email           string            `gorm:"column:email;not null"`
	Phone           string            `gorm:"column:phone;not null"`
	VehicleInfo     *string           `gorm:"column:vehicle_info"`
	Message         string            `gorm:"column:message;not null"`
	SentViaWhatsApp bool              `gorm:"column:sent_via_whatsapp;not null;default:false"`
	Status          enums.QuoteStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	AdminNotes      *string           `gorm:"column:admin_notes"`
	Items           []QuoteItem       `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	RespondedAt     *time.Time        `gorm:"column:responded_at"`
}
