package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	PhoneNumber          string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	UserName             string    `gorm:"type:varchar(100);not null;default:''"`
	CompanyName          string    `gorm:"type:varchar(150);not null;default:''"`
	Email                string    `gorm:"type:varchar(255);not null;default:''"`
	PlanType             string    `gorm:"type:varchar(20);not null;default:'free'"`
	Status               string    `gorm:"type:varchar(20);not null;default:'active'"`
	EmailVerified        bool      `gorm:"not null;default:false"`
	PhoneVerified        bool      `gorm:"not null;default:false"`
	RegistrationComplete bool      `gorm:"not null;default:false"`
	GoogleSheetID        *string   `gorm:"type:varchar(128)"`
	GoogleSheetURL       *string   `gorm:"type:varchar(512)"`
	Preferences          []byte    `gorm:"type:jsonb"`
	Metadata             []byte    `gorm:"type:jsonb"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	LastActivity         time.Time
}
