package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlanType represents subscription tiers
type PlanType string

const (
	PlanFree       PlanType = "free"
	PlanPro        PlanType = "pro"
	PlanEnterprise PlanType = "enterprise"
)

// UserStatus represents account status
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBanned   UserStatus = "banned"
)

// User represents a WhatsApp user identified by phone number
type User struct {
	ID                   uuid.UUID         `json:"id"`
	PhoneNumber          string            `json:"phoneNumber"`
	Name                 string            `json:"name"`
	CompanyName          string            `json:"companyName"`
	Email                string            `json:"email"`
	PlanType             PlanType          `json:"planType"`
	Status               UserStatus        `json:"status"`
	EmailVerified        bool              `json:"emailVerified"`
	PhoneVerified        bool              `json:"phoneVerified"`
	RegistrationComplete bool              `json:"registrationComplete"`
	GoogleSheetID        string            `json:"googleSheetId,omitempty"`
	GoogleSheetURL       string            `json:"googleSheetUrl,omitempty"`
	Preferences          map[string]string `json:"preferences,omitempty"`
	Metadata             map[string]string `json:"metadata,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
	LastActivity         time.Time         `json:"lastActivity"`
}

// IsActive reports whether the account may interact with the bot.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsVerified reports whether both contact channels are verified.
func (u *User) IsVerified() bool {
	return u.EmailVerified && u.PhoneVerified
}

// CanProcess reports whether the user may submit invoices for processing.
func (u *User) CanProcess() bool {
	return u.IsActive() && u.RegistrationComplete
}

// HasName reports whether the onboarding name answer has been captured.
func (u *User) HasName() bool {
	return strings.TrimSpace(u.Name) != ""
}

// HasCompany reports whether the onboarding company answer has been captured.
func (u *User) HasCompany() bool {
	return strings.TrimSpace(u.CompanyName) != ""
}

// HasEmail reports whether the onboarding email answer has been captured.
func (u *User) HasEmail() bool {
	return strings.TrimSpace(u.Email) != ""
}

// UpdateLastActivity stamps the entity; persistence is the caller's concern.
func (u *User) UpdateLastActivity() {
	u.LastActivity = time.Now()
}

// UserUpdate carries the mutable onboarding fields for a partial update.
// Nil pointers leave the stored value untouched.
type UserUpdate struct {
	Name                 *string
	CompanyName          *string
	Email                *string
	RegistrationComplete *bool
	GoogleSheetID        *string
	GoogleSheetURL       *string
	LastActivity         *time.Time
}
