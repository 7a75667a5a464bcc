package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"factura-scanner.backend/internal/domain/entities"
	domainerrors "factura-scanner.backend/internal/domain/errors"
	"factura-scanner.backend/internal/infrastructure/models"
)

// UserRepository implements user data operations over GORM
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m, err := userToModel(user)
	if err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicateKey(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	user.CreatedAt = m.CreatedAt
	user.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByPhoneNumber gets a user by phone number
func (r *UserRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*entities.User, error) {
	var m models.User
	if err := r.db.WithContext(ctx).Where("phone_number = ?", phoneNumber).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return userToEntity(&m)
}

// UpdateByPhoneNumber applies a partial update and returns the fresh row.
func (r *UserRepository) UpdateByPhoneNumber(ctx context.Context, phoneNumber string, update *entities.UserUpdate) (*entities.User, error) {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if update.Name != nil {
		updates["user_name"] = *update.Name
	}
	if update.CompanyName != nil {
		updates["company_name"] = *update.CompanyName
	}
	if update.Email != nil {
		updates["email"] = *update.Email
	}
	if update.RegistrationComplete != nil {
		updates["registration_complete"] = *update.RegistrationComplete
	}
	if update.GoogleSheetID != nil {
		updates["google_sheet_id"] = *update.GoogleSheetID
	}
	if update.GoogleSheetURL != nil {
		updates["google_sheet_url"] = *update.GoogleSheetURL
	}
	if update.LastActivity != nil {
		updates["last_activity"] = *update.LastActivity
	}

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("phone_number = ?", phoneNumber).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, domainerrors.ErrNotFound
	}

	return r.GetByPhoneNumber(ctx, phoneNumber)
}

func userToModel(u *entities.User) (*models.User, error) {
	prefs, err := json.Marshal(orEmptyMap(u.Preferences))
	if err != nil {
		return nil, err
	}
	meta, err := json.Marshal(orEmptyMap(u.Metadata))
	if err != nil {
		return nil, err
	}

	m := &models.User{
		ID:                   u.ID,
		PhoneNumber:          u.PhoneNumber,
		UserName:             u.Name,
		CompanyName:          u.CompanyName,
		Email:                u.Email,
		PlanType:             string(u.PlanType),
		Status:               string(u.Status),
		EmailVerified:        u.EmailVerified,
		PhoneVerified:        u.PhoneVerified,
		RegistrationComplete: u.RegistrationComplete,
		Preferences:          prefs,
		Metadata:             meta,
		LastActivity:         u.LastActivity,
	}
	if u.GoogleSheetID != "" {
		m.GoogleSheetID = &u.GoogleSheetID
	}
	if u.GoogleSheetURL != "" {
		m.GoogleSheetURL = &u.GoogleSheetURL
	}
	return m, nil
}

func userToEntity(m *models.User) (*entities.User, error) {
	u := &entities.User{
		ID:                   m.ID,
		PhoneNumber:          m.PhoneNumber,
		Name:                 m.UserName,
		CompanyName:          m.CompanyName,
		Email:                m.Email,
		PlanType:             entities.PlanType(m.PlanType),
		Status:               entities.UserStatus(m.Status),
		EmailVerified:        m.EmailVerified,
		PhoneVerified:        m.PhoneVerified,
		RegistrationComplete: m.RegistrationComplete,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
		LastActivity:         m.LastActivity,
	}
	if m.GoogleSheetID != nil {
		u.GoogleSheetID = *m.GoogleSheetID
	}
	if m.GoogleSheetURL != nil {
		u.GoogleSheetURL = *m.GoogleSheetURL
	}
	if len(m.Preferences) > 0 {
		if err := json.Unmarshal(m.Preferences, &u.Preferences); err != nil {
			return nil, err
		}
	}
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &u.Metadata); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
