package repositories

import (
	"context"

	"factura-scanner.backend/internal/domain/entities"
)

// UserRepository defines user data operations. Phone number is the
// external identity key; everything else hangs off it.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*entities.User, error)
	UpdateByPhoneNumber(ctx context.Context, phoneNumber string, update *entities.UserUpdate) (*entities.User, error)
}
