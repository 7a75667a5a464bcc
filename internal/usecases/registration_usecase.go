package usecases

import (
	"context"
	"regexp"
	"strings"
	"time"

	"factura-scanner.backend/internal/domain/entities"
	domainerrors "factura-scanner.backend/internal/domain/errors"
	"factura-scanner.backend/internal/domain/gateways"
	"factura-scanner.backend/internal/domain/repositories"
	"factura-scanner.backend/pkg/logger"

	"go.uber.org/zap"
)

// RegistrationStep identifies which datum the conversation is waiting for.
// It is always derived from the stored user fields, never persisted.
type RegistrationStep string

const (
	StepAwaitingName    RegistrationStep = "awaiting_name"
	StepAwaitingCompany RegistrationStep = "awaiting_company"
	StepAwaitingEmail   RegistrationStep = "awaiting_email"
	StepComplete        RegistrationStep = "complete"
)

type RegistrationState string

const (
	StateNew        RegistrationState = "NEW"
	StateIncomplete RegistrationState = "INCOMPLETE"
	StateReady      RegistrationState = "READY"
)

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RegistrationResult is the outcome of one conversational turn.
type RegistrationResult struct {
	State    RegistrationState
	User     *entities.User
	Message  string
	NextStep RegistrationStep
}

type RegistrationUsecase struct {
	userRepo repositories.UserRepository
	sheets   gateways.SheetStore
}

func NewRegistrationUsecase(userRepo repositories.UserRepository, sheets gateways.SheetStore) *RegistrationUsecase {
	return &RegistrationUsecase{
		userRepo: userRepo,
		sheets:   sheets,
	}
}

// StepFor derives the current registration step from the user's fields.
func StepFor(user *entities.User) RegistrationStep {
	switch {
	case !user.HasName():
		return StepAwaitingName
	case !user.HasCompany():
		return StepAwaitingCompany
	case !user.HasEmail():
		return StepAwaitingEmail
	default:
		return StepComplete
	}
}

// HandleTurn advances the registration flow by one inbound message. A user
// is created on first contact; afterwards each text answer fills the next
// missing field. Non-text messages re-prompt the current step without
// consuming the content.
func (u *RegistrationUsecase) HandleTurn(ctx context.Context, phoneNumber string, messageType string, text string) (*RegistrationResult, error) {
	log := logger.WithContext(ctx)

	user, err := u.userRepo.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if !domainerrors.IsNotFound(err) {
			return nil, err
		}
		user, err = u.createUser(ctx, phoneNumber)
		if err != nil {
			return nil, err
		}
		log.Info("new user started registration", zap.String("phone_number", phoneNumber))
		return &RegistrationResult{
			State:    StateNew,
			User:     user,
			Message:  msgAwaitingName,
			NextStep: StepAwaitingName,
		}, nil
	}

	step := StepFor(user)
	if step == StepComplete {
		return u.ready(ctx, user)
	}

	answer := strings.TrimSpace(text)
	if messageType != entities.MessageTypeText || answer == "" {
		return &RegistrationResult{
			State:    StateIncomplete,
			User:     user,
			Message:  promptForStep(step, user.Name),
			NextStep: step,
		}, nil
	}

	update := &entities.UserUpdate{}
	switch step {
	case StepAwaitingName:
		update.Name = &answer
	case StepAwaitingCompany:
		update.CompanyName = &answer
	case StepAwaitingEmail:
		if !emailRegexp.MatchString(answer) {
			return &RegistrationResult{
				State:    StateIncomplete,
				User:     user,
				Message:  msgInvalidEmail,
				NextStep: StepAwaitingEmail,
			}, nil
		}
		lowered := strings.ToLower(answer)
		update.Email = &lowered
		completed := true
		update.RegistrationComplete = &completed
	}
	now := time.Now()
	update.LastActivity = &now

	updated, err := u.userRepo.UpdateByPhoneNumber(ctx, phoneNumber, update)
	if err != nil {
		return nil, err
	}

	next := StepFor(updated)
	if next == StepComplete {
		return u.ready(ctx, updated)
	}
	return &RegistrationResult{
		State:    StateIncomplete,
		User:     updated,
		Message:  promptForStep(next, updated.Name),
		NextStep: next,
	}, nil
}

func (u *RegistrationUsecase) createUser(ctx context.Context, phoneNumber string) (*entities.User, error) {
	now := time.Now()
	user := &entities.User{
		PhoneNumber:   phoneNumber,
		PlanType:      entities.PlanFree,
		Status:        entities.UserStatusActive,
		PhoneVerified: true,
		LastActivity:  now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ready handles a fully registered user, provisioning the spreadsheet on
// the first turn that finds it missing. Provisioning failures are reported
// to the user but never block the conversation.
func (u *RegistrationUsecase) ready(ctx context.Context, user *entities.User) (*RegistrationResult, error) {
	log := logger.WithContext(ctx)

	if user.GoogleSheetID == "" {
		sheet, err := u.sheets.CreateUserSheet(ctx, user.Name, user.Email)
		if err != nil {
			log.Error("failed to provision user spreadsheet",
				zap.String("phone_number", user.PhoneNumber),
				zap.Error(err))
			return &RegistrationResult{
				State:    StateReady,
				User:     user,
				Message:  msgProvisioningFailed,
				NextStep: StepComplete,
			}, nil
		}

		update := &entities.UserUpdate{
			GoogleSheetID:  &sheet.SpreadsheetID,
			GoogleSheetURL: &sheet.WebViewLink,
		}
		updated, err := u.userRepo.UpdateByPhoneNumber(ctx, user.PhoneNumber, update)
		if err != nil {
			log.Error("failed to persist spreadsheet reference",
				zap.String("phone_number", user.PhoneNumber),
				zap.Error(err))
			user.GoogleSheetID = sheet.SpreadsheetID
			user.GoogleSheetURL = sheet.WebViewLink
		} else {
			user = updated
		}
		log.Info("user spreadsheet provisioned",
			zap.String("phone_number", user.PhoneNumber),
			zap.String("spreadsheet_id", sheet.SpreadsheetID))
	}

	return &RegistrationResult{
		State:    StateReady,
		User:     user,
		Message:  msgComplete(user.Name),
		NextStep: StepComplete,
	}, nil
}
