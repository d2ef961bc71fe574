package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/ability-api/internal/apperror"
	"github.com/sakif/ability-api/internal/model"
	"github.com/sakif/ability-api/internal/repository"
)

// ProfileNotFoundMessage is the exact text clients match on.
const ProfileNotFoundMessage = "User profile not found"

// PasswordHasher turns a plaintext password into the value stored for it.
// *auth.PasswordHasher implements it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
}

// UserService registers accounts and manages child profiles.
type UserService struct {
	registrations repository.RegistrationRepository
	profiles      repository.ProfileRepository
	passwords     PasswordHasher
	logger        *slog.Logger
}

func NewUserService(
	registrations repository.RegistrationRepository,
	profiles repository.ProfileRepository,
	passwords PasswordHasher,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		registrations: registrations,
		profiles:      profiles,
		passwords:     passwords,
		logger:        logger,
	}
}

// Register stores a new account. A uid that is already registered is an
// apperror.ErrConflict and the existing account is left as it was.
func (s *UserService) Register(ctx context.Context, uid, username, email, password string) error {
	if err := requireUID(uid); err != nil {
		return err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return err
	}

	reg := &model.Registration{
		FirebaseUID: uid,
		Username:    username,
		Email:       email,
		Password:    hash,
	}
	if err := s.registrations.InsertRegistration(ctx, reg); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Warn("registration rejected, uid already registered", slog.String("uid", uid))
			return err
		}
		s.logger.Error("failed to create registration",
			slog.String("uid", uid),
			slog.String("error", errorCause(err)),
		)
		return fmt.Errorf("registering user: %w", err)
	}

	s.logger.Info("registration created", slog.String("uid", uid))
	return nil
}

// SaveDetails creates the profile for profile.FirebaseUID or overwrites it.
func (s *UserService) SaveDetails(ctx context.Context, profile *model.UserProfile) error {
	uid := profile.FirebaseUID
	if err := requireUID(uid); err != nil {
		return err
	}

	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		s.logger.Error("failed to save user details",
			slog.String("uid", uid),
			slog.String("error", errorCause(err)),
		)
		return fmt.Errorf("saving user details: %w", err)
	}

	s.logger.Info("user details saved", slog.String("uid", uid))
	return nil
}

// GetDetails returns the profile for uid. A missing profile is reported with
// ProfileNotFoundMessage.
func (s *UserService) GetDetails(ctx context.Context, uid string) (*model.UserProfile, error) {
	if err := requireUID(uid); err != nil {
		return nil, err
	}

	profile, err := s.profiles.FindProfileByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFoundMessage(ProfileNotFoundMessage)
		}
		s.logger.Error("failed to read user details",
			slog.String("uid", uid),
			slog.String("error", errorCause(err)),
		)
		return nil, fmt.Errorf("reading user details: %w", err)
	}
	return profile, nil
}

// errorCause prefers the underlying driver error for logs, since an AppError's
// message is the generic client-facing text.
func errorCause(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Cause != nil {
		return appErr.Cause.Error()
	}
	return err.Error()
}
