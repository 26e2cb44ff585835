package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/medvisit/scheduler/internal/clinicerr"
	"github.com/medvisit/scheduler/internal/model"
)

// AdminService covers user administration and rating moderation.
type AdminService struct {
	users    UserStore
	ratings  RatingStore
	settings SettingStore
	logger   *zap.Logger
}

func NewAdminService(users UserStore, ratings RatingStore, settings SettingStore, logger *zap.Logger) *AdminService {
	return &AdminService{
		users:    users,
		ratings:  ratings,
		settings: settings,
		logger:   logger,
	}
}

// CreateDoctor provisions a doctor account.
func (s *AdminService) CreateDoctor(ctx context.Context, username, password, name, specialization string) (*model.User, error) {
	if username == "" || password == "" || name == "" {
		return nil, fmt.Errorf("%w: username, password and name are required", clinicerr.ErrValidation)
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q taken", clinicerr.ErrValidation, username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	doctor := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         model.RoleDoctor,
		Name:         name,
	}
	if specialization != "" {
		doctor.Specialization = &specialization
	}
	if err := s.users.Create(ctx, doctor); err != nil {
		return nil, err
	}

	s.logger.Info("Doctor created",
		zap.Int64("doctor_id", doctor.ID),
		zap.String("username", username),
	)

	return doctor, nil
}

// ListUsers returns every account.
func (s *AdminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.users.ListAll(ctx)
}

// SetBan flips a user's ban flag. Admin accounts cannot be banned.
func (s *AdminService) SetBan(ctx context.Context, userID int64, banned bool) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user %d", clinicerr.ErrNotFound, userID)
	}
	if user.Role == model.RoleAdmin {
		return fmt.Errorf("%w: cannot ban an admin", clinicerr.ErrValidation)
	}

	if err := s.users.SetBanned(ctx, userID, banned); err != nil {
		return err
	}

	s.logger.Info("Ban flag changed",
		zap.Int64("user_id", userID),
		zap.Bool("banned", banned),
	)

	return nil
}

// ListRatings returns every rating for moderation.
func (s *AdminService) ListRatings(ctx context.Context) ([]*model.Rating, error) {
	return s.ratings.ListAll(ctx)
}

// DeleteRating removes a rating.
func (s *AdminService) DeleteRating(ctx context.Context, ratingID int64) error {
	deleted, err := s.ratings.Delete(ctx, ratingID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: rating %d", clinicerr.ErrNotFound, ratingID)
	}

	s.logger.Info("Rating deleted", zap.Int64("rating_id", ratingID))
	return nil
}

// SetAuthMode stores the auth-mode setting exposed to clients.
func (s *AdminService) SetAuthMode(ctx context.Context, mode string) error {
	if mode != "jwt" && mode != "session" {
		return fmt.Errorf("%w: unknown auth mode %q", clinicerr.ErrValidation, mode)
	}
	return s.settings.Set(ctx, model.SettingAuthMode, mode)
}
