package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/medvisit/scheduler/internal/clinicerr"
	"github.com/medvisit/scheduler/internal/model"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the JWT payload for both access and refresh tokens.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService issues credentials for the peripheral identity collaborator.
// The booking engine itself only ever sees the resulting Principal.
type AuthService struct {
	users    UserStore
	settings SettingStore
	secret   []byte
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(users UserStore, settings SettingStore, secret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		settings: settings,
		secret:   []byte(secret),
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a patient account.
func (s *AuthService) Register(ctx context.Context, username, password, name string) (*model.User, error) {
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

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         model.RolePatient,
		Name:         name,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", username),
	)

	return user, nil
}

// Login verifies credentials and issues a fresh token pair. The refresh
// token is stored on the user row so it can be rotated and revoked.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, *TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, fmt.Errorf("%w: unknown user", clinicerr.ErrNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, fmt.Errorf("%w: bad credentials", clinicerr.ErrForbidden)
	}
	if user.IsBanned {
		return nil, nil, fmt.Errorf("%w: account banned", clinicerr.ErrForbidden)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return user, pair, nil
}

// Refresh rotates a valid, stored refresh token into a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parse(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", clinicerr.ErrForbidden)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", clinicerr.ErrForbidden)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, fmt.Errorf("%w: refresh token revoked", clinicerr.ErrForbidden)
	}
	if user.IsBanned {
		return nil, fmt.Errorf("%w: account banned", clinicerr.ErrForbidden)
	}

	return s.issuePair(ctx, user)
}

// Logout revokes the stored refresh token.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.users.UpdateRefreshToken(ctx, userID, nil)
}

// ParseAccess validates an access token and returns the principal it names.
func (s *AuthService) ParseAccess(token string) (model.Principal, error) {
	claims, err := s.parse(token)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: invalid token", clinicerr.ErrForbidden)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: invalid token", clinicerr.ErrForbidden)
	}

	return model.Principal{ID: userID, Role: claims.Role}, nil
}

// AuthMode reports the configured authentication mode setting.
func (s *AuthService) AuthMode(ctx context.Context) (string, error) {
	return s.settings.Get(ctx, model.SettingAuthMode, "jwt")
}

func (s *AuthService) issuePair(ctx context.Context, user *model.User) (*TokenPair, error) {
	access, err := s.sign(user, accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, refreshTokenTTL)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) sign(user *model.User, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *AuthService) parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}
