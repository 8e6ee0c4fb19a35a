package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/member-sync/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
)

type Service struct {
	db          *gorm.DB
	jwt         *JWTService
	revocations RevocationStore
}

// NewService builds the identity provider. revocations may be nil, in which
// case sign-out only clears the client's cookie.
func NewService(db *gorm.DB, jwt *JWTService, revocations RevocationStore) *Service {
	return &Service{db: db, jwt: jwt, revocations: revocations}
}

type Credentials struct {
	Email    string
	Password string
}

type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Service) SignUp(ctx context.Context, input Credentials) (*Session, error) {
	email := normalizeEmail(input.Email)

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	return s.newSession(&user)
}

func (s *Service) SignIn(ctx context.Context, input Credentials) (*Session, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("email = ?", normalizeEmail(input.Email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(&user)
}

// SignOut revokes the session behind token for the rest of its lifetime.
// Tokens that no longer validate are already unusable and are ignored.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if s.revocations == nil || token == "" {
		return nil
	}

	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// IsRevoked reports whether the session was ended by SignOut.
func (s *Service) IsRevoked(ctx context.Context, claims *Claims) (bool, error) {
	if s.revocations == nil || claims.ID == "" {
		return false, nil
	}
	return s.revocations.IsRevoked(ctx, claims.ID)
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) newSession(user *models.User) (*Session, error) {
	token, err := s.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
