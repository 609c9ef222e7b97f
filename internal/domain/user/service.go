// internal/domain/user/service.go
package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/agency-backend/internal/config"
	"github.com/your-org/agency-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for bad email/password combinations
var ErrInvalidCredentials = errors.New("invalid email or password")

// Service handles user accounts and authentication
type Service struct {
	db          *gorm.DB
	config      *config.Config
	jwtManager  *auth.JWTManager
	passwordMgr *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		jwtManager:  auth.NewJWTManager(cfg),
		passwordMgr: auth.NewPasswordManager(cfg),
	}
}

// RegisterRequest represents a registration payload
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// LoginRequest represents a login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the token pair issued on login or refresh
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a new account
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	var existing User
	err := s.db.Where("email = ?", emailAddr).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := s.passwordMgr.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	newUser := User{
		Email:     emailAddr,
		Password:  hashed,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IsActive:  true,
	}
	if err := s.db.Create(&newUser).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(&newUser)
}

// Login authenticates a user and issues tokens
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))

	var u User
	if err := s.db.Where("email = ?", emailAddr).First(&u).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account is disabled")
	}
	if err := s.passwordMgr.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	s.db.Model(&u).Update("last_login_at", now)
	u.LastLoginAt = &now

	return s.issueTokens(&u)
}

// Refresh exchanges a valid refresh token for a fresh pair
func (s *Service) Refresh(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	var u User
	if err := s.db.First(&u, claims.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account is disabled")
	}

	return s.issueTokens(&u)
}

func (s *Service) issueTokens(u *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &AuthResponse{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Get retrieves a user by id
func (s *Service) Get(userID uint) (*User, error) {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}
	return &u, nil
}

// UpdateProfileRequest represents a profile update payload
type UpdateProfileRequest struct {
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Phone      string     `json:"phone"`
	Country    string     `json:"country"`
	City       string     `json:"city"`
	Address    string     `json:"address"`
	PostalCode string     `json:"postal_code"`
	Bio        string     `json:"bio"`
	BirthDate  *time.Time `json:"birth_date"`
}

// UpdateProfile updates profile fields
func (s *Service) UpdateProfile(userID uint, req *UpdateProfileRequest) (*User, error) {
	u, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		u.FirstName = req.FirstName
	}
	if req.LastName != "" {
		u.LastName = req.LastName
	}
	u.Phone = req.Phone
	u.Country = req.Country
	u.City = req.City
	u.Address = req.Address
	u.PostalCode = req.PostalCode
	u.Bio = req.Bio
	if req.BirthDate != nil {
		u.BirthDate = req.BirthDate
	}

	if err := s.db.Save(u).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// ChangePassword verifies the current password and sets a new one
func (s *Service) ChangePassword(userID uint, currentPassword, newPassword string) error {
	u, err := s.Get(userID)
	if err != nil {
		return err
	}
	if err := s.passwordMgr.VerifyPassword(currentPassword, u.Password); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	hashed, err := s.passwordMgr.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.db.Model(u).Update("password", hashed).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
