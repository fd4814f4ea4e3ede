package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/hrms/internal/domain"
	"github.com/yourorg/hrms/internal/observability/metrics"
	"github.com/yourorg/hrms/internal/security/auth"
	"github.com/yourorg/hrms/pkg/cache"
)

const (
	minPasswordLength = 6
	profileCacheTTL   = 30 * time.Second
)

// AuthService owns the credential lifecycle: registration, login, profile
// lookup and password change. The organization record is the login
// principal, so "user" and "organization" ids coincide.
type AuthService struct {
	orgRepo  domain.OrganizationRepository
	tokens   *auth.TokenManager
	profiles *cache.Cache
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(orgRepo domain.OrganizationRepository, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		orgRepo:  orgRepo,
		tokens:   tokens,
		profiles: cache.New(),
		logger:   logger,
	}
}

// Register creates a new organization with a bcrypt-hashed password and
// returns it alongside a freshly issued token. A duplicate email yields
// domain.ErrDuplicate whether caught by the pre-check or by the unique
// index when two registrations race.
func (s *AuthService) Register(name, email, password string) (*domain.Organization, string, error) {
	if name == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("name, email and password are required: %w", domain.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, "", fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, domain.ErrValidation)
	}

	if _, err := s.orgRepo.GetByEmail(email); err == nil {
		return nil, "", fmt.Errorf("organization with this email already exists: %w", domain.ErrDuplicate)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, "", errors.New("failed to register organization")
	}

	org := &domain.Organization{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.orgRepo.Create(org); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(org.ID, org.ID, org.Email)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, "", errors.New("failed to generate token")
	}

	metrics.ObserveRegistration()
	s.logger.Info("organization registered",
		slog.Int64("organization_id", org.ID),
		slog.String("email", org.Email),
	)

	org.PasswordHash = ""
	return org, token, nil
}

// Login verifies credentials and returns the organization (sans hash) and a
// token. Unknown emails and wrong passwords are indistinguishable to the
// caller.
func (s *AuthService) Login(email, password string) (*domain.Organization, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("email and password are required: %w", domain.ErrValidation)
	}

	org, err := s.orgRepo.GetByEmail(email)
	if err != nil {
		metrics.ObserveLogin("failure")
		s.logger.Info("login attempt with unknown email", slog.String("email", email))
		return nil, "", domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(org.PasswordHash), []byte(password)); err != nil {
		metrics.ObserveLogin("failure")
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(org.ID, org.ID, org.Email)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, "", errors.New("failed to generate token")
	}

	metrics.ObserveLogin("ok")
	s.logger.Info("organization logged in",
		slog.Int64("organization_id", org.ID),
		slog.String("email", org.Email),
	)

	org.PasswordHash = ""
	return org, token, nil
}

// Profile returns the organization record without the password hash.
// Lookups are cached briefly since the SPA fetches the profile on every
// page load.
func (s *AuthService) Profile(id int64) (*domain.Organization, error) {
	key := profileKey(id)
	if v, ok := s.profiles.Get(key); ok {
		return v.(*domain.Organization), nil
	}

	org, err := s.orgRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.profiles.Set(key, org, profileCacheTTL)
	return org, nil
}

// ChangePassword verifies the current password then re-hashes and stores
// the new one.
func (s *AuthService) ChangePassword(id int64, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("new password must be at least %d characters: %w", minPasswordLength, domain.ErrValidation)
	}

	org, err := s.orgRepo.GetByID(id)
	if err != nil {
		return err
	}
	// GetByID never carries the hash; fetch it via the credential path.
	withHash, err := s.orgRepo.GetByEmail(org.Email)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(withHash.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.String("error", err.Error()))
		return errors.New("failed to change password")
	}

	if err := s.orgRepo.UpdatePassword(id, string(hash)); err != nil {
		return err
	}

	s.profiles.Delete(profileKey(id))
	s.logger.Info("organization changed password", slog.Int64("organization_id", id))
	return nil
}

func profileKey(id int64) string {
	return "org:" + strconv.FormatInt(id, 10)
}
