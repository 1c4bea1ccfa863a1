package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"quizwhiz-backend/internal/middleware"
	"quizwhiz-backend/internal/models"
)

const refreshTokenTTL = 7 * 24 * time.Hour

// ProfileStore is the slice of the profile repository auth needs.
type ProfileStore interface {
	Upsert(ctx context.Context, name, email string, isAdmin bool) (*models.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type AuthService struct {
	profiles          ProfileStore
	redis             *redis.Client
	jwt               *middleware.JWTAuth
	adminEmails       func(email string) bool
	adminPasswordHash string
}

func NewAuthService(profiles ProfileStore, redisClient *redis.Client, jwt *middleware.JWTAuth, isAdminEmail func(string) bool, adminPasswordHash string) *AuthService {
	return &AuthService{
		profiles:          profiles,
		redis:             redisClient,
		jwt:               jwt,
		adminEmails:       isAdminEmail,
		adminPasswordHash: adminPasswordHash,
	}
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const maxNameLength = 100

// ValidateRegistration checks a name+email registration.
func ValidateRegistration(req models.RegisterRequest) error {
	fieldErrors := make(map[string]string)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		fieldErrors["name"] = "Name is required"
	} else if len([]rune(name)) > maxNameLength {
		fieldErrors["name"] = fmt.Sprintf("Name must be at most %d characters", maxNameLength)
	}
	if !emailRegex.MatchString(strings.TrimSpace(req.Email)) {
		fieldErrors["email"] = "Invalid email format"
	}

	if len(fieldErrors) > 0 {
		return &ValidationError{Fields: fieldErrors}
	}
	return nil
}

// Register creates or refreshes a profile keyed by email and signs the user
// in. It never grants admin rights.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthTokens, error) {
	if err := ValidateRegistration(req); err != nil {
		return nil, err
	}

	profile, err := s.profiles.Upsert(ctx, strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), false)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, profile, false)
}

// AdminLogin checks the shared admin password for an allow-listed email.
func (s *AuthService) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.AuthTokens, error) {
	email := strings.TrimSpace(req.Email)
	if s.adminPasswordHash == "" || s.adminEmails == nil || !s.adminEmails(email) {
		return nil, &UnauthorizedError{Message: "Invalid email or password"}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(req.Password)); err != nil {
		return nil, &UnauthorizedError{Message: "Invalid email or password"}
	}

	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	profile, err := s.profiles.Upsert(ctx, name, email, true)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, profile, true)
}

type refreshEntry struct {
	UserID  uuid.UUID `json:"user_id"`
	IsAdmin bool      `json:"is_admin"`
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	raw, err := s.redis.Get(ctx, "refresh:"+refreshToken).Result()
	if err != nil {
		return nil, &UnauthorizedError{Message: "Invalid or expired refresh token. Please log in again."}
	}

	var entry refreshEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("invalid refresh entry: %w", err)
	}

	// Delete old token (rotation)
	s.redis.Del(ctx, "refresh:"+refreshToken)

	profile, err := s.profiles.GetByID(ctx, entry.UserID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, profile, entry.IsAdmin && profile.IsAdmin)
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.redis.Del(ctx, "refresh:"+refreshToken).Err()
}

func (s *AuthService) issueTokens(ctx context.Context, profile *models.Profile, isAdmin bool) (*models.AuthTokens, error) {
	accessToken, err := s.jwt.GenerateAccessToken(profile.ID, profile.Email, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := generateToken(64)
	if err != nil {
		return nil, err
	}

	entry, _ := json.Marshal(refreshEntry{UserID: profile.ID, IsAdmin: isAdmin})
	err = s.redis.Set(ctx, "refresh:"+refreshToken, entry, refreshTokenTTL).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &models.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(middleware.AccessTokenTTL.Seconds()),
		Profile:      profile,
	}, nil
}

func generateToken(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
