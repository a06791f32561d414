package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/kush1905/FitPlanHub/internal/domain"
	"github.com/kush1905/FitPlanHub/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrResetTokenInvalid    = errors.New("reset token is invalid or has expired")
)

// Reset tokens expire quickly; the holder is expected to use one immediately.
const resetTokenTTL = 10 * time.Minute

// --- Service Interface ---
type AuthService interface {
	Register(ctx context.Context, name, email, password string, role domain.Role) (token string, user *domain.User, err error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// ForgotPassword issues a reset token for the account. Delivery of the
	// token (email) is outside this service; the raw token is returned to
	// the caller.
	ForgotPassword(ctx context.Context, email string) (resetToken string, err error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

// --- Service Implementation ---

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 24
	}
	return &authService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register handles new account creation and logs the account in.
func (s *authService) Register(ctx context.Context, name, email, password string, role domain.Role) (string, *domain.User, error) {
	if name == "" || email == "" || password == "" || role == "" {
		return "", nil, errors.New("name, email, password, and role cannot be empty")
	}
	email = normalizeEmail(email)

	// Fast-path duplicate check; the unique index on email is the real guard.
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return "", nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
		// ID, CreatedAt, UpdatedAt are set by the repository layer
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// A concurrent signup for the same email loses the race at the index.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return "", nil, ErrUserAlreadyExists
		}
		return "", nil, err
	}
	user.ID = userID

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// Login handles authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	if email == "" || password == "" {
		err = errors.New("email and password cannot be empty")
		return
	}

	user, err = s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed // User not found maps to auth failure
			return
		}
		return
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		err = ErrAuthenticationFailed
		user = nil
		return
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

// ForgotPassword generates a reset token, stores its hash with an expiry and
// returns the raw token.
func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", errors.New("email cannot be empty")
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err // repository.ErrNotFound maps to 404 upstream
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	err = s.userRepo.SetResetToken(ctx, user.ID, hashResetToken(token), time.Now().Add(resetTokenTTL))
	if err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword validates the token and replaces the account password.
func (s *authService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" || newPassword == "" {
		return errors.New("reset token and new password cannot be empty")
	}

	user, err := s.userRepo.GetByResetToken(ctx, hashResetToken(resetToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return ErrHashingFailed
	}

	return s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword))
}

// normalizeEmail lowercases and trims; the email column is case-normalized.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashResetToken returns the SHA-256 hex of a raw reset token. Only the hash
// is ever persisted.
func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// --- JWT Helper ---

// Claims defines the structure of the JWT payload. Shared with the API
// middleware, which parses the same shape.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given account.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &Claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "fitplanhub",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}
	return signedToken, nil
}
