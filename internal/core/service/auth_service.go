package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

const consultantCounter = "consultant_id"

// AuthService implements registration and login.
type AuthService struct {
	repo       ports.UserRepository
	counters   ports.CounterRepository
	jwtSecret  string
	tokenTTL   time.Duration
	bcryptCost int
	logger     zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, counters ports.CounterRepository, jwtSecret string, tokenTTL time.Duration, bcryptCost int, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		repo:       repo,
		counters:   counters,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a new user account. The consultant id is auto-assigned
// from the sequence counter when the caller does not supply one.
func (s *AuthService) Register(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	user, err := buildUser(ctx, s.counters, input, "", s.bcryptCost)
	if err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return created, nil
}

// Login authenticates a user and returns a signed JWT. The stored status
// flags are validated before the password is checked so a deactivated
// account cannot probe its own credentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return "", nil, err
	}

	if v := domain.ValidateStatus(user); !v.IsValid {
		return "", nil, fmt.Errorf("%w: %s", domain.ErrUserInactive, v.Reason)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Login still succeeds; the timestamp is best-effort bookkeeping.
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}
	user.LastLogin = &now

	return token, user, nil
}

// buildUser validates input and assembles a User ready for persistence.
// Shared with UserService.Create, which passes the creating actor's id.
func buildUser(ctx context.Context, counters ports.CounterRepository, input ports.CreateUserInput, createdBy string, bcryptCost int) (*domain.User, error) {
	if input.Email == "" || input.Password == "" || input.FirstName == "" {
		return nil, fmt.Errorf("%w: first name, email and password are required", domain.ErrValidation)
	}
	if !domain.ValidRole(input.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, input.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	consultantID := input.ConsultantID
	if consultantID == "" {
		seq, err := counters.Next(ctx, consultantCounter)
		if err != nil {
			return nil, fmt.Errorf("assign consultant id: %w", err)
		}
		consultantID = fmt.Sprintf("CON-%06d", seq)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ConsultantID: consultantID,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        strings.ToLower(input.Email),
		PasswordHash: string(hash),
		IsActive:     true,
		Status:       domain.StatusActive,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	user.SetRole(input.Role)
	return user, nil
}

// VerifyToken parses and validates a JWT, returning the subject user id.
func (s *AuthService) VerifyToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.ErrUnauthorized
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrUnauthorized
	}
	return sub, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": user.Role,
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

var _ ports.AuthService = (*AuthService)(nil)
