package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bikerlight/store-api/internal/api/metrics"
	"github.com/bikerlight/store-api/internal/core/domain"
	"github.com/bikerlight/store-api/internal/core/ports"
)

const minPasswordLength = 6

// SubscriptionChecker abstracts the lookup used to warn about expired plans on login.
type SubscriptionChecker interface {
	Active(ctx context.Context, userID int64) (*ports.ActiveSubscription, error)
}

// AuthService implements registration, login and single-session enforcement.
type AuthService struct {
	users     ports.UserRepository
	sessions  ports.SessionRepository
	subs      SubscriptionChecker
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionRepository,
	subs SubscriptionChecker,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		subs:      subs,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.register(ctx, in, domain.RoleCustomer)
}

func (s *AuthService) RegisterAdmin(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.register(ctx, in, domain.RoleAdmin)
}

func (s *AuthService) register(ctx context.Context, in ports.RegisterInput, role string) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrValidation)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now(),
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("role", role).Msg("user registered")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	session := domain.Session{
		UserID:    user.ID,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(s.tokenTTL),
	}
	if err := s.sessions.Acquire(ctx, session, now); err != nil {
		if errors.Is(err, domain.ErrActiveSession) {
			metrics.LoginsTotal.WithLabelValues("active_session").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("login: acquire session: %w", err)
	}

	token, err := s.generateToken(user, session, now)
	if err != nil {
		_ = s.sessions.Delete(ctx, user.ID)
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Int64("user_id", user.ID).Msg("user logged in")

	return &ports.LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
		Warning:   s.subscriptionWarning(ctx, user.ID),
	}, nil
}

// subscriptionWarning never fails the login; lookup errors are only logged.
func (s *AuthService) subscriptionWarning(ctx context.Context, userID int64) string {
	if s.subs == nil {
		return ""
	}
	active, err := s.subs.Active(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("subscription lookup failed during login")
		return ""
	}
	if active.EndsAt != nil && !active.Active {
		return domain.MsgSubscriptionExpired
	}
	return ""
}

func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Int64("user_id", userID).Msg("user logged out")
	return nil
}

func (s *AuthService) ValidateSession(ctx context.Context, userID int64, sessionID string) error {
	session, err := s.sessions.Find(ctx, userID)
	if err != nil {
		return err
	}
	if session.TokenID != sessionID || session.Expired(s.now()) {
		return domain.ErrInvalidSession
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, in ports.UpdateProfileInput) (*domain.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	billing := domain.Billing{
		RFC:       strings.ToUpper(strings.TrimSpace(in.Billing.RFC)),
		LegalName: strings.TrimSpace(in.Billing.LegalName),
		Address:   strings.TrimSpace(in.Billing.Address),
	}
	if err := s.users.UpdateProfile(ctx, userID, name, billing); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) ChangeRole(ctx context.Context, userID int64, role string) error {
	if !domain.ValidRole(role) {
		return domain.ErrInvalidRole
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	// The role travels in the token, so the current session must not outlive it.
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return fmt.Errorf("change role: revoke session: %w", err)
	}
	s.log.Info().Int64("user_id", userID).Str("role", role).Msg("user role changed")
	return nil
}

func (s *AuthService) generateToken(user *domain.User, session domain.Session, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": user.Role,
		"sid":  session.TokenID,
		"iat":  now.Unix(),
		"exp":  session.ExpiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
