package ports

import (
	"context"
	"time"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// RegisterInput carries the data needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateProfileInput carries editable profile fields.
type UpdateProfileInput struct {
	Name    string
	Billing domain.Billing
}

// LoginResult is returned by a successful login. Warning is set when the
// user's subscription has expired.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
	Warning   string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	RegisterAdmin(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, userID int64) error
	// ValidateSession checks that sessionID is still the user's live session.
	ValidateSession(ctx context.Context, userID int64, sessionID string) error
	Profile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ChangeRole(ctx context.Context, userID int64, role string) error
}
