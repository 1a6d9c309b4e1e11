package ports

import (
	"context"
	"time"

	"github.com/bikerlight/store-api/internal/core/domain"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	UpdateProfile(ctx context.Context, id int64, name string, billing domain.Billing) error
}

// SessionRepository stores the single live session of each user.
type SessionRepository interface {
	// Acquire stores s as the user's session unless a session that has not
	// expired at now already exists, in which case it returns
	// domain.ErrActiveSession. The check and the write are atomic.
	Acquire(ctx context.Context, s domain.Session, now time.Time) error
	// Find returns domain.ErrInvalidSession when the user has no session.
	Find(ctx context.Context, userID int64) (*domain.Session, error)
	Delete(ctx context.Context, userID int64) error
}
