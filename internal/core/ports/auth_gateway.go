package ports

import (
	"context"

	"github.com/standmarket/marketplace/internal/core/domain"
)

// AuthGateway is the remote authentication service.
type AuthGateway interface {
	// SignIn verifies the credential pair and opens a remote session.
	// It returns the access token alongside the session.
	SignIn(ctx context.Context, email, password string) (string, *domain.RemoteSession, error)
	// SignUp creates the identity and opens a remote session for it.
	SignUp(ctx context.Context, in domain.SignUpInput) (string, *domain.RemoteSession, error)
	// SignOut invalidates the remote session behind accessToken.
	SignOut(ctx context.Context, accessToken string) error
	// GetSession returns the live session for accessToken, or nil when the
	// token does not map to one. An error means the service could not answer.
	GetSession(ctx context.Context, accessToken string) (*domain.RemoteSession, error)
	UpdateUser(ctx context.Context, accessToken string, update domain.UserUpdate) (*domain.User, error)
	// RequestPasswordReset issues a reset token for email. Unknown emails
	// yield a nil reset and no error.
	RequestPasswordReset(ctx context.Context, email string) (*domain.PasswordReset, error)
	// UpdatePassword sets a new password; it is only valid with a live reset token.
	UpdatePassword(ctx context.Context, resetToken, newPassword string) (*domain.User, error)
}

// UserRepository persists identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// RemoteSessionRecord is the server-side half of an issued access token.
type RemoteSessionRecord struct {
	ID        string
	UserID    string
	IssuedAt  int64
	ExpiresAt int64
}

// RemoteSessionRepository tracks issued sessions so they can be revoked.
type RemoteSessionRepository interface {
	Create(ctx context.Context, rec RemoteSessionRecord) error
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}

// ResetTokenRepository stores outstanding password reset tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, reset domain.PasswordReset) error
	// Consume returns and removes a token that has not expired yet.
	Consume(ctx context.Context, token string) (*domain.PasswordReset, error)
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}
