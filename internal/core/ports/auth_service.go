package ports

import (
	"context"

	"github.com/standmarket/marketplace/internal/core/domain"
)

// RegisterInput carries a sign-up form.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
	DealerName  string
	Phone       string
	City        string
}

// LoginResult is the outcome of a successful explicit login or sign-up.
// AccessToken is empty for the administrator bypass.
type LoginResult struct {
	AccessToken string
	State       domain.SessionState
}

// AccountUpdateInput carries the update-user form.
type AccountUpdateInput struct {
	DisplayName string
	Password    string
	Phone       string
	City        string
}

// AuthService implements the explicit user actions around a session.
type AuthService interface {
	Login(ctx context.Context, clientKey, email, password string) (*LoginResult, error)
	Register(ctx context.Context, clientKey string, in RegisterInput) (*LoginResult, error)
	Logout(ctx context.Context, clientKey, accessToken string)
	RequestPasswordReset(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, resetToken, newPassword string) error
	UpdateAccount(ctx context.Context, accessToken string, in AccountUpdateInput) (*domain.Profile, error)
}
