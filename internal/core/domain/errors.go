package domain

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrForbidden          = errors.New("access forbidden")
	ErrCorruptCache       = errors.New("corrupt session cache record")

	ErrProfileNotFound      = errors.New("profile not found")
	ErrListingNotFound      = errors.New("listing not found")
	ErrDealerNotApproved    = errors.New("dealer account is not approved")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidProfileStatus = errors.New("invalid profile status")
)
