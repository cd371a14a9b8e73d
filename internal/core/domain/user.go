package domain

import "time"

// UserMetadata is the free-form profile data attached to an identity at
// sign-up. Role is a requested role and is never trusted on its own.
type UserMetadata struct {
	DisplayName string `json:"display_name,omitempty" bson:"display_name,omitempty"`
	Role        string `json:"role,omitempty" bson:"role,omitempty"`
	DealerName  string `json:"dealer_name,omitempty" bson:"dealer_name,omitempty"`
}

// User models an identity known to the identity gateway.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Metadata     UserMetadata `json:"metadata"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// SignUpInput carries the credential pair plus sign-up metadata.
type SignUpInput struct {
	Email    string
	Password string
	Metadata UserMetadata
}

// UserUpdate carries the optional fields of an update-user call.
type UserUpdate struct {
	Password    string
	DisplayName string
	Phone       string
	City        string
}

// PasswordReset is an issued password reset token.
type PasswordReset struct {
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
}
