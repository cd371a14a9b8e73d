package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SessionSource records where a resolved session came from.
type SessionSource string

const (
	SourceRemote     SessionSource = "remote"
	SourceLocalCache SessionSource = "local_cache"
)

// Session is an authenticated identity together with its resolved role.
type Session struct {
	UserID   string        `json:"user_id,omitempty"`
	Email    string        `json:"email"`
	Role     Role          `json:"role"`
	Source   SessionSource `json:"source"`
	IssuedAt time.Time     `json:"issued_at"`
}

// RemoteSession is what the identity gateway returns for a live access token.
// MetadataRole is the untrusted role claim stored in user metadata.
type RemoteSession struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	MetadataRole string    `json:"metadata_role"`
	IssuedAt     time.Time `json:"issued_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SessionState is the (role, isLoggedIn) pair every route decision consumes.
// The zero value is an anonymous visitor.
type SessionState struct {
	Session  *Session
	Role     Role
	LoggedIn bool
}

// Anonymous returns the logged-out visitor state.
func Anonymous() SessionState {
	return SessionState{Role: RoleVisitor}
}

// EffectiveRole returns the state's role, treating an unset role as visitor.
func (s SessionState) EffectiveRole() Role {
	if s.Role == "" {
		return RoleVisitor
	}
	return s.Role
}

// Email returns the session email or "" for anonymous states.
func (s SessionState) Email() string {
	if s.Session == nil {
		return ""
	}
	return s.Session.Email
}

// StateFor builds a logged-in state around sess.
func StateFor(sess *Session) SessionState {
	return SessionState{Session: sess, Role: sess.Role, LoggedIn: true}
}

// CachedSession is the record kept in the local session cache.
// Timestamp is in Unix milliseconds.
type CachedSession struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	Timestamp int64  `json:"timestamp"`
}

// NewCachedSession builds a cache record for sess.
func NewCachedSession(sess *Session) CachedSession {
	issued := sess.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	return CachedSession{
		Email:     sess.Email,
		Role:      string(sess.Role),
		Timestamp: issued.UnixMilli(),
	}
}

// Encode serialises the record.
func (c CachedSession) Encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cached session: %w", err)
	}
	return string(b), nil
}

// DecodeCachedSession parses a raw cache record. Anything that is not JSON or
// lacks a role is reported as ErrCorruptCache.
func DecodeCachedSession(raw string) (CachedSession, error) {
	var c CachedSession
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return CachedSession{}, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	if strings.TrimSpace(c.Role) == "" {
		return CachedSession{}, fmt.Errorf("%w: missing role", ErrCorruptCache)
	}
	return c, nil
}

// AuthEventType tags an authentication state change.
type AuthEventType string

const (
	AuthSignedIn         AuthEventType = "SIGNED_IN"
	AuthSignedOut        AuthEventType = "SIGNED_OUT"
	AuthUserUpdated      AuthEventType = "USER_UPDATED"
	AuthPasswordRecovery AuthEventType = "PASSWORD_RECOVERY"
	AuthTokenRefreshed   AuthEventType = "TOKEN_REFRESHED"
)

// AuthEvent is an authentication state change for one client.
type AuthEvent struct {
	Type      AuthEventType  `json:"type"`
	ClientKey string         `json:"client_key"`
	Session   *RemoteSession `json:"session,omitempty"`
}
