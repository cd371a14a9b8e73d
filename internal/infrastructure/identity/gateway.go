// Package identity is the remote authentication service: credential
// checks, signed access tokens with server-side revocation, and password
// reset tokens, all backed by the identity repositories.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

const (
	defaultTokenTTL = 24 * time.Hour
	defaultResetTTL = time.Hour
)

type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	ResetTTL  time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// claims carries the identity inside an access token. The role claim is
// informational only; GetSession always reads the role from user metadata.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Gateway implements ports.AuthGateway.
type Gateway struct {
	users    ports.UserRepository
	sessions ports.RemoteSessionRepository
	resets   ports.ResetTokenRepository
	cfg      Config
	log      zerolog.Logger
	now      func() time.Time
}

func NewGateway(
	users ports.UserRepository,
	sessions ports.RemoteSessionRepository,
	resets ports.ResetTokenRepository,
	cfg Config,
	log zerolog.Logger,
) *Gateway {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = defaultResetTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Gateway{users: users, sessions: sessions, resets: resets, cfg: cfg, log: log, now: time.Now}
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) (string, *domain.RemoteSession, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	return g.issue(ctx, user)
}

func (g *Gateway) SignUp(ctx context.Context, in domain.SignUpInput) (string, *domain.RemoteSession, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), g.cfg.BcryptCost)
	if err != nil {
		return "", nil, err
	}

	now := g.now().UTC()
	user, err := g.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Metadata:     in.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return "", nil, err
	}

	return g.issue(ctx, user)
}

// SignOut revokes the session behind accessToken. Tokens that no longer
// parse are treated as already signed out.
func (g *Gateway) SignOut(ctx context.Context, accessToken string) error {
	c, err := g.parse(accessToken, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	return g.sessions.Delete(ctx, c.ID)
}

func (g *Gateway) GetSession(ctx context.Context, accessToken string) (*domain.RemoteSession, error) {
	user, c, err := g.lookup(ctx, accessToken)
	if err != nil || user == nil {
		return nil, err
	}
	return remoteSession(user, c), nil
}

// UpdateUser changes the password and/or display name of the token's owner.
func (g *Gateway) UpdateUser(ctx context.Context, accessToken string, update domain.UserUpdate) (*domain.User, error) {
	user, _, err := g.lookup(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotAuthenticated
	}

	if update.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(update.Password), g.cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if update.DisplayName != "" {
		user.Metadata.DisplayName = update.DisplayName
	}
	user.UpdatedAt = g.now().UTC()

	if err := g.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestPasswordReset issues a reset token valid for ResetTTL.
func (g *Gateway) RequestPasswordReset(ctx context.Context, email string) (*domain.PasswordReset, error) {
	user, err := g.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	reset := domain.PasswordReset{
		Token:     ksuid.New().String(),
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: g.now().Add(g.cfg.ResetTTL).UTC(),
	}
	if err := g.resets.Create(ctx, reset); err != nil {
		return nil, err
	}
	return &reset, nil
}

// UpdatePassword consumes the reset token, sets the password and revokes
// every open session of the user.
func (g *Gateway) UpdatePassword(ctx context.Context, resetToken, newPassword string) (*domain.User, error) {
	reset, err := g.resets.Consume(ctx, resetToken)
	if err != nil {
		return nil, err
	}

	user, err := g.users.FindByID(ctx, reset.UserID)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), g.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = g.now().UTC()
	if err := g.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := g.sessions.DeleteByUser(ctx, user.ID); err != nil {
		g.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to revoke sessions after password change")
	}
	return user, nil
}

// Purge removes expired sessions and reset tokens.
func (g *Gateway) Purge(ctx context.Context) (sessions, resets int64, err error) {
	now := g.now().Unix()
	if sessions, err = g.sessions.DeleteExpired(ctx, now); err != nil {
		return 0, 0, err
	}
	if resets, err = g.resets.DeleteExpired(ctx, now); err != nil {
		return sessions, 0, err
	}
	return sessions, resets, nil
}

func (g *Gateway) issue(ctx context.Context, user *domain.User) (string, *domain.RemoteSession, error) {
	now := g.now().UTC()
	c := &claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.cfg.TokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(g.cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	if err := g.sessions.Create(ctx, ports.RemoteSessionRecord{
		ID:        c.ID,
		UserID:    user.ID,
		IssuedAt:  now.Unix(),
		ExpiresAt: c.ExpiresAt.Unix(),
	}); err != nil {
		return "", nil, err
	}

	return token, remoteSession(user, c), nil
}

// lookup maps a token to its live user. A nil user with a nil error means
// the token is invalid, expired, revoked or orphaned.
func (g *Gateway) lookup(ctx context.Context, accessToken string) (*domain.User, *claims, error) {
	if accessToken == "" {
		return nil, nil, nil
	}
	c, err := g.parse(accessToken, jwt.WithTimeFunc(g.now))
	if err != nil {
		return nil, nil, nil
	}

	live, err := g.sessions.Exists(ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}
	if !live {
		return nil, nil, nil
	}

	user, err := g.users.FindByID(ctx, c.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	return user, c, nil
}

func (g *Gateway) parse(token string, opts ...jwt.ParserOption) (*claims, error) {
	c := &claims{}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tkn, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (interface{}, error) {
		return []byte(g.cfg.JWTSecret), nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	if c.ID == "" || c.Subject == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return c, nil
}

func remoteSession(user *domain.User, c *claims) *domain.RemoteSession {
	rs := &domain.RemoteSession{
		UserID:       user.ID,
		Email:        user.Email,
		MetadataRole: user.Metadata.Role,
	}
	if c.IssuedAt != nil {
		rs.IssuedAt = c.IssuedAt.Time.UTC()
	}
	if c.ExpiresAt != nil {
		rs.ExpiresAt = c.ExpiresAt.Time.UTC()
	}
	return rs
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ ports.AuthGateway = (*Gateway)(nil)
