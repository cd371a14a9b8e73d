package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

const minPasswordLength = 6

// AuthDeps groups the collaborators of AuthService.
type AuthDeps struct {
	Gateway  ports.AuthGateway
	Profiles ports.ProfileRepository
	Bus      ports.AuthEventBus
	States   ports.SessionStates
	Resolver *SessionResolver
	Policy   *AdminPolicy
	Notify   ports.NotificationQueue
	// BaseURL is the public origin used to build password reset links.
	BaseURL string
	Clock   ports.Clock
}

// AuthService implements login, sign-up, sign-out and password flows.
type AuthService struct {
	deps AuthDeps
	log  zerolog.Logger
}

func NewAuthService(deps AuthDeps, log zerolog.Logger) *AuthService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	deps.BaseURL = strings.TrimRight(deps.BaseURL, "/")
	return &AuthService{deps: deps, log: log}
}

// Login authenticates the pair for clientKey. The administrator bypass is
// checked first and never reaches the identity gateway. Failures leave the
// client's current state untouched.
func (s *AuthService) Login(ctx context.Context, clientKey, email, password string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.deps.Policy.MatchBypass(email, password) {
		return s.bypassLogin(ctx, clientKey, email)
	}

	token, remote, err := s.deps.Gateway.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sess := s.deps.Resolver.SessionFromRemote(remote)
	s.ensureProfile(ctx, sess)
	state := domain.StateFor(sess)
	s.dropCache(ctx, clientKey)
	s.deps.States.Set(clientKey, state)
	s.publish(ctx, domain.AuthEvent{Type: domain.AuthSignedIn, ClientKey: clientKey, Session: remote})

	s.log.Info().Str("user_id", sess.UserID).Str("role", sess.Role.String()).Msg("user signed in")
	return &ports.LoginResult{AccessToken: token, State: state}, nil
}

func (s *AuthService) bypassLogin(ctx context.Context, clientKey, email string) (*ports.LoginResult, error) {
	sess := &domain.Session{
		Email:    email,
		Role:     domain.RoleAdmin,
		Source:   domain.SourceLocalCache,
		IssuedAt: s.deps.Clock().UTC(),
	}
	if err := s.deps.Resolver.WriteCache(ctx, clientKey, sess); err != nil {
		return nil, fmt.Errorf("bypass login: %w", err)
	}
	state := domain.StateFor(sess)
	s.deps.States.Set(clientKey, state)

	s.log.Warn().Str("client", clientKey).Msg("administrator bypass login")
	return &ports.LoginResult{State: state}, nil
}

// Register signs up a visitor or dealer and opens their session.
func (s *AuthService) Register(ctx context.Context, clientKey string, in ports.RegisterInput) (*ports.LoginResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	requested, err := requestedRole(in.Role)
	if err != nil {
		return nil, err
	}
	if requested == domain.RoleDealer && strings.TrimSpace(in.DealerName) == "" {
		return nil, fmt.Errorf("%w: dealer name is required", domain.ErrInvalidRole)
	}

	token, remote, err := s.deps.Gateway.SignUp(ctx, domain.SignUpInput{
		Email:    email,
		Password: in.Password,
		Metadata: domain.UserMetadata{
			DisplayName: strings.TrimSpace(in.DisplayName),
			Role:        string(requested),
			DealerName:  strings.TrimSpace(in.DealerName),
		},
	})
	if err != nil {
		return nil, err
	}

	sess := s.deps.Resolver.SessionFromRemote(remote)
	profile := s.newProfile(sess)
	profile.DisplayName = strings.TrimSpace(in.DisplayName)
	profile.DealerName = strings.TrimSpace(in.DealerName)
	profile.Phone = in.Phone
	profile.City = in.City
	if err := s.deps.Profiles.Create(ctx, profile); err != nil {
		// The account exists remotely; the next sign-in creates the profile.
		if soErr := s.deps.Gateway.SignOut(ctx, token); soErr != nil {
			s.log.Warn().Err(soErr).Str("user_id", sess.UserID).Msg("sign-out after failed registration failed")
		}
		s.log.Error().Err(err).Str("user_id", sess.UserID).Msg("profile creation failed at registration")
		return nil, fmt.Errorf("register: create profile: %w", err)
	}

	state := domain.StateFor(sess)
	s.dropCache(ctx, clientKey)
	s.deps.States.Set(clientKey, state)
	s.publish(ctx, domain.AuthEvent{Type: domain.AuthSignedIn, ClientKey: clientKey, Session: remote})

	s.log.Info().Str("user_id", sess.UserID).Str("role", sess.Role.String()).Msg("user registered")
	return &ports.LoginResult{AccessToken: token, State: state}, nil
}

// Logout always succeeds from the caller's perspective. The remote sign-out
// is best effort. A cache record that cannot be deleted keeps the client
// anonymous until the resolver manages to remove it.
func (s *AuthService) Logout(ctx context.Context, clientKey, accessToken string) {
	if accessToken != "" {
		if err := s.deps.Gateway.SignOut(ctx, accessToken); err != nil {
			s.log.Warn().Err(err).Str("client", clientKey).Msg("remote sign-out failed")
		}
	}
	if err := s.deps.Resolver.DiscardCache(ctx, clientKey); err != nil {
		s.log.Error().Err(err).Str("client", clientKey).Msg("failed to clear session cache, client held signed out")
	}
	s.deps.States.Set(clientKey, domain.Anonymous())
	s.publish(ctx, domain.AuthEvent{Type: domain.AuthSignedOut, ClientKey: clientKey})
}

// RequestPasswordReset queues a reset e-mail. Unknown addresses succeed
// silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	email = normalizeEmail(email)
	if email == "" {
		return domain.ErrInvalidCredentials
	}

	reset, err := s.deps.Gateway.RequestPasswordReset(ctx, email)
	if err != nil {
		return err
	}
	if reset == nil {
		s.log.Debug().Msg("password reset requested for unknown email")
		return nil
	}

	link := s.resetLink(redirectTo, reset.Token)
	s.deps.Notify.Enqueue(domain.Notification{
		Kind:      domain.NotifyPasswordReset,
		Recipient: reset.Email,
		Subject:   "Reset your password",
		Body:      "Use the link below to choose a new password. It expires at " + reset.ExpiresAt.UTC().Format(time.RFC1123) + ".\n\n" + link,
		CreatedAt: s.deps.Clock().UTC(),
	})
	return nil
}

// resetLink only honours same-origin redirect targets.
func (s *AuthService) resetLink(redirectTo, token string) string {
	target := s.deps.BaseURL + "/reset-password"
	switch {
	case strings.HasPrefix(redirectTo, "/") && !strings.HasPrefix(redirectTo, "//"):
		target = s.deps.BaseURL + redirectTo
	case s.deps.BaseURL != "" && strings.HasPrefix(redirectTo, s.deps.BaseURL+"/"):
		target = redirectTo
	}
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	return target + sep + "token=" + token
}

// UpdatePassword sets a new password using a reset token.
func (s *AuthService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return domain.ErrInvalidResetToken
	}
	if len(newPassword) < minPasswordLength {
		return domain.ErrWeakPassword
	}
	user, err := s.deps.Gateway.UpdatePassword(ctx, resetToken, newPassword)
	if err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.ID).Msg("password updated")
	return nil
}

// UpdateAccount applies an update-user call and mirrors it to the profile.
func (s *AuthService) UpdateAccount(ctx context.Context, accessToken string, in ports.AccountUpdateInput) (*domain.Profile, error) {
	if accessToken == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if in.Password != "" && len(in.Password) < minPasswordLength {
		return nil, domain.ErrWeakPassword
	}

	user, err := s.deps.Gateway.UpdateUser(ctx, accessToken, domain.UserUpdate{
		Password:    in.Password,
		DisplayName: strings.TrimSpace(in.DisplayName),
		Phone:       in.Phone,
		City:        in.City,
	})
	if err != nil {
		return nil, err
	}

	profile, err := s.deps.Profiles.FindByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if dn := strings.TrimSpace(in.DisplayName); dn != "" {
		profile.DisplayName = dn
	}
	if in.Phone != "" {
		profile.Phone = in.Phone
	}
	if in.City != "" {
		profile.City = in.City
	}
	profile.UpdatedAt = s.deps.Clock().UTC()
	if err := s.deps.Profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return profile, nil
}

// newProfile builds the profile of a freshly signed-up user. Dealers start
// pending approval.
func (s *AuthService) newProfile(sess *domain.Session) *domain.Profile {
	now := s.deps.Clock().UTC()
	profile := &domain.Profile{
		ID:        sess.UserID,
		Email:     sess.Email,
		Role:      sess.Role,
		Status:    domain.ProfileApproved,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if sess.Role == domain.RoleDealer {
		profile.Status = domain.ProfilePending
	}
	return profile
}

// ensureProfile creates the profile of a signed-in user whose registration
// never stored one. Existing profiles are left untouched.
func (s *AuthService) ensureProfile(ctx context.Context, sess *domain.Session) {
	if sess.UserID == "" {
		return
	}
	_, err := s.deps.Profiles.FindByID(ctx, sess.UserID)
	switch {
	case err == nil:
		return
	case !errors.Is(err, domain.ErrProfileNotFound):
		s.log.Warn().Err(err).Str("user_id", sess.UserID).Msg("profile lookup failed at sign-in")
		return
	}
	if err := s.deps.Profiles.Create(ctx, s.newProfile(sess)); err != nil {
		s.log.Error().Err(err).Str("user_id", sess.UserID).Msg("failed to create missing profile")
		return
	}
	s.log.Info().Str("user_id", sess.UserID).Str("role", sess.Role.String()).Msg("missing profile created at sign-in")
}

func (s *AuthService) dropCache(ctx context.Context, clientKey string) {
	if err := s.deps.Resolver.DiscardCache(ctx, clientKey); err != nil {
		s.log.Warn().Err(err).Str("client", clientKey).Msg("failed to drop stale session cache")
	}
}

func (s *AuthService) publish(ctx context.Context, ev domain.AuthEvent) {
	if err := s.deps.Bus.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("event", string(ev.Type)).Msg("auth event publish failed")
	}
}

// requestedRole accepts only the self-service roles.
func requestedRole(raw string) (domain.Role, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.RoleVisitor, nil
	}
	role := domain.ParseRole(raw)
	if role == domain.RoleAdmin || (role == domain.RoleVisitor && !strings.EqualFold(strings.TrimSpace(raw), string(domain.RoleVisitor))) {
		return "", domain.ErrInvalidRole
	}
	return role, nil
}

var _ ports.AuthService = (*AuthService)(nil)
