package service

import (
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/standmarket/marketplace/internal/core/domain"
)

// AdminPolicy holds the two security-sensitive administrator rules: the
// fixed administrator address that always resolves to RoleAdmin, and the
// bypass credential that grants an admin session without the identity
// gateway.
type AdminPolicy struct {
	adminEmail  string
	bypassEmail string
	bypassHash  []byte
}

// NewAdminPolicy builds the policy. The bypass stays disabled unless both
// bypassEmail and bypassPasswordHash (a bcrypt hash) are set.
func NewAdminPolicy(adminEmail, bypassEmail, bypassPasswordHash string) *AdminPolicy {
	p := &AdminPolicy{
		adminEmail:  normalizeEmail(adminEmail),
		bypassEmail: normalizeEmail(bypassEmail),
	}
	if p.bypassEmail != "" && bypassPasswordHash != "" {
		p.bypassHash = []byte(bypassPasswordHash)
	}
	return p
}

// IsAdminEmail reports whether email is the administrator address.
func (p *AdminPolicy) IsAdminEmail(email string) bool {
	return p.adminEmail != "" && normalizeEmail(email) == p.adminEmail
}

// ApplyOverride returns RoleAdmin for the administrator address and role
// otherwise. Role claims are untrusted, so every resolution path calls this.
func (p *AdminPolicy) ApplyOverride(role domain.Role, email string) domain.Role {
	if p.IsAdminEmail(email) {
		return domain.RoleAdmin
	}
	return role
}

// BypassEnabled reports whether a bypass credential is configured.
func (p *AdminPolicy) BypassEnabled() bool {
	return len(p.bypassHash) > 0
}

// MatchBypass reports whether the pair is the bypass credential.
func (p *AdminPolicy) MatchBypass(email, password string) bool {
	if !p.BypassEnabled() || normalizeEmail(email) != p.bypassEmail {
		return false
	}
	return bcrypt.CompareHashAndPassword(p.bypassHash, []byte(password)) == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
