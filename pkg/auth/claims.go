// Package auth provides JWT-based authentication for sitecraft-engine.
// It validates bearer tokens issued by the platform auth server using its
// JWKS endpoint.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Capability constants used by the engine.
const (
	CapabilityOrgCreate = "organizations:create"
)

// Claims represents the JWT claims structure issued by the auth server.
// It embeds RegisteredClaims for standard JWT fields (sub, iss, exp, etc.)
// and adds custom claims for organization context.
type Claims struct {
	jwt.RegisteredClaims
	OrgID        string   `json:"oid,omitempty"`   // Actor's organization UUID
	OrgKind      string   `json:"okind,omitempty"` // Actor's organization kind
	Email        string   `json:"email,omitempty"` // User email address
	Capabilities []string `json:"caps,omitempty"`  // Granted capabilities
}

// HasCapability reports whether the token grants the given capability.
func (c *Claims) HasCapability(capability string) bool {
	for _, cap := range c.Capabilities {
		if cap == capability {
			return true
		}
	}
	return false
}

// ActorID returns the subject parsed as UUID, or nil on absence.
func (c *Claims) ActorID() *uuid.UUID {
	if c.Subject == "" {
		return nil
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil
	}
	return &id
}

// GetClaims retrieves JWT claims from the request context.
// Returns nil and false if claims are not present.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok
}

// GetToken retrieves the raw JWT token string from the request context.
// Returns empty string and false if token is not present.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}

// RequireOrgID extracts the actor's organization ID from claims in context.
// Returns an error if not authenticated or the claim is missing/invalid.
func RequireOrgID(ctx context.Context) (uuid.UUID, error) {
	claims, ok := GetClaims(ctx)
	if !ok || claims == nil {
		return uuid.Nil, fmt.Errorf("authentication required: no claims in context")
	}
	if claims.OrgID == "" {
		return uuid.Nil, fmt.Errorf("missing organization ID in JWT claims")
	}
	orgID, err := uuid.Parse(claims.OrgID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid organization ID format: %w", err)
	}
	return orgID, nil
}
