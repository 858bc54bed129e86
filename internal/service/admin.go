package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/nexus_market/internal/models"
	"github.com/Skotchmaster/nexus_market/pkg/tokens"
)

// Credentials are whatever the caller presented for an admin operation.
// Either field may be empty.
type Credentials struct {
	AdminPassword string
	BearerToken   string
}

// AdminGuard authorizes catalog mutations. A request passes with an access
// token whose role is admin, or with the shared admin secret. The secret is
// only kept as a bcrypt hash.
type AdminGuard struct {
	secretHash []byte
	jwtSecret  []byte
}

// NewAdminGuard hashes secret unless secretHash is given. With neither, only
// bearer tokens can pass.
func NewAdminGuard(secret, secretHash string, jwtSecret []byte) (*AdminGuard, error) {
	g := &AdminGuard{jwtSecret: jwtSecret}
	switch {
	case secretHash != "":
		if _, err := bcrypt.Cost([]byte(secretHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		g.secretHash = []byte(secretHash)
	case secret != "":
		h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("admin password: %w", err)
		}
		g.secretHash = h
	}
	return g, nil
}

func (g *AdminGuard) Verify(creds Credentials) error {
	if g == nil {
		return ErrUnauthorized
	}
	if creds.BearerToken != "" && len(g.jwtSecret) > 0 {
		claims, err := tokens.AccessClaimsFromToken(creds.BearerToken, g.jwtSecret)
		if err == nil && claims.Role == models.RoleAdmin {
			return nil
		}
	}
	if creds.AdminPassword != "" && len(g.secretHash) > 0 {
		err := bcrypt.CompareHashAndPassword(g.secretHash, []byte(creds.AdminPassword))
		if err == nil {
			return nil
		}
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	}
	return ErrUnauthorized
}
