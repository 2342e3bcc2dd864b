// Package token signs and verifies the stateless session tokens used by the
// API. Tokens are self-contained: possession of a valid, unexpired token is
// the whole proof of authority, there is no server-side session state.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/famlink/family-api/internal/core/domain"
)

const (
	// AccessTTL is the lifetime of an access token.
	AccessTTL = 15 * time.Minute
	// RefreshTTL is the lifetime of a refresh token.
	RefreshTTL = 30 * 24 * time.Hour
)

// Claims is the payload embedded in every session token.
type Claims struct {
	AccountID string `json:"user_id"`
	FamilyID  string `json:"family_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256-signed tokens with a single fixed secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue signs a token carrying the given identity with expiry now+ttl.
func (c *Codec) Issue(accountID, familyID, role string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		AccountID: accountID,
		FamilyID:  familyID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// IssueAccess issues a short-lived token for ordinary requests.
func (c *Codec) IssueAccess(accountID, familyID, role string) (string, error) {
	return c.Issue(accountID, familyID, role, AccessTTL)
}

// IssueRefresh issues a long-lived token used solely to mint access tokens.
func (c *Codec) IssueRefresh(accountID, familyID, role string) (string, error) {
	return c.Issue(accountID, familyID, role, RefreshTTL)
}

// Verify parses and validates a token. Malformed, tampered, and expired
// tokens all collapse into domain.ErrInvalidToken; callers must not be able
// to distinguish the failure modes.
func (c *Codec) Verify(raw string) (*Claims, error) {
	tkn, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Pin the algorithm: a token asserting any other method is rejected
		// before signature verification.
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrInvalidToken
	}
	claims, ok := tkn.Claims.(*Claims)
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
