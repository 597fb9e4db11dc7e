// Package token signs and verifies the HS256 bearer tokens the ERP front end
// sends with every dashboard request.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the caller. Role is the single ERP role of the user.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UserID is the subject of the token.
func (c *Claims) UserID() string { return c.Subject }

type Manager struct{ secret []byte }

func NewManager(secret string) *Manager { return &Manager{secret: []byte(secret)} }

// Sign issues a token for user; ttl <= 0 means no expiry.
func (m *Manager) Sign(userID, email, role, name string, ttl time.Duration) (string, error) {
	c := Claims{
		Email: email,
		Role:  role,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
}

// Verify checks signature and expiry and returns the claims.
func (m *Manager) Verify(tok string) (*Claims, error) {
	var c Claims
	parsed, err := jwt.ParseWithClaims(tok, &c, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || c.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &c, nil
}
