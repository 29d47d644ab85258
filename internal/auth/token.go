package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenTTL is how long a login stays valid.
const TokenTTL = 12 * time.Hour

type claims struct {
	Role       string `json:"role"`
	KantinID   string `json:"kantinId,omitempty"`
	KantinName string `json:"kantinName,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies bearer tokens for the vendor and super-admin
// surfaces.
type Tokens struct {
	secret []byte
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

// Issue signs a token carrying the session identity.
func (t *Tokens) Issue(s Session, now time.Time) (string, error) {
	c := claims{
		Role:       s.Role,
		KantinID:   s.KantinID,
		KantinName: s.KantinName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a bearer token back into a session.
func (t *Tokens) Verify(tokenString string) (Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return Session{}, ErrInvalidToken
	}
	if c.Role != RoleKantin && c.Role != RoleSuperAdmin {
		return Session{}, ErrInvalidToken
	}
	return Session{Role: c.Role, KantinID: c.KantinID, KantinName: c.KantinName}, nil
}

// SuperAdmin holds the single super-admin credential pair from config. The
// password arrives as a bcrypt hash.
type SuperAdmin struct {
	Username     string
	PasswordHash string
}

// Check compares a login attempt against the configured credentials.
func (sa SuperAdmin) Check(username, password string) bool {
	if sa.Username == "" || sa.PasswordHash == "" {
		return false
	}
	if username != sa.Username {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(sa.PasswordHash), []byte(password)) == nil
}
