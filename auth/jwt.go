package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims the tracker relies on. The identity
// provider may attach more; we only read these.
type Claims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager verifies (and, for tests and local setups, issues) HS256
// bearer tokens. It is constructed explicitly and passed in; there is no
// process-wide client.
type TokenManager struct {
	secret []byte
	issuer string
	expiry time.Duration
}

func NewTokenManager(secret, issuer string, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), issuer: issuer, expiry: expiry}
}

// Issue creates a signed token for a user. Role is validated against the
// closed enumeration before issuing.
func (m *TokenManager) Issue(uid, email, name string, role Role) (string, error) {
	if _, err := ParseRole(string(role)); err != nil {
		return "", err
	}
	now := time.Now()
	claims := &Claims{
		UID:   uid,
		Email: email,
		Name:  name,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   uid,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a bearer token, returning its claims and
// the caller's parsed role.
func (m *TokenManager) Verify(tokenString string) (*Claims, Role, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, "", err
	}
	if !token.Valid {
		return nil, "", errors.New("invalid token")
	}
	if claims.UID == "" {
		return nil, "", errors.New("token missing uid claim")
	}
	role, err := ParseRole(claims.Role)
	if err != nil {
		return nil, "", err
	}
	return claims, role, nil
}
