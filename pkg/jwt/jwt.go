package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of the signed session cookie. The token carries
// only the session id; the session record in the store is authoritative.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session cookie tokens.
type Manager struct {
	secret string
}

func NewManager(secret string) *Manager {
	return &Manager{secret: secret}
}

// GenerateSessionToken signs a token whose sid claim is the session id.
// The expiry only bounds how long a stolen cookie parses; the real expiry
// is the sliding TTL on the session record.
func (m *Manager) GenerateSessionToken(sessionID string, ttl time.Duration) (string, error) {
	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

// ParseSessionToken verifies the signature and returns the session id.
func (m *Manager) ParseSessionToken(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid || claims.SessionID == "" {
		return "", fmt.Errorf("invalid session token")
	}

	return claims.SessionID, nil
}
