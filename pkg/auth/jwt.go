package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

const issuer = "cloud-kitchen"

// SessionManager mints and checks the bearer tokens that identify an ordering
// session. The session id is the token subject.
type SessionManager struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

type Claims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

type SessionToken struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewSessionManager(secretKey string, expiryHours int) *SessionManager {
	return &SessionManager{
		secretKey: []byte(secretKey),
		ttl:       time.Hour * time.Duration(expiryHours),
		now:       time.Now,
	}
}

// Issue starts a new session.
func (m *SessionManager) Issue() (*SessionToken, error) {
	return m.issue(uuid.NewString())
}

func (m *SessionManager) issue(sessionID string) (*SessionToken, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sessionID,
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}

	return &SessionToken{
		SessionID: sessionID,
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

func (m *SessionManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh extends a still valid session with a new token for the same id.
func (m *SessionManager) Refresh(tokenString string) (*SessionToken, error) {
	claims, err := m.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return m.issue(claims.SessionID)
}
